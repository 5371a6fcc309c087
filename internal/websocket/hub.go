package websocket

import (
	"encoding/json"
	"sync"

	"github.com/novaacademy/aula-virtual/internal/domain"
	"go.uber.org/zap"
)

// Hub keeps the connected clients and pushes payment events to the ones that
// should see them: every admin, and the student who owns the payment.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *delivery
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	logger     *zap.Logger
	mu         sync.RWMutex
}

type delivery struct {
	data  []byte
	match func(*Client) bool
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *delivery, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()
			if msg, err := NewMessage(MessageTypeConnected, ConnectedPayload{UserID: client.userID, Role: client.role}); err == nil {
				client.Send(msg)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()

		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

func (h *Hub) deliver(d *delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !d.match(client) {
			continue
		}
		if !client.trySend(d.data) {
			h.logger.Warn("[Hub.deliver] dropping slow client", zap.String("userID", client.userID.String()))
			delete(h.clients, client)
			client.Close()
		}
	}
}

// Stop disconnects every client and blocks until Run has returned.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) PaymentSubmitted(p *domain.Payment) {
	h.publishPayment(MessageTypePaymentSubmitted, p)
}

func (h *Hub) PaymentReviewed(p *domain.Payment) {
	h.publishPayment(MessageTypePaymentReviewed, p)
}

func (h *Hub) publishPayment(msgType MessageType, p *domain.Payment) {
	msg, err := NewMessage(msgType, NewPaymentPayload(p))
	if err != nil {
		h.logger.Error("[Hub.publishPayment] failed to build message", zap.Error(err))
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("[Hub.publishPayment] failed to marshal message", zap.Error(err))
		return
	}

	owner := p.StudentID
	d := &delivery{
		data: data,
		match: func(c *Client) bool {
			return c.role == domain.RoleAdmin || c.userID == owner
		},
	}

	select {
	case h.broadcast <- d:
	case <-h.done:
	}
}
