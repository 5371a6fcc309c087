package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const readTimeout = 2 * time.Second

// newHubServer serves the hub; connections identify themselves with the
// userId and role query parameters.
func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(zap.NewNop())
	go hub.Run()

	upgrader := gorillaWS.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := uuid.MustParse(r.URL.Query().Get("userId"))
		role := domain.Role(r.URL.Query().Get("role"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, userID, role)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))

	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, userID uuid.UUID, role domain.Role) *gorillaWS.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?userId=" + userID.String() + "&role=" + string(role)
	conn, _, err := gorillaWS.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeConnected, msg.Type)
	return conn
}

func readMessage(t *testing.T, conn *gorillaWS.Conn) *Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return &msg
}

func expectSilence(t *testing.T, conn *gorillaWS.Conn) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "expected no message")
}

func TestHub_PaymentEventsReachAdminsAndOwner(t *testing.T) {
	hub, srv := newHubServer(t)

	owner := uuid.New()
	admin := dial(t, srv, uuid.New(), domain.RoleAdmin)
	student := dial(t, srv, owner, domain.RoleStudent)
	other := dial(t, srv, uuid.New(), domain.RoleStudent)

	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, readTimeout, 10*time.Millisecond)

	payment := &domain.Payment{
		ID:        uuid.New(),
		StudentID: owner,
		Amount:    decimal.RequireFromString("49.90"),
		Reason:    "Curso de Go",
		Status:    domain.PaymentPending,
	}
	hub.PaymentSubmitted(payment)

	for _, conn := range []*gorillaWS.Conn{admin, student} {
		msg := readMessage(t, conn)
		assert.Equal(t, MessageTypePaymentSubmitted, msg.Type)

		var payload PaymentPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, payment.ID, payload.PaymentID)
		assert.Equal(t, domain.PaymentPending, payload.Status)
		assert.True(t, payment.Amount.Equal(payload.Amount))
	}
	expectSilence(t, other)

	payment.Status = domain.PaymentApproved
	hub.PaymentReviewed(payment)

	msg := readMessage(t, student)
	assert.Equal(t, MessageTypePaymentReviewed, msg.Type)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, srv := newHubServer(t)

	conn := dial(t, srv, uuid.New(), domain.RoleStudent)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, readTimeout, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, readTimeout, 10*time.Millisecond)
}

func TestHub_StopIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	hub.Stop()
	hub.Stop()

	// publishing after stop must not block
	done := make(chan struct{})
	go func() {
		hub.PaymentSubmitted(&domain.Payment{ID: uuid.New()})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(readTimeout):
		t.Fatal("PaymentSubmitted blocked after Stop")
	}
}
