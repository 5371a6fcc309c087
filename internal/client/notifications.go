package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	ws "github.com/novaacademy/aula-virtual/internal/websocket"
	"go.uber.org/zap"
)

// NotificationClient streams payment events pushed by the server.
type NotificationClient struct {
	c *Client
}

// Subscribe opens the notification socket with the current token. The
// returned channel is closed when ctx ends or the server closes the
// connection.
func (nc *NotificationClient) Subscribe(ctx context.Context) (<-chan ws.Message, error) {
	const op = "notifications.Subscribe"

	token, ok := nc.c.Token()
	if !ok {
		return nil, &AuthError{Op: op, Message: "not logged in"}
	}

	target, err := socketURL(nc.c.baseURL, token)
	if err != nil {
		return nil, &ServerError{Op: op, Message: err.Error()}
	}

	dialer := *websocket.DefaultDialer
	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			nc.c.invalidateToken(token, "session rejected by server")
			return nil, &AuthError{Op: op, Status: resp.StatusCode, Message: "invalid token"}
		}
		if resp != nil {
			return nil, &ServerError{Op: op, Status: resp.StatusCode, Message: "websocket upgrade refused"}
		}
		return nil, &TransportError{Op: op, Err: err}
	}

	out := make(chan ws.Message, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !errors.Is(err, net.ErrClosed) {
					nc.c.logger.Warn("[notifications.Subscribe] connection lost", zap.Error(err))
				}
				return
			}
			var msg ws.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				nc.c.logger.Warn("[notifications.Subscribe] undecodable message", zap.Error(err))
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func socketURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
