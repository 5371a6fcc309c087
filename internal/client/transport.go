package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const genericFailure = "request failed"

// request describes one API call. Exactly one of body and raw may be set.
type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	raw         io.Reader
	contentType string

	// anonymous requests carry no token and a 401 does not end the session.
	anonymous bool
	// keepSession leaves a 401 to the caller, which decides whether the
	// session ends.
	keepSession bool
	// token, when set, is sent instead of the stored one.
	token string
}

type response struct {
	status      int
	contentType string
	body        []byte
}

// send performs the call and normalizes every failure into one of the error
// types of this package. A 401 only ends the session that sent the request.
func (c *Client) send(ctx context.Context, op string, req request) (*response, error) {
	httpReq, token, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		c.logger.Error("["+op+"] failed to build request", zap.Error(err))
		return nil, &ServerError{Op: op, Message: err.Error()}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("["+op+"] no response", zap.String("path", req.path), zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("["+op+"] failed to read response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &response{
			status:      resp.StatusCode,
			contentType: resp.Header.Get("Content-Type"),
			body:        body,
		}, nil
	}

	message := backendMessage(body)
	fields := []zap.Field{
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message),
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.logger.Info("["+op+"] unauthorized", fields...)
		if !req.anonymous && !req.keepSession {
			c.invalidateToken(token, "session rejected by server")
		}
		return nil, &AuthError{Op: op, Status: resp.StatusCode, Message: message}
	case http.StatusNotFound:
		c.logger.Info("["+op+"] not found", fields...)
		return nil, &NotFoundError{Op: op, Message: message}
	default:
		c.logger.Warn("["+op+"] request failed", fields...)
		return nil, &ServerError{Op: op, Status: resp.StatusCode, Message: message}
	}
}

// newHTTPRequest also returns the token it attached, empty for none.
func (c *Client) newHTTPRequest(ctx context.Context, req request) (*http.Request, string, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	body := req.raw
	contentType := req.contentType
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, "", err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, "", err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	token := req.token
	if !req.anonymous {
		if token == "" {
			token, _ = c.Token()
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, token, nil
}

// do sends req and decodes a JSON response into out, which may be nil.
func (c *Client) do(ctx context.Context, op string, req request, out any) error {
	resp, err := c.send(ctx, op, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		c.logger.Error("["+op+"] undecodable response", zap.Error(err))
		return &ServerError{Op: op, Status: resp.status, Message: "invalid response body"}
	}
	return nil
}

// backendMessage extracts the "message" of an error body. Some endpoints send
// a list of messages.
func backendMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Message) == 0 {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 && !strings.HasPrefix(text, "<") {
			return text
		}
		return genericFailure
	}

	var single string
	if err := json.Unmarshal(payload.Message, &single); err == nil && single != "" {
		return single
	}
	var many []string
	if err := json.Unmarshal(payload.Message, &many); err == nil && len(many) > 0 {
		return strings.Join(many, "; ")
	}
	return genericFailure
}

func isAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
