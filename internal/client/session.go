package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/novaacademy/aula-virtual/internal/validation"
	"go.uber.org/zap"
)

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a session and stores it. Any failure,
// including a network one, is an *AuthError and leaves the client
// unauthenticated.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "client.Login"

	input := loginInput{Email: email, Password: password}
	if err := validation.Struct(input); err != nil {
		return nil, newValidationError(op, err)
	}

	var session Session
	err := c.do(ctx, op, request{
		method:    http.MethodPost,
		path:      "/user/login",
		body:      input,
		anonymous: true,
	}, &session)
	if err != nil {
		return nil, loginError(op, err)
	}
	if !session.valid() {
		return nil, &AuthError{Op: op, Message: "login response without token or user"}
	}

	if err := c.store.Save(&session); err != nil {
		c.logger.Error("[client.Login] failed to persist session", zap.Error(err))
		return nil, &AuthError{Op: op, Message: "could not persist session", Err: err}
	}

	c.logger.Info("[client.Login] logged in",
		zap.String("userID", session.User.ID.String()),
		zap.String("role", string(session.User.Role)))
	return &session, nil
}

func loginError(op string, err error) error {
	var (
		authErr   *AuthError
		serverErr *ServerError
	)
	switch {
	case errors.As(err, &authErr):
		return err
	case errors.As(err, &serverErr) && serverErr.Status == http.StatusBadRequest:
		return &AuthError{Op: op, Status: serverErr.Status, Message: serverErr.Message}
	default:
		return &AuthError{Op: op, Message: "login failed", Err: err}
	}
}

// Logout ends the session. It is idempotent and never redirects. The server
// side session is revoked best effort.
func (c *Client) Logout(ctx context.Context) error {
	session, err := c.store.Load()
	if err != nil {
		c.logger.Warn("[client.Logout] failed to load session", zap.Error(err))
	}
	if _, err := c.store.Clear(); err != nil {
		return err
	}

	if session.valid() {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/logout", nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+session.Token)
			if resp, err := c.http.Do(req); err == nil {
				resp.Body.Close()
			} else {
				c.logger.Debug("[client.Logout] revocation failed", zap.Error(err))
			}
		}
	}
	return nil
}

// Session returns a copy of the stored session, or nil.
func (c *Client) Session() *Session {
	session, err := c.store.Load()
	if err != nil {
		c.logger.Warn("[client.Session] failed to load session", zap.Error(err))
		return nil
	}
	if !session.valid() {
		return nil
	}
	return session
}

func (c *Client) Token() (string, bool) {
	if s := c.Session(); s != nil {
		return s.Token, true
	}
	return "", false
}

func (c *Client) User() (*User, bool) {
	if s := c.Session(); s != nil {
		return s.User, true
	}
	return nil, false
}

// IsAuthenticated only checks that a session is stored. It does not verify
// the token.
func (c *Client) IsAuthenticated() bool {
	return c.Session() != nil
}

type validateTokenResponse struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user"`
}

// ValidateToken asks the backend whether the stored token is still accepted.
// A 401 ends the session and redirects. Any other failure reports false and
// the error but keeps the session.
func (c *Client) ValidateToken(ctx context.Context) (bool, error) {
	session := c.Session()
	if session == nil {
		return false, nil
	}

	valid, err := c.checkToken(ctx, session)
	if isAuthError(err) {
		c.invalidateToken(session.Token, "session rejected by server")
		return false, nil
	}
	return valid, err
}

// checkToken validates session's token without touching the store. A 401 is
// returned as an *AuthError.
func (c *Client) checkToken(ctx context.Context, session *Session) (bool, error) {
	var result validateTokenResponse
	err := c.do(ctx, "client.ValidateToken", request{
		method:      http.MethodGet,
		path:        "/user/validate-token/" + session.User.ID.String(),
		token:       session.Token,
		keepSession: true,
	}, &result)
	if err != nil {
		return false, err
	}
	return result.Valid, nil
}

// Invalidate clears the current session because the backend rejected it. The
// redirector runs once per authenticated-to-anonymous transition, so
// concurrent failures on the same token redirect only once.
func (c *Client) Invalidate(reason string) {
	if token, ok := c.Token(); ok {
		c.invalidateToken(token, reason)
	}
}

// invalidateToken ends the session only if it still holds token. A session
// from a newer login is left alone.
func (c *Client) invalidateToken(token, reason string) {
	cleared, err := c.store.ClearIf(token)
	if err != nil {
		c.logger.Error("[client.Invalidate] failed to clear session", zap.Error(err))
		return
	}
	if !cleared {
		return
	}
	c.logger.Info("[client.Invalidate] session ended", zap.String("reason", reason))
	c.redirector.RedirectToLogin(reason)
}

func newValidationError(op string, err error) *ValidationError {
	verr := &ValidationError{Op: op, Err: err}
	var fields validation.Errors
	if errors.As(err, &fields) {
		verr.Fields = fields.Fields()
	}
	return verr
}
