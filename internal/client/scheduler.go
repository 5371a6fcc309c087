package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CancelFunc stops a background task. After it returns no further run
// starts and no run still in flight ends the session.
type CancelFunc func()

type tokenValidator struct {
	c        *Client
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration

	mu        sync.Mutex
	timer     Timer
	stopped   bool
	running   bool
	lastStart time.Time

	// held while a run may end the session; stop waits for it.
	endMu sync.Mutex
}

func newTokenValidator(c *Client, parent context.Context) *tokenValidator {
	ctx, cancel := context.WithCancel(parent)
	return &tokenValidator{
		c:        c,
		ctx:      ctx,
		cancel:   cancel,
		interval: c.validationInterval,
	}
}

// StartTokenValidation checks the token once after the grace delay and then
// every interval until cancelled or ctx ends. When the token is no longer
// accepted the session is invalidated, which redirects to login. Only one
// check runs at a time.
//
// The returned func waits for a check that is ending the session, so it must
// not be called from the LoginRedirector.
func (c *Client) StartTokenValidation(ctx context.Context) CancelFunc {
	v := newTokenValidator(c, ctx)

	v.mu.Lock()
	v.timer = c.clock.AfterFunc(c.validationDelay, v.tick)
	v.mu.Unlock()

	stopOnDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			v.stop()
		case <-stopOnDone:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.stop()
			close(stopOnDone)
		})
	}
}

func (v *tokenValidator) stop() {
	v.mu.Lock()
	v.stopped = true
	if v.timer != nil {
		v.timer.Stop()
	}
	v.mu.Unlock()

	v.cancel()
	v.endMu.Lock()
	v.endMu.Unlock()
}

func (v *tokenValidator) isStopped() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stopped
}

func (v *tokenValidator) tick() {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	v.timer = v.c.clock.AfterFunc(v.interval, v.tick)

	now := v.c.clock.Now()
	// Overlapping runs and runs right after the previous one are skipped.
	if v.running || (!v.lastStart.IsZero() && now.Sub(v.lastStart) < v.interval/2) {
		v.mu.Unlock()
		v.c.logger.Debug("[client.tokenValidator] skipping run")
		return
	}
	v.running = true
	v.lastStart = now
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.running = false
		v.mu.Unlock()
	}()

	v.run()
}

func (v *tokenValidator) run() {
	ctx := v.ctx
	if v.c.validationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.c.validationTimeout)
		defer cancel()
	}

	session := v.c.Session()
	if session == nil {
		return
	}

	valid, err := v.c.checkToken(ctx, session)
	switch {
	case isAuthError(err):
		v.end(session, "session rejected by server")
	case err != nil:
		if !v.isStopped() {
			v.c.logger.Warn("[client.tokenValidator] validation failed, keeping session", zap.Error(err))
		}
	case !valid:
		v.end(session, "token no longer valid")
	}
}

// end invalidates session unless the validator was stopped meanwhile.
func (v *tokenValidator) end(session *Session, reason string) {
	v.endMu.Lock()
	defer v.endMu.Unlock()

	if v.isStopped() {
		v.c.logger.Debug("[client.tokenValidator] stopped, keeping session")
		return
	}
	v.c.invalidateToken(session.Token, reason)
}
