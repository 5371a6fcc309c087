package client_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/novaacademy/aula-virtual/internal/client"
	"github.com/novaacademy/aula-virtual/internal/config"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func clientConfig(apiURL string) config.ClientConfig {
	return config.ClientConfig{
		APIURL:             apiURL,
		Timeout:            5 * time.Second,
		ValidationDelay:    5 * time.Minute,
		ValidationInterval: 10 * time.Minute,
		ValidationTimeout:  time.Second,
	}
}

// redirectCounter counts forced logouts.
type redirectCounter struct {
	n atomic.Int32
}

func (r *redirectCounter) RedirectToLogin(string) { r.n.Add(1) }

func (r *redirectCounter) Count() int { return int(r.n.Load()) }

func newClient(t *testing.T, ts *testutil.TestServer, opts ...client.Option) *client.Client {
	t.Helper()
	opts = append([]client.Option{client.WithLogger(zaptest.NewLogger(t))}, opts...)
	return client.New(clientConfig(ts.APIURL("")), opts...)
}

// loginAs creates a user with the role and returns a client logged in as
// that user.
func loginAs(t *testing.T, ts *testutil.TestServer, role domain.Role, opts ...client.Option) (*client.Client, *domain.User) {
	t.Helper()
	user, password := testutil.NewUserBuilder().WithRole(role).Build(t, ts.DB)

	c := newClient(t, ts, opts...)
	_, err := c.Login(context.Background(), user.Email, password)
	require.NoError(t, err)
	return c, user
}

func ptr[T any](v T) *T { return &v }
