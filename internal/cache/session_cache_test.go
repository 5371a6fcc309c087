package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestRedis(t *testing.T) *cache.RedisSessionCache {
	t.Helper()

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := cache.NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return cache.NewRedisSessionCache(client)
}

func TestRedisSessionCache_RememberForget(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	id := uuid.New()

	known, err := c.Known(ctx, id)
	require.NoError(t, err)
	assert.False(t, known)

	require.NoError(t, c.Remember(ctx, id, time.Now().Add(time.Hour)))
	known, err = c.Known(ctx, id)
	require.NoError(t, err)
	assert.True(t, known)

	require.NoError(t, c.Forget(ctx, id))
	known, err = c.Known(ctx, id)
	require.NoError(t, err)
	assert.False(t, known)
}

func TestRedisSessionCache_SkipsExpired(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.Remember(ctx, id, time.Now().Add(-time.Minute)))
	known, err := c.Known(ctx, id)
	require.NoError(t, err)
	assert.False(t, known)
}
