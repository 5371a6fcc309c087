package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository/postgres"
	"github.com/novaacademy/aula-virtual/internal/service"
	"github.com/novaacademy/aula-virtual/internal/storage"
	"github.com/novaacademy/aula-virtual/internal/testutil"
	"go.uber.org/zap/zaptest"
)

// recordingNotifier remembers the payment events it was told about.
type recordingNotifier struct {
	mu        sync.Mutex
	submitted []*domain.Payment
	reviewed  []*domain.Payment
}

func (n *recordingNotifier) PaymentSubmitted(p *domain.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, p)
}

func (n *recordingNotifier) PaymentReviewed(p *domain.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviewed = append(n.reviewed, p)
}

// memorySessionCache vouches for remembered sessions like the Redis cache.
type memorySessionCache struct {
	mu  sync.Mutex
	ids map[uuid.UUID]time.Time
}

func newMemorySessionCache() *memorySessionCache {
	return &memorySessionCache{ids: make(map[uuid.UUID]time.Time)}
}

func (c *memorySessionCache) Remember(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[id] = expiresAt
	return nil
}

func (c *memorySessionCache) Known(_ context.Context, id uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.ids[id]
	return ok && exp.After(time.Now()), nil
}

func (c *memorySessionCache) Forget(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, id)
	return nil
}

type testEnv struct {
	db       *testutil.TestDB
	services *service.Services
	storage  *storage.MemoryStorage
	notifier *recordingNotifier
	sessions *memorySessionCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := testutil.NewTestDB(t)
	env := &testEnv{
		db:       testDB,
		storage:  storage.NewMemoryStorage("http://files.test"),
		notifier: &recordingNotifier{},
		sessions: newMemorySessionCache(),
	}
	env.services = service.NewServices(postgres.NewRepositories(testDB.DB), testutil.TestConfig(), service.Dependencies{
		Sessions: env.sessions,
		Storage:  env.storage,
		Notifier: env.notifier,
		Logger:   zaptest.NewLogger(t),
	})
	return env
}

func ptr[T any](v T) *T { return &v }
