package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	return &Session{
		Token: "token-" + uuid.NewString(),
		User: &domain.User{
			ID:    uuid.New(),
			Name:  "Ana Torres",
			Email: "ana@example.com",
			Role:  domain.RoleStudent,
		},
	}
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "aula", "session.json"))
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)

			loaded, err := store.Load()
			require.NoError(t, err)
			assert.Nil(t, loaded)

			session := testSession()
			require.NoError(t, store.Save(session))

			loaded, err = store.Load()
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, session.Token, loaded.Token)
			assert.Equal(t, session.User.ID, loaded.User.ID)

			cleared, err := store.Clear()
			require.NoError(t, err)
			assert.True(t, cleared)

			cleared, err = store.Clear()
			require.NoError(t, err)
			assert.False(t, cleared, "second clear has nothing to remove")

			loaded, err = store.Load()
			require.NoError(t, err)
			assert.Nil(t, loaded)
		})
	}
}

func TestStores_ClearIf(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)

			cleared, err := store.ClearIf("anything")
			require.NoError(t, err)
			assert.False(t, cleared, "nothing stored")

			session := testSession()
			require.NoError(t, store.Save(session))

			for _, token := range []string{"", "token-from-older-login"} {
				cleared, err = store.ClearIf(token)
				require.NoError(t, err)
				assert.False(t, cleared)

				loaded, err := store.Load()
				require.NoError(t, err)
				require.NotNil(t, loaded, "session kept for token %q", token)
			}

			cleared, err = store.ClearIf(session.Token)
			require.NoError(t, err)
			assert.True(t, cleared)

			loaded, err := store.Load()
			require.NoError(t, err)
			assert.Nil(t, loaded)
		})
	}
}

func TestStores_RejectPartialSession(t *testing.T) {
	for _, store := range []Store{NewMemoryStore(), NewFileStore(filepath.Join(t.TempDir(), "session.json"))} {
		assert.Error(t, store.Save(&Session{Token: "only-token"}))
		assert.Error(t, store.Save(&Session{User: &domain.User{ID: uuid.New()}}))
	}
}

func TestFileStore_OwnerOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save(testSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_HalfWrittenSessionIsNoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"abc"}`), 0o600))

	loaded, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_SharedBetweenInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	session := testSession()
	require.NoError(t, NewFileStore(path).Save(session))

	loaded, err := NewFileStore(path).Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, session.Token, loaded.Token)
}
