package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var novaIDPattern = regexp.MustCompile(`^[a-z0-9._]+\.\d{2}$`)

func TestGenerateNovaID(t *testing.T) {
	tests := []struct {
		name       string
		fullName   string
		email      string
		wantPrefix string
	}{
		{"from name", "Ana Torres", "ana@example.com", "ana"},
		{"accents are transliterated", "José Ñúñez", "", "jose"},
		{"single name", "Valentina", "", "valentina"},
		{"falls back to email", "", "carlos.mendoza@example.com", "carlos"},
		{"only the first two names are used", "Maximiliano Bartolomeo Hernández-Santisteban", "", "maximiliano"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				id := GenerateNovaID(tt.fullName, tt.email)
				assert.LessOrEqual(t, len(id), novaIDMaxLen)
				assert.True(t, strings.HasPrefix(id, tt.wantPrefix), id)
				if len(id) < novaIDMaxLen {
					assert.Regexp(t, novaIDPattern, id)
				}
			}
		})
	}
}

func TestGenerateNovaID_NothingToWorkWith(t *testing.T) {
	id := GenerateNovaID("", "")
	assert.Regexp(t, `^user_[a-z0-9]{6}$`, id)
}

func TestUniqueNovaID(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until free", func(t *testing.T) {
		calls := 0
		id, err := uniqueNovaID(ctx, "Ana Torres", "", func(context.Context, string) (bool, error) {
			calls++
			return calls < 3, nil
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		_, err := uniqueNovaID(ctx, "Ana Torres", "", func(context.Context, string) (bool, error) {
			return true, nil
		})
		assert.Error(t, err)
	})

	t.Run("lookup failure", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := uniqueNovaID(ctx, "Ana Torres", "", func(context.Context, string) (bool, error) {
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
	})
}
