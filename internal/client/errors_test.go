package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestErrors_MatchOneSentinel(t *testing.T) {
	sentinels := []error{ErrUnauthorized, ErrNotFound, ErrValidation, ErrTransport, ErrServer, ErrDuplicateEnrollment}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"auth", &AuthError{Op: "op", Status: 401, Message: "bad token"}, ErrUnauthorized},
		{"not found", &NotFoundError{Op: "op", Message: "Course not found"}, ErrNotFound},
		{"validation", &ValidationError{Op: "op", Fields: []string{"name"}, Err: errors.New("name: is required")}, ErrValidation},
		{"transport", &TransportError{Op: "op", Err: errors.New("connection refused")}, ErrTransport},
		{"server", &ServerError{Op: "op", Status: 500, Message: "boom"}, ErrServer},
		{"duplicate", &DuplicateEnrollmentError{StudentID: uuid.New(), CourseID: uuid.New()}, ErrDuplicateEnrollment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("wrapped: %w", tt.err)
			for _, s := range sentinels {
				assert.Equal(t, s == tt.want, errors.Is(wrapped, s), "sentinel %v", s)
			}
		})
	}
}

func TestBackendMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"single message", `{"message":"Course not found"}`, "Course not found"},
		{"message list", `{"message":["name is required","price is required"]}`, "name is required; price is required"},
		{"plain text", "bad gateway", "bad gateway"},
		{"html page", "<html><body>502</body></html>", genericFailure},
		{"empty", "", genericFailure},
		{"empty message", `{"message":""}`, genericFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, backendMessage([]byte(tt.body)))
		})
	}
}
