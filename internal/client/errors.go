package client

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinels for errors.Is. Every error returned by this package matches one
// of them.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrTransport           = errors.New("no response from server")
	ErrServer              = errors.New("server error")
	ErrDuplicateEnrollment = errors.New("student already enrolled")
)

// AuthError reports rejected credentials or a token the backend no longer
// accepts. Status is 0 when no response was received.
type AuthError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }
func (e *AuthError) Unwrap() error        { return e.Err }

// NotFoundError reports a resource id the backend does not know.
type NotFoundError struct {
	Op      string
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError is raised before any request is sent.
type ValidationError struct {
	Op     string
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %v", e.Op, e.Err)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ValidationError) Unwrap() error        { return e.Err }

// TransportError means no HTTP response reached the client.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: no response: %v", e.Op, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Unwrap() error        { return e.Err }

// ServerError is any other non-2xx response. Message is the backend's message
// when it sent one.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

func (e *ServerError) Is(target error) bool { return target == ErrServer }

type DuplicateEnrollmentError struct {
	StudentID uuid.UUID
	CourseID  uuid.UUID
}

func (e *DuplicateEnrollmentError) Error() string {
	return fmt.Sprintf("student %s is already enrolled in course %s", e.StudentID, e.CourseID)
}

func (e *DuplicateEnrollmentError) Is(target error) bool { return target == ErrDuplicateEnrollment }
