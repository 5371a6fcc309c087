package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/validation"
)

// resource implements the CRUD calls every REST resource shares:
// GET all, GET getById/{id}, POST create, PUT update/{id}, DELETE delete/{id}.
type resource[T any, In any] struct {
	c    *Client
	base string
	name string
}

func newResource[T any, In any](c *Client, base, name string) *resource[T, In] {
	return &resource[T, In]{c: c, base: base, name: name}
}

func (r *resource[T, In]) op(action string) string {
	return r.name + "." + action
}

func (r *resource[T, In]) FindAll(ctx context.Context) ([]T, error) {
	return r.list(ctx, "FindAll", nil)
}

func (r *resource[T, In]) list(ctx context.Context, action string, query url.Values) ([]T, error) {
	var out []T
	err := r.c.do(ctx, r.op(action), request{
		method: http.MethodGet,
		path:   r.base + "/all",
		query:  query,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resource[T, In]) FindOne(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	err := r.c.do(ctx, r.op("FindOne"), request{
		method: http.MethodGet,
		path:   r.base + "/getById/" + id.String(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates input locally and fails with *ValidationError before any
// request when a required field is missing.
func (r *resource[T, In]) Create(ctx context.Context, input In) (*T, error) {
	op := r.op("Create")
	if err := validation.Struct(input); err != nil {
		return nil, newValidationError(op, err)
	}

	var out T
	err := r.c.do(ctx, op, request{
		method: http.MethodPost,
		path:   r.base + "/create",
		body:   input,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends only the fields set on input.
func (r *resource[T, In]) Update(ctx context.Context, id uuid.UUID, input In) (*T, error) {
	op := r.op("Update")
	if err := validation.Partial(input); err != nil {
		return nil, newValidationError(op, err)
	}

	var out T
	err := r.c.do(ctx, op, request{
		method: http.MethodPut,
		path:   r.base + "/update/" + id.String(),
		body:   input,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove deletes the record and returns it as it was.
func (r *resource[T, In]) Remove(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	err := r.c.do(ctx, r.op("Remove"), request{
		method: http.MethodDelete,
		path:   r.base + "/delete/" + id.String(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
