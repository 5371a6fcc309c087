// Package validation wraps go-playground/validator for the input structs in
// internal/domain. The server and the client share it so a request rejected
// locally is the same request the API would reject.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

type FieldError struct {
	Field string
	Rule  string
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s", f.Field, describe(f.Rule))
}

// Errors lists every field that failed validation.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, f := range e {
		parts[i] = f.String()
	}
	return strings.Join(parts, "; ")
}

// Fields returns the names of the failing fields in order.
func (e Errors) Fields() []string {
	out := make([]string, len(e))
	for i, f := range e {
		out[i] = f.Field
	}
	return out
}

// Struct validates every rule of v. Required pointer fields must be non-nil.
func Struct(v any) error {
	return convert(instance().Struct(v))
}

// Partial validates only the pointer and slice fields of v that are set, which
// is what an update needs.
func Partial(v any) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("validation: expected struct, got %s", rv.Kind())
	}

	var fields []string
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rv.Field(i)
		switch f.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map:
			if !f.IsNil() {
				fields = append(fields, rt.Field(i).Name)
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return convert(instance().StructPartial(v, fields...))
}

func convert(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: ruleOf(fe)})
	}
	return out
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

func describe(rule string) string {
	tag, param, _ := strings.Cut(rule, "=")
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "oneof":
		return "must be one of " + param
	case "gte":
		return "must be >= " + param
	case "lte":
		return "must be <= " + param
	case "startswith":
		return "must start with " + param
	}
	return "failed " + rule
}
