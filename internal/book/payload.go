package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidPayload is matched by every error the Decode functions return.
var ErrInvalidPayload = errors.New("invalid payload")

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request body is not a well-formed
// payload for the operation.
type ValidationError struct {
	Reason string
	Fields []FieldError
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidPayload, e.Reason)
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return fmt.Sprintf("%s: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidPayload}
	}
	return []error{ErrInvalidPayload, e.Err}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("integral", isIntegral)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// isIntegral accepts numbers with no fractional part that fit in 32 bits, so
// 4 and 4.0 name the same book.
func isIntegral(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32
}

type createPayload struct {
	Title     *string `json:"title" validate:"required"`
	Author    *string `json:"author" validate:"required"`
	Available *bool   `json:"available"`
}

type updatePayload struct {
	ID        *float64 `json:"id" validate:"required,integral"`
	Title     *string  `json:"title"`
	Author    *string  `json:"author"`
	Available *bool    `json:"available"`
}

type deletePayload struct {
	ID *float64 `json:"id" validate:"required,integral"`
}

// DecodeCreate parses a create body. A caller-supplied id is ignored and
// available defaults to true.
func DecodeCreate(r io.Reader) (CreateInput, error) {
	var p createPayload
	if err := decodeObject(r, &p); err != nil {
		return CreateInput{}, err
	}
	in := CreateInput{
		Title:     *p.Title,
		Author:    *p.Author,
		Available: true,
	}
	if p.Available != nil {
		in.Available = *p.Available
	}
	return in, nil
}

// DecodeUpdate parses an update body. Only the fields present in the body
// are set on the result.
func DecodeUpdate(r io.Reader) (UpdateInput, error) {
	var p updatePayload
	if err := decodeObject(r, &p); err != nil {
		return UpdateInput{}, err
	}
	return UpdateInput{
		ID:        int(*p.ID),
		Title:     p.Title,
		Author:    p.Author,
		Available: p.Available,
	}, nil
}

// DecodeDelete parses a delete body and returns the target id.
func DecodeDelete(r io.Reader) (int, error) {
	var p deletePayload
	if err := decodeObject(r, &p); err != nil {
		return 0, err
	}
	return int(*p.ID), nil
}

// decodeObject reads exactly one JSON value into dst and runs struct
// validation on it.
func decodeObject(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return &ValidationError{Reason: "body must contain a single JSON object", Err: err}
	}
	if fields := validateStruct(dst); len(fields) > 0 {
		return &ValidationError{Reason: "missing or invalid fields", Fields: fields}
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return &ValidationError{Reason: "body is empty", Err: err}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return &ValidationError{
			Reason: "wrong field type",
			Fields: []FieldError{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("%s must be a %s", typeErr.Field, jsonKind(typeErr.Type)),
			}},
			Err: err,
		}
	case errors.As(err, &typeErr):
		return &ValidationError{Reason: "body must be a JSON object", Err: err}
	default:
		return &ValidationError{Reason: "malformed JSON", Err: err}
	}
}

func validateStruct(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fe.Field())
		case "integral":
			message = fmt.Sprintf("%s must be an integer", fe.Field())
		default:
			message = fmt.Sprintf("%s is invalid", fe.Field())
		}
		out = append(out, FieldError{Field: fe.Field(), Message: message})
	}
	return out
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	default:
		return t.Kind().String()
	}
}
