package core

import "errors"

// Kind classifies a failed Result so outer layers can pick a status code
// without inspecting backend-specific errors.
type Kind string

const (
	KindNone         Kind = ""
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnconfigured Kind = "unconfigured"
	KindUnauthorized Kind = "unauthorized"
	KindBackend      Kind = "backend"
)

// Result is the uniform {success, data|error} shape returned by the ledger
// service and the third-party integrations.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    Kind   `json:"-"`
}

// OK wraps a successful payload.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail converts err into a failed result with a human-readable message.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("an unexpected error occurred")
	}
	return Result[T]{Error: err.Error(), Kind: KindOf(err)}
}

// Unwrap returns the payload and an error carrying the failure message.
func (r Result[T]) Unwrap() (T, error) {
	if r.Success {
		return r.Data, nil
	}
	return r.Data, &ResultError{Message: r.Error, Kind: r.Kind}
}

// ResultError re-exposes a failed Result as an error value.
type ResultError struct {
	Message string
	Kind    Kind
}

func (e *ResultError) Error() string { return e.Message }

// KindOf maps the sentinel errors onto a Kind. Unknown errors are backend errors.
func KindOf(err error) Kind {
	var re *ResultError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &re):
		return re.Kind
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnconfigured):
		return KindUnconfigured
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindBackend
	}
}
