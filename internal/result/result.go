// Package result carries a value together with the reason it may be a
// fallback, so callers can tell "no data" apart from "lookup failed".
package result

import "fmt"

type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindStorage
	KindProvider
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindProvider:
		return "provider"
	case KindValidation:
		return "validation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Result[T any] struct {
	Value T
	Kind  Kind
	Err   error
}

func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Kind: KindOK}
}

// Fallback records a failure while still carrying a usable value.
func Fallback[T any](kind Kind, err error, v T) Result[T] {
	return Result[T]{Value: v, Kind: kind, Err: err}
}

// From classifies err as kind, or returns OK when err is nil.
func From[T any](v T, err error, kind Kind) Result[T] {
	if err != nil {
		return Fallback(kind, err, v)
	}
	return OK(v)
}

func (r Result[T]) Degraded() bool {
	return r.Err != nil
}

func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Err
}
