package client

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure
type Kind int

const (
	// KindFetch covers transport failures, unexpected statuses and malformed bodies
	KindFetch Kind = iota
	// KindUnauthorized is a 401 from the backend
	KindUnauthorized
	// KindNotFound is a 404 from the backend
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "fetch"
	}
}

// Error is returned by every Client method. Message is a fixed, human
// readable label for the operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so callers can write
// errors.Is(err, client.ErrUnauthorized).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinel errors for use with errors.Is
var (
	ErrFetch        = &Error{Kind: KindFetch, Message: "fetch failed"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "authorization error"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
)

// IsUnauthorized reports whether err is a backend 401
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
