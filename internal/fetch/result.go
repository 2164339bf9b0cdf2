package fetch

import (
	"errors"
	"fmt"
)

// Reason classifies why an upstream lookup did not produce a value.
type Reason int

const (
	// ReasonConnection means the request never got a response (dns, refused, timeout...).
	ReasonConnection Reason = iota + 1
	// ReasonMalformed means a response came back but did not have the expected shape.
	ReasonMalformed
	// ReasonNotFound means the upstream answered that the requested entity does not exist.
	ReasonNotFound
	// ReasonUpstream means the upstream answered with a non-2xx status other than 404.
	ReasonUpstream
)

var (
	ErrConnection = errors.New("connection error")
	ErrMalformed  = errors.New("malformed response")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream error")
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonConnection:
		return ErrConnection
	case ReasonMalformed:
		return ErrMalformed
	case ReasonNotFound:
		return ErrNotFound
	case ReasonUpstream:
		return ErrUpstream
	}
	return errors.New("unknown failure")
}

func (r Reason) String() string {
	return r.sentinel().Error()
}

// Failure is the failure variant of a Result.
type Failure struct {
	Reason Reason
	// Detail is a human readable explanation, usually what the upstream said.
	Detail string
	// Cause is the underlying error, if any.
	Cause error
}

func (f *Failure) Error() string {
	msg := f.Reason.String()
	if f.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, f.Detail)
	}
	if f.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, f.Cause.Error())
	}
	return msg
}

// Unwrap makes errors.Is match both the reason sentinel and the cause.
func (f *Failure) Unwrap() []error {
	if f.Cause == nil {
		return []error{f.Reason.sentinel()}
	}
	return []error{f.Reason.sentinel(), f.Cause}
}

// Fail creates a Failure.
func Fail(reason Reason, detail string, cause error) *Failure {
	return &Failure{Reason: reason, Detail: detail, Cause: cause}
}

// Result is either a value or a Failure, never both.
type Result[T any] struct {
	value   T
	failure *Failure
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Err[T any](failure *Failure) Result[T] {
	if failure == nil {
		panic("fetch.Err called with a nil failure")
	}
	return Result[T]{failure: failure}
}

func (r Result[T]) IsOk() bool {
	return r.failure == nil
}

// Failure returns the failure, or nil if the result holds a value.
func (r Result[T]) Failure() *Failure {
	return r.failure
}

// Unwrap returns the value, or the zero value and the failure as an error.
func (r Result[T]) Unwrap() (T, error) {
	if r.failure != nil {
		var zero T
		return zero, r.failure
	}
	return r.value, nil
}
