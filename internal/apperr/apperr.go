// Package apperr is the error taxonomy shared by the service and transport
// layers. Services return *Error values; the RPC boundary maps Kind to a
// status code and never inspects messages.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Conflict
	Unauthorized
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	}
	return "internal"
}

// Reason narrows a Conflict down for callers that care why.
type Reason string

const (
	ReasonDuplicate     Reason = "duplicate"
	ReasonHasDependents Reason = "has_dependents"
)

type Error struct {
	Kind    Kind
	Reason  Reason
	Entity  string
	ID      int64
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, apperr.ErrNotFound) works for any entity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Reason == "" || t.Reason == e.Reason) && t.Entity == "" && t.Message == ""
}

var (
	ErrValidation    = &Error{Kind: Validation}
	ErrNotFound      = &Error{Kind: NotFound}
	ErrConflict      = &Error{Kind: Conflict}
	ErrDuplicate     = &Error{Kind: Conflict, Reason: ReasonDuplicate}
	ErrHasDependents = &Error{Kind: Conflict, Reason: ReasonHasDependents}
	ErrUnauthorized  = &Error{Kind: Unauthorized}
	ErrForbidden     = &Error{Kind: Forbidden}
)

// NotFoundf reports a missing entity by kind and id, e.g. "patient with id 99999 not found".
func NotFoundf(entity string, id int64) *Error {
	return &Error{
		Kind:    NotFound,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf("%s with id %d not found", entity, id),
	}
}

func Duplicate(entity, field, value string) *Error {
	return &Error{
		Kind:    Conflict,
		Reason:  ReasonDuplicate,
		Entity:  entity,
		Message: fmt.Sprintf("%s with %s %q already exists", entity, field, value),
	}
}

func HasDependents(entity string, id int64, dependents string) *Error {
	return &Error{
		Kind:    Conflict,
		Reason:  ReasonHasDependents,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf("cannot delete %s %d: it still has %s", entity, id, dependents),
	}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

func Invalidf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func Unauthorizedf(format string, args ...any) *Error {
	return &Error{Kind: Unauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: Forbidden, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns Internal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// ReasonOf returns the conflict reason, or "" when there is none.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
