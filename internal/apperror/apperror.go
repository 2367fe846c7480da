// Package apperror defines the error kinds shared by the domain packages and
// surfaced at the HTTP boundary.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindNotFound             Kind = "not_found"
	KindValidation           Kind = "validation_error"
	KindInvalidState         Kind = "invalid_state"
	KindSubscriptionInactive Kind = "subscription_inactive"
	KindExternalService      Kind = "external_service_failure"
	KindConflict             Kind = "conflict"
	KindRateLimited          Kind = "rate_limited"
	KindInternal             Kind = "internal_error"
)

// Error is a classified domain error. Code identifies the specific failure
// inside its kind and Message is safe to show to end users.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
	State   string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation builds a validation error bound to a request field.
func Validation(field, code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Field: field}
}

// InvalidState reports an illegal transition from the given current state.
func InvalidState(current, message string) *Error {
	return &Error{Kind: KindInvalidState, Code: "invalid_state", Message: message, State: current}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Code
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.State != "" {
		msg = fmt.Sprintf("%s (state=%s)", msg, e.State)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error of the same kind. An empty target code matches
// every error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithState returns a copy carrying the entity's current state.
func (e *Error) WithState(state string) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.State = state
	return &cp
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Err = err
	return &cp
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}
	return KindInternal
}

// StateOf returns the current state carried by an invalid state error.
func StateOf(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil && appErr.State != "" {
		return appErr.State, true
	}
	return "", false
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}
	return nil, false
}

// Common sentinels shared across packages.
var (
	ErrUnauthorized = New(KindUnauthorized, "unauthorized", "Vous devez être connecté pour effectuer cette action")
	ErrForbidden    = New(KindForbidden, "forbidden", "Accès refusé")
	ErrNotFound     = New(KindNotFound, "", "Ressource introuvable")
	ErrInvalidState = New(KindInvalidState, "invalid_state", "Transition de statut non autorisée")
	ErrValidation   = New(KindValidation, "", "Données invalides")
)
