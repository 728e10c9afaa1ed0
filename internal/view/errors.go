package view

import (
	"errors"
	"fmt"
)

// Usage error codes (E4xx).
const (
	// ErrCodeSelfSetter: a generated setter invoked from within the
	// instance's own view-method execution.
	ErrCodeSelfSetter = "E401"
	// ErrCodeNoBody: an implemented view method has no executable body
	// attached (declaration-only models).
	ErrCodeNoBody = "E402"
	// ErrCodeUnknownMember: no dispatch entry for the requested property or
	// method.
	ErrCodeUnknownMember = "E403"
)

// UsageError reports a runtime misuse of a materialized instance.
// Materialization introduces no other failure kind.
type UsageError struct {
	Code    string
	Member  string // property or method name
	Message string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func newSelfSetterError(property string) *UsageError {
	return &UsageError{
		Code:    ErrCodeSelfSetter,
		Member:  property,
		Message: fmt.Sprintf("calling setters of a managed type on itself is not allowed (property %q)", property),
	}
}

func newNoBodyError(method string) *UsageError {
	return &UsageError{
		Code:    ErrCodeNoBody,
		Member:  method,
		Message: fmt.Sprintf("view method %q has no executable body", method),
	}
}

func newUnknownMemberError(kind, name string) *UsageError {
	return &UsageError{
		Code:    ErrCodeUnknownMember,
		Member:  name,
		Message: fmt.Sprintf("no %s named %q is bound for this view", kind, name),
	}
}

// IsUsageError reports whether err is (or wraps) a UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}
