package binder

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for binding resolution (E2xx schema validation, E3xx binding).
const (
	// ErrCodeMissingGetter: abstract setter without an abstract getter.
	ErrCodeMissingGetter = "E201"
	// ErrCodeInconsistentType: getter return and setter parameter disagree.
	ErrCodeInconsistentType = "E202"
	// ErrCodeViewDelegateConflict: property implemented by view and delegate.
	ErrCodeViewDelegateConflict = "E301"
	// ErrCodeUnsupportedView: requested view absent from the bound schemas.
	ErrCodeUnsupportedView = "E302"
)

// SchemaValidationError reports an internally inconsistent property
// declaration found during resolution. The message text is stable; callers
// assert on it literally.
type SchemaValidationError struct {
	Code     string
	Property string
	Message  string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func newMissingGetterError(property string) *SchemaValidationError {
	return &SchemaValidationError{
		Code:     ErrCodeMissingGetter,
		Property: property,
		Message:  fmt.Sprintf("Managed property '%s' must both have an abstract getter as well as a setter.", property),
	}
}

func newInconsistentTypeError(property string) *SchemaValidationError {
	return &SchemaValidationError{
		Code:     ErrCodeInconsistentType,
		Property: property,
		Message:  fmt.Sprintf("Managed property '%s' must have a consistent type.", property),
	}
}

// BindingConflictError reports a property implemented by both the view and
// the delegate type. Carries the exact conflicting accessor signatures.
type BindingConflictError struct {
	Code              string
	Property          string
	ViewSignature     string
	DelegateSignature string
}

func (e *BindingConflictError) Error() string {
	return fmt.Sprintf("[%s] Method '%s' is both implemented by the view and the delegate type '%s'.",
		e.Code, e.ViewSignature, e.DelegateSignature)
}

func newConflictError(property, viewSig, delegateSig string) *BindingConflictError {
	return &BindingConflictError{
		Code:              ErrCodeViewDelegateConflict,
		Property:          property,
		ViewSignature:     viewSig,
		DelegateSignature: delegateSig,
	}
}

// UnsupportedViewError reports a request for a view that is not among the
// bound schemas nor the delegate's lineage.
type UnsupportedViewError struct {
	Code      string
	View      string
	Available []string
}

func (e *UnsupportedViewError) Error() string {
	return fmt.Sprintf("[%s] view %q is not supported by this binding (available: %s)",
		e.Code, e.View, strings.Join(e.Available, ", "))
}

// NewUnsupportedViewError constructs the error for materialization-time view
// checks.
func NewUnsupportedViewError(view string, available []string) *UnsupportedViewError {
	return &UnsupportedViewError{Code: ErrCodeUnsupportedView, View: view, Available: available}
}

// IsSchemaValidationError reports whether err is (or wraps) a schema
// validation failure.
func IsSchemaValidationError(err error) bool {
	var ve *SchemaValidationError
	return errors.As(err, &ve)
}

// IsBindingConflictError reports whether err is (or wraps) a view/delegate
// conflict.
func IsBindingConflictError(err error) bool {
	var ce *BindingConflictError
	return errors.As(err, &ce)
}

// IsUnsupportedViewError reports whether err is (or wraps) an unsupported
// view request.
func IsUnsupportedViewError(err error) bool {
	var ue *UnsupportedViewError
	return errors.As(err, &ue)
}
