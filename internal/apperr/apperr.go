// Package apperr defines the typed errors returned by the service
// layer. Handlers inspect them with errors.As and map each kind to an
// HTTP status; nothing in this package knows about transport.
package apperr

import "fmt"

// NotFoundError: the referenced entity id is unknown.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidTransitionError: a state machine violation. From and To are
// kept so the caller can reconcile its view of the current state.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}

func InvalidTransition(entity, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

// PreconditionFailedError: the operation was attempted on an entity in
// the wrong state (for example deal creation from a non-accepted
// proposal).
type PreconditionFailedError struct {
	Msg string
}

func (e *PreconditionFailedError) Error() string { return e.Msg }

func PreconditionFailed(format string, args ...interface{}) *PreconditionFailedError {
	return &PreconditionFailedError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError: malformed input (out-of-range stars, oversized
// review, invalid role pairing).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DuplicateConflictError: a uniqueness constraint was hit, e.g. a
// second rating for a deal. Distinct from ValidationError so clients
// can stop retrying instead of fixing input.
type DuplicateConflictError struct {
	Entity string
	Key    string
}

func (e *DuplicateConflictError) Error() string {
	return fmt.Sprintf("%s already exists for %s", e.Entity, e.Key)
}

func DuplicateConflict(entity, key string) *DuplicateConflictError {
	return &DuplicateConflictError{Entity: entity, Key: key}
}
