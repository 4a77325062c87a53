package scheduling

import (
	"errors"
	"fmt"
)

// Kind identifies the validation failure class. The set is closed:
// callers can rely on exhaustive switches over these values.
type Kind string

const (
	KindInvalidEnumValue           Kind = "INVALID_ENUM_VALUE"
	KindInvalidTimeGrid            Kind = "INVALID_TIME_GRID"
	KindInvalidTimeRange           Kind = "INVALID_TIME_RANGE"
	KindNotFound                   Kind = "NOT_FOUND"
	KindOverlapConflict            Kind = "OVERLAP_CONFLICT"
	KindInactiveOrUnknownReference Kind = "INACTIVE_OR_UNKNOWN_REFERENCE"
	KindMissingConditionalField    Kind = "MISSING_CONDITIONAL_FIELD"
	KindSubjectBranchMismatch      Kind = "SUBJECT_BRANCH_MISMATCH"
)

// ValidationError is a client-input error: surfaced directly to the
// caller with a human-readable message, never retried or recovered.
type ValidationError struct {
	Kind    Kind
	Entity  string // set for KindNotFound, names the missing entity kind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Errorf builds a ValidationError of the given kind with a formatted
// message.
func Errorf(kind Kind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NOT_FOUND error for the named entity kind.
func NotFound(entity string) *ValidationError {
	return &ValidationError{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s not found", entity),
	}
}

// KindOf returns the validation kind of err, or "" if err is not a
// ValidationError (e.g. a storage failure).
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND validation error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
