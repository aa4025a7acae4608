package service

// ErrorKind classifies auth failures for transport mapping. Every error the
// orchestrator returns to a caller is one of these; internal failures inside
// verification paths are normalized before they can leak detail.
type ErrorKind int

const (
	// KindValidation marks malformed input rejected before any store access
	KindValidation ErrorKind = iota
	// KindConflict marks a duplicate unique key at registration
	KindConflict
	// KindUnauthorized marks bad credentials or a bad/expired/revoked token
	KindUnauthorized
	// KindForbidden marks a lockout rejection
	KindForbidden
)

// Error is a terminal auth failure with a caller-safe message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError creates a validation failure
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewConflictError creates a conflict failure. Messages passed here must stay
// generic: they must not reveal which field collided.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewUnauthorizedError creates an unauthorized failure
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewForbiddenError creates a forbidden failure
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}
