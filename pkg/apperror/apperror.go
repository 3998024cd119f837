package apperror

import "fmt"

// ValidationError indicates malformed or unacceptable input (length
// constraints, missing fields, tenant mismatch).
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// InvalidStateError indicates an operation rejected because of the current
// request status. Status carries the status observed when the operation was
// rejected so callers can render it.
type InvalidStateError struct {
	Status string
	Detail string
}

func (e *InvalidStateError) Error() string { return e.Detail }

// NotFoundError covers both genuinely absent entities and entities outside
// the caller's visibility scope. Out-of-scope lookups deliberately report
// not-found rather than forbidden so their existence is not leaked.
type NotFoundError struct {
	Detail string
}

func (e *NotFoundError) Error() string { return e.Detail }

// AuthError indicates an invalid, expired or unresolvable credential.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string { return e.Detail }

func Validation(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

func InvalidState(status, format string, args ...any) error {
	return &InvalidStateError{Status: status, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &NotFoundError{Detail: fmt.Sprintf(format, args...)}
}

func Auth(format string, args ...any) error {
	return &AuthError{Detail: fmt.Sprintf(format, args...)}
}
