package apperrors

import "errors"

// Kind classifies a failure for callers. Every user-visible error carries one.
type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindNotFound       Kind = "NOT_FOUND"
	KindState          Kind = "STATE"
	KindIntegrity      Kind = "INTEGRITY"
	KindAuthentication Kind = "AUTHENTICATION"
	KindPermission     Kind = "PERMISSION"
	KindInternal       Kind = "INTERNAL"
)

// Sentinel errors, one per kind, matched with errors.Is.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrPermissionDenied   = errors.New("permission denied")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Entity lookups
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrFacultyNotFound = errors.New("faculty not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrProfileNotFound = errors.New("profile not found")
)

var kindBySentinel = []struct {
	err  error
	kind Kind
}{
	{ErrValidationFailed, KindValidation},
	{ErrResourceNotFound, KindNotFound},
	{ErrAccountNotFound, KindNotFound},
	{ErrStudentNotFound, KindNotFound},
	{ErrFacultyNotFound, KindNotFound},
	{ErrSubjectNotFound, KindNotFound},
	{ErrProfileNotFound, KindNotFound},
	{ErrInvalidState, KindState},
	{ErrIntegrityViolation, KindIntegrity},
	{ErrPermissionDenied, KindPermission},
	{ErrInvalidCredentials, KindAuthentication},
	{ErrTokenExpired, KindAuthentication},
	{ErrTokenInvalid, KindAuthentication},
	{ErrTokenNotFound, KindAuthentication},
	{ErrTokenRevoked, KindAuthentication},
	{ErrAccountDisabled, KindAuthentication},
}

// KindOf reports the kind of err. Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ce *CustomError
	if errors.As(err, &ce) && ce.Kind != "" {
		return ce.Kind
	}
	for _, s := range kindBySentinel {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindInternal
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Kind    Kind
	Err     error
	Message string
	Field   string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithField names the offending input field
func (e *CustomError) WithField(field string) *CustomError {
	e.Field = field
	return e
}

func newError(kind Kind, sentinel error, message string) *CustomError {
	return &CustomError{Kind: kind, Err: sentinel, Message: message}
}

// NewValidationError signals a violated constraint detected before mutation.
func NewValidationError(message string) *CustomError {
	return newError(KindValidation, ErrValidationFailed, message)
}

// NewFieldValidationError is a validation error attributed to one input field.
func NewFieldValidationError(field, message string) *CustomError {
	return NewValidationError(message).WithField(field)
}

// NewNotFoundError wraps one of the lookup sentinels (or ErrResourceNotFound).
func NewNotFoundError(sentinel error, message string) *CustomError {
	if sentinel == nil {
		sentinel = ErrResourceNotFound
	}
	return newError(KindNotFound, sentinel, message)
}

// NewStateError signals an invalid role or assignment transition.
func NewStateError(message string) *CustomError {
	return newError(KindState, ErrInvalidState, message)
}

// NewIntegrityError signals a unique or foreign key collision found at commit time.
func NewIntegrityError(message string, cause error) *CustomError {
	e := newError(KindIntegrity, ErrIntegrityViolation, message)
	if cause != nil {
		e.Details = map[string]interface{}{"cause": cause.Error()}
	}
	return e
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) *CustomError {
	return newError(KindPermission, ErrPermissionDenied, message)
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
