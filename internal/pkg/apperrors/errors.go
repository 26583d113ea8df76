package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrValidationFailed      = errors.New("validation failed")
	ErrBadRequest            = errors.New("bad request")
	ErrPermissionDenied      = errors.New("permission denied")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidPassword    = errors.New("invalid password format")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidFormat      = errors.New("invalid token format")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailNotVerified   = errors.New("email not verified")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Role errors
var (
	// ErrRoleAlreadyAssigned guards the single-row-per-identity invariant
	// on the user_roles table.
	ErrRoleAlreadyAssigned = errors.New("role already assigned")
	ErrInvalidRole         = errors.New("invalid role")
	ErrNoRoleAssigned      = errors.New("no role assigned")
)

// Assignment errors
var (
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// Submission errors
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrFileNotPDF         = errors.New("file must be a PDF")
	ErrFileTooLarge       = errors.New("file exceeds the maximum allowed size")
)

// Email verification errors
var (
	ErrInvalidEmailToken    = errors.New("invalid or expired email verification token")
	ErrEmailAlreadyVerified = errors.New("email already verified")
)
