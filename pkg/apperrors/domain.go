package apperrors

import (
	"net/http"
)

// --- Auth ---

// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrNoToken = New(
	CodeUnauthorized,
	"auth",
	"You are not logged in. No token provided",
	http.StatusUnauthorized,
)

var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Your session has expired. Please log in again",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid token. Please log in again",
	http.StatusUnauthorized,
)

var ErrAccountGone = New(
	CodeUnauthorized,
	"auth",
	"The user belonging to this token no longer exists",
	http.StatusUnauthorized,
)

var ErrAccountDisabled = New(
	CodeAccountDisabled,
	"auth",
	"Your account has been deactivated",
	http.StatusUnauthorized,
)

var ErrPasswordChanged = New(
	CodeStaleToken,
	"auth",
	"Password was changed recently. Please log in again",
	http.StatusUnauthorized,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"You do not have permission to perform this action",
	http.StatusForbidden,
)

var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidUserRole = New(
	CodeValidationFailed,
	"validation",
	"Role is not allowed for this operation",
	http.StatusBadRequest,
)

// --- Single-use tokens ---

var ErrNoVerificationToken = New(
	CodeInvalidToken,
	"verification",
	"No verification token found. Please request a new one",
	http.StatusBadRequest,
)

var ErrVerificationExpired = New(
	CodeTokenExpired,
	"verification",
	"Verification token has expired. Please request a new one",
	http.StatusBadRequest,
)

var ErrVerificationInvalid = New(
	CodeInvalidToken,
	"verification",
	"Invalid verification token",
	http.StatusBadRequest,
)

var ErrAlreadyVerified = New(
	CodeInvalidOperation,
	"verification",
	"Email is already verified",
	http.StatusBadRequest,
)

var ErrNoResetToken = New(
	CodeInvalidToken,
	"password_reset",
	"No password reset token found. Please request a new one",
	http.StatusBadRequest,
)

var ErrResetExpired = New(
	CodeTokenExpired,
	"password_reset",
	"Password reset token has expired. Please request a new one",
	http.StatusBadRequest,
)

var ErrResetInvalid = New(
	CodeInvalidToken,
	"password_reset",
	"Invalid password reset token",
	http.StatusBadRequest,
)

// --- Courses ---

var ErrAlreadyEnrolled = New(
	CodeConflict,
	"course",
	"You are already enrolled in this course",
	http.StatusConflict,
)

var ErrCourseFull = New(
	CodeLimitExceeded,
	"course",
	"Course is full",
	http.StatusConflict,
)

var ErrNotEnrolled = New(
	CodeInvalidOperation,
	"course",
	"You are not enrolled in this course",
	http.StatusBadRequest,
)

var ErrCourseNotPublished = New(
	CodeInvalidOperation,
	"course",
	"Course is not open for enrollment",
	http.StatusBadRequest,
)
