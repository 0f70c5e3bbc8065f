package repositories

import (
	"errors"
	"strings"

	"edujobs_backend/pkg/apperrors"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = apperrors.NewNotFoundError("user", "User not found")
	ErrUserAlreadyExists  = apperrors.ErrEmailAlreadyExists
	ErrCourseNotFound     = apperrors.NewNotFoundError("course", "Course not found")
	ErrEnrollmentNotFound = apperrors.NewNotFoundError("course", "Enrollment not found")
	ErrNotFound           = apperrors.NewNotFoundError("resource", "Resource not found")
	ErrConflict           = apperrors.NewConflictError("resource", "Resource already exists")
)

// translateError maps storage errors onto the application taxonomy.
// notFound replaces the generic not-found error when given.
func translateError(err error, notFound *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFound != nil {
			return notFound
		}
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return apperrors.Wrap(err, ErrConflict.Code, ErrConflict.Domain, ErrConflict.Message, ErrConflict.HTTPCode)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.Wrap(err, apperrors.CodeValidationFailed, "resource", "Referenced resource does not exist", 400)
	}
	return apperrors.Wrap(err, apperrors.CodeDatabaseError, "database", "Database error", 500)
}

// isUniqueViolation catches drivers that do not translate their errors.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// isConflict reports whether a translated error is a uniqueness conflict.
func isConflict(err error) bool {
	appErr, ok := apperrors.AsAppError(err)
	return ok && appErr.Code == apperrors.CodeConflict
}
