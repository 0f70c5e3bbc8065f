package auth

import (
	"edujobs_backend/internal/models"
	"edujobs_backend/pkg/apperrors"
)

// OwnerRef lists the owner-like references a resource may carry.
// The first non-empty one, in field order, decides ownership.
type OwnerRef struct {
	InstructorID string
	OwnerID      string
	UserID       string
}

func (o OwnerRef) owner() string {
	switch {
	case o.InstructorID != "":
		return o.InstructorID
	case o.OwnerID != "":
		return o.OwnerID
	default:
		return o.UserID
	}
}

// CheckOwnership lets admins and managers through; anyone else must own the resource.
func CheckOwnership(user *models.User, ref OwnerRef) error {
	if user == nil {
		return apperrors.ErrNoToken
	}
	if IsPrivileged(user.Role) {
		return nil
	}
	owner := ref.owner()
	if owner == "" || owner != user.ID {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}

// CheckEnrollment lets admins, managers and the course instructor through.
// Anyone else must be on the roster; enrolled is only called in that case.
func CheckEnrollment(user *models.User, course *models.Course, enrolled func() (bool, error)) error {
	if user == nil {
		return apperrors.ErrNoToken
	}
	if IsPrivileged(user.Role) || course.InstructorID == user.ID {
		return nil
	}
	ok, err := enrolled()
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrInsufficientPermissions.WithMessage("You must be enrolled in this course")
	}
	return nil
}
