package services

import (
	"context"
	"strings"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/logger"
	"edujobs_backend/internal/models"
	"edujobs_backend/internal/repositories"
	"edujobs_backend/internal/services/dto"
	"edujobs_backend/pkg/apperrors"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) (*auth.TokenPair, error)
	DeleteAccount(ctx context.Context, userID string) error

	// Admin operations
	ListUsers(ctx context.Context, filter *dto.AdminUserFilter) (*dto.PaginatedUsers, error)
	UpdateRole(ctx context.Context, actor *models.User, targetID, role string) (*models.User, error)
	SetActive(ctx context.Context, actor *models.User, targetID string, active bool) (*models.User, error)
	DeleteUser(ctx context.Context, actor *models.User, targetID string) error
}

type UserServiceImpl struct {
	users  repositories.UserRepository
	hasher *auth.Hasher
	tokens *auth.TokenManager
	now    Clock
}

func NewUserService(users repositories.UserRepository, hasher *auth.Hasher, tokens *auth.TokenManager, now Clock) UserService {
	if now == nil {
		now = systemClock
	}
	return &UserServiceImpl{users: users, hasher: hasher, tokens: tokens, now: now}
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies the given fields. A new email must be verified again.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*models.User, error) {
	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		newEmail := strings.ToLower(strings.TrimSpace(*req.Email))
		if newEmail != current.Email {
			fields["email"] = newEmail
			fields["is_email_verified"] = false
		}
	}
	if len(fields) == 0 {
		return current, nil
	}

	if err := s.users.Update(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

// ChangePassword invalidates older sessions and returns a fresh token pair.
func (s *UserServiceImpl) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) (*auth.TokenPair, error) {
	user, err := s.users.FindByIDWithPassword(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, req.CurrentPassword) {
		return nil, apperrors.NewUnauthorizedError("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash, s.now()); err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.FromContext(ctx).Info("password changed", "user_id", userID)
	return pair, nil
}

func (s *UserServiceImpl) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("account deleted", "user_id", userID)
	return nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, filter *dto.AdminUserFilter) (*dto.PaginatedUsers, error) {
	users, total, err := s.users.FindWithFilter(ctx, repositories.UserFilter{
		Role:     filter.Role,
		IsActive: filter.IsActive,
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, err
	}
	page, size := pageBounds(filter.Page, filter.PageSize)
	return &dto.PaginatedUsers{Users: users, Total: total, Page: page, PageSize: size}, nil
}

// guardTarget stops admins acting on themselves and managers touching admins.
func (s *UserServiceImpl) guardTarget(ctx context.Context, actor *models.User, targetID string) (*models.User, error) {
	if actor.ID == targetID {
		return nil, apperrors.ErrCannotModifySelf
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == auth.RoleAdmin && actor.Role != auth.RoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return target, nil
}

func (s *UserServiceImpl) UpdateRole(ctx context.Context, actor *models.User, targetID, role string) (*models.User, error) {
	if !auth.IsValidRole(role) {
		return nil, apperrors.ErrInvalidUserRole
	}
	if role == auth.RoleAdmin && actor.Role != auth.RoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}
	target, err := s.guardTarget(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, target.ID, role); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("user role updated", "target_id", target.ID, "role", role)
	target.Role = role
	return target, nil
}

func (s *UserServiceImpl) SetActive(ctx context.Context, actor *models.User, targetID string, active bool) (*models.User, error) {
	target, err := s.guardTarget(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetActive(ctx, target.ID, active); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("user activation changed", "target_id", target.ID, "active", active)
	target.IsActive = active
	return target, nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, actor *models.User, targetID string) error {
	target, err := s.guardTarget(ctx, actor, targetID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, target.ID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("user deleted by admin", "target_id", target.ID)
	return nil
}
