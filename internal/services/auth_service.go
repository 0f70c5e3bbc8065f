package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/email"
	"edujobs_backend/internal/logger"
	"edujobs_backend/internal/models"
	"edujobs_backend/internal/repositories"
	"edujobs_backend/internal/services/dto"
	"edujobs_backend/pkg/apperrors"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*models.User, *auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.User, string, time.Time, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	ResendVerification(ctx context.Context, user *models.User) (string, error)
	RequestPasswordReset(ctx context.Context, req *dto.PasswordResetRequest) (string, error)
	ResetPassword(ctx context.Context, req *dto.PasswordResetConfirm) error
}

// RegisterResult carries what the handler needs to answer a registration.
type RegisterResult struct {
	User               *models.User
	Tokens             *auth.TokenPair
	VerificationSecret string
}

type AuthOptions struct {
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

type AuthServiceImpl struct {
	users    repositories.UserRepository
	tokens   *auth.TokenManager
	hasher   *auth.Hasher
	notifier Notifier
	opts     AuthOptions
	now      Clock
}

func NewAuthService(
	users repositories.UserRepository,
	tokens *auth.TokenManager,
	hasher *auth.Hasher,
	notifier Notifier,
	opts AuthOptions,
	now Clock,
) AuthService {
	if now == nil {
		now = systemClock
	}
	return &AuthServiceImpl{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		opts:     opts,
		now:      now,
	}
}

func recipientOf(u *models.User) email.Recipient {
	return email.Recipient{Email: u.Email, FirstName: u.FirstName, Role: u.Role}
}

// Register - регистрация нового пользователя
func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*RegisterResult, error) {
	role := req.Role
	if role == "" {
		role = auth.RoleStudent
	}
	if !auth.IsSelfAssignable(role) {
		return nil, apperrors.ErrInvalidUserRole
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.now()
	verification, err := auth.IssueSingleUseToken(s.opts.VerificationTTL, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		FirstName:                strings.TrimSpace(req.FirstName),
		LastName:                 strings.TrimSpace(req.LastName),
		Email:                    req.Email,
		PasswordHash:             hash,
		Role:                     role,
		IsActive:                 true,
		EmailVerificationToken:   verification.SecretHash,
		EmailVerificationExpires: &verification.ExpiresAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info("user registered", "user_id", user.ID, "role", user.Role)

	// Registration stands even when mail delivery fails; the user can ask for a resend.
	if err := s.notifier.SendVerification(ctx, recipientOf(user), verification.Secret, s.opts.VerificationTTL); err != nil {
		log.Warn("failed to send verification email", "user_id", user.ID, logger.Err(err))
	}
	if err := s.notifier.SendWelcome(ctx, recipientOf(user)); err != nil {
		log.Warn("failed to send welcome email", "user_id", user.ID, logger.Err(err))
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user.PasswordHash = ""
	return &RegisterResult{User: user, Tokens: pair, VerificationSecret: verification.Secret}, nil
}

// Login - аутентификация пользователя
// Unknown email and wrong password produce the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, *auth.TokenPair, error) {
	user, err := s.users.FindByEmailWithPassword(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.hasher.CompareDummy(req.Password)
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, err
	}
	user.LastLogin = &now

	pair, err := s.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	logger.FromContext(ctx).Info("user logged in", "user_id", user.ID)
	user.PasswordHash = ""
	return user, pair, nil
}

// Authenticate resolves a session token to a live account.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.VerifySessionToken(token)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return s.accountFor(ctx, claims)
}

// Refresh mints a new session token from a refresh token.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*models.User, string, time.Time, error) {
	if refreshToken == "" {
		return nil, "", time.Time{}, apperrors.ErrNoToken
	}
	claims, err := s.tokens.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, "", time.Time{}, mapTokenError(err)
	}
	user, err := s.accountFor(ctx, claims)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	access, exp, err := s.tokens.Issue(user.ID, user.Role, auth.TokenTypeAccess)
	if err != nil {
		return nil, "", time.Time{}, apperrors.InternalError(err)
	}
	return user, access, exp, nil
}

// accountFor applies the account checks shared by every token-bearing request.
func (s *AuthServiceImpl) accountFor(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	user, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrAccountGone
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	if user.PasswordChangedAfter(claims.IssuedAt) {
		return nil, apperrors.ErrPasswordChanged
	}
	return user, nil
}

func mapTokenError(err error) error {
	if errors.Is(err, auth.ErrTokenExpired) {
		return apperrors.ErrTokenExpired
	}
	return apperrors.ErrInvalidToken
}

// VerifyEmail checks presence, expiry and the hash, in that order.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNoVerificationToken
		}
		return err
	}

	if user.EmailVerificationToken == "" || user.EmailVerificationExpires == nil {
		return apperrors.ErrNoVerificationToken
	}
	if auth.IsExpired(*user.EmailVerificationExpires, s.now()) {
		return apperrors.ErrVerificationExpired
	}
	if !auth.VerifySingleUseToken(req.Token, user.EmailVerificationToken) {
		return apperrors.ErrVerificationInvalid
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("email verified", "user_id", user.ID)
	return nil
}

// ResendVerification issues a fresh verification token, replacing the stored one.
func (s *AuthServiceImpl) ResendVerification(ctx context.Context, user *models.User) (string, error) {
	if user.IsEmailVerified {
		return "", apperrors.ErrAlreadyVerified
	}
	token, err := auth.IssueSingleUseToken(s.opts.VerificationTTL, s.now())
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, token.SecretHash, token.ExpiresAt); err != nil {
		return "", err
	}
	if err := s.notifier.SendVerification(ctx, recipientOf(user), token.Secret, s.opts.VerificationTTL); err != nil {
		return "", apperrors.ExternalServiceError(err, "email", "Failed to send verification email")
	}
	return token.Secret, nil
}

// RequestPasswordReset stores a reset hash and emails the secret.
// Unknown or deactivated accounts get no error and no token.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, req *dto.PasswordResetRequest) (string, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	if !user.IsActive {
		return "", nil
	}

	token, err := auth.IssueSingleUseToken(s.opts.ResetTTL, s.now())
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, token.SecretHash, token.ExpiresAt); err != nil {
		return "", err
	}
	if err := s.notifier.SendPasswordReset(ctx, recipientOf(user), token.Secret, s.opts.ResetTTL); err != nil {
		return "", apperrors.ExternalServiceError(err, "email", "Failed to send password reset email")
	}
	logger.FromContext(ctx).Info("password reset requested", "user_id", user.ID)
	return token.Secret, nil
}

// ResetPassword checks presence, expiry and the hash, then replaces the password.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, req *dto.PasswordResetConfirm) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNoResetToken
		}
		return err
	}

	if user.PasswordResetToken == "" || user.PasswordResetExpires == nil {
		return apperrors.ErrNoResetToken
	}
	now := s.now()
	if auth.IsExpired(*user.PasswordResetExpires, now) {
		return apperrors.ErrResetExpired
	}
	if !auth.VerifySingleUseToken(req.Token, user.PasswordResetToken) {
		return apperrors.ErrResetInvalid
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, now); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("password reset", "user_id", user.ID)
	return nil
}
