package dto

import (
	"edujobs_backend/internal/models"
)

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,strong-password,max=72"`
	Role      string `json:"role" validate:"omitempty,is-user-role"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is optional; the refreshToken cookie is used when the body is empty.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// VerifyEmailRequest - запрос подтверждения email
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// PasswordResetRequest - запрос сброса пароля
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirm - подтверждение сброса пароля
type PasswordResetConfirm struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strong-password,max=72"`
}

// AuthResponse is returned by register, login and refresh.
// VerificationToken is only set when single-use secrets are exposed.
type AuthResponse struct {
	User              *models.User `json:"user"`
	AccessToken       string       `json:"token"`
	RefreshToken      string       `json:"refreshToken,omitempty"`
	VerificationToken string       `json:"verificationToken,omitempty"`
}

// MessageResponse carries a human-readable outcome and, outside production, a secret.
type MessageResponse struct {
	Message           string `json:"message"`
	ResetToken        string `json:"resetToken,omitempty"`
	VerificationToken string `json:"verificationToken,omitempty"`
}
