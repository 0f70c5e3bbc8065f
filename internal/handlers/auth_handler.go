package handlers

import (
	"net/http"

	"edujobs_backend/internal/middleware"
	"edujobs_backend/internal/services"
	"edujobs_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

const resetRequestedMessage = "If an account with that email exists, a password reset link has been sent"

type AuthHandler struct {
	*BaseHandler
	authService  services.AuthService
	cookies      CookieSettings
	exposeTokens bool
}

// NewAuthHandler builds the auth endpoints. exposeTokens echoes single-use
// secrets in responses and must stay off in production.
func NewAuthHandler(base *BaseHandler, authService services.AuthService, cookies CookieSettings, exposeTokens bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  base,
		authService:  authService,
		cookies:      cookies,
		exposeTokens: exposeTokens,
	}
}

// RegisterRoutes регистрирует все маршруты для аутентификации
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	auth := rg.Group("/auth")
	{
		limited := auth.Group("", guards.RateLimit)
		limited.POST("/register", h.Register)
		limited.POST("/login", h.Login)
		limited.POST("/verify-email", h.VerifyEmail)
		limited.POST("/request-password-reset", h.RequestPasswordReset)
		limited.POST("/reset-password", h.ResetPassword)

		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)

		protected := auth.Group("", guards.Authenticate)
		protected.GET("/me", h.Me)
		protected.POST("/resend-verification", guards.RateLimit, h.ResendVerification)
	}
}

func (h *AuthHandler) secret(s string) string {
	if h.exposeTokens {
		return s
	}
	return ""
}

// Register godoc
// @Summary Register a new account
// @Description Creates an account, sends the verification email and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account data"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Email already in use"
// @Failure 429 {object} apperrors.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.cookies.SetSession(c, res.Tokens)
	c.JSON(http.StatusCreated, dto.AuthResponse{
		User:              res.User,
		AccessToken:       res.Tokens.AccessToken,
		RefreshToken:      res.Tokens.RefreshToken,
		VerificationToken: h.secret(res.VerificationSecret),
	})
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse "Invalid email or password"
// @Failure 429 {object} apperrors.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.cookies.SetSession(c, pair)
	c.JSON(http.StatusOK, dto.AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh godoc
// @Summary Mint a new access token
// @Description Reads the refresh token from the body or the refreshToken cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if c.Request.ContentLength > 0 {
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
	}
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(middleware.RefreshTokenCookie)
	}

	user, access, _, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.cookies.SetAccess(c, access)
	c.JSON(http.StatusOK, dto.AuthResponse{User: user, AccessToken: access})
}

// Logout godoc
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully logged out"})
}

// VerifyEmail godoc
// @Summary Confirm an email address
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Email and token"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} apperrors.ErrorResponse "No token, expired or invalid"
// @Router /api/v1/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Email successfully verified"})
}

// ResendVerification godoc
// @Summary Send a new verification email
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} apperrors.ErrorResponse "Already verified"
// @Failure 502 {object} apperrors.ErrorResponse "Mail delivery failed"
// @Router /api/v1/auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	secret, err := h.authService.ResendVerification(c.Request.Context(), user)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message:           "Verification email sent",
		VerificationToken: h.secret(secret),
	})
}

// RequestPasswordReset godoc
// @Summary Request a password reset email
// @Description Always answers with the same message whether or not the account exists
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Email"
// @Success 200 {object} dto.MessageResponse
// @Router /api/v1/auth/request-password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	secret, err := h.authService.RequestPasswordReset(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message:    resetRequestedMessage,
		ResetToken: h.secret(secret),
	})
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetConfirm true "Email, token and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} apperrors.ErrorResponse "No token, expired or invalid"
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.PasswordResetConfirm
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.cookies.Clear(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been reset. Please log in again"})
}

// Me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}
