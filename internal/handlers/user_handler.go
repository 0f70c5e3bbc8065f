package handlers

import (
	"net/http"

	"edujobs_backend/internal/services"
	"edujobs_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService   services.UserService
	courseService services.CourseService
	cookies       CookieSettings
}

func NewUserHandler(base *BaseHandler, userService services.UserService, courseService services.CourseService, cookies CookieSettings) *UserHandler {
	return &UserHandler{
		BaseHandler:   base,
		userService:   userService,
		courseService: courseService,
		cookies:       cookies,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	me := rg.Group("/users/me", guards.Authenticate)
	{
		me.GET("", h.GetProfile)
		me.PATCH("", h.UpdateProfile)
		me.DELETE("", h.DeleteAccount)
		me.PUT("/password", h.ChangePassword)
		me.GET("/enrollments", h.MyEnrollments)
		me.GET("/courses", h.MyCourses)
	}
}

// GetProfile godoc
// @Summary Own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	profile, err := h.userService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Description Changing the email clears its verified flag
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 409 {object} apperrors.ErrorResponse "Email already in use"
// @Router /api/v1/users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	updated, err := h.userService.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ChangePassword godoc
// @Summary Change own password
// @Description Older sessions stop working; a fresh session is returned
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /api/v1/users/me/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	pair, err := h.userService.ChangePassword(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.cookies.SetSession(c, pair)
	c.JSON(http.StatusOK, dto.AuthResponse{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// DeleteAccount godoc
// @Summary Delete own account
// @Tags users
// @Security BearerAuth
// @Success 204
// @Router /api/v1/users/me [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.userService.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.cookies.Clear(c)
	c.Status(http.StatusNoContent)
}

// MyEnrollments godoc
// @Summary Courses the caller is enrolled in
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Enrollment
// @Router /api/v1/users/me/enrollments [get]
func (h *UserHandler) MyEnrollments(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	enrollments, err := h.courseService.MyEnrollments(c.Request.Context(), user)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// MyCourses godoc
// @Summary Courses the caller teaches, drafts included
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Course
// @Router /api/v1/users/me/courses [get]
func (h *UserHandler) MyCourses(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	courses, err := h.courseService.ListTaught(c.Request.Context(), user)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}
