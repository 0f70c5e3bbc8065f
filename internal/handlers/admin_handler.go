package handlers

import (
	"net/http"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/middleware"
	"edujobs_backend/internal/services"
	"edujobs_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AdminHandler manages accounts on behalf of admins and managers.
type AdminHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewAdminHandler(base *BaseHandler, userService services.UserService) *AdminHandler {
	return &AdminHandler{BaseHandler: base, userService: userService}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	admin := rg.Group("/admin", guards.Authenticate, middleware.RequirePermission(guards.Permissions, auth.PermManageUsers))
	{
		admin.GET("/users", h.ListUsers)
		admin.GET("/users/:id", h.GetUser)
		admin.PUT("/users/:id/role", h.UpdateRole)
		admin.PUT("/users/:id/status", h.SetActive)
		admin.DELETE("/users/:id", h.DeleteUser)
	}
}

// ListUsers godoc
// @Summary List accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role"
// @Param isActive query bool false "Active flag"
// @Param search query string false "Name or email fragment"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.PaginatedUsers
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var filter dto.AdminUserFilter
	if !h.BindAndValidate_Query(c, &filter) {
		return
	}
	page, err := h.userService.ListUsers(c.Request.Context(), &filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetUser godoc
// @Summary Get an account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateRole godoc
// @Summary Change an account's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.UpdateRoleRequest true "New role"
// @Success 200 {object} models.User
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/admin/users/{id}/role [put]
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateRole(c.Request.Context(), actor, c.Param("id"), req.Role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetActive godoc
// @Summary Activate or deactivate an account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.SetActiveRequest true "Active flag"
// @Success 200 {object} models.User
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/admin/users/{id}/status [put]
func (h *AdminHandler) SetActive(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	user, err := h.userService.SetActive(c.Request.Context(), actor, c.Param("id"), *req.IsActive)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete an account
// @Tags admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
