package handlers

import (
	"net/http"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/middleware"
	"edujobs_backend/internal/services"
	"edujobs_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	*BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(base *BaseHandler, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{BaseHandler: base, courseService: courseService}
}

func (h *CourseHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	courses := rg.Group("/courses")
	{
		courses.GET("", h.List)
		courses.GET("/:id", guards.OptionalAuth, h.Get)

		authed := courses.Group("", guards.Authenticate)
		manage := middleware.RequireAnyPermission(guards.Permissions, auth.PermManageCourses, auth.PermManageOwnCourses)

		authed.POST("", manage, h.Create)
		authed.PATCH("/:id", manage, h.Update)
		authed.DELETE("/:id", manage, h.Delete)
		authed.POST("/:id/publish", manage, h.Publish)
		authed.POST("/:id/unpublish", manage, h.Unpublish)
		authed.GET("/:id/roster", manage, h.Roster)

		learner := middleware.RequireRoles(auth.LearnerRoles...)
		authed.POST("/:id/enroll", learner, h.Enroll)
		authed.DELETE("/:id/enroll", learner, h.Unenroll)
		authed.PUT("/:id/progress", learner, h.UpdateProgress)
	}
}

// List godoc
// @Summary Published courses
// @Tags courses
// @Produce json
// @Param category query string false "Category"
// @Param level query string false "Level"
// @Param search query string false "Title fragment"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.PaginatedCourses
// @Router /api/v1/courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	var filter dto.CourseFilter
	if !h.BindAndValidate_Query(c, &filter) {
		return
	}
	page, err := h.courseService.List(c.Request.Context(), &filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get godoc
// @Summary Get a course
// @Description Drafts are visible only to their instructor, admins and managers
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	viewer, _ := middleware.Resolve(c)
	course, err := h.courseService.Get(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// Create godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// Update godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} models.Course
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/courses/{id} [patch]
func (h *CourseHandler) Update(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	course, err := h.courseService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a course
// @Tags courses
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Publish godoc
// @Summary Publish a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.Course
// @Router /api/v1/courses/{id}/publish [post]
func (h *CourseHandler) Publish(c *gin.Context) {
	h.setPublished(c, true)
}

// Unpublish godoc
// @Summary Return a course to draft
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.Course
// @Router /api/v1/courses/{id}/unpublish [post]
func (h *CourseHandler) Unpublish(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *CourseHandler) setPublished(c *gin.Context, published bool) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	course, err := h.courseService.SetPublished(c.Request.Context(), actor, c.Param("id"), published)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 201 {object} models.Enrollment
// @Failure 403 {object} apperrors.ErrorResponse "Role cannot enroll"
// @Failure 409 {object} apperrors.ErrorResponse "Already enrolled or course full"
// @Router /api/v1/courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	enrollment, err := h.courseService.Enroll(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// Unenroll godoc
// @Summary Leave a course
// @Tags courses
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Failure 400 {object} apperrors.ErrorResponse "Not enrolled"
// @Router /api/v1/courses/{id}/enroll [delete]
func (h *CourseHandler) Unenroll(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.courseService.Unenroll(c.Request.Context(), user, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateProgress godoc
// @Summary Record progress in a course
// @Description 100 marks the enrollment completed
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body dto.ProgressRequest true "Progress 0-100"
// @Success 200 {object} models.Enrollment
// @Failure 403 {object} apperrors.ErrorResponse "Not enrolled"
// @Router /api/v1/courses/{id}/progress [put]
func (h *CourseHandler) UpdateProgress(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.ProgressRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	enrollment, err := h.courseService.UpdateProgress(c.Request.Context(), user, c.Param("id"), *req.Progress)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// Roster godoc
// @Summary Students enrolled in a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {array} models.Enrollment
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/courses/{id}/roster [get]
func (h *CourseHandler) Roster(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	roster, err := h.courseService.Roster(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}
