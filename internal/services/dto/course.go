package dto

import "edujobs_backend/internal/models"

type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	Category    string  `json:"category" validate:"required,max=100"`
	Level       string  `json:"level" validate:"required,is-course-level"`
	Price       float64 `json:"price" validate:"gte=0"`
	MaxStudents int     `json:"maxStudents" validate:"gte=0"`
	// InstructorID lets admins and managers create a course on someone's behalf.
	InstructorID string `json:"instructorId" validate:"omitempty,uuid"`
}

type UpdateCourseRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Level       *string  `json:"level" validate:"omitempty,is-course-level"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	MaxStudents *int     `json:"maxStudents" validate:"omitempty,gte=0"`
}

type CourseFilter struct {
	Category string `form:"category"`
	Level    string `form:"level"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

type ProgressRequest struct {
	Progress *int `json:"progress" validate:"required,gte=0,lte=100"`
}

type PaginatedCourses struct {
	Courses  []models.Course `json:"courses"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}
