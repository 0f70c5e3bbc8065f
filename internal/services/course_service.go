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

type CourseService interface {
	Create(ctx context.Context, actor *models.User, req *dto.CreateCourseRequest) (*models.Course, error)
	List(ctx context.Context, filter *dto.CourseFilter) (*dto.PaginatedCourses, error)
	ListTaught(ctx context.Context, instructor *models.User) ([]models.Course, error)
	Get(ctx context.Context, viewer *models.User, id string) (*models.Course, error)
	Update(ctx context.Context, actor *models.User, id string, req *dto.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, actor *models.User, id string) error
	SetPublished(ctx context.Context, actor *models.User, id string, published bool) (*models.Course, error)

	Enroll(ctx context.Context, user *models.User, courseID string) (*models.Enrollment, error)
	Unenroll(ctx context.Context, user *models.User, courseID string) error
	UpdateProgress(ctx context.Context, user *models.User, courseID string, progress int) (*models.Enrollment, error)
	Roster(ctx context.Context, actor *models.User, courseID string) ([]models.Enrollment, error)
	MyEnrollments(ctx context.Context, user *models.User) ([]models.Enrollment, error)
}

type CourseServiceImpl struct {
	courses repositories.CourseRepository
	users   repositories.UserRepository
	now     Clock
}

func NewCourseService(courses repositories.CourseRepository, users repositories.UserRepository, now Clock) CourseService {
	if now == nil {
		now = systemClock
	}
	return &CourseServiceImpl{courses: courses, users: users, now: now}
}

func ownerOf(c *models.Course) auth.OwnerRef {
	return auth.OwnerRef{InstructorID: c.InstructorID}
}

// Create makes an unpublished course. Admins and managers may name another instructor.
func (s *CourseServiceImpl) Create(ctx context.Context, actor *models.User, req *dto.CreateCourseRequest) (*models.Course, error) {
	instructorID := actor.ID
	if req.InstructorID != "" && req.InstructorID != actor.ID {
		if !auth.IsPrivileged(actor.Role) {
			return nil, apperrors.ErrInsufficientPermissions
		}
		instructor, err := s.users.FindByID(ctx, req.InstructorID)
		if err != nil {
			return nil, err
		}
		instructorID = instructor.ID
	}

	course := &models.Course{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Category:     strings.TrimSpace(req.Category),
		Level:        models.CourseLevel(req.Level),
		Price:        req.Price,
		InstructorID: instructorID,
		MaxStudents:  req.MaxStudents,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("course created", "course_id", course.ID, "instructor_id", instructorID)
	return course, nil
}

func (s *CourseServiceImpl) List(ctx context.Context, filter *dto.CourseFilter) (*dto.PaginatedCourses, error) {
	courses, total, err := s.courses.FindWithFilter(ctx, repositories.CourseFilter{
		PublishedOnly: true,
		Category:      filter.Category,
		Level:         filter.Level,
		Search:        filter.Search,
		Page:          filter.Page,
		PageSize:      filter.PageSize,
	})
	if err != nil {
		return nil, err
	}
	page, size := pageBounds(filter.Page, filter.PageSize)
	return &dto.PaginatedCourses{Courses: courses, Total: total, Page: page, PageSize: size}, nil
}

func (s *CourseServiceImpl) ListTaught(ctx context.Context, instructor *models.User) ([]models.Course, error) {
	courses, _, err := s.courses.FindWithFilter(ctx, repositories.CourseFilter{
		InstructorID: instructor.ID,
		PageSize:     100,
	})
	return courses, err
}

// Get hides unpublished courses from everyone but their owner and privileged roles.
func (s *CourseServiceImpl) Get(ctx context.Context, viewer *models.User, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		if viewer == nil || auth.CheckOwnership(viewer, ownerOf(course)) != nil {
			return nil, repositories.ErrCourseNotFound
		}
	}
	return course, nil
}

func (s *CourseServiceImpl) loadOwned(ctx context.Context, actor *models.User, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckOwnership(actor, ownerOf(course)); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseServiceImpl) Update(ctx context.Context, actor *models.User, id string, req *dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Level != nil {
		fields["level"] = *req.Level
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.MaxStudents != nil {
		if *req.MaxStudents > 0 {
			enrolled, err := s.courses.CountEnrollments(ctx, course.ID)
			if err != nil {
				return nil, err
			}
			if int64(*req.MaxStudents) < enrolled {
				return nil, apperrors.NewConflictError("course", "maxStudents is below the current enrollment")
			}
		}
		fields["max_students"] = *req.MaxStudents
	}
	if len(fields) == 0 {
		return course, nil
	}

	if err := s.courses.Update(ctx, course.ID, fields); err != nil {
		return nil, err
	}
	return s.courses.FindByID(ctx, course.ID)
}

func (s *CourseServiceImpl) Delete(ctx context.Context, actor *models.User, id string) error {
	course, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, course.ID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("course deleted", "course_id", course.ID)
	return nil
}

func (s *CourseServiceImpl) SetPublished(ctx context.Context, actor *models.User, id string, published bool) (*models.Course, error) {
	course, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.courses.Update(ctx, course.ID, map[string]interface{}{"is_published": published}); err != nil {
		return nil, err
	}
	course.IsPublished = published
	return course, nil
}

func (s *CourseServiceImpl) Enroll(ctx context.Context, user *models.User, courseID string) (*models.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, apperrors.ErrCourseNotPublished
	}
	if course.InstructorID == user.ID {
		return nil, apperrors.New(apperrors.CodeInvalidOperation, "course", "Instructors cannot enroll in their own course", 400)
	}

	enrollment, err := s.courses.Enroll(ctx, course.ID, user.ID, s.now())
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("user enrolled", "course_id", course.ID, "user_id", user.ID)
	return enrollment, nil
}

func (s *CourseServiceImpl) Unenroll(ctx context.Context, user *models.User, courseID string) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return err
	}
	return s.courses.Unenroll(ctx, courseID, user.ID)
}

// UpdateProgress sets the caller's progress. Reaching 100 completes the enrollment.
func (s *CourseServiceImpl) UpdateProgress(ctx context.Context, user *models.User, courseID string, progress int) (*models.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, apperrors.ValidationError(map[string]string{"progress": "Must be between 0 and 100"})
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	err = auth.CheckEnrollment(user, course, func() (bool, error) {
		return s.courses.IsEnrolled(ctx, course.ID, user.ID)
	})
	if err != nil {
		return nil, err
	}

	enrollment, err := s.courses.FindEnrollment(ctx, course.ID, user.ID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrEnrollmentNotFound) {
			return nil, apperrors.ErrNotEnrolled
		}
		return nil, err
	}

	enrollment.Progress = progress
	if progress == 100 {
		if enrollment.CompletedAt == nil {
			now := s.now()
			enrollment.CompletedAt = &now
		}
		enrollment.Status = models.EnrollmentStatusCompleted
	} else {
		enrollment.Status = models.EnrollmentStatusActive
		enrollment.CompletedAt = nil
	}
	if err := s.courses.UpdateEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *CourseServiceImpl) Roster(ctx context.Context, actor *models.User, courseID string) ([]models.Enrollment, error) {
	course, err := s.loadOwned(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	return s.courses.Roster(ctx, course.ID)
}

func (s *CourseServiceImpl) MyEnrollments(ctx context.Context, user *models.User) ([]models.Enrollment, error) {
	return s.courses.FindEnrollmentsByUser(ctx, user.ID)
}
