package repositories

import (
	"context"
	"strings"
	"time"

	"edujobs_backend/internal/models"
	"edujobs_backend/pkg/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindWithFilter(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	Enroll(ctx context.Context, courseID, userID string, at time.Time) (*models.Enrollment, error)
	Unenroll(ctx context.Context, courseID, userID string) error
	FindEnrollment(ctx context.Context, courseID, userID string) (*models.Enrollment, error)
	IsEnrolled(ctx context.Context, courseID, userID string) (bool, error)
	UpdateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	Roster(ctx context.Context, courseID string) ([]models.Enrollment, error)
	CountEnrollments(ctx context.Context, courseID string) (int64, error)
	FindEnrollmentsByUser(ctx context.Context, userID string) ([]models.Enrollment, error)
}

type CourseFilter struct {
	PublishedOnly bool
	InstructorID  string
	Category      string
	Level         string
	Search        string
	Page          int
	PageSize      int
}

type CourseRepositoryImpl struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &CourseRepositoryImpl{db: db}
}

func (r *CourseRepositoryImpl) Create(ctx context.Context, course *models.Course) error {
	return translateError(r.db.WithContext(ctx).Create(course).Error, nil)
}

func (r *CourseRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor", func(db *gorm.DB) *gorm.DB { return db.Omit("password_hash") }).
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, ErrCourseNotFound)
	}
	return &course, nil
}

func (r *CourseRepositoryImpl) FindWithFilter(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})
	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if filter.InstructorID != "" {
		query = query.Where("instructor_id = ?", filter.InstructorID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := containsPattern(s)
		query = query.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, nil)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	var courses []models.Course
	err := query.Order("created_at DESC").Limit(size).Offset((page - 1) * size).Find(&courses).Error
	if err != nil {
		return nil, 0, translateError(err, nil)
	}
	return courses, total, nil
}

func (r *CourseRepositoryImpl) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translateError(result.Error, ErrCourseNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return translateError(err, nil)
		}
		result := tx.Where("id = ?", id).Delete(&models.Course{})
		if result.Error != nil {
			return translateError(result.Error, nil)
		}
		if result.RowsAffected == 0 {
			return ErrCourseNotFound
		}
		return nil
	})
}

// Enroll adds userID to the roster unless already there or the course is full.
// The course row is locked where the dialect supports it.
func (r *CourseRepositoryImpl) Enroll(ctx context.Context, courseID, userID string, at time.Time) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courseQuery := tx
		if tx.Dialector.Name() != "sqlite" {
			courseQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var course models.Course
		if err := courseQuery.First(&course, "id = ?", courseID).Error; err != nil {
			return translateError(err, ErrCourseNotFound)
		}

		var existing int64
		if err := tx.Model(&models.Enrollment{}).
			Where("course_id = ? AND user_id = ?", courseID, userID).
			Count(&existing).Error; err != nil {
			return translateError(err, nil)
		}
		if existing > 0 {
			return apperrors.ErrAlreadyEnrolled
		}

		if !course.Unlimited() {
			var enrolled int64
			if err := tx.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&enrolled).Error; err != nil {
				return translateError(err, nil)
			}
			if enrolled >= int64(course.MaxStudents) {
				return apperrors.ErrCourseFull
			}
		}

		enrollment = &models.Enrollment{
			CourseID:   courseID,
			UserID:     userID,
			Status:     models.EnrollmentStatusActive,
			EnrolledAt: at,
		}
		err := translateError(tx.Create(enrollment).Error, nil)
		if isConflict(err) {
			return apperrors.ErrAlreadyEnrolled
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (r *CourseRepositoryImpl) Unenroll(ctx context.Context, courseID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return translateError(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotEnrolled
	}
	return nil
}

func (r *CourseRepositoryImpl) FindEnrollment(ctx context.Context, courseID, userID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).First(&enrollment, "course_id = ? AND user_id = ?", courseID, userID).Error
	if err != nil {
		return nil, translateError(err, ErrEnrollmentNotFound)
	}
	return &enrollment, nil
}

func (r *CourseRepositoryImpl) IsEnrolled(ctx context.Context, courseID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&n).Error
	if err != nil {
		return false, translateError(err, nil)
	}
	return n > 0, nil
}

func (r *CourseRepositoryImpl) UpdateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	result := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Updates(map[string]interface{}{
			"progress":     enrollment.Progress,
			"status":       enrollment.Status,
			"completed_at": enrollment.CompletedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (r *CourseRepositoryImpl) Roster(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	var roster []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Omit("password_hash") }).
		Where("course_id = ?", courseID).
		Order("enrolled_at ASC").
		Find(&roster).Error
	if err != nil {
		return nil, translateError(err, nil)
	}
	return roster, nil
}

func (r *CourseRepositoryImpl) CountEnrollments(ctx context.Context, courseID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&n).Error; err != nil {
		return 0, translateError(err, nil)
	}
	return n, nil
}

func (r *CourseRepositoryImpl) FindEnrollmentsByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, translateError(err, nil)
	}
	return enrollments, nil
}
