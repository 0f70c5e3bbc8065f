package repositories

import (
	"context"
	"strings"
	"time"

	"edujobs_backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	FindByIDWithPassword(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error
	SetVerificationToken(ctx context.Context, id, hash string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, hash string, expires time.Time) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdateRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
	FindWithFilter(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	ClearExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type UserFilter struct {
	Role     string
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

// withoutSecrets leaves the password hash out of the projection.
func (r *UserRepositoryImpl) withoutSecrets(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Omit("password_hash")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	err := translateError(r.db.WithContext(ctx).Create(user).Error, nil)
	if isConflict(err) {
		return ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.withoutSecrets(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.withoutSecrets(ctx).First(&user, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, translateError(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, translateError(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDWithPassword(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, ErrUserNotFound)
	}
	return &user, nil
}

// Update writes an explicit column map so zero values are stored too.
func (r *UserRepositoryImpl) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		err := translateError(result.Error, ErrUserNotFound)
		if isConflict(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword also consumes any outstanding reset token.
func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	return r.Update(ctx, id, map[string]interface{}{
		"password_hash":          hash,
		"password_changed_at":    changedAt,
		"password_reset_token":   "",
		"password_reset_expires": nil,
	})
}

func (r *UserRepositoryImpl) SetVerificationToken(ctx context.Context, id, hash string, expires time.Time) error {
	return r.Update(ctx, id, map[string]interface{}{
		"email_verification_token":   hash,
		"email_verification_expires": expires,
	})
}

func (r *UserRepositoryImpl) MarkEmailVerified(ctx context.Context, id string) error {
	return r.Update(ctx, id, map[string]interface{}{
		"is_email_verified":          true,
		"email_verification_token":   "",
		"email_verification_expires": nil,
	})
}

func (r *UserRepositoryImpl) SetResetToken(ctx context.Context, id, hash string, expires time.Time) error {
	return r.Update(ctx, id, map[string]interface{}{
		"password_reset_token":   hash,
		"password_reset_expires": expires,
	})
}

func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.Update(ctx, id, map[string]interface{}{"last_login": at})
}

func (r *UserRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": active})
}

func (r *UserRepositoryImpl) UpdateRole(ctx context.Context, id, role string) error {
	return r.Update(ctx, id, map[string]interface{}{"role": role})
}

// Delete removes the user with their enrollments and any courses they teach.
func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courseIDs := tx.Model(&models.Course{}).Select("id").Where("instructor_id = ?", id)
		if err := tx.Where("user_id = ? OR course_id IN (?)", id, courseIDs).Delete(&models.Enrollment{}).Error; err != nil {
			return translateError(err, nil)
		}
		if err := tx.Where("instructor_id = ?", id).Delete(&models.Course{}).Error; err != nil {
			return translateError(err, nil)
		}
		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return translateError(result.Error, nil)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepositoryImpl) FindWithFilter(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := containsPattern(s)
		query = query.Where("LOWER(first_name) LIKE ? ESCAPE '!' OR LOWER(last_name) LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!'", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, nil)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	var users []models.User
	err := query.Omit("password_hash").
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&users).Error
	if err != nil {
		return nil, 0, translateError(err, nil)
	}
	return users, total, nil
}

// ClearExpiredTokens drops verification and reset hashes that expired at or before cutoff.
func (r *UserRepositoryImpl) ClearExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	var cleared int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("email_verification_expires IS NOT NULL AND email_verification_expires <= ?", cutoff).
			Updates(map[string]interface{}{
				"email_verification_token":   "",
				"email_verification_expires": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		cleared += res.RowsAffected

		res = tx.Model(&models.User{}).
			Where("password_reset_expires IS NOT NULL AND password_reset_expires <= ?", cutoff).
			Updates(map[string]interface{}{
				"password_reset_token":   "",
				"password_reset_expires": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		cleared += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, translateError(err, nil)
	}
	return cleared, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
