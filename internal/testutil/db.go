// Package testutil holds shared helpers for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/config"
	"edujobs_backend/internal/database"
	"edujobs_backend/internal/logger"
	"edujobs_backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// OpenDB opens a migrated in-memory sqlite database private to t.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:edujobs_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbCounter.Add(1))
	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger.Discard())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// Hasher is a fast bcrypt hasher for tests.
func Hasher() *auth.Hasher {
	return auth.NewHasher(bcrypt.MinCost)
}

// CreateUser inserts an active, verified user with the given plain password.
func CreateUser(t testing.TB, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()
	hash, err := Hasher().Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		FirstName:       "Test",
		LastName:        role,
		Email:           email,
		PasswordHash:    hash,
		Role:            role,
		IsActive:        true,
		IsEmailVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// CreateCourse inserts a published course owned by instructorID.
func CreateCourse(t testing.TB, db *gorm.DB, instructorID string, maxStudents int) *models.Course {
	t.Helper()
	course := &models.Course{
		Title:        "Go for beginners",
		Description:  "Learn Go",
		Category:     "programming",
		Level:        models.CourseLevelBeginner,
		Price:        10,
		InstructorID: instructorID,
		MaxStudents:  maxStudents,
		IsPublished:  true,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func NewClock() *Clock {
	return &Clock{T: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
