package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/email"
	"edujobs_backend/internal/models"
	"edujobs_backend/internal/repositories"
	"edujobs_backend/internal/services"
	"edujobs_backend/internal/testutil"

	"gorm.io/gorm"
)

type sentSecret struct {
	kind   string
	to     string
	secret string
}

// fakeNotifier records secrets instead of mailing them.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentSecret
	err  error
}

func (n *fakeNotifier) record(kind, to, secret string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentSecret{kind: kind, to: to, secret: secret})
	return nil
}

func (n *fakeNotifier) SendVerification(_ context.Context, to email.Recipient, secret string, _ time.Duration) error {
	return n.record("verification", to.Email, secret)
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, to email.Recipient, secret string, _ time.Duration) error {
	return n.record("reset", to.Email, secret)
}

func (n *fakeNotifier) SendWelcome(_ context.Context, to email.Recipient) error {
	return n.record("welcome", to.Email, "")
}

func (n *fakeNotifier) last(kind string) (sentSecret, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].kind == kind {
			return n.sent[i], true
		}
	}
	return sentSecret{}, false
}

var errMailDown = errors.New("relay unavailable")

type fixture struct {
	db       *gorm.DB
	clock    *testutil.Clock
	notifier *fakeNotifier
	tokens   *auth.TokenManager
	users    repositories.UserRepository
	courses  repositories.CourseRepository
	auth     services.AuthService
	user     services.UserService
	course   services.CourseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	clock := testutil.NewClock()
	notifier := &fakeNotifier{}
	tokens := auth.NewTokenManager("test-secret-test-secret-test-secret", "edujobs", 15*time.Minute, 24*time.Hour).
		WithClock(clock.Now)
	users := repositories.NewUserRepository(db)
	courses := repositories.NewCourseRepository(db)
	hasher := testutil.Hasher()

	return &fixture{
		db:       db,
		clock:    clock,
		notifier: notifier,
		tokens:   tokens,
		users:    users,
		courses:  courses,
		auth: services.NewAuthService(users, tokens, hasher, notifier, services.AuthOptions{
			VerificationTTL: 24 * time.Hour,
			ResetTTL:        time.Hour,
		}, clock.Now),
		user:   services.NewUserService(users, hasher, tokens, clock.Now),
		course: services.NewCourseService(courses, users, clock.Now),
	}
}

func (f *fixture) reload(t *testing.T, id string) *models.User {
	t.Helper()
	var u models.User
	if err := f.db.First(&u, "id = ?", id).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &u
}
