package services

import (
	"context"
	"time"

	"edujobs_backend/internal/email"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService   AuthService
	UserService   UserService
	CourseService CourseService
}

// Notifier delivers account emails. *email.Mailer implements it.
type Notifier interface {
	SendVerification(ctx context.Context, to email.Recipient, secret string, ttl time.Duration) error
	SendPasswordReset(ctx context.Context, to email.Recipient, secret string, ttl time.Duration) error
	SendWelcome(ctx context.Context, to email.Recipient) error
}

// Clock is the time source services use. Times are stored in UTC.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// pageBounds mirrors the repository paging defaults for responses.
func pageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size < 1:
		size = 20
	case size > 100:
		size = 100
	}
	return page, size
}
