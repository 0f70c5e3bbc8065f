package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Recipient is the part of an account a message needs.
type Recipient struct {
	Email     string
	FirstName string
	Role      string
}

// Mailer renders the account templates and hands them to a Provider.
type Mailer struct {
	provider Provider
	renderer TemplateRenderer
	from     string
	baseURL  string
}

func NewMailer(provider Provider, renderer TemplateRenderer, from, baseURL string) *Mailer {
	return &Mailer{
		provider: provider,
		renderer: renderer,
		from:     from,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// SendTemplate renders templateName and sends it to one recipient.
func (m *Mailer) SendTemplate(ctx context.Context, to, subject, templateName string, data TemplateData) error {
	html, err := m.renderer.Render(templateName, data)
	if err != nil {
		return err
	}
	return m.provider.Send(ctx, &Email{
		From:     m.from,
		To:       []string{to},
		Subject:  subject,
		HTMLBody: html,
	})
}

func (m *Mailer) SendVerification(ctx context.Context, to Recipient, secret string, ttl time.Duration) error {
	return m.SendTemplate(ctx, to.Email, "Verify your email", TemplateVerification, TemplateData{
		"FirstName": to.FirstName,
		"Token":     secret,
		"Link":      m.link("/verify-email", to.Email, secret),
		"ExpiresIn": humanDuration(ttl),
	})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to Recipient, secret string, ttl time.Duration) error {
	return m.SendTemplate(ctx, to.Email, "Reset your password", TemplatePasswordReset, TemplateData{
		"FirstName": to.FirstName,
		"Token":     secret,
		"Link":      m.link("/reset-password", to.Email, secret),
		"ExpiresIn": humanDuration(ttl),
	})
}

func (m *Mailer) SendWelcome(ctx context.Context, to Recipient) error {
	return m.SendTemplate(ctx, to.Email, "Welcome to EduJobs", TemplateWelcome, TemplateData{
		"FirstName": to.FirstName,
		"Role":      to.Role,
		"BaseURL":   m.baseURL,
	})
}

func (m *Mailer) Close() error {
	return m.provider.Close()
}

func (m *Mailer) link(path, email, secret string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", secret)
	return m.baseURL + path + "?" + q.Encode()
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
