package email

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"edujobs_backend/internal/logger"
)

// LogProvider logs messages instead of sending them. Used when SMTP is disabled.
type LogProvider struct {
	log *slog.Logger
}

func NewLogProvider(log *slog.Logger) *LogProvider {
	return &LogProvider{log: log}
}

func (p *LogProvider) Send(ctx context.Context, email *Email) error {
	log := p.log
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log.InfoContext(ctx, "email not sent (smtp disabled)",
		"to", strings.Join(email.To, ","),
		"subject", email.Subject,
	)
	return nil
}

func (p *LogProvider) Close() error { return nil }

// MemoryProvider keeps every message in memory. Used by tests.
type MemoryProvider struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

func (p *MemoryProvider) Send(_ context.Context, email *Email) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, *email)
	return nil
}

func (p *MemoryProvider) Close() error { return nil }

// Sent returns a copy of the recorded messages.
func (p *MemoryProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Email(nil), p.sent...)
}

// LastTo returns the most recent message addressed to recipient.
func (p *MemoryProvider) LastTo(recipient string) (Email, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.sent) - 1; i >= 0; i-- {
		for _, to := range p.sent[i].To {
			if to == recipient {
				return p.sent[i], true
			}
		}
	}
	return Email{}, false
}

func (p *MemoryProvider) SetError(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}
