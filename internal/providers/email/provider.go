package email

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("email provider not configured")

type Provider interface {
	Send(ctx context.Context, to []string, subject string, body string) error
}

// NoOpProvider stands in when SMTP settings are missing. Every send fails
// with ErrNotConfigured so callers can record the attempt.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, body string) error {
	return ErrNotConfigured
}
