package notification

import (
	"context"
	"fmt"
	"log"
)

// Mailer delivers account emails out-of-band. Whether a delivery failure is
// fatal to the calling operation is decided by the caller, not here.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendWelcomeEmail(ctx context.Context, email, name string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// ConsoleMailer writes outbound mail to the log. It is the delivery
// implementation for local development; a real provider (SES, SendGrid)
// slots in behind the same interface.
type ConsoleMailer struct {
	frontendURL string
}

func NewConsoleMailer(frontendURL string) *ConsoleMailer {
	return &ConsoleMailer{frontendURL: frontendURL}
}

func (m *ConsoleMailer) SendVerificationEmail(_ context.Context, email, token string) error {
	url := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
	log.Printf("[mail] to=%s subject=%q link=%s", email, "Verify Your Email", url)
	return nil
}

func (m *ConsoleMailer) SendWelcomeEmail(_ context.Context, email, name string) error {
	log.Printf("[mail] to=%s subject=%q name=%s", email, "Welcome", name)
	return nil
}

func (m *ConsoleMailer) SendPasswordResetEmail(_ context.Context, email, token string) error {
	url := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)
	log.Printf("[mail] to=%s subject=%q link=%s", email, "Reset Your Password", url)
	return nil
}
