package gateway

import "context"

// MailSender delivers a plain text message through one mail provider
type MailSender interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}
