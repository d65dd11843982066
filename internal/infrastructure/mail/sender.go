package mail

import (
	"context"
	"fmt"

	"github.com/lakowalski/luxmedhunter/config"
	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"

	"github.com/sirupsen/logrus"
)

// NewSender builds the sender of the configured provider.
// Exactly one provider is active; there is no fallback between them.
func NewSender(ctx context.Context, cfg config.MailConfig, log *logrus.Logger) (gateway.MailSender, error) {
	switch cfg.Provider {
	case config.MailProviderSMTP:
		return NewSMTPSender(cfg.SMTP, log), nil
	case config.MailProviderMailgun:
		return NewMailgunSender(cfg.Mailgun, log), nil
	case config.MailProviderSES:
		return NewSESSender(ctx, cfg.SES, log)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}
