package mail

import (
	"context"
	"fmt"

	"github.com/lakowalski/luxmedhunter/config"

	"github.com/sirupsen/logrus"
	gomail "github.com/wneessen/go-mail"
)

type SMTPSender struct {
	cfg config.SMTPConfig
	log *logrus.Logger
}

// NewSMTPSender sends through an SMTP relay with STARTTLS and PLAIN auth,
// using the login address as sender
func NewSMTPSender(cfg config.SMTPConfig, log *logrus.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log}
}

func (s *SMTPSender) message(recipients []string, subject, body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.Email); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.cfg.Email, err)
	}
	if err := msg.To(recipients...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return msg, nil
}

func (s *SMTPSender) Send(ctx context.Context, recipients []string, subject, body string) error {
	msg, err := s.message(recipients, subject, body)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Server,
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Email),
		gomail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.log.Infof("Email notification sent via SMTP to %d recipient(s)", len(recipients))
	return nil
}
