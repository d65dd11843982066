package mail

import (
	"context"
	"fmt"

	"github.com/lakowalski/luxmedhunter/config"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"
)

type MailgunSender struct {
	mg     *mailgun.MailgunImpl
	sender string
	log    *logrus.Logger
}

// NewMailgunSender sends through the Mailgun HTTP API.
// Without a configured sender the message comes from mailgun@<domain>.
func NewMailgunSender(cfg config.MailgunConfig, log *logrus.Logger) *MailgunSender {
	sender := cfg.Sender
	if sender == "" {
		sender = "mailgun@" + cfg.Domain
	}
	return &MailgunSender{
		mg:     mailgun.NewMailgun(cfg.Domain, cfg.APIKey),
		sender: sender,
		log:    log,
	}
}

func (s *MailgunSender) Send(ctx context.Context, recipients []string, subject, body string) error {
	msg := s.mg.NewMessage(s.sender, subject, body, recipients...)

	resp, id, err := s.mg.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}

	s.log.Infof("Email sent by Mailgun, id %s: %s", id, resp)
	return nil
}
