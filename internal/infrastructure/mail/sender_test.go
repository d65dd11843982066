package mail

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lakowalski/luxmedhunter/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sirupsen/logrus"
	gomail "github.com/wneessen/go-mail"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNewSender_PicksConfiguredProvider(t *testing.T) {
	log := quietLogger()

	s, err := NewSender(context.Background(), config.MailConfig{Provider: config.MailProviderSMTP}, log)
	if err != nil {
		t.Fatalf("SMTP: %v", err)
	}
	if _, ok := s.(*SMTPSender); !ok {
		t.Fatalf("SMTP provider built %T", s)
	}

	s, err = NewSender(context.Background(), config.MailConfig{
		Provider: config.MailProviderMailgun,
		Mailgun:  config.MailgunConfig{Domain: "mg.example.com", APIKey: "key"},
	}, log)
	if err != nil {
		t.Fatalf("MAILGUN: %v", err)
	}
	if _, ok := s.(*MailgunSender); !ok {
		t.Fatalf("MAILGUN provider built %T", s)
	}

	if _, err := NewSender(context.Background(), config.MailConfig{Provider: "PIGEON"}, log); !errors.Is(err, config.ErrUnknownProvider) {
		t.Fatalf("want ErrUnknownProvider, got %v", err)
	}
}

func TestSMTPSender_BuildsMessage(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Email: "hunter@example.com"}, quietLogger())

	msg, err := s.message([]string{"jan@example.com", "ola@example.com"}, "Appointment Reserved", "body")
	if err != nil {
		t.Fatalf("message error: %v", err)
	}
	if got := msg.GetGenHeader(gomail.HeaderSubject); len(got) != 1 || got[0] != "Appointment Reserved" {
		t.Fatalf("subject = %v", got)
	}
	rcpts, err := msg.GetRecipients()
	if err != nil || len(rcpts) != 2 {
		t.Fatalf("recipients = %v, %v", rcpts, err)
	}
}

func TestSMTPSender_RejectsBadAddress(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Email: "hunter@example.com"}, quietLogger())

	if err := s.Send(context.Background(), []string{"not an address"}, "s", "b"); err == nil {
		t.Fatalf("expected an address error")
	}
}

func TestMailgunSender_PostsMessage(t *testing.T) {
	var path, to, from, subject string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		to = r.FormValue("to")
		from = r.FormValue("from")
		subject = r.FormValue("subject")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "<20240601.1@mg.example.com>", "message": "Queued. Thank you."}`)
	}))
	defer srv.Close()

	s := NewMailgunSender(config.MailgunConfig{Domain: "mg.example.com", APIKey: "key"}, quietLogger())
	s.mg.SetAPIBase(srv.URL + "/v3")

	if err := s.Send(context.Background(), []string{"jan@example.com"}, "Appointment Reserved", "body"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if path != "/v3/mg.example.com/messages" {
		t.Fatalf("path = %q", path)
	}
	if to != "jan@example.com" || from != "mailgun@mg.example.com" || subject != "Appointment Reserved" {
		t.Fatalf("form to=%q from=%q subject=%q", to, from, subject)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESSender_SendsSimpleMessage(t *testing.T) {
	api := &fakeSES{}
	s := &SESSender{client: api, sender: "hunter@example.com", log: quietLogger()}

	if err := s.Send(context.Background(), []string{"jan@example.com"}, "Subject", "Body"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	in := api.input
	if aws.ToString(in.FromEmailAddress) != "hunter@example.com" {
		t.Fatalf("from = %q", aws.ToString(in.FromEmailAddress))
	}
	if len(in.Destination.ToAddresses) != 1 || in.Destination.ToAddresses[0] != "jan@example.com" {
		t.Fatalf("to = %v", in.Destination.ToAddresses)
	}
	if aws.ToString(in.Content.Simple.Subject.Data) != "Subject" || aws.ToString(in.Content.Simple.Body.Text.Data) != "Body" {
		t.Fatalf("unexpected content %+v", in.Content.Simple)
	}
}

func TestSESSender_WrapsErrors(t *testing.T) {
	s := &SESSender{client: &fakeSES{err: errors.New("throttled")}, sender: "a@b.c", log: quietLogger()}

	err := s.Send(context.Background(), []string{"jan@example.com"}, "s", "b")
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("err = %v", err)
	}
}
