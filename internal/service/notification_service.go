package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"

	"github.com/sirupsen/logrus"
)

// DeliveryOutcome reports what happened to the notification of one cycle.
// Skipped outcomes are successful: there was nothing to report.
type DeliveryOutcome struct {
	Success  bool
	Provider string
	Skipped  bool
	Err      error
}

type NotificationService interface {
	Notify(ctx context.Context, userID string, result *entity.HuntCycleResult) DeliveryOutcome
}

// NewNoopNotificationService is used when mail notifications are disabled
func NewNoopNotificationService() NotificationService {
	return noopNotificationService{}
}

type noopNotificationService struct{}

func (noopNotificationService) Notify(context.Context, string, *entity.HuntCycleResult) DeliveryOutcome {
	return DeliveryOutcome{Success: true, Skipped: true}
}

type notificationService struct {
	sender     gateway.MailSender
	provider   string
	recipients []string
	log        *logrus.Logger
}

func NewNotificationService(sender gateway.MailSender, provider string, recipients []string, log *logrus.Logger) NotificationService {
	return &notificationService{
		sender:     sender,
		provider:   provider,
		recipients: recipients,
		log:        log,
	}
}

// Notify renders the cycle result and sends it through the configured provider.
// Delivery errors are logged and returned in the outcome only.
func (s *notificationService) Notify(ctx context.Context, userID string, result *entity.HuntCycleResult) DeliveryOutcome {
	outcome := DeliveryOutcome{Provider: s.provider}

	subject, body, ok := RenderNotification(userID, result)
	if !ok {
		outcome.Success = true
		outcome.Skipped = true
		return outcome
	}

	if err := s.sender.Send(ctx, s.recipients, subject, body); err != nil {
		s.log.Warnf("Failed to send %q notification via %s: %+v", subject, s.provider, err)
		outcome.Err = err
		return outcome
	}

	outcome.Success = true
	return outcome
}

// RenderNotification turns a cycle result into a mail subject and body.
// It reports false for outcomes that are only logged: no new availability,
// missing configuration or criteria, and persistence failures.
func RenderNotification(userID string, result *entity.HuntCycleResult) (string, string, bool) {
	var b strings.Builder

	switch {
	case result.Booked():
		fmt.Fprintf(&b, "Reserved appointment for %s:\n\n", userID)
		writeSlot(&b, result.Slot, result.BookingRecord)
		return "Appointment Reserved", b.String(), true

	case result.Error == entity.ErrorKindBookingConflict:
		fmt.Fprintf(&b, "A matching slot for %s was taken before it could be reserved.\n", userID)
		b.WriteString("It will not be attempted again; hunting continues with the next cycle.\n\n")
		writeSlot(&b, result.Slot, result.BookingRecord)
		return "Appointment slot no longer available", b.String(), true

	case result.Error == entity.ErrorKindAuthenticationFailed:
		fmt.Fprintf(&b, "The LuxMed portal rejected the stored credentials of %s at %s.\n",
			userID, result.CycleStartedAt.Format(time.RFC3339))
		b.WriteString("Update them with create-credentials after deleting the old entry.\n")
		return "LuxMed login failed", b.String(), true

	case result.Error == entity.ErrorKindPortalUnavailable:
		fmt.Fprintf(&b, "The LuxMed portal could not be reached for %s at %s.\n",
			userID, result.CycleStartedAt.Format(time.RFC3339))
		b.WriteString("The next scheduled cycle will try again.\n")
		return "LuxMed portal unavailable", b.String(), true
	}

	return "", "", false
}

func writeSlot(b *strings.Builder, slot *entity.AvailableSlot, record *entity.BookingRecord) {
	if slot != nil {
		fmt.Fprintf(b, "When:      %s\n", slot.StartTime.Format("2006-01-02 15:04"))
		if slot.LocationName != "" {
			fmt.Fprintf(b, "Where:     %s\n", slot.LocationName)
		}
		if slot.ClinicianName != "" {
			fmt.Fprintf(b, "Clinician: %s\n", slot.ClinicianName)
		}
		fmt.Fprintf(b, "Slot:      %s\n", slot.SlotID)
	}
	if record != nil {
		fmt.Fprintf(b, "Search:    service %d, %s to %s\n", record.ServiceID, record.DateFrom, record.DateTo)
		if record.Reason != "" {
			fmt.Fprintf(b, "Reason:    %s\n", record.Reason)
		}
	}
}
