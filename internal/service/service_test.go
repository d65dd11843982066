package service

import (
	"context"
	"io"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type sentMail struct {
	recipients []string
	subject    string
	body       string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, recipients []string, subject, body string) error {
	f.sent = append(f.sent, sentMail{recipients: recipients, subject: subject, body: body})
	return f.err
}

func bookedResult() *entity.HuntCycleResult {
	slot := entity.AvailableSlot{SlotID: "S2", LocationName: "Centrum", ClinicianName: "lek. Anna Nowak"}
	record := entity.BookingRecord{SlotID: "S2", UserID: "jan", ServiceID: 7, Status: entity.BookingStatusConfirmed}
	return &entity.HuntCycleResult{UserID: "jan", SlotsSeen: 2, BookingAttempted: true, Slot: &slot, BookingRecord: &record}
}
