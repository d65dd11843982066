package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking attempt
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusFailed    BookingStatus = "failed"
)

// BookingRecord is one entry of the append-only booking ledger.
// ServiceID, DateFrom and DateTo identify the search window it was made for.
type BookingRecord struct {
	ID        uuid.UUID     `json:"id"`
	SlotID    string        `json:"slot_id"`
	UserID    string        `json:"user_id"`
	ServiceID int           `json:"service_id"`
	DateFrom  string        `json:"date_from"`
	DateTo    string        `json:"date_to"`
	SlotStart time.Time     `json:"slot_start"`
	BookedAt  time.Time     `json:"booked_at"`
	Status    BookingStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
}

// NewBookingRecord creates a pending record for a slot picked under criteria
func NewBookingRecord(criteria *SearchCriteria, slot AvailableSlot, at time.Time) BookingRecord {
	return BookingRecord{
		ID:        uuid.New(),
		SlotID:    slot.SlotID,
		UserID:    criteria.UserID,
		ServiceID: criteria.ServiceID,
		DateFrom:  criteria.DateFrom,
		DateTo:    criteria.DateTo,
		SlotStart: slot.StartTime,
		BookedAt:  at,
		Status:    BookingStatusPending,
	}
}

// IsPending checks if booking is in pending status
func (b *BookingRecord) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsConfirmed checks if booking is confirmed
func (b *BookingRecord) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsFailed checks if booking attempt failed
func (b *BookingRecord) IsFailed() bool {
	return b.Status == BookingStatusFailed
}

// Confirm moves a pending record to confirmed
func (b *BookingRecord) Confirm() {
	if b.IsPending() {
		b.Status = BookingStatusConfirmed
	}
}

// Fail moves a pending record to failed
func (b *BookingRecord) Fail(reason string) {
	if b.IsPending() {
		b.Status = BookingStatusFailed
		b.Reason = reason
	}
}

// Ledger is the ordered booking history of one user
type Ledger []BookingRecord

// Claimed reports whether a slot was already attempted.
// Pending, confirmed and failed slots are all considered exhausted.
func (l Ledger) Claimed(slotID string) bool {
	for i := range l {
		if l[i].SlotID == slotID {
			return true
		}
	}
	return false
}

// ConfirmedOn returns the confirmed record for the criteria's search window
// booked on the same calendar day as day, if any.
func (l Ledger) ConfirmedOn(criteria *SearchCriteria, day time.Time) *BookingRecord {
	y, m, d := day.Date()
	for i := range l {
		r := &l[i]
		if !r.IsConfirmed() || !criteria.SameWindow(r) {
			continue
		}
		ry, rm, rd := r.BookedAt.In(day.Location()).Date()
		if ry == y && rm == m && rd == d {
			return r
		}
	}
	return nil
}
