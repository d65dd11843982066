package entity

import "time"

// HuntCycleResult is the outcome of one hunting cycle for one user.
// It is consumed right away by the notification dispatcher.
type HuntCycleResult struct {
	UserID           string         `json:"user_id"`
	CycleStartedAt   time.Time      `json:"cycle_started_at"`
	SlotsSeen        int            `json:"slots_seen"`
	BookingAttempted bool           `json:"booking_attempted"`
	BookingRecord    *BookingRecord `json:"booking_record,omitempty"`
	Slot             *AvailableSlot `json:"slot,omitempty"`
	Error            ErrorKind      `json:"error,omitempty"`
}

// Booked reports whether the cycle ended with a confirmed reservation
func (r *HuntCycleResult) Booked() bool {
	return r.BookingRecord != nil && r.BookingRecord.IsConfirmed()
}

// NoAvailability reports the normal "nothing new" outcome
func (r *HuntCycleResult) NoAvailability() bool {
	return !r.BookingAttempted && r.Error == ErrorKindNone
}

// Credentials are the portal login secrets of one user
type Credentials struct {
	UserID   string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}
