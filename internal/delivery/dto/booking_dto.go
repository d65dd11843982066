package dto

import (
	"time"

	"github.com/google/uuid"
)

// Response DTOs

type BookingResponse struct {
	ID        uuid.UUID `json:"id"`
	SlotID    string    `json:"slot_id"`
	ServiceID int       `json:"service_id"`
	DateFrom  string    `json:"date_from"`
	DateTo    string    `json:"date_to"`
	SlotStart time.Time `json:"slot_start"`
	BookedAt  time.Time `json:"booked_at"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
}

type BookingListResponse struct {
	UserID    string            `json:"user_id"`
	Bookings  []BookingResponse `json:"bookings"`
	Total     int               `json:"total"`
	Confirmed int               `json:"confirmed"`
}
