package gateway

import (
	"context"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
)

// Session is an authenticated portal login
type Session struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	XSRFToken string    `json:"xsrf_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session token is no longer usable at now
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.IsZero() || !now.Before(s.ExpiresAt)
}

// BookingConfirmation is the portal's answer to a successful reservation
type BookingConfirmation struct {
	SlotID        string `json:"slot_id"`
	ReservationID string `json:"reservation_id,omitempty"`
	Rescheduled   bool   `json:"rescheduled"`
}

// PortalClient talks to the remote booking portal.
//
// Errors are classified with the entity sentinels:
// Authenticate fails with ErrAuthenticationFailed or ErrPortalUnavailable,
// FindSlots and FetchLastSearch with ErrPortalUnavailable,
// Book with ErrBookingConflict or ErrPortalUnavailable.
type PortalClient interface {
	Authenticate(ctx context.Context, credentials entity.Credentials) (*Session, error)
	FindSlots(ctx context.Context, session *Session, criteria entity.SearchCriteria) ([]entity.AvailableSlot, error)
	Book(ctx context.Context, session *Session, slotID string) (*BookingConfirmation, error)
	FetchLastSearch(ctx context.Context, session *Session) (*entity.SearchCriteria, error)
}
