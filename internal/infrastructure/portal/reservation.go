package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"
)

const reservationDateLayout = "2006-01-02T15:04:05.000Z"

type termRequest struct {
	ServiceVariantID       int             `json:"serviceVariantId"`
	FacilityID             int             `json:"facilityId"`
	RoomID                 int             `json:"roomId"`
	ScheduleID             int             `json:"scheduleId"`
	Date                   string          `json:"date"`
	TimeFrom               string          `json:"timeFrom"`
	TimeTo                 string          `json:"timeTo,omitempty"`
	DoctorID               int             `json:"doctorId"`
	TemporaryReservationID int64           `json:"temporaryReservationId,omitempty"`
	Valuation              json.RawMessage `json:"valuation,omitempty"`
	ReferralRequired       *bool           `json:"referralRequired,omitempty"`
	ParentReservationID    int64           `json:"parentReservationId,omitempty"`
}

type relatedVisit struct {
	ReservationID int64 `json:"reservationId"`
}

type lockValue struct {
	TemporaryReservationID int64             `json:"temporaryReservationId"`
	Valuations             []json.RawMessage `json:"valuations"`
	RelatedVisits          []relatedVisit    `json:"relatedVisits"`
}

type lockResponse struct {
	Value  lockValue    `json:"value"`
	Errors portalErrors `json:"errors"`
}

type changeTermRequest struct {
	ExistingReservationID int64       `json:"existingReservationId"`
	Term                  termRequest `json:"term"`
}

type reservationResponse struct {
	Value struct {
		ReservationID int64 `json:"reservationId"`
	} `json:"value"`
	Errors portalErrors `json:"errors"`
}

// Book reserves a slot previously returned by FindSlots for the same user.
// The term is locked first; an existing visit for the service is moved to the
// new term only when rescheduling is allowed.
func (c *Client) Book(ctx context.Context, session *gateway.Session, slotID string) (*gateway.BookingConfirmation, error) {
	c.mu.Lock()
	t, ok := c.terms[session.UserID][slotID]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: slot %s is not among the last search results", entity.ErrBookingConflict, slotID)
	}

	base := t.request()
	base.TimeTo = t.to.In(c.location).Format(entity.HourLayout)

	var lock lockResponse
	if err := c.do(ctx, session, http.MethodPost, lockTermPath, nil, base, &lock); err != nil {
		return nil, err
	}
	if len(lock.Errors) > 0 {
		return nil, fmt.Errorf("%w: term lock errors: %s", entity.ErrBookingConflict, lock.Errors)
	}
	if len(lock.Value.Valuations) == 0 {
		return nil, fmt.Errorf("%w: term lock returned no valuation", entity.ErrPortalUnavailable)
	}
	c.log.Infof("Term %s locked for %s", slotID, session.UserID)

	reservation := t.request()
	reservation.TemporaryReservationID = lock.Value.TemporaryReservationID
	reservation.Valuation = lock.Value.Valuations[0]
	notRequired := false
	reservation.ReferralRequired = &notRequired

	confirmation := &gateway.BookingConfirmation{SlotID: slotID}
	var resp reservationResponse

	if len(lock.Value.RelatedVisits) > 0 {
		existing := lock.Value.RelatedVisits[0].ReservationID
		if !c.cfg.AllowRescheduling {
			return nil, fmt.Errorf("%w: visit %d already booked for this service and rescheduling is disabled", entity.ErrBookingConflict, existing)
		}
		reservation.ParentReservationID = existing
		body := changeTermRequest{ExistingReservationID: existing, Term: reservation}
		if err := c.do(ctx, session, http.MethodPost, changeTermPath, nil, body, &resp); err != nil {
			return nil, err
		}
		confirmation.Rescheduled = true
	} else {
		if err := c.do(ctx, session, http.MethodPost, confirmPath, nil, reservation, &resp); err != nil {
			return nil, err
		}
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: reservation errors: %s", entity.ErrBookingConflict, resp.Errors)
	}

	if resp.Value.ReservationID != 0 {
		confirmation.ReservationID = strconv.FormatInt(resp.Value.ReservationID, 10)
	}

	c.mu.Lock()
	delete(c.terms[session.UserID], slotID)
	c.mu.Unlock()

	c.log.Infof("Reserved %s at %s for %s", t.from.Format("2006-01-02 15:04"), t.Clinic, session.UserID)
	return confirmation, nil
}

func (t *term) request() termRequest {
	return termRequest{
		ServiceVariantID: t.ServiceID,
		FacilityID:       t.ClinicID,
		RoomID:           t.RoomID,
		ScheduleID:       t.ScheduleID,
		Date:             t.from.UTC().Format(reservationDateLayout),
		TimeFrom:         t.from.Format(entity.HourLayout),
		DoctorID:         t.Doctor.ID,
	}
}
