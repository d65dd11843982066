package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"
)

type doctor struct {
	ID            int    `json:"id"`
	AcademicTitle string `json:"academicTitle"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
}

// term is one slot as the portal describes it. It is kept between FindSlots
// and Book because the reservation calls need every field.
type term struct {
	DateTimeFrom  string `json:"dateTimeFrom"`
	DateTimeTo    string `json:"dateTimeTo"`
	Doctor        doctor `json:"doctor"`
	ClinicID      int    `json:"clinicId"`
	ClinicGroupID int    `json:"clinicGroupId"`
	Clinic        string `json:"clinic"`
	RoomID        int    `json:"roomId"`
	ScheduleID    int    `json:"scheduleId"`
	ServiceID     int    `json:"serviceId"`

	from time.Time
	to   time.Time
}

type portalErrors []json.RawMessage

func (e portalErrors) String() string {
	parts := make([]string, 0, len(e))
	for _, raw := range e {
		parts = append(parts, string(raw))
	}
	return strings.Join(parts, ", ")
}

type termsResponse struct {
	CorrelationID   string `json:"correlationId"`
	TermsForService struct {
		TermsForDays []struct {
			Terms []term `json:"terms"`
		} `json:"termsForDays"`
	} `json:"termsForService"`
	Errors portalErrors `json:"errors"`
}

// FindSlots runs the portal term search for criteria and keeps the matching terms
func (c *Client) FindSlots(ctx context.Context, session *gateway.Session, criteria entity.SearchCriteria) ([]entity.AvailableSlot, error) {
	from, to, err := criteria.Window(c.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrNoSearchCriteria, err)
	}
	lastDay := to.AddDate(0, 0, -1)

	languageID := criteria.LanguageID
	if languageID == 0 {
		languageID = c.cfg.LanguageID
	}

	query := url.Values{}
	query.Set("searchPlace.id", strconv.Itoa(criteria.CityID))
	query.Set("searchPlace.type", "0")
	query.Set("serviceVariantId", strconv.Itoa(criteria.ServiceID))
	query.Set("languageId", strconv.Itoa(languageID))
	query.Set("searchDateFrom", from.Format(entity.DateLayout))
	query.Set("searchDateTo", lastDay.Format(entity.DateLayout))
	query.Set("searchDatePreset", strconv.Itoa(int(lastDay.Sub(from).Hours()/24)))
	query.Set("delocalized", "false")
	if len(criteria.LocationIDs) > 0 {
		query.Set("facilitiesIds", joinInts(criteria.LocationIDs))
	}
	if criteria.ClinicianID != nil {
		query.Set("doctorsIds", strconv.Itoa(*criteria.ClinicianID))
	}

	var resp termsResponse
	if err := c.do(ctx, session, http.MethodGet, termsSearchPath, query, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: term search errors: %s", entity.ErrPortalUnavailable, resp.Errors)
	}

	found := make(map[string]term)
	slots := make([]entity.AvailableSlot, 0)
	for _, day := range resp.TermsForService.TermsForDays {
		for _, t := range day.Terms {
			if t.ServiceID == 0 {
				t.ServiceID = criteria.ServiceID
			}
			if t.from, err = c.parseTime(t.DateTimeFrom); err != nil {
				c.log.Warnf("Skipping term with unreadable start %q: %+v", t.DateTimeFrom, err)
				continue
			}
			if t.to, err = c.parseTime(t.DateTimeTo); err != nil {
				t.to = t.from
			}

			slot := t.slot()
			if !criteria.Matches(slot) {
				continue
			}
			found[slot.SlotID] = t
			slots = append(slots, slot)
		}
	}

	c.mu.Lock()
	c.terms[session.UserID] = found
	c.mu.Unlock()

	c.log.Debugf("Term search %s for %s returned %d matching slots", resp.CorrelationID, session.UserID, len(slots))
	return slots, nil
}

func (t *term) slot() entity.AvailableSlot {
	return entity.AvailableSlot{
		SlotID:        t.slotID(),
		StartTime:     t.from,
		EndTime:       t.to,
		LocationID:    t.ClinicGroupID,
		LocationName:  t.Clinic,
		ClinicianID:   t.Doctor.ID,
		ClinicianName: strings.TrimSpace(strings.Join([]string{t.Doctor.AcademicTitle, t.Doctor.FirstName, t.Doctor.LastName}, " ")),
		ServiceID:     t.ServiceID,
	}
}

// slotID builds a stable identifier from the fields that pin a term down
func (t *term) slotID() string {
	return fmt.Sprintf("%d-%d-%d-%d-%s", t.ScheduleID, t.RoomID, t.ClinicID, t.Doctor.ID, t.from.UTC().Format("20060102T1504"))
}

// parseTime accepts RFC 3339 and zone-less timestamps, the latter in the portal's location
func (c *Client) parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(c.location), nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", value, c.location)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
