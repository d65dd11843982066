package entity

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the format of SearchCriteria.DateFrom and SearchCriteria.DateTo
const DateLayout = "2006-01-02"

// HourLayout is the format of SearchCriteria.AfterHour and SearchCriteria.BeforeHour
const HourLayout = "15:04"

// SearchCriteria is the last known portal search of a user.
// It is replaced wholesale on every fetch and never merged field by field.
type SearchCriteria struct {
	UserID               string `json:"user_id" validate:"required"`
	Name                 string `json:"name,omitempty"`
	CityID               int    `json:"city_id" validate:"gte=0"`
	ServiceID            int    `json:"service_id" validate:"required,min=1"`
	DateFrom             string `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo               string `json:"date_to" validate:"required,datetime=2006-01-02"`
	LocationIDs          []int  `json:"location_ids,omitempty"`
	LanguageID           int    `json:"language_id,omitempty"`
	ClinicianID          *int   `json:"clinician_id,omitempty"`
	ExcludedClinicianIDs []int  `json:"excluded_clinician_ids,omitempty"`
	AfterHour            string `json:"after_hour,omitempty" validate:"omitempty,datetime=15:04"`
	BeforeHour           string `json:"before_hour,omitempty" validate:"omitempty,datetime=15:04"`
}

// Normalize turns the id lists into sorted sets
func (c *SearchCriteria) Normalize() {
	c.LocationIDs = uniqueSorted(c.LocationIDs)
	c.ExcludedClinicianIDs = uniqueSorted(c.ExcludedClinicianIDs)
}

// Window returns the search window in loc as [from, to) where to is the start
// of the day after DateTo.
func (c *SearchCriteria) Window(loc *time.Location) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(DateLayout, c.DateFrom, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date_from %q: %w", c.DateFrom, err)
	}
	to, err := time.ParseInLocation(DateLayout, c.DateTo, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date_to %q: %w", c.DateTo, err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("date_to %s is before date_from %s", c.DateTo, c.DateFrom)
	}
	return from, to.AddDate(0, 0, 1), nil
}

// Matches reports whether a slot satisfies the criteria
func (c *SearchCriteria) Matches(slot AvailableSlot) bool {
	if slot.ServiceID != 0 && slot.ServiceID != c.ServiceID {
		return false
	}
	if len(c.LocationIDs) > 0 && !slices.Contains(c.LocationIDs, slot.LocationID) {
		return false
	}
	if c.ClinicianID != nil && slot.ClinicianID != *c.ClinicianID {
		return false
	}
	if slices.Contains(c.ExcludedClinicianIDs, slot.ClinicianID) {
		return false
	}

	from, to, err := c.Window(slot.StartTime.Location())
	if err != nil {
		return false
	}
	if slot.StartTime.Before(from) || !slot.StartTime.Before(to) {
		return false
	}

	clock := slot.StartTime.Format(HourLayout)
	if c.AfterHour != "" && clock < c.AfterHour {
		return false
	}
	if c.BeforeHour != "" && clock > c.BeforeHour {
		return false
	}
	return true
}

// SameWindow reports whether a booking record was made for this search window
func (c *SearchCriteria) SameWindow(r *BookingRecord) bool {
	return r.ServiceID == c.ServiceID && r.DateFrom == c.DateFrom && r.DateTo == c.DateTo
}

func uniqueSorted(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
