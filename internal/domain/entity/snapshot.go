package entity

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrDuplicateConfirmed is returned when a second confirmed booking would be
// appended for the same search window on the same calendar day
var ErrDuplicateConfirmed = errors.New("confirmed booking already exists for this search window today")

// UserState is everything the local database keeps for one user
type UserState struct {
	SearchCriteria *SearchCriteria `json:"search_criteria,omitempty"`
	Bookings       Ledger          `json:"bookings"`
}

// RunMeta describes hunter runs
type RunMeta struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Runs      int        `json:"runs"`
}

// Snapshot is the whole local database document.
// It is loaded, mutated and saved as a whole.
type Snapshot struct {
	Users map[string]*UserState `json:"users"`
	Meta  RunMeta               `json:"meta"`
}

// NewSnapshot returns an empty database document
func NewSnapshot() Snapshot {
	return Snapshot{Users: make(map[string]*UserState)}
}

// UserIDs returns the known users sorted
func (s *Snapshot) UserIDs() []string {
	ids := make([]string, 0, len(s.Users))
	for id := range s.Users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Criteria returns the stored search criteria of a user
func (s *Snapshot) Criteria(userID string) (*SearchCriteria, bool) {
	u, ok := s.Users[userID]
	if !ok || u.SearchCriteria == nil {
		return nil, false
	}
	return u.SearchCriteria, true
}

// ReplaceCriteria stores criteria for its user, replacing any previous value
func (s *Snapshot) ReplaceCriteria(criteria SearchCriteria) {
	criteria.Normalize()
	s.user(criteria.UserID).SearchCriteria = &criteria
}

// Ledger returns the booking ledger of a user
func (s *Snapshot) Ledger(userID string) Ledger {
	if u, ok := s.Users[userID]; ok {
		return u.Bookings
	}
	return nil
}

// AppendBooking appends a record to its user's ledger.
// At most one confirmed record per search window per calendar day is allowed.
func (s *Snapshot) AppendBooking(record BookingRecord) error {
	u := s.user(record.UserID)
	if record.IsConfirmed() {
		window := SearchCriteria{ServiceID: record.ServiceID, DateFrom: record.DateFrom, DateTo: record.DateTo}
		if existing := u.Bookings.ConfirmedOn(&window, record.BookedAt); existing != nil {
			return fmt.Errorf("%w: slot %s", ErrDuplicateConfirmed, existing.SlotID)
		}
	}
	u.Bookings = append(u.Bookings, record)
	return nil
}

// MarkRun records a hunter run
func (s *Snapshot) MarkRun(at time.Time) {
	s.Meta.LastRunAt = &at
	s.Meta.Runs++
}

func (s *Snapshot) user(userID string) *UserState {
	if s.Users == nil {
		s.Users = make(map[string]*UserState)
	}
	u, ok := s.Users[userID]
	if !ok {
		u = &UserState{}
		s.Users[userID] = u
	}
	return u
}
