package entity

import (
	"cmp"
	"slices"
	"time"
)

// AvailableSlot is a bookable opening returned by the portal.
// It lives for one cycle only and is persisted only through a BookingRecord.
type AvailableSlot struct {
	SlotID        string    `json:"slot_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	LocationID    int       `json:"location_id"`
	LocationName  string    `json:"location_name,omitempty"`
	ClinicianID   int       `json:"clinician_id"`
	ClinicianName string    `json:"clinician_name,omitempty"`
	ServiceID     int       `json:"service_id"`
}

// SortSlots orders slots earliest first, ties broken by the lowest slot id.
// The portal's own ordering is never trusted.
func SortSlots(slots []AvailableSlot) {
	slices.SortStableFunc(slots, func(a, b AvailableSlot) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.SlotID, b.SlotID)
	})
}
