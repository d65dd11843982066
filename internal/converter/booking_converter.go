package converter

import (
	"github.com/lakowalski/luxmedhunter/internal/delivery/dto"
	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
)

// BookingToResponse converts a BookingRecord entity to BookingResponse DTO
func BookingToResponse(record *entity.BookingRecord) *dto.BookingResponse {
	if record == nil {
		return nil
	}

	return &dto.BookingResponse{
		ID:        record.ID,
		SlotID:    record.SlotID,
		ServiceID: record.ServiceID,
		DateFrom:  record.DateFrom,
		DateTo:    record.DateTo,
		SlotStart: record.SlotStart,
		BookedAt:  record.BookedAt,
		Status:    string(record.Status),
		Reason:    record.Reason,
	}
}

// LedgerToResponse converts a user's ledger to BookingListResponse DTO, keeping ledger order
func LedgerToResponse(userID string, ledger entity.Ledger) *dto.BookingListResponse {
	resp := &dto.BookingListResponse{
		UserID:   userID,
		Bookings: make([]dto.BookingResponse, len(ledger)),
		Total:    len(ledger),
	}
	for i := range ledger {
		resp.Bookings[i] = *BookingToResponse(&ledger[i])
		if ledger[i].IsConfirmed() {
			resp.Confirmed++
		}
	}
	return resp
}
