package handler

import (
	"net/http"

	"github.com/lakowalski/luxmedhunter/internal/converter"
	"github.com/lakowalski/luxmedhunter/internal/usecase"
	"github.com/lakowalski/luxmedhunter/pkg/response"

	"github.com/gorilla/mux"
)

type BookingHandler struct {
	huntingUsecase usecase.HuntingUsecase
}

func NewBookingHandler(huntingUsecase usecase.HuntingUsecase) *BookingHandler {
	return &BookingHandler{
		huntingUsecase: huntingUsecase,
	}
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	ledger, err := h.huntingUsecase.ListBookings(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to load bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", converter.LedgerToResponse(userID, ledger))
}
