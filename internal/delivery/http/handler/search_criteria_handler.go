package handler

import (
	"errors"
	"net/http"

	"github.com/lakowalski/luxmedhunter/internal/converter"
	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/usecase"
	"github.com/lakowalski/luxmedhunter/pkg/response"

	"github.com/gorilla/mux"
)

type SearchCriteriaHandler struct {
	huntingUsecase usecase.HuntingUsecase
}

func NewSearchCriteriaHandler(huntingUsecase usecase.HuntingUsecase) *SearchCriteriaHandler {
	return &SearchCriteriaHandler{
		huntingUsecase: huntingUsecase,
	}
}

func (h *SearchCriteriaHandler) GetSearchCriteria(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	criteria, err := h.huntingUsecase.GetSearchCriteria(r.Context(), userID)
	if err != nil {
		if errors.Is(err, entity.ErrNoSearchCriteria) {
			response.NotFound(w, "No search criteria stored for this user")
			return
		}
		response.InternalServerError(w, "Failed to load search criteria")
		return
	}

	response.Success(w, http.StatusOK, "Search criteria retrieved successfully", converter.SearchCriteriaToResponse(criteria))
}
