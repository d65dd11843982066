package converter

import (
	"github.com/lakowalski/luxmedhunter/internal/delivery/dto"
	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
)

// SearchCriteriaToResponse converts SearchCriteria entity to SearchCriteriaResponse DTO
func SearchCriteriaToResponse(c *entity.SearchCriteria) *dto.SearchCriteriaResponse {
	if c == nil {
		return nil
	}

	resp := &dto.SearchCriteriaResponse{
		UserID:               c.UserID,
		Name:                 c.Name,
		CityID:               c.CityID,
		ServiceID:            c.ServiceID,
		DateFrom:             c.DateFrom,
		DateTo:               c.DateTo,
		LocationIDs:          c.LocationIDs,
		LanguageID:           c.LanguageID,
		ClinicianID:          c.ClinicianID,
		ExcludedClinicianIDs: c.ExcludedClinicianIDs,
		AfterHour:            c.AfterHour,
		BeforeHour:           c.BeforeHour,
	}
	if resp.LocationIDs == nil {
		resp.LocationIDs = []int{}
	}
	if resp.ExcludedClinicianIDs == nil {
		resp.ExcludedClinicianIDs = []int{}
	}
	return resp
}
