package portal

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"
)

const defaultLookupDays = 14

type recentSearch struct {
	SearchName       string `json:"searchName"`
	CityID           int    `json:"cityId"`
	ServiceVariantID int    `json:"serviceVariantId"`
	FacilitiesIDs    []int  `json:"facilitiesIds"`
	DoctorsIDs       []int  `json:"doctorsIds"`
	SearchDateFrom   string `json:"searchDateFrom"`
	SearchDatePreset int    `json:"searchDatePreset"`
	LanguageID       int    `json:"languageId"`
}

// FetchLastSearch converts the most recent portal search of the user into criteria
func (c *Client) FetchLastSearch(ctx context.Context, session *gateway.Session) (*entity.SearchCriteria, error) {
	var searches []recentSearch
	if err := c.do(ctx, session, http.MethodGet, recentSearchesPath, nil, nil, &searches); err != nil {
		return nil, err
	}
	if len(searches) == 0 {
		return nil, fmt.Errorf("%w: the portal has no recent searches for %s", entity.ErrNoSearchCriteria, session.UserID)
	}

	return c.criteriaFrom(session.UserID, searches[0])
}

func (c *Client) criteriaFrom(userID string, s recentSearch) (*entity.SearchCriteria, error) {
	if s.ServiceVariantID == 0 {
		return nil, fmt.Errorf("%w: recent search has no service", entity.ErrPortalUnavailable)
	}

	from := c.now().In(c.location)
	if s.SearchDateFrom != "" {
		day := s.SearchDateFrom
		if len(day) > len(entity.DateLayout) {
			day = day[:len(entity.DateLayout)]
		}
		parsed, err := time.ParseInLocation(entity.DateLayout, day, c.location)
		if err != nil {
			return nil, fmt.Errorf("%w: recent search date %q: %v", entity.ErrPortalUnavailable, s.SearchDateFrom, err)
		}
		from = parsed
	}
	lookup := s.SearchDatePreset
	if lookup <= 0 {
		lookup = defaultLookupDays
	}

	criteria := &entity.SearchCriteria{
		UserID:      userID,
		Name:        strings.TrimSpace(s.SearchName),
		CityID:      s.CityID,
		ServiceID:   s.ServiceVariantID,
		DateFrom:    from.Format(entity.DateLayout),
		DateTo:      from.AddDate(0, 0, lookup).Format(entity.DateLayout),
		LocationIDs: s.FacilitiesIDs,
		LanguageID:  s.LanguageID,
	}
	if len(s.DoctorsIDs) == 1 {
		id := s.DoctorsIDs[0]
		criteria.ClinicianID = &id
	}
	criteria.Normalize()
	return criteria, nil
}
