package dto

type SearchCriteriaResponse struct {
	UserID               string `json:"user_id"`
	Name                 string `json:"name,omitempty"`
	CityID               int    `json:"city_id"`
	ServiceID            int    `json:"service_id"`
	DateFrom             string `json:"date_from"`
	DateTo               string `json:"date_to"`
	LocationIDs          []int  `json:"location_ids"`
	LanguageID           int    `json:"language_id,omitempty"`
	ClinicianID          *int   `json:"clinician_id,omitempty"`
	ExcludedClinicianIDs []int  `json:"excluded_clinician_ids"`
	AfterHour            string `json:"after_hour,omitempty"`
	BeforeHour           string `json:"before_hour,omitempty"`
}
