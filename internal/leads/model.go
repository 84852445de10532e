package leads

import (
	"strings"
	"time"
)

// Supported lead languages.
const (
	LangArabic  = "AR"
	LangEnglish = "EN"
)

// Lead represents a captured contact/interest record tied to one clinic.
// The session id is supplied by the producer and unique per capture event.
type Lead struct {
	SessionID   string    `json:"session_id"`
	ClinicID    string    `json:"clinic_id"`
	Lang        string    `json:"lang"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	TreatmentID string    `json:"treatment_id"`
	Message     string    `json:"message"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"timestamp"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IngestLeadRequest is the webhook payload for creating a lead.
type IngestLeadRequest struct {
	SessionID   string `json:"session_id"`
	ClinicID    string `json:"clinic_id"`
	Lang        string `json:"lang"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	TreatmentID string `json:"treatment_id"`
	Message     string `json:"message"`
	Notes       string `json:"notes"`
}

// Validate checks required fields in a stable order and normalizes the
// language, defaulting to EN when absent.
func (r *IngestLeadRequest) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"session_id", r.SessionID},
		{"clinic_id", r.ClinicID},
		{"name", r.Name},
		{"phone", r.Phone},
		{"treatment_id", r.TreatmentID},
		{"message", r.Message},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Field: f.name}
		}
	}

	r.Lang = strings.ToUpper(strings.TrimSpace(r.Lang))
	if r.Lang == "" {
		r.Lang = LangEnglish
	}
	if r.Lang != LangArabic && r.Lang != LangEnglish {
		return ErrInvalidLang
	}
	return nil
}

// ListFilter narrows a lead listing. Date bounds are inclusive.
type ListFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Treatments []string
	Limit      int
	Offset     int
}

// Stats are the dashboard headline counts for one clinic.
type Stats struct {
	TotalLeads  int64 `json:"totalLeads"`
	TodayLeads  int64 `json:"todayLeads"`
	WeeklyLeads int64 `json:"weeklyLeads"`
}
