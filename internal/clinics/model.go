package clinics

import (
	"strings"
	"time"
)

// Clinic represents a tenant clinic mirrored from the external feed or
// created through the admin surface.
type Clinic struct {
	ClinicID  string    `json:"clinic_id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	WhatsApp  string    `json:"whatsapp"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Website   string    `json:"website,omitempty"`
	Address   string    `json:"address"`
	Hours     string    `json:"hours"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateClinicRequest is the admin request body for creating a clinic.
type CreateClinicRequest struct {
	ClinicID string `json:"clinic_id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	WhatsApp string `json:"whatsapp"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Website  string `json:"website"`
	Address  string `json:"address"`
	Hours    string `json:"hours"`
	Notes    string `json:"notes"`
}

// Validate checks the required fields in a stable order.
func (r *CreateClinicRequest) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"clinic_id", r.ClinicID},
		{"name", r.Name},
		{"city", r.City},
		{"whatsapp", r.WhatsApp},
		{"phone", r.Phone},
		{"email", r.Email},
		{"address", r.Address},
		{"hours", r.Hours},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	return nil
}

func (r *CreateClinicRequest) toClinic() *Clinic {
	return &Clinic{
		ClinicID: strings.TrimSpace(r.ClinicID),
		Name:     r.Name,
		City:     r.City,
		WhatsApp: r.WhatsApp,
		Phone:    r.Phone,
		Email:    r.Email,
		Website:  r.Website,
		Address:  r.Address,
		Hours:    r.Hours,
		Notes:    r.Notes,
	}
}
