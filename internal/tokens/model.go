package tokens

import "time"

// Token is an opaque bearer credential granting scoped access to one
// clinic's dashboard until revoked or expired.
type Token struct {
	Token     string    `json:"token"`
	ClinicID  string    `json:"clinic_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

// TokenInfo is a token joined with its clinic name for admin listings.
type TokenInfo struct {
	Token
	ClinicName   string `json:"clinic_name"`
	DashboardURL string `json:"dashboard_url,omitempty"`
}

// Validation is the result of checking a bearer token. A failed check is a
// single boolean: not-found, revoked, and expired are indistinguishable so
// the response leaks nothing about which applies.
type Validation struct {
	Valid      bool   `json:"valid"`
	ClinicID   string `json:"clinic_id,omitempty"`
	ClinicName string `json:"clinic_name,omitempty"`
}
