package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rafaleads/rafaleads/internal/clinics"
	"github.com/rafaleads/rafaleads/internal/leads"
	"github.com/rafaleads/rafaleads/internal/tokens"
	"github.com/rafaleads/rafaleads/internal/webhooklog"
)

const (
	testWebhookSecret = "hook-secret"
	testAdminSecret   = "admin-secret"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	clinicRepo := clinics.NewInMemoryRepository()
	if _, err := clinicRepo.Create(context.Background(), &clinics.Clinic{
		ClinicID: "clinic-1",
		Name:     "Glow Clinic",
		City:     "Dubai",
		WhatsApp: "+971500000001",
		Phone:    "+971400000001",
		Email:    "hello@glow.example",
		Address:  "1 Marina Walk",
		Hours:    "9-6",
	}); err != nil {
		t.Fatalf("seed clinic: %v", err)
	}

	tokenRepo := tokens.NewInMemoryRepository()
	tokenRepo.SetClinicName("clinic-1", "Glow Clinic")
	if err := tokenRepo.Create(context.Background(), &tokens.Token{
		Token:     "tok-live",
		ClinicID:  "clinic-1",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Active:    true,
	}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	tokenSvc := tokens.NewService(tokenRepo, nil, 365)

	leadRepo := leads.NewInMemoryRepository()
	audit := webhooklog.NewMemoryStore()

	return New(&Config{
		LeadsHandler:   leads.NewHandler(leadRepo, audit, nil, testWebhookSecret, nil),
		ClinicsHandler: clinics.NewHandler(clinicRepo, nil),
		TokensHandler:  tokens.NewHandler(tokenSvc, clinicRepo, "https://leads.example.com", nil),
		TokenValidator: tokenSvc,
		AdminSecret:    testAdminSecret,
	})
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouterWebhookThenDashboardRead(t *testing.T) {
	r := newTestRouter(t)

	payload := map[string]string{
		"session_id":   "sess-1",
		"clinic_id":    "clinic-1",
		"name":         "Sara",
		"phone":        "+966512345678",
		"treatment_id": "botox",
		"message":      "price?",
	}
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/webhook/leads", bytes.NewReader(raw))
	req.Header.Set("X-Webhook-Secret", testWebhookSecret)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest status = %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/leads?clinic_id=clinic-1", nil)
	req.Header.Set("Authorization", "Bearer tok-live")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			Leads []leads.Lead `json:"leads"`
			Total int64        `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 1 || len(resp.Data.Leads) != 1 || resp.Data.Leads[0].SessionID != "sess-1" {
		t.Errorf("got %+v", resp.Data)
	}
}

func TestRouterDashboardRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/leads?clinic_id=clinic-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/leads?clinic_id=clinic-1", nil)
	req.Header.Set("Authorization", "Bearer tok-bogus")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}
}

func TestRouterAdminRequiresSecret(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/clinics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no auth status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/clinics", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminSecret)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterValidateTokenPublic(t *testing.T) {
	r := newTestRouter(t)

	raw := []byte(`{"token":"tok-live"}`)
	req := httptest.NewRequest(http.MethodPost, "/validate-token", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}
