package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rafaleads/rafaleads/internal/tenancy"
	"github.com/rafaleads/rafaleads/internal/tokens"
)

func newValidator(t *testing.T) *tokens.Service {
	t.Helper()
	repo := tokens.NewInMemoryRepository()
	repo.SetClinicName("clinic-1", "Glow Clinic")
	if err := repo.Create(context.Background(), &tokens.Token{
		Token:     "tok-live",
		ClinicID:  "clinic-1",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Active:    true,
	}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	return tokens.NewService(repo, nil, 365)
}

func TestRequireDashboardTokenInjectsClinic(t *testing.T) {
	mw := RequireDashboardToken(newValidator(t))
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("Authorization", "Bearer tok-live")
	rec := httptest.NewRecorder()

	var gotClinic string
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClinic, _ = tenancy.ClinicIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if gotClinic != "clinic-1" {
		t.Fatalf("clinic in context = %q, want clinic-1", gotClinic)
	}
}

func TestRequireDashboardTokenRejectsMissingHeader(t *testing.T) {
	mw := RequireDashboardToken(newValidator(t))
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireDashboardTokenRejectsUnknownToken(t *testing.T) {
	mw := RequireDashboardToken(newValidator(t))
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("Authorization", "Bearer tok-unknown")
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
