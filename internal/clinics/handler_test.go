package clinics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rafaleads/rafaleads/internal/api/respond"
	"github.com/rafaleads/rafaleads/internal/tenancy"
	"github.com/rafaleads/rafaleads/pkg/logging"
)

func seedClinic(t *testing.T, repo *InMemoryRepository, id, name string) {
	t.Helper()
	_, err := repo.Create(context.Background(), &Clinic{
		ClinicID: id,
		Name:     name,
		City:     "Riyadh",
		WhatsApp: "+966500000001",
		Phone:    "+966500000001",
		Email:    "info@example.com",
		Address:  "King Fahd Rd",
		Hours:    "9-5",
	})
	if err != nil {
		t.Fatalf("seed clinic: %v", err)
	}
}

func TestGetClinic_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	seedClinic(t, repo, "clinic-1", "Glow Clinic")
	handler := NewHandler(repo, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/clinic?clinic_id=clinic-1", nil)
	req = req.WithContext(tenancy.WithClinicID(req.Context(), "clinic-1"))
	w := httptest.NewRecorder()

	handler.GetClinic(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var env struct {
		Success bool   `json:"success"`
		Data    Clinic `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Success || env.Data.Name != "Glow Clinic" {
		t.Errorf("unexpected response: %+v", env)
	}
}

func TestGetClinic_NotFound(t *testing.T) {
	handler := NewHandler(NewInMemoryRepository(), logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/clinic?clinic_id=nope", nil)
	req = req.WithContext(tenancy.WithClinicID(req.Context(), "nope"))
	w := httptest.NewRecorder()

	handler.GetClinic(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetClinic_TokenClinicMismatch(t *testing.T) {
	repo := NewInMemoryRepository()
	seedClinic(t, repo, "clinic-1", "Glow Clinic")
	handler := NewHandler(repo, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/clinic?clinic_id=clinic-1", nil)
	req = req.WithContext(tenancy.WithClinicID(req.Context(), "clinic-2"))
	w := httptest.NewRecorder()

	handler.GetClinic(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestCreateClinic_MissingField(t *testing.T) {
	handler := NewHandler(NewInMemoryRepository(), logging.Default())

	body := `{"clinic_id": "clinic-9", "name": "No City Clinic"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/clinics", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateClinic(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var env respond.Envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(env.Error, "city") {
		t.Errorf("error should name the missing field, got %q", env.Error)
	}
}

func TestCreateClinic_Duplicate(t *testing.T) {
	repo := NewInMemoryRepository()
	seedClinic(t, repo, "clinic-1", "Glow Clinic")
	handler := NewHandler(repo, logging.Default())

	payload, _ := json.Marshal(CreateClinicRequest{
		ClinicID: "clinic-1",
		Name:     "Glow Clinic",
		City:     "Riyadh",
		WhatsApp: "+966500000001",
		Phone:    "+966500000001",
		Email:    "info@example.com",
		Address:  "King Fahd Rd",
		Hours:    "9-5",
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/clinics", bytes.NewReader(payload))
	w := httptest.NewRecorder()

	handler.CreateClinic(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestListClinics_OrderedByName(t *testing.T) {
	repo := NewInMemoryRepository()
	seedClinic(t, repo, "clinic-2", "Zen Spa")
	seedClinic(t, repo, "clinic-1", "Aura Aesthetics")
	handler := NewHandler(repo, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/clinics", nil)
	w := httptest.NewRecorder()

	handler.ListClinics(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var env struct {
		Data ListClinicsResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Data.Count != 2 {
		t.Fatalf("count = %d, want 2", env.Data.Count)
	}
	if env.Data.Clinics[0].Name != "Aura Aesthetics" {
		t.Errorf("clinics should be ordered by name, got %q first", env.Data.Clinics[0].Name)
	}
}
