package clinics

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rafaleads/rafaleads/internal/api/respond"
	"github.com/rafaleads/rafaleads/internal/tenancy"
	"github.com/rafaleads/rafaleads/pkg/logging"
)

// Handler handles HTTP requests for clinics
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new clinics handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// GetClinic handles GET /api/clinic?clinic_id= requests. The clinic id must
// match the one resolved from the dashboard token.
func (h *Handler) GetClinic(w http.ResponseWriter, r *http.Request) {
	clinicID := r.URL.Query().Get("clinic_id")
	if clinicID == "" {
		clinicID, _ = tenancy.ClinicIDFromContext(r.Context())
	}
	if clinicID == "" {
		respond.Error(w, http.StatusBadRequest, "clinic_id is required")
		return
	}
	if tokenClinic, ok := tenancy.ClinicIDFromContext(r.Context()); ok && tokenClinic != clinicID {
		respond.Error(w, http.StatusForbidden, "token is not valid for this clinic")
		return
	}

	clinic, err := h.repo.GetByID(r.Context(), clinicID)
	if err != nil {
		if errors.Is(err, ErrClinicNotFound) {
			respond.Error(w, http.StatusNotFound, "clinic not found")
			return
		}
		h.logger.Error("failed to get clinic", "clinic_id", clinicID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond.JSON(w, http.StatusOK, clinic)
}

// ListClinicsResponse is the response for listing clinics.
type ListClinicsResponse struct {
	Clinics []*Clinic `json:"clinics"`
	Count   int       `json:"count"`
}

// ListClinics handles GET /admin/clinics requests.
func (h *Handler) ListClinics(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list clinics", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond.JSON(w, http.StatusOK, ListClinicsResponse{Clinics: list, Count: len(list)})
}

// CreateClinic handles POST /admin/clinics requests.
func (h *Handler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var req CreateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	clinic, err := h.repo.Create(r.Context(), req.toClinic())
	if err != nil {
		if errors.Is(err, ErrClinicExists) {
			respond.Error(w, http.StatusConflict, "clinic already exists")
			return
		}
		h.logger.Error("failed to create clinic", "clinic_id", req.ClinicID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("clinic created", "clinic_id", clinic.ClinicID, "name", clinic.Name)
	respond.Message(w, http.StatusCreated, clinic, "Clinic created successfully")
}
