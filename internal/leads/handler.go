package leads

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rafaleads/rafaleads/internal/api/respond"
	"github.com/rafaleads/rafaleads/internal/observability/metrics"
	"github.com/rafaleads/rafaleads/internal/tenancy"
	"github.com/rafaleads/rafaleads/internal/webhooklog"
	"github.com/rafaleads/rafaleads/pkg/logging"
)

const (
	webhookSecretHeader = "X-Webhook-Secret"
	webhookSource       = "n8n"
	maxWebhookBody      = 1 << 20
)

// Handler handles HTTP requests for leads
type Handler struct {
	repo    Repository
	audit   webhooklog.Store
	metrics *metrics.Metrics
	secret  string
	now     func() time.Time
	logger  *logging.Logger
}

// NewHandler creates a new leads handler. The secret guards the inbound
// webhook; an empty secret disables the check.
func NewHandler(repo Repository, audit webhooklog.Store, m *metrics.Metrics, secret string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:    repo,
		audit:   audit,
		metrics: m,
		secret:  secret,
		now:     time.Now,
		logger:  logger,
	}
}

func (h *Handler) logWebhookEvent(r *http.Request, payload string, status webhooklog.Status, errMsg string) {
	if h.audit == nil {
		return
	}
	entry := webhooklog.Entry{
		Source: webhookSource,
		Event:  "lead_created",
		Data:   payload,
		Status: status,
		Error:  errMsg,
	}
	if err := h.audit.Append(r.Context(), entry); err != nil {
		h.logger.Error("failed to append webhook log", "error", err)
	}
}

// IngestWebhook handles POST /webhook/leads requests from the automation
// webhook. One audit entry is appended per attempt, success or failure.
func (h *Handler) IngestWebhook(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	defer func() {
		h.metrics.ObserveWebhookLatency(time.Since(start).Seconds())
	}()

	// The shared-secret check happens before the body is touched.
	if h.secret != "" && r.Header.Get(webhookSecretHeader) != h.secret {
		h.metrics.ObserveLeadIngested("unauthorized")
		h.logWebhookEvent(r, "", webhooklog.StatusError, "invalid webhook secret")
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.metrics.ObserveLeadIngested("error")
		h.logWebhookEvent(r, "", webhooklog.StatusError, "failed to read body")
		respond.Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req IngestLeadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.metrics.ObserveLeadIngested("rejected")
		h.logWebhookEvent(r, string(body), webhooklog.StatusError, "invalid JSON body")
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		var missing *MissingFieldError
		switch {
		case errors.As(err, &missing), errors.Is(err, ErrInvalidLang):
			h.metrics.ObserveLeadIngested("rejected")
			h.logWebhookEvent(r, string(body), webhooklog.StatusError, err.Error())
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDuplicateSession):
			h.metrics.ObserveLeadIngested("conflict")
			h.logWebhookEvent(r, string(body), webhooklog.StatusError, err.Error())
			respond.Error(w, http.StatusConflict, "session id already exists")
		default:
			h.logger.Error("failed to create lead", "session_id", req.SessionID, "error", err)
			h.metrics.ObserveLeadIngested("error")
			h.logWebhookEvent(r, string(body), webhooklog.StatusError, "internal error")
			respond.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("lead created", "session_id", lead.SessionID, "clinic_id", lead.ClinicID)
	h.metrics.ObserveLeadIngested("created")
	h.logWebhookEvent(r, string(body), webhooklog.StatusSuccess, "")
	respond.Message(w, http.StatusCreated, lead, "Lead created successfully")
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ListLeads handles GET /api/leads requests.
// Query params: clinic_id, start_date, end_date (inclusive), treatment
// (comma-separated allow-list), limit, offset.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := h.resolveClinic(w, r)
	if !ok {
		return
	}

	filter := ListFilter{
		Limit:  50,
		Offset: 0,
	}

	q := r.URL.Query()
	start, err := parseDate(q.Get("start_date"), false)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid start_date, use RFC3339 or YYYY-MM-DD")
		return
	}
	end, err := parseDate(q.Get("end_date"), true)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid end_date, use RFC3339 or YYYY-MM-DD")
		return
	}
	filter.StartDate = start
	filter.EndDate = end

	if treatment := strings.TrimSpace(q.Get("treatment")); treatment != "" {
		for _, t := range strings.Split(treatment, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Treatments = append(filter.Treatments, t)
			}
		}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	list, total, err := h.repo.List(r.Context(), clinicID, filter)
	if err != nil {
		h.logger.Error("failed to list leads", "clinic_id", clinicID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if list == nil {
		list = []*Lead{}
	}

	respond.JSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  list,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetStats handles GET /api/stats requests.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := h.resolveClinic(w, r)
	if !ok {
		return
	}

	stats, err := h.repo.Stats(r.Context(), clinicID, h.now())
	if err != nil {
		h.logger.Error("failed to get stats", "clinic_id", clinicID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond.JSON(w, http.StatusOK, stats)
}

// UpdateNotesRequest is the PATCH body for operator notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// UpdateNotes handles PATCH /api/leads/{session_id} requests.
func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		respond.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	clinicID, ok := tenancy.ClinicIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing clinic context")
		return
	}

	var req UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	lead, err := h.repo.UpdateNotes(r.Context(), clinicID, sessionID, req.Notes)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			respond.Error(w, http.StatusNotFound, "lead not found")
			return
		}
		h.logger.Error("failed to update lead notes", "session_id", sessionID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond.Message(w, http.StatusOK, lead, "Lead updated successfully")
}

// resolveClinic extracts the clinic id from the query and checks it against
// the dashboard token's clinic.
func (h *Handler) resolveClinic(w http.ResponseWriter, r *http.Request) (string, bool) {
	clinicID := r.URL.Query().Get("clinic_id")
	tokenClinic, hasToken := tenancy.ClinicIDFromContext(r.Context())
	if clinicID == "" {
		clinicID = tokenClinic
	}
	if clinicID == "" {
		respond.Error(w, http.StatusBadRequest, "clinic_id is required")
		return "", false
	}
	if hasToken && tokenClinic != clinicID {
		respond.Error(w, http.StatusForbidden, "token is not valid for this clinic")
		return "", false
	}
	return clinicID, true
}

// parseDate accepts RFC3339 timestamps or plain dates. A date-only end bound
// is widened to the end of that day so the range stays inclusive.
func parseDate(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
