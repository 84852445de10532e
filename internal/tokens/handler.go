package tokens

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rafaleads/rafaleads/internal/api/respond"
	"github.com/rafaleads/rafaleads/internal/clinics"
	"github.com/rafaleads/rafaleads/pkg/logging"
)

// Handler exposes token validation to dashboards and token administration to
// operators.
type Handler struct {
	service       *Service
	clinics       clinics.Repository
	publicBaseURL string
	logger        *logging.Logger
}

// NewHandler creates a token handler. publicBaseURL is used to build
// dashboard links for newly issued tokens.
func NewHandler(service *Service, clinicRepo clinics.Repository, publicBaseURL string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:       service,
		clinics:       clinicRepo,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

type validateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles POST /validate-token. Invalid, expired, and revoked
// tokens all produce the same 401.
func (h *Handler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req validateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respond.Error(w, http.StatusBadRequest, "Token is required")
		return
	}

	result, err := h.service.Validate(r.Context(), req.Token)
	if err != nil {
		h.logger.Error("token validation failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to validate token")
		return
	}
	if !result.Valid {
		respond.Error(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

type issueTokenRequest struct {
	ClinicID string `json:"clinic_id"`
	Days     int    `json:"days,omitempty"`
}

// IssueToken handles POST /admin/tokens.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ClinicID == "" {
		respond.Error(w, http.StatusBadRequest, "missing required field: clinic_id")
		return
	}

	clinic, err := h.clinics.GetByID(r.Context(), req.ClinicID)
	if err != nil {
		if errors.Is(err, clinics.ErrClinicNotFound) {
			respond.Error(w, http.StatusNotFound, "Clinic not found")
			return
		}
		h.logger.Error("clinic lookup failed", "clinic_id", req.ClinicID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	token, err := h.service.Issue(r.Context(), req.ClinicID, req.Days)
	if err != nil {
		h.logger.Error("token issue failed", "clinic_id", req.ClinicID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	info := &TokenInfo{
		Token:        *token,
		ClinicName:   clinic.Name,
		DashboardURL: h.dashboardURL(token.Token),
	}
	h.logger.Info("dashboard token issued", "clinic_id", token.ClinicID, "expires_at", token.ExpiresAt)
	respond.Message(w, http.StatusCreated, info, "Token created successfully")
}

type revokeTokenRequest struct {
	Token string `json:"token"`
}

// RevokeToken handles DELETE /admin/tokens. Deletion is immediate: the token
// fails validation from the next request on.
func (h *Handler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	var req revokeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respond.Error(w, http.StatusBadRequest, "Token is required")
		return
	}

	if err := h.service.Revoke(r.Context(), req.Token); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			respond.Error(w, http.StatusNotFound, "Token not found")
			return
		}
		h.logger.Error("token revoke failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to revoke token")
		return
	}
	h.logger.Info("dashboard token revoked")
	respond.Message(w, http.StatusOK, nil, "Token revoked successfully")
}

// ListTokensResponse wraps a token listing.
type ListTokensResponse struct {
	Tokens []*TokenInfo `json:"tokens"`
	Count  int          `json:"count"`
}

// ListTokens handles GET /admin/tokens with an optional clinic_id filter.
func (h *Handler) ListTokens(w http.ResponseWriter, r *http.Request) {
	clinicID := r.URL.Query().Get("clinic_id")

	infos, err := h.service.List(r.Context(), clinicID)
	if err != nil {
		h.logger.Error("token list failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to list tokens")
		return
	}
	for _, info := range infos {
		info.DashboardURL = h.dashboardURL(info.Token.Token)
	}
	respond.JSON(w, http.StatusOK, &ListTokensResponse{Tokens: infos, Count: len(infos)})
}

func (h *Handler) dashboardURL(token string) string {
	if h.publicBaseURL == "" {
		return ""
	}
	return h.publicBaseURL + "/dashboard/" + token
}
