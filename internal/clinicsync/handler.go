package clinicsync

import (
	"errors"
	"net/http"

	"github.com/rafaleads/rafaleads/internal/api/respond"
	"github.com/rafaleads/rafaleads/pkg/logging"
)

// Handler exposes manual sync triggering and status to the admin surface.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a sync handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// TriggerSync handles POST /admin/sync/clinics. A pass already in flight
// yields 409 rather than a second concurrent pass.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SyncOnce(r.Context())
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			respond.Error(w, http.StatusConflict, "Sync already in progress")
			return
		}
		h.logger.Error("manual clinic sync failed", "error", err)
		respond.Error(w, http.StatusBadGateway, "Clinic sync failed")
		return
	}
	respond.Message(w, http.StatusOK, result, "Clinic sync completed")
}

// GetStatus handles GET /admin/sync/clinics.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.service.Status())
}
