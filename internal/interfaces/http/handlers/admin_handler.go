package handlers

import (
	"net/http"
	"time"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
)

// AdminHandler serves operational endpoints.
type AdminHandler struct {
	svc    lookup.Service
	logger logging.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc lookup.Service, logger logging.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logging.OrNop(logger).Named("admin_handler")}
}

// ReloadResponse is the body of a successful reload.
type ReloadResponse struct {
	Took   string        `json:"took"`
	Status lookup.Status `json:"status"`
}

// Reload handles POST /api/v1/admin/reload. A failed reload answers 409 and
// the previous graph and aliases stay live.
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.svc.Reload(r.Context()); err != nil {
		h.logger.WithContext(r.Context()).Warn("reload rejected", logging.Err(err))
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{
		Took:   time.Since(start).Truncate(time.Millisecond).String(),
		Status: h.svc.Status(),
	})
}

// Status handles GET /api/v1/admin/status.
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}
