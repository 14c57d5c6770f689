package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
	"github.com/ternarybob/affilink/internal/services/maintenance"
)

// MaintenanceHandler triggers reconciliation runs over HTTP
type MaintenanceHandler struct {
	service *maintenance.Service
	logger  arbor.ILogger
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(service *maintenance.Service) *MaintenanceHandler {
	return &MaintenanceHandler{
		service: service,
		logger:  common.GetLogger(),
	}
}

// RunHandler handles POST /api/maintenance/run and executes one full
// reconciliation pass synchronously, returning the aggregate report.
func (h *MaintenanceHandler) RunHandler(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{http.MethodPost: h.run})
}

func (h *MaintenanceHandler) run(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RunDaily(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Maintenance run failed")
		status := http.StatusInternalServerError
		if errors.Is(err, maintenance.ErrRunInProgress) {
			status = http.StatusConflict
		}
		writeJSONError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
