package metricshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"kudos/internal/domain/auth"
	"kudos/internal/platform/metrics"
	"kudos/internal/transport/http/api"
	"kudos/internal/transport/http/middleware"
)

type Handler struct {
	Collector *metrics.Collector
	Perms     middleware.PermissionStore
}

func NewHandler(collector *metrics.Collector, perms middleware.PermissionStore) *Handler {
	return &Handler{Collector: collector, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireAnyPermission(h.Perms, auth.PermSystemAdmin, auth.PermAuditRead)).Get("/metrics", h.handleMetrics)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.Collector == nil {
		api.Fail(w, http.StatusNotFound, "metrics_disabled", "metrics are disabled", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, h.Collector.Snapshot(), middleware.GetRequestID(r.Context()))
}
