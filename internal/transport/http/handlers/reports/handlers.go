package reportshandler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"kudos/internal/domain/auth"
	"kudos/internal/domain/feedback"
	"kudos/internal/domain/period"
	"kudos/internal/domain/reports"
	"kudos/internal/transport/http/api"
	"kudos/internal/transport/http/middleware"
	"kudos/internal/transport/http/shared"
)

type Service interface {
	EmployeeDashboard(ctx context.Context, actor feedback.Actor, p period.Period) (reports.EmployeeDashboard, error)
	ManagerDashboard(ctx context.Context, actor feedback.Actor, p period.Period) (reports.ManagerDashboard, error)
	AdminStats(ctx context.Context) (reports.AdminStats, error)
	EmployeeReport(ctx context.Context, actor feedback.Actor, employeeID string, p period.Period) (reports.FeedbackReport, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Render  func(reports.FeedbackReport) ([]byte, error)
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms, Render: reports.RenderPDF}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard/employee", h.handleEmployeeDashboard)
		r.With(middleware.RequirePermission(auth.PermTeamRead, h.Perms)).Get("/dashboard/manager", h.handleManagerDashboard)
	})
	r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Get("/admin/stats", h.handleAdminStats)
	r.With(middleware.RequirePermission(auth.PermFeedbackRead, h.Perms)).Get("/feedback/report/{employeeID}.pdf", h.handlePDF)
}

func (h *Handler) handleEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	dashboard, err := h.Service.EmployeeDashboard(r.Context(), shared.Actor(user), shared.ParsePeriod(r))
	if err != nil {
		shared.FailError(w, reqID, err, "dashboard_failed", "failed to load dashboard")
		return
	}
	api.Success(w, dashboard, reqID)
}

func (h *Handler) handleManagerDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	dashboard, err := h.Service.ManagerDashboard(r.Context(), shared.Actor(user), shared.ParsePeriod(r))
	if err != nil {
		shared.FailError(w, reqID, err, "dashboard_failed", "failed to load dashboard")
		return
	}
	api.Success(w, dashboard, reqID)
}

func (h *Handler) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	stats, err := h.Service.AdminStats(r.Context())
	if err != nil {
		shared.FailError(w, reqID, err, "admin_stats_failed", "failed to load statistics")
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	report, err := h.Service.EmployeeReport(r.Context(), shared.Actor(user), employeeID, shared.ParsePeriod(r))
	if err != nil {
		shared.FailError(w, reqID, err, "report_failed", "failed to build report")
		return
	}
	body, err := h.Render(report)
	if err != nil {
		shared.FailError(w, reqID, err, "report_render_failed", "failed to render report")
		return
	}
	api.Attachment(w, "application/pdf", reportFilename(report), body)
}

func reportFilename(report reports.FeedbackReport) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		}
		return -1
	}, report.Employee.Name)
	if name == "" {
		name = "angajat"
	}
	return fmt.Sprintf("feedback-%s-%s.pdf", name, report.GeneratedAt.Format("20060102"))
}
