package feedbackhandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"kudos/internal/domain/audit"
	"kudos/internal/domain/auth"
	"kudos/internal/domain/feedback"
	"kudos/internal/platform/metrics"
	"kudos/internal/transport/http/api"
	"kudos/internal/transport/http/middleware"
	"kudos/internal/transport/http/shared"
)

// Service is the part of feedback.Service the handlers use.
type Service interface {
	MyFeedback(ctx context.Context, actor feedback.Actor, since time.Time) ([]feedback.Event, error)
	EmployeeFeedback(ctx context.Context, actor feedback.Actor, employeeID string, since time.Time) ([]feedback.Event, error)
	TeamFeedback(ctx context.Context, actor feedback.Actor, since time.Time) ([]feedback.Member, []feedback.Event, error)
	MyStats(ctx context.Context, actor feedback.Actor, since time.Time) (feedback.Stats, error)
	EmployeeStats(ctx context.Context, actor feedback.Actor, employeeID string, since time.Time) (feedback.Stats, error)
	TeamStats(ctx context.Context, actor feedback.Actor, since time.Time) (feedback.TeamStats, error)
	CategoryStats(ctx context.Context, actor feedback.Actor, userID string, since time.Time) ([]feedback.CategoryStat, error)
	Badges(ctx context.Context, actor feedback.Actor, userID string) ([]feedback.Badge, error)
	Submit(ctx context.Context, actor feedback.Actor, in feedback.SubmitInput) (feedback.Event, error)
	Export(ctx context.Context, from, to time.Time) ([]feedback.Event, error)
	Import(ctx context.Context, rows []feedback.NewEvent) (int, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   shared.AuditRecorder
	Metrics *metrics.Collector
	Now     func() time.Time
}

func NewHandler(service Service, perms middleware.PermissionStore, recorder shared.AuditRecorder, collector *metrics.Collector) *Handler {
	return &Handler{
		Service: service,
		Perms:   perms,
		Audit:   recorder,
		Metrics: collector,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermFeedbackRead, h.Perms)
	team := middleware.RequirePermission(auth.PermTeamRead, h.Perms)

	r.Route("/feedback", func(r chi.Router) {
		r.With(read).Get("/my", h.handleMy)
		r.With(read).Get("/employee/{employeeID}", h.handleEmployee)
		r.With(team).Get("/team", h.handleTeam)
		r.With(read).Get("/stats/my", h.handleMyStats)
		r.With(read).Get("/stats/employee/{employeeID}", h.handleEmployeeStats)
		r.With(team).Get("/stats/team", h.handleTeamStats)
		r.With(read).Get("/stats/categories/{userID}", h.handleCategoryStats)
		r.With(read).Get("/badges/{userID}", h.handleBadges)
		r.With(middleware.RequirePermission(auth.PermFeedbackWrite, h.Perms)).Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermFeedbackExport, h.Perms)).Get("/export", h.handleExport)
	})
	r.With(middleware.RequirePermission(auth.PermFeedbackImport, h.Perms)).Post("/admin/feedback/import", h.handleImport)
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now().UTC()
	}
	return h.Now()
}

// request resolves the caller and the since bound shared by every listing.
func (h *Handler) request(w http.ResponseWriter, r *http.Request) (feedback.Actor, time.Time, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return feedback.Actor{}, time.Time{}, false
	}
	since, err := shared.ParseSince(r, h.now())
	if err != nil {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "since", Reason: "must be a valid date in YYYY-MM-DD or RFC3339 format"}})
		return feedback.Actor{}, time.Time{}, false
	}
	return shared.Actor(user), since, true
}

func (h *Handler) handleMy(w http.ResponseWriter, r *http.Request) {
	actor, since, ok := h.request(w, r)
	if !ok {
		return
	}
	events, err := h.Service.MyFeedback(r.Context(), actor, since)
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err, "feedback_list_failed", "failed to load feedback")
		return
	}
	api.Success(w, nonNil(events), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployee(w http.ResponseWriter, r *http.Request) {
	actor, since, ok := h.request(w, r)
	if !ok {
		return
	}
	events, err := h.Service.EmployeeFeedback(r.Context(), actor, chi.URLParam(r, "employeeID"), since)
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err, "feedback_list_failed", "failed to load feedback")
		return
	}
	api.Success(w, nonNil(events), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	actor, since, ok := h.request(w, r)
	if !ok {
		return
	}
	members, events, err := h.Service.TeamFeedback(r.Context(), actor, since)
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err, "feedback_list_failed", "failed to load team feedback")
		return
	}
	if members == nil {
		members = []feedback.Member{}
	}
	api.Success(w, map[string]any{"members": members, "feedback": nonNil(events)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyStats(w http.ResponseWriter, r *http.Request) {
	actor, since, ok := h.request(w, r)
	if !ok {
		return
	}
	stats, err := h.Service.MyStats(r.Context(), actor, since)
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err, "stats_failed", "failed to compute stats")
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeStats(w http.ResponseWriter, r *http.Request) {
	actor, since, ok := h.request(w, r)
	if !ok {
		return
	}
	stats, err := h.Service.EmployeeStats(r.Context(), actor, chi.URLParam(r, "employeeID"), since)
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err, "stats_failed", "failed to compute stats")
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	actor, since, ok := h.request(w, r)
	if !ok {
		return
	}
	stats, err := h.Service.TeamStats(r.Context(), actor, since)
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err, "stats_failed", "failed to compute team stats")
		return
	}
	if stats.Ranking == nil {
		stats.Ranking = []feedback.MemberStats{}
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	actor, since, ok := h.request(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.CategoryStats(r.Context(), actor, chi.URLParam(r, "userID"), since)
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err, "stats_failed", "failed to compute category stats")
		return
	}
	if rows == nil {
		rows = []feedback.CategoryStat{}
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBadges(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := h.request(w, r)
	if !ok {
		return
	}
	badges, err := h.Service.Badges(r.Context(), actor, chi.URLParam(r, "userID"))
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err, "badges_failed", "failed to load badges")
		return
	}
	if badges == nil {
		badges = []feedback.Badge{}
	}
	api.Success(w, badges, middleware.GetRequestID(r.Context()))
}

type submitRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	PointType  string `json:"pointType" validate:"required"`
	Comment    string `json:"comment" validate:"required,max=2000"`
	Category   string `json:"category" validate:"max=100"`
	Kudos      bool   `json:"kudos"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload submitRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	payload.Comment = strings.TrimSpace(payload.Comment)

	v := shared.NewValidator()
	v.Struct(payload)
	pointType, valid := feedback.ParsePointType(payload.PointType)
	if payload.PointType != "" && !valid {
		v.Add("pointType", "must be rosu or negru")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	ev, err := h.Service.Submit(r.Context(), shared.Actor(user), feedback.SubmitInput{
		EmployeeID: payload.EmployeeID,
		PointType:  pointType,
		Comment:    payload.Comment,
		Category:   payload.Category,
		Kudos:      payload.Kudos,
	})
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err, "feedback_create_failed", "failed to save feedback")
		return
	}

	h.Metrics.FeedbackCreated(1)
	shared.RecordAudit(r, h.Audit, user.UserID, audit.Entry{
		Action:     audit.ActionFeedbackCreate,
		EntityType: "feedback",
		EntityID:   ev.ID,
		After:      ev,
	})
	api.Created(w, ev, middleware.GetRequestID(r.Context()))
}

var exportHeader = []string{"id", "employee_id", "employee_name", "manager_id", "manager_name", "point_type", "is_manager_feedback", "category", "comment", "timestamp"}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	from := v.Date("from_date", query.Get("from_date"))
	to := v.DateEnd("to_date", query.Get("to_date"))
	v.DateOrder("from_date", from, "to_date", to)
	if v.Reject(w, reqID) {
		return
	}

	events, err := h.Service.Export(r.Context(), from, to)
	if err != nil {
		shared.FailError(w, reqID, err, "feedback_export_failed", "failed to export feedback")
		return
	}

	if query.Get("format") != "csv" {
		api.Success(w, nonNil(events), reqID)
		return
	}

	api.AttachmentHeaders(w, "text/csv; charset=utf-8", "feedback-export.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		slog.Warn("feedback export header failed", "err", err)
	}
	for _, ev := range events {
		record := []string{
			ev.ID, ev.EmployeeID, ev.EmployeeName, ev.ManagerID, ev.ManagerName,
			string(ev.PointType), strconv.FormatBool(ev.IsManagerFeedback),
			ev.Category, ev.Comment, ev.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			slog.Warn("feedback export row failed", "err", err, "feedbackId", ev.ID)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("feedback export flush failed", "err", err)
	}
}

func nonNil(events []feedback.Event) []feedback.Event {
	if events == nil {
		return []feedback.Event{}
	}
	return events
}
