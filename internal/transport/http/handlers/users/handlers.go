package usershandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"kudos/internal/domain/audit"
	"kudos/internal/domain/auth"
	"kudos/internal/domain/feedback"
	"kudos/internal/domain/users"
	"kudos/internal/transport/http/api"
	"kudos/internal/transport/http/middleware"
	"kudos/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context) ([]users.User, error)
	Get(ctx context.Context, id string) (users.User, error)
	Create(ctx context.Context, in users.CreateInput) (users.User, error)
	Update(ctx context.Context, id string, in users.UpdateInput) (users.User, error)
	Delete(ctx context.Context, actorID, id string) error
	SetManager(ctx context.Context, userID, managerID string) error
	ChangePassword(ctx context.Context, userID, current, next string) error
	Team(ctx context.Context, managerID string) ([]feedback.Member, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   shared.AuditRecorder
}

func NewHandler(service Service, perms middleware.PermissionStore, recorder shared.AuditRecorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermUsersRead, h.Perms)
	write := middleware.RequirePermission(auth.PermUsersWrite, h.Perms)

	r.Route("/users", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermTeamRead, h.Perms)).Get("/me/team", h.handleTeam)
		r.With(middleware.RequireAuth).Put("/me/password", h.handleChangePassword)
		r.With(read).Get("/{userID}", h.handleGet)
		r.With(write).Put("/{userID}", h.handleUpdate)
		r.With(write).Delete("/{userID}", h.handleDelete)
		r.With(write).Put("/{userID}/manager", h.handleSetManager)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	list, err := h.Service.List(r.Context())
	if err != nil {
		shared.FailError(w, reqID, err, "users_list_failed", "failed to list users")
		return
	}
	if list == nil {
		list = []users.User{}
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, err := h.Service.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		shared.FailError(w, reqID, err, "user_get_failed", "failed to load user")
		return
	}
	api.Success(w, user, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload users.CreateInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)
	payload.Name = strings.TrimSpace(payload.Name)
	if shared.ValidateStruct(w, reqID, payload) {
		return
	}

	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		shared.FailError(w, reqID, err, "user_create_failed", "failed to create user")
		return
	}
	shared.RecordAudit(r, h.Audit, actor.UserID, audit.Entry{
		Action:     audit.ActionUserCreate,
		EntityType: "user",
		EntityID:   created.ID,
		After:      created,
	})
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload users.UpdateInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)
	payload.Name = strings.TrimSpace(payload.Name)
	if shared.ValidateStruct(w, reqID, payload) {
		return
	}

	before, err := h.Service.Get(r.Context(), userID)
	if err != nil {
		shared.FailError(w, reqID, err, "user_update_failed", "failed to update user")
		return
	}
	updated, err := h.Service.Update(r.Context(), userID, payload)
	if err != nil {
		shared.FailError(w, reqID, err, "user_update_failed", "failed to update user")
		return
	}
	shared.RecordAudit(r, h.Audit, actor.UserID, audit.Entry{
		Action:     audit.ActionUserUpdate,
		EntityType: "user",
		EntityID:   userID,
		Before:     before,
		After:      updated,
	})
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	if err := h.Service.Delete(r.Context(), actor.UserID, userID); err != nil {
		shared.FailError(w, reqID, err, "user_delete_failed", "failed to delete user")
		return
	}
	shared.RecordAudit(r, h.Audit, actor.UserID, audit.Entry{
		Action:     audit.ActionUserDelete,
		EntityType: "user",
		EntityID:   userID,
	})
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

type managerRequest struct {
	ManagerID string `json:"managerId" validate:"omitempty,uuid"`
}

// handleSetManager replaces the manager of a user. An empty managerId
// detaches the user from the hierarchy.
func (h *Handler) handleSetManager(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload managerRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	payload.ManagerID = strings.TrimSpace(payload.ManagerID)
	if shared.ValidateStruct(w, reqID, payload) {
		return
	}

	if err := h.Service.SetManager(r.Context(), userID, payload.ManagerID); err != nil {
		shared.FailError(w, reqID, err, "manager_update_failed", "failed to update manager")
		return
	}
	shared.RecordAudit(r, h.Audit, actor.UserID, audit.Entry{
		Action:     audit.ActionManagerSet,
		EntityType: "user",
		EntityID:   userID,
		After:      payload,
	})
	api.Success(w, map[string]string{"status": "updated"}, reqID)
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload passwordRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	if shared.ValidateStruct(w, reqID, payload) {
		return
	}
	if err := h.Service.ChangePassword(r.Context(), actor.UserID, payload.CurrentPassword, payload.NewPassword); err != nil {
		shared.FailError(w, reqID, err, "password_change_failed", "failed to change password")
		return
	}
	shared.RecordAudit(r, h.Audit, actor.UserID, audit.Entry{
		Action:     audit.ActionPasswordChange,
		EntityType: "user",
		EntityID:   actor.UserID,
	})
	api.Success(w, map[string]string{"status": "password_changed"}, reqID)
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	members, err := h.Service.Team(r.Context(), actor.UserID)
	if err != nil {
		shared.FailError(w, reqID, err, "team_failed", "failed to load team")
		return
	}
	if members == nil {
		members = []feedback.Member{}
	}
	api.Success(w, members, reqID)
}
