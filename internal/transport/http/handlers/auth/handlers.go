package authhandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"kudos/internal/domain/auth"
	"kudos/internal/transport/http/api"
	"kudos/internal/transport/http/middleware"
	"kudos/internal/transport/http/shared"
)

type Service interface {
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Me(ctx context.Context, userID string) (auth.SessionUser, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.With(middleware.RequireAuth).Get("/me", h.HandleMe)
		r.Post("/forgot-password", h.HandleForgotPassword)
		r.Post("/reset-password", h.HandleResetPassword)
	})
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

// HandleLogin accepts JSON or a urlencoded form with email and password.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	values, err := shared.DecodeForm(r)
	if err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	email := strings.TrimSpace(values.Get("email"))
	if email == "" {
		email = strings.TrimSpace(values.Get("username"))
	}
	password := values.Get("password")

	v := shared.NewValidator()
	v.Required("email", email, "is required")
	v.Required("password", password, "is required")
	if v.Reject(w, reqID) {
		return
	}

	session, err := h.Service.Login(r.Context(), email, password)
	if err != nil {
		shared.FailError(w, reqID, err, "login_failed", "failed to sign in")
		return
	}
	api.Success(w, session, reqID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	me, err := h.Service.Me(r.Context(), user.UserID)
	if err != nil {
		shared.FailError(w, reqID, err, "me_failed", "failed to load profile")
		return
	}
	api.Success(w, me, reqID)
}

// HandleForgotPassword always answers the same way so the endpoint does not
// reveal which addresses have accounts.
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload forgotRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)
	if shared.ValidateStruct(w, reqID, payload) {
		return
	}
	if err := h.Service.ForgotPassword(r.Context(), payload.Email); err != nil {
		shared.FailError(w, reqID, err, "reset_request_failed", "failed to request password reset")
		return
	}
	api.Success(w, map[string]string{"status": "reset_requested"}, reqID)
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload resetPasswordRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	if shared.ValidateStruct(w, reqID, payload) {
		return
	}
	if err := h.Service.ResetPassword(r.Context(), payload.Token, payload.NewPassword); err != nil {
		shared.FailError(w, reqID, err, "password_reset_failed", "failed to reset password")
		return
	}
	api.Success(w, map[string]string{"status": "password_reset"}, reqID)
}
