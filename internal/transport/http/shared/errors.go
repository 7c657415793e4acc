package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"kudos/internal/domain/auth"
	"kudos/internal/domain/feedback"
	"kudos/internal/domain/users"
	"kudos/internal/transport/http/api"
)

// FailError maps domain sentinel errors to their response. Anything not
// recognised is logged and answered with a 500 carrying code and message.
func FailError(w http.ResponseWriter, requestID string, err error, code, message string) {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error(), requestID)
	case errors.Is(err, feedback.ErrNotFound), errors.Is(err, users.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "not found", requestID)
	case errors.Is(err, feedback.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, feedback.ErrBlackRequiresManager):
		api.Fail(w, http.StatusForbidden, "black_requires_manager", err.Error(), requestID)
	case errors.Is(err, feedback.ErrInvalidPointType),
		errors.Is(err, feedback.ErrCommentRequired),
		errors.Is(err, feedback.ErrSelfFeedback),
		errors.Is(err, feedback.ErrUnknownCategory),
		errors.Is(err, feedback.ErrInvalidRange),
		errors.Is(err, users.ErrManagerCycle),
		errors.Is(err, users.ErrSelfManager),
		errors.Is(err, users.ErrDeleteSelf),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidResetToken):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, users.ErrEmailTaken):
		api.Fail(w, http.StatusConflict, "email_taken", err.Error(), requestID)
	case errors.Is(err, users.ErrWrongPassword), errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", err.Error(), requestID)
	default:
		slog.Error(message, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

// Actor converts the request identity into the feedback service's view.
func Actor(user auth.UserContext) feedback.Actor {
	return feedback.Actor{ID: user.UserID, Admin: user.IsAdmin()}
}

// FailDecode answers a body that could not be decoded.
func FailDecode(w http.ResponseWriter, requestID string, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error(), requestID)
		return
	}
	api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
}
