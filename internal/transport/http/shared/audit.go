package shared

import (
	"context"
	"log/slog"
	"net/http"

	"kudos/internal/domain/audit"
	"kudos/internal/platform/requestctx"
)

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// RecordAudit fills the request metadata into entry and records it. Audit
// failures never fail the request.
func RecordAudit(r *http.Request, recorder AuditRecorder, actorID string, entry audit.Entry) {
	if recorder == nil {
		return
	}
	entry.ActorID = actorID
	entry.RequestID = requestctx.GetRequestID(r.Context())
	entry.IP = requestctx.GetClientIP(r.Context())
	if err := recorder.Record(r.Context(), entry); err != nil {
		slog.Warn("audit record failed", "err", err, "action", entry.Action, "entityId", entry.EntityID)
	}
}
