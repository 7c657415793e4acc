package feedbackhandler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"kudos/internal/domain/audit"
	"kudos/internal/domain/feedback"
	"kudos/internal/transport/http/api"
	"kudos/internal/transport/http/middleware"
	"kudos/internal/transport/http/shared"
)

const maxImportRows = 50000

type importResult struct {
	BatchID  string `json:"batchId"`
	Imported int    `json:"imported"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	rows, err := shared.DecodeLegacy(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = shared.ErrBodyTooLarge
		}
		shared.FailDecode(w, reqID, err)
		return
	}
	if len(rows) == 0 || len(rows) > maxImportRows {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "rows", Reason: fmt.Sprintf("must contain between 1 and %d records", maxImportRows)}})
		return
	}

	v := shared.NewValidator()
	events := make([]feedback.NewEvent, 0, len(rows))
	for i, row := range rows {
		field := fmt.Sprintf("rows[%d]", i+1)
		ev, err := row.NewEvent()
		if err != nil {
			v.Add(field, err.Error())
			continue
		}
		if uuid.Validate(ev.EmployeeID) != nil {
			v.Add(field+".employee_id", "must be a valid id")
		}
		if ev.ManagerID != "" && uuid.Validate(ev.ManagerID) != nil {
			v.Add(field+".manager_id", "must be a valid id")
		}
		events = append(events, ev)
	}
	if v.Reject(w, reqID) {
		return
	}

	imported, err := h.Service.Import(r.Context(), events)
	if err != nil {
		var rowErr *feedback.ImportError
		if errors.As(err, &rowErr) {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: fmt.Sprintf("rows[%d]", rowErr.Row), Reason: rowErr.Err.Error()}})
			return
		}
		shared.FailError(w, reqID, err, "feedback_import_failed", "failed to import feedback")
		return
	}

	result := importResult{BatchID: uuid.NewString(), Imported: imported}
	h.Metrics.FeedbackCreated(imported)
	shared.RecordAudit(r, h.Audit, user.UserID, audit.Entry{
		Action:     audit.ActionFeedbackImport,
		EntityType: "feedback_import",
		EntityID:   result.BatchID,
		After:      result,
	})
	api.Created(w, result, reqID)
}
