package audithandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"kudos/internal/domain/audit"
	"kudos/internal/domain/auth"
	"kudos/internal/transport/http/middleware"
)

type fakeAudit struct {
	filter audit.Filter
	limit  int
	offset int
}

func (f *fakeAudit) Count(_ context.Context, filter audit.Filter) (int, error) {
	return 3, nil
}

func (f *fakeAudit) List(_ context.Context, filter audit.Filter, _ bool, limit, offset int) ([]audit.Event, error) {
	f.filter = filter
	f.limit = limit
	f.offset = offset
	return []audit.Event{{
		ID: "e1", ActorID: "root", Action: audit.ActionFeedbackCreate, EntityType: "feedback", EntityID: "f1",
		CreatedAt: time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC),
	}}, nil
}

func serve(svc *fakeAudit, target string, role string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(svc, auth.StaticPermissions{}).RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "x", Role: role}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListEvents(t *testing.T) {
	svc := &fakeAudit{}
	rec := serve(svc, "/admin/audit?action=feedback.create&limit=1000&offset=5", auth.RoleAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Total-Count") != "3" {
		t.Fatalf("expected total header, got %q", rec.Header().Get("X-Total-Count"))
	}
	if svc.filter.Action != audit.ActionFeedbackCreate || svc.limit != 500 || svc.offset != 5 {
		t.Fatalf("unexpected query %+v limit=%d offset=%d", svc.filter, svc.limit, svc.offset)
	}

	if rec := serve(svc, "/admin/audit", auth.RoleManager); rec.Code != http.StatusForbidden {
		t.Fatalf("expected manager to be refused, got %d", rec.Code)
	}
}

func TestExportEvents(t *testing.T) {
	rec := serve(&fakeAudit{}, "/admin/audit/export", auth.RoleAdmin)
	body := rec.Body.String()
	if !strings.HasPrefix(body, "id,actor_user_id") || !strings.Contains(body, "feedback.create") || !strings.Contains(body, "2024-06-01T08:00:00Z") {
		t.Fatalf("unexpected csv %q", body)
	}
}
