package usershandler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"kudos/internal/domain/audit"
	"kudos/internal/domain/auth"
	"kudos/internal/domain/feedback"
	"kudos/internal/domain/users"
	"kudos/internal/transport/http/middleware"
)

const (
	bossID = "6f1c2d3e-4a5b-4c6d-8e7f-000000000001"
	devID  = "6f1c2d3e-4a5b-4c6d-8e7f-000000000002"
)

type fakeService struct {
	users    map[string]users.User
	managers map[string]string
}

func newFakeService() *fakeService {
	return &fakeService{
		users: map[string]users.User{
			bossID: {ID: bossID, Email: "boss@example.com", Name: "Boss", Role: auth.RoleManager},
			devID:  {ID: devID, Email: "dev@example.com", Name: "Dev", Role: auth.RoleUser},
		},
		managers: map[string]string{},
	}
}

func (f *fakeService) List(context.Context) ([]users.User, error) {
	out := make([]users.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeService) Get(_ context.Context, id string) (users.User, error) {
	u, ok := f.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeService) Create(_ context.Context, in users.CreateInput) (users.User, error) {
	for _, u := range f.users {
		if u.Email == in.Email {
			return users.User{}, users.ErrEmailTaken
		}
	}
	u := users.User{ID: "new", Email: in.Email, Name: in.Name, Role: in.Role}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeService) Update(_ context.Context, id string, in users.UpdateInput) (users.User, error) {
	u := f.users[id]
	u.Name = in.Name
	u.Email = in.Email
	u.Role = in.Role
	f.users[id] = u
	return u, nil
}

func (f *fakeService) Delete(_ context.Context, actorID, id string) error {
	if actorID == id {
		return users.ErrDeleteSelf
	}
	if _, ok := f.users[id]; !ok {
		return users.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeService) SetManager(_ context.Context, userID, managerID string) error {
	if f.managers[managerID] == userID {
		return users.ErrManagerCycle
	}
	f.managers[userID] = managerID
	return nil
}

func (f *fakeService) ChangePassword(_ context.Context, _, current, _ string) error {
	if current != "parola-veche" {
		return users.ErrWrongPassword
	}
	return nil
}

func (f *fakeService) Team(_ context.Context, managerID string) ([]feedback.Member, error) {
	var out []feedback.Member
	for userID, m := range f.managers {
		if m == managerID {
			out = append(out, feedback.Member{ID: userID, Name: f.users[userID].Name})
		}
	}
	return out, nil
}

type recordingAudit struct {
	actions []string
}

func (a *recordingAudit) Record(_ context.Context, entry audit.Entry) error {
	a.actions = append(a.actions, entry.Action)
	return nil
}

func do(router http.Handler, method, target, body string, user auth.UserContext) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newRouter(svc *fakeService, recorder *recordingAudit) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc, auth.StaticPermissions{}, recorder).RegisterRoutes(r)
	return r
}

var (
	adminUser = auth.UserContext{UserID: "root", Role: auth.RoleAdmin}
	bossUser  = auth.UserContext{UserID: bossID, Role: auth.RoleManager}
	devUser   = auth.UserContext{UserID: devID, Role: auth.RoleUser}
)

func TestCreateUser(t *testing.T) {
	svc := newFakeService()
	recorder := &recordingAudit{}
	router := newRouter(svc, recorder)

	tests := []struct {
		name   string
		user   auth.UserContext
		body   string
		status int
	}{
		{name: "created", user: adminUser, body: `{"email":"new@example.com","name":"Nou","password":"parola-buna","role":"user"}`, status: http.StatusCreated},
		{name: "duplicate email", user: adminUser, body: `{"email":"dev@example.com","name":"Dup","password":"parola-buna","role":"user"}`, status: http.StatusConflict},
		{name: "bad role", user: adminUser, body: `{"email":"x@example.com","name":"X","password":"parola-buna","role":"root"}`, status: http.StatusBadRequest},
		{name: "bad manager id", user: adminUser, body: `{"email":"y@example.com","name":"Y","password":"parola-buna","role":"user","managerId":"7"}`, status: http.StatusBadRequest},
		{name: "not admin", user: bossUser, body: `{"email":"z@example.com","name":"Z","password":"parola-buna","role":"user"}`, status: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/users", tc.body, tc.user)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
	if len(recorder.actions) != 1 || recorder.actions[0] != audit.ActionUserCreate {
		t.Fatalf("expected one create audit entry, got %v", recorder.actions)
	}
}

func TestManagerAndTeam(t *testing.T) {
	svc := newFakeService()
	recorder := &recordingAudit{}
	router := newRouter(svc, recorder)

	rec := do(router, http.MethodPut, "/users/"+devID+"/manager", `{"managerId":"`+bossID+`"}`, adminUser)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(router, http.MethodPut, "/users/"+bossID+"/manager", `{"managerId":"`+devID+`"}`, adminUser)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected cycle to be rejected, got %d", rec.Code)
	}

	rec = do(router, http.MethodGet, "/users/me/team", "", bossUser)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Dev"`) {
		t.Fatalf("unexpected team response %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(router, http.MethodGet, "/users/me/team", "", devUser)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected plain user to be refused team view, got %d", rec.Code)
	}
	if len(recorder.actions) != 1 || recorder.actions[0] != audit.ActionManagerSet {
		t.Fatalf("unexpected audit actions %v", recorder.actions)
	}
}

func TestDeleteAndPassword(t *testing.T) {
	svc := newFakeService()
	router := newRouter(svc, &recordingAudit{})

	if rec := do(router, http.MethodDelete, "/users/root", "", adminUser); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected self delete to be rejected, got %d", rec.Code)
	}
	if rec := do(router, http.MethodDelete, "/users/"+devID, "", adminUser); rec.Code != http.StatusOK {
		t.Fatalf("expected delete to succeed, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/users/"+devID, "", adminUser); rec.Code != http.StatusNotFound {
		t.Fatalf("expected deleted user to be gone, got %d", rec.Code)
	}

	if rec := do(router, http.MethodPut, "/users/me/password", `{"currentPassword":"gresit","newPassword":"parola-noua"}`, bossUser); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected wrong current password to be rejected, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPut, "/users/me/password", `{"currentPassword":"parola-veche","newPassword":"parola-noua"}`, bossUser); rec.Code != http.StatusOK {
		t.Fatalf("expected password change to succeed, got %d", rec.Code)
	}
}
