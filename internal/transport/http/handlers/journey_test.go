package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"kudos/internal/app/server"
	"kudos/internal/domain/feedback"
	"kudos/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	cfg := config.Load()
	cfg.DatabaseURL = dbURL
	cfg.JWTSecret = "test-secret"
	cfg.Environment = "test"
	cfg.SeedAdminEmail = "admin@test.local"
	cfg.SeedAdminPassword = "ChangeMe123!"
	cfg.RunMigrations = true
	cfg.RunSeed = true
	cfg.EmailEnabled = false
	cfg.RateLimitPerMinute = 1000
	return cfg
}

func startApp(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()
	cfg := testConfig(t)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return ts, cfg
}

func TestFeedbackJourney(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	managerEmail := fmt.Sprintf("sef-%d@example.com", suffix)
	employeeEmail := fmt.Sprintf("ana-%d@example.com", suffix)
	managerID := createUser(t, client, ts.URL, adminToken, managerEmail, "Șef Echipă", "manager")
	employeeID := createUser(t, client, ts.URL, adminToken, employeeEmail, "Ana Pop", "user")

	doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/users/"+employeeID+"/manager", adminToken,
		map[string]any{"managerId": managerID}, http.StatusOK)

	managerToken := login(t, client, ts.URL, managerEmail, "Parola123!")
	employeeToken := login(t, client, ts.URL, employeeEmail, "Parola123!")

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/feedback", managerToken, map[string]any{
		"employeeId": employeeID, "pointType": "rosu", "comment": "Prezentare excelentă", "category": "General",
	}, http.StatusCreated)
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/feedback", managerToken, map[string]any{
		"employeeId": employeeID, "pointType": "negru", "comment": "Termen ratat",
	}, http.StatusCreated)

	// Peers cannot give black points.
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/feedback", employeeToken, map[string]any{
		"employeeId": managerID, "pointType": "negru", "comment": "nu",
	}, http.StatusForbidden)
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/feedback", employeeToken, map[string]any{
		"employeeId": employeeID, "pointType": "rosu", "comment": "eu",
	}, http.StatusBadRequest)

	resp := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/feedback/stats/my?period=all", employeeToken, nil, http.StatusOK)
	var stats feedback.Stats
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.RedManager != 1 || stats.Black != 1 || stats.PercentageRed != 50 || stats.Rating != feedback.RatingGood {
		t.Fatalf("unexpected employee stats %+v", stats)
	}

	resp = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/feedback/stats/team?period=1m", managerToken, nil, http.StatusOK)
	var team feedback.TeamStats
	if err := json.Unmarshal(resp.Data, &team); err != nil {
		t.Fatalf("decode team stats: %v", err)
	}
	if team.Team.Total != 2 {
		t.Fatalf("unexpected team stats %+v", team)
	}

	// The employee cannot read their manager's feedback.
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/feedback/employee/"+managerID, employeeToken, nil, http.StatusForbidden)

	req := newRequest(t, http.MethodGet, ts.URL+"/api/v1/feedback/export?format=csv", adminToken, nil)
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), "Prezentare excelentă") {
		t.Fatalf("unexpected export %d: %s", res.StatusCode, body)
	}

	req = newRequest(t, http.MethodGet, ts.URL+"/api/v1/feedback/report/"+employeeID+".pdf", managerToken, nil)
	res, err = client.Do(req)
	if err != nil {
		t.Fatalf("report request failed: %v", err)
	}
	body, _ = io.ReadAll(res.Body)
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK || !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("unexpected report %d", res.StatusCode)
	}
}

func TestAdminOnlyRoutes(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	email := fmt.Sprintf("user-%d@example.com", time.Now().UnixNano())
	createUser(t, client, ts.URL, adminToken, email, "Ion", "user")
	userToken := login(t, client, ts.URL, email, "Parola123!")

	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/admin/stats", userToken, nil, http.StatusForbidden)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/admin/audit", userToken, nil, http.StatusForbidden)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/admin/stats", adminToken, nil, http.StatusOK)

	resp := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/admin/audit?action=user.create", adminToken, nil, http.StatusOK)
	var events []map[string]any
	if err := json.Unmarshal(resp.Data, &events); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected user creation to be audited")
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createUser(t *testing.T, client *http.Client, baseURL, token, email, name, role string) string {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/users", token, map[string]any{
		"email":    email,
		"name":     name,
		"password": "Parola123!",
		"role":     role,
	}, http.StatusCreated)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected user id")
	}
	return id
}

func newRequest(t *testing.T, method, url, token string, payload any) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, payload any, wantStatus int) envelope {
	t.Helper()
	resp, err := client.Do(newRequest(t, method, url, token, payload))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, wantStatus, resp.StatusCode, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
