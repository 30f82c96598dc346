package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mcastro/wifiauth/internal/config"
	"github.com/mcastro/wifiauth/internal/store"
)

func testServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Dashboard{Host: "127.0.0.1", Port: 0, Username: "admin", Password: "admin123"}
	return NewServer(cfg, db, zap.NewNop()), db
}

func seedAttempts(t *testing.T, db *store.DB) {
	t.Helper()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, status := range []string{"200", "200", "FAILED"} {
		err := db.InsertAttempt(base.Add(time.Duration(i)*time.Minute), &store.Attempt{
			NetworkName:     "home",
			NetworkSSID:     "Home-5G",
			Username:        "alice",
			SessionToken:    "1700000000",
			ResponseStatus:  status,
			ResponseMessage: "msg",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func get(t *testing.T, s *Server, path string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth {
		req.SetBasicAuth("admin", "admin123")
	}
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthNoAuth(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/health", false)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestAuthRequired(t *testing.T) {
	s, _ := testServer(t)
	for _, path := range []string{"/", "/api/attempts", "/api/stats", "/api/network-stats", "/api/hourly-stats"} {
		rec := get(t, s, path, false)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestWrongCredentials(t *testing.T) {
	s, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s, db := testServer(t)
	seedAttempts(t, db)

	rec := get(t, s, "/api/stats", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Stats store.Stats `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Stats.TotalAttempts != 3 || body.Stats.SuccessfulAttempts != 2 {
		t.Errorf("stats = %+v", body.Stats)
	}
}

func TestAttemptsEndpointFilters(t *testing.T) {
	s, db := testServer(t)
	seedAttempts(t, db)

	rec := get(t, s, "/api/attempts?status_filter=failed&network_filter=home", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Attempts []store.Attempt `json:"attempts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(body.Attempts))
	}
	if body.Attempts[0].ResponseStatus != "FAILED" {
		t.Errorf("status = %q", body.Attempts[0].ResponseStatus)
	}
}

func TestAttemptsEndpointEmptyIsArray(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/api/attempts", true)
	if !strings.Contains(rec.Body.String(), `"attempts":[]`) {
		t.Errorf("empty list should encode as [], got %s", rec.Body.String())
	}
}

func TestNetworkStatsEndpoint(t *testing.T) {
	s, db := testServer(t)
	seedAttempts(t, db)

	rec := get(t, s, "/api/network-stats", true)
	var body struct {
		NetworkStats []store.NetworkStats `json:"network_stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.NetworkStats) != 1 || body.NetworkStats[0].NetworkName != "home" {
		t.Errorf("network_stats = %+v", body.NetworkStats)
	}
}

func TestIndexRenders(t *testing.T) {
	s, db := testServer(t)
	seedAttempts(t, db)

	rec := get(t, s, "/", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	html := rec.Body.String()
	for _, want := range []string{"WiFi Auto Auth Dashboard", "Home-5G", "alice"} {
		if !strings.Contains(html, want) {
			t.Errorf("index missing %q", want)
		}
	}
}
