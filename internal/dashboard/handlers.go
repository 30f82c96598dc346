package dashboard

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mcastro/wifiauth/internal/store"
)

//go:embed index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "index.html"))

type indexData struct {
	Stats          *store.Stats
	NetworkStats   []store.NetworkStats
	RecentAttempts []store.Attempt
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		s.fail(w, "load stats", err)
		return
	}
	networkStats, err := s.db.GetNetworkStats()
	if err != nil {
		s.fail(w, "load network stats", err)
		return
	}
	recent, err := s.db.ListAttempts(store.Filter{Limit: 10})
	if err != nil {
		s.fail(w, "load attempts", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = indexTemplate.Execute(w, indexData{
		Stats:          stats,
		NetworkStats:   networkStats,
		RecentAttempts: recent,
	})
	if err != nil {
		s.log.Error("render dashboard", zap.Error(err))
	}
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	attempts, err := s.db.ListAttempts(store.Filter{
		Limit:     limit,
		Network:   q.Get("network_filter"),
		Status:    q.Get("status_filter"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	})
	if err != nil {
		s.fail(w, "list attempts", err)
		return
	}
	if attempts == nil {
		attempts = []store.Attempt{}
	}
	s.writeJSON(w, map[string]any{"attempts": attempts})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		s.fail(w, "load stats", err)
		return
	}
	s.writeJSON(w, map[string]any{"stats": stats})
}

func (s *Server) handleNetworkStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetNetworkStats()
	if err != nil {
		s.fail(w, "load network stats", err)
		return
	}
	if stats == nil {
		stats = []store.NetworkStats{}
	}
	s.writeJSON(w, map[string]any{"network_stats": stats})
}

func (s *Server) handleHourlyStats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	stats, err := s.db.GetHourlyStats(days)
	if err != nil {
		s.fail(w, "load hourly stats", err)
		return
	}
	if stats == nil {
		stats = []store.HourlyStats{}
	}
	s.writeJSON(w, map[string]any{"hourly_stats": stats})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.log.Error(what, zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}
