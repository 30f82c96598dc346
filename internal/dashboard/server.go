// Package dashboard serves the monitoring UI and JSON API over the
// attempt store.
package dashboard

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcastro/wifiauth/internal/config"
	"github.com/mcastro/wifiauth/internal/store"
)

// Server is the dashboard HTTP server. All routes except /health
// require HTTP basic auth against the configured credentials.
type Server struct {
	cfg  config.Dashboard
	db   *store.DB
	log  *zap.Logger
	http *http.Server
}

// NewServer builds the server with its routes bound to cfg.Host:cfg.Port.
func NewServer(cfg config.Dashboard, db *store.DB, log *zap.Logger) *Server {
	s := &Server{cfg: cfg, db: db, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.authed(s.handleIndex))
	mux.HandleFunc("GET /api/attempts", s.authed(s.handleAttempts))
	mux.HandleFunc("GET /api/stats", s.authed(s.handleStats))
	mux.HandleFunc("GET /api/network-stats", s.authed(s.handleNetworkStats))
	mux.HandleFunc("GET /api/hourly-stats", s.authed(s.handleHourlyStats))

	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// URL returns the address the dashboard serves on.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s", s.http.Addr)
}

// Start serves requests until Shutdown. Blocks.
func (s *Server) Start() error {
	s.log.Info("dashboard listening", zap.String("url", s.URL()))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown performs a graceful shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("dashboard stopping")
	return s.http.Shutdown(ctx)
}

// authed wraps a handler with basic auth and request logging. Credential
// comparison is constant-time.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.Username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.Password)) == 1
		if !ok || !userOK || !passOK {
			w.Header().Set("WWW-Authenticate", `Basic realm="wifiauth dashboard"`)
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		requestID := uuid.NewString()
		s.log.Info("dashboard request",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.String("user", user),
			zap.String("remote", r.RemoteAddr))
		next(w, r)
	}
}
