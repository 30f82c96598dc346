// Package daemon composes the dashboard server process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mcastro/wifiauth/internal/config"
	"github.com/mcastro/wifiauth/internal/dashboard"
	"github.com/mcastro/wifiauth/internal/lock"
	"github.com/mcastro/wifiauth/internal/logging"
	"github.com/mcastro/wifiauth/internal/prefs"
	"github.com/mcastro/wifiauth/internal/qrterm"
	"github.com/mcastro/wifiauth/internal/store"
)

// Params holds the resolved daemon settings passed to the fx module.
type Params struct {
	ConfigPath string
	DBPath     string
	LogLevel   string

	// Host and Port override the config file's dashboard section when
	// non-zero.
	Host string
	Port int

	// ShowQR prints a scannable QR code of the dashboard URL on start.
	ShowQR bool
}

// Module returns the fx module for the dashboard daemon, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("wifiauthd",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideDashboardConfig,
			provideLock,
			provideStore,
			provideServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(prefs.LogPath(), logging.ParseLevel(p.LogLevel))
}

// provideDashboardConfig reads the dashboard section of the config
// file. A missing config file is not fatal here: the dashboard can
// monitor an existing attempt log before any network is configured.
func provideDashboardConfig(p Params, logger *zap.Logger) config.Dashboard {
	d := config.DefaultDashboard()
	cfg, err := config.Load(p.ConfigPath)
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		logger.Warn("no config file, using default dashboard settings",
			zap.String("path", p.ConfigPath))
	case err != nil:
		logger.Warn("config unreadable, using default dashboard settings", zap.Error(err))
	default:
		d = cfg.Dashboard
	}
	if p.Host != "" {
		d.Host = p.Host
	}
	if p.Port != 0 {
		d.Port = p.Port
	}
	return d
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	lockPath := p.DBPath + ".lock"
	l, err := lock.Acquire(lockPath)
	if err != nil {
		return nil, err
	}
	logger.Info("daemon lock acquired", zap.String("path", lockPath))
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	db, err := store.Open(p.DBPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", p.DBPath))
	return db, nil
}

func provideServer(cfg config.Dashboard, db *store.DB, logger *zap.Logger) *dashboard.Server {
	return dashboard.NewServer(cfg, db, logger)
}

func registerLifecycle(lc fx.Lifecycle, p Params, srv *dashboard.Server, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("dashboard server error", zap.Error(err))
				}
			}()
			if p.ShowQR {
				fmt.Fprintf(os.Stderr, "\nScan to open the dashboard:\n\n%s\n%s\n\n",
					qrterm.Render(srv.URL()), srv.URL())
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("dashboard shutdown error", zap.Error(err))
			}
			_ = db.Close()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing daemon lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
