package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/mcastro/wifiauth/internal/config"
	"github.com/mcastro/wifiauth/internal/logging"
	"github.com/mcastro/wifiauth/internal/prefs"
	"github.com/mcastro/wifiauth/internal/profile"
	"github.com/mcastro/wifiauth/internal/store"
	"github.com/mcastro/wifiauth/internal/wifi"
)

func main() {
	app := &cli.Command{
		Name:  "wifiauthctl",
		Usage: "Log into captive-portal WiFi networks and inspect the attempt log",
		Commands: []*cli.Command{
			loginCommand(),
			logsCommand(),
			clearCommand(),
			testCommand(),
			networksCommand(),
			setupCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are attached to every command so they can be given after
// the command name.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to config.json",
			Sources: cli.EnvVars("WIFIAUTH_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "db",
			Usage:   "Path to the attempt database",
			Sources: cli.EnvVars("WIFIAUTH_DB"),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// env bundles everything a command needs, resolved from flags, user
// prefs and built-in defaults.
type env struct {
	configPath string
	dbPath     string
	log        *zap.Logger
	resolver   *profile.Resolver
}

// resolveConfigPath applies the flag > prefs > default precedence for
// the config file location.
func resolveConfigPath(cmd *cli.Command) string {
	userPrefs := prefs.LoadOrEmpty()
	return prefs.Resolve(cmd.String("config"), userPrefs.ConfigPath, config.DefaultPath)
}

func newEnv(cmd *cli.Command) (*env, error) {
	userPrefs := prefs.LoadOrEmpty()
	configPath := prefs.Resolve(cmd.String("config"), userPrefs.ConfigPath, config.DefaultPath)
	dbPath := prefs.Resolve(cmd.String("db"), userPrefs.DBPath, store.DefaultPath)
	level := prefs.Resolve(cmd.String("log-level"), userPrefs.LogLevel, "info")

	log, err := logging.New(prefs.LogPath(), logging.ParseLevel(level))
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	detector := wifi.NewDetector(log)
	return &env{
		configPath: configPath,
		dbPath:     dbPath,
		log:        log,
		resolver:   profile.NewResolver(configPath, detector, log),
	}, nil
}

// openStore opens the attempt database, running migrations.
func (e *env) openStore() (*store.DB, error) {
	db, err := store.Open(e.dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
