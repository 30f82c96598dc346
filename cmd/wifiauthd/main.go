package main

import (
	"flag"

	"go.uber.org/fx"

	"github.com/mcastro/wifiauth/internal/config"
	"github.com/mcastro/wifiauth/internal/daemon"
	"github.com/mcastro/wifiauth/internal/prefs"
	"github.com/mcastro/wifiauth/internal/store"
)

func main() {
	configFlag := flag.String("config", "", "path to config.json (overrides prefs)")
	dbFlag := flag.String("db", "", "path to the attempt database (overrides prefs)")
	hostFlag := flag.String("host", "", "bind host (overrides config file)")
	portFlag := flag.Int("port", 0, "bind port (overrides config file)")
	levelFlag := flag.String("log-level", "", "log level: debug, info, warn, error")
	qrFlag := flag.Bool("qr", false, "print a QR code of the dashboard URL on start")
	flag.Parse()

	userPrefs := prefs.LoadOrEmpty()

	app := fx.New(
		daemon.Module(daemon.Params{
			ConfigPath: prefs.Resolve(*configFlag, userPrefs.ConfigPath, config.DefaultPath),
			DBPath:     prefs.Resolve(*dbFlag, userPrefs.DBPath, store.DefaultPath),
			LogLevel:   prefs.Resolve(*levelFlag, userPrefs.LogLevel, "info"),
			Host:       *hostFlag,
			Port:       *portFlag,
			ShowQR:     *qrFlag,
		}),
	)

	app.Run()
}
