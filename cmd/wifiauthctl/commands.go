package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mcastro/wifiauth/internal/config"
	"github.com/mcastro/wifiauth/internal/portal"
	"github.com/mcastro/wifiauth/internal/profile"
	"github.com/mcastro/wifiauth/internal/qrterm"
	"github.com/mcastro/wifiauth/internal/setup"
	"github.com/mcastro/wifiauth/internal/store"
	"github.com/mcastro/wifiauth/internal/wifi"
)

func networkFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "network",
		Aliases: []string{"n"},
		Usage:   "Network profile to use (overrides auto-detection)",
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Perform a login attempt against the portal",
		Flags: append(globalFlags(), networkFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			name, p, err := e.resolver.Resolve(ctx, cmd.String("network"), true)
			if err != nil {
				return configGuidance(err)
			}

			fmt.Printf("Using network profile: %s\n", name)
			fmt.Printf("Network SSID:          %s\n", p.SSID)
			fmt.Printf("Login URL:             %s\n", p.LoginURL)

			res := portal.NewClient(e.log).Login(ctx, p)

			db, err := e.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.InsertAttempt(time.Now(), &store.Attempt{
				NetworkName:     name,
				NetworkSSID:     p.SSID,
				Username:        p.Username,
				SessionToken:    res.SessionToken,
				ResponseStatus:  res.Status,
				ResponseMessage: res.Message,
			}); err != nil {
				return err
			}

			fmt.Printf("\nStatus:  %s\nMessage: %s\n", res.Status, res.Message)
			if res.Err != nil {
				return fmt.Errorf("login request failed: %w", res.Err)
			}
			return nil
		},
	}
}

func logsCommand() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "Show recent login attempts",
		Flags: append(globalFlags(),
			networkFlag(),
			&cli.IntFlag{Name: "limit", Value: 5, Usage: "Number of attempts to show"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			db, err := e.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			attempts, err := db.ListAttempts(store.Filter{
				Limit:   cmd.Int("limit"),
				Network: cmd.String("network"),
			})
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Println("No login attempts recorded.")
				return nil
			}
			for _, a := range attempts {
				fmt.Printf("%s  %-12s %-16s %-6s %s\n",
					a.Timestamp, a.NetworkName, a.NetworkSSID, a.ResponseStatus, a.ResponseMessage)
			}
			return nil
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all recorded login attempts",
		Flags: globalFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			db, err := e.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.ClearAttempts(); err != nil {
				return err
			}
			fmt.Println("All login attempts cleared.")
			return nil
		},
	}
}

func testCommand() *cli.Command {
	return &cli.Command{
		Name:  "test",
		Usage: "Check that the login URL is reachable, without logging in",
		Flags: append(globalFlags(), networkFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			name, p, err := e.resolver.Resolve(ctx, cmd.String("network"), true)
			if err != nil {
				return configGuidance(err)
			}

			fmt.Printf("Testing connection for profile %q to %s...\n", name, p.LoginURL)
			status, err := portal.NewClient(e.log).Probe(ctx, p.LoginURL)
			if err != nil {
				return fmt.Errorf("connection failed: %w", err)
			}
			fmt.Printf("Connection successful, server responded with status %d.\n", status)
			return nil
		},
	}
}

func networksCommand() *cli.Command {
	return &cli.Command{
		Name:  "networks",
		Usage: "Inspect configured network profiles",
		Commands: []*cli.Command{
			networksListCommand(),
			networksDetectCommand(),
			networksNamesCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowSubcommandHelp(cmd)
		},
	}
}

func networksListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all configured network profiles",
		Flags: globalFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			profiles := e.resolver.List()
			if profiles.Len() == 0 {
				fmt.Println("No network profiles configured. Run: wifiauthctl setup")
				return nil
			}

			currentSSID, _ := wifi.NewDetector(e.log).CurrentSSID(ctx)
			for name, p := range profiles.AllFromFront() {
				marker := ""
				if p.SSID != "" && p.SSID == currentSSID {
					marker = "  (current)"
				}
				fmt.Printf("%s%s\n", name, marker)
				fmt.Printf("    SSID:        %s\n", p.SSID)
				fmt.Printf("    URL:         %s\n", p.LoginURL)
				if p.Description != "" {
					fmt.Printf("    Description: %s\n", p.Description)
				}
			}
			if currentSSID != "" {
				fmt.Printf("\nCurrently connected to: %s\n", currentSSID)
			} else {
				fmt.Println("\nNo WiFi connection detected.")
			}
			return nil
		},
	}
}

func networksDetectCommand() *cli.Command {
	return &cli.Command{
		Name:  "detect",
		Usage: "Detect the current network and show the matching profile",
		Flags: globalFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			ssid, ok := wifi.NewDetector(e.log).CurrentSSID(ctx)
			if !ok {
				fmt.Println("No WiFi connection detected.")
				return nil
			}
			fmt.Printf("Current SSID: %s\n", ssid)

			name, p, err := e.resolver.Resolve(ctx, "", true)
			if err != nil {
				return configGuidance(err)
			}
			if p.SSID != ssid {
				fmt.Println("No profile matches this network; the resolver would fall back.")
			}
			fmt.Printf("Resolved profile: %s\n", name)
			fmt.Printf("    Login URL: %s\n", p.LoginURL)
			return nil
		},
	}
}

func networksNamesCommand() *cli.Command {
	return &cli.Command{
		Name:  "names",
		Usage: "Print the configured profile names",
		Flags: globalFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			for _, name := range e.resolver.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Run the interactive setup wizard",
		Flags: globalFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configPath := resolveConfigPath(cmd)

			cfg, err := setup.Run(configPath)
			if err != nil {
				if errors.Is(err, setup.ErrCancelled) {
					fmt.Println("Setup cancelled, nothing written.")
					return nil
				}
				return err
			}

			fmt.Printf("Configuration saved to %s\n", configPath)
			url := fmt.Sprintf("http://%s:%d", cfg.Dashboard.Host, cfg.Dashboard.Port)
			fmt.Printf("\nDashboard will be available at %s (run wifiauthd):\n\n%s\n",
				url, qrterm.Render(url))
			return nil
		},
	}
}

// configGuidance decorates configuration errors with the action the user
// should take.
func configGuidance(err error) error {
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		return fmt.Errorf("%w\nRun \"wifiauthctl setup\" to configure the application", err)
	case errors.Is(err, profile.ErrUnknownProfile):
		return fmt.Errorf("%w\nRun \"wifiauthctl networks names\" to list available profiles", err)
	default:
		return err
	}
}
