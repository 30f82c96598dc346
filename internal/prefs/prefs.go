// Package prefs holds per-user defaults in ~/.wifiauth/prefs.toml. They
// only fill in values the user did not pass on the command line; the
// network configuration itself lives in config.json.
package prefs

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Prefs represents ~/.wifiauth/prefs.toml.
type Prefs struct {
	ConfigPath string `toml:"config_path"`
	DBPath     string `toml:"db_path"`
	LogLevel   string `toml:"log_level"`
}

// Path returns the per-user preferences file path.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wifiauth", "prefs.toml")
}

// LogPath returns the shared application log file path.
func LogPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wifiauth", "logs", "wifiauth.log")
}

// Load reads prefs from the given path. Returns an error if the file is
// missing; callers treat that as "no preferences".
func Load(path string) (*Prefs, error) {
	var p Prefs
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes prefs to the given path, creating parent dirs as needed.
func Save(path string, p *Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(p)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Resolve determines an effective value using precedence:
// command-line flag, then the stored preference, then the built-in
// default.
func Resolve(flagValue, prefValue, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if prefValue != "" {
		return prefValue
	}
	return fallback
}

// LoadOrEmpty reads the user's prefs, degrading to zero prefs when the
// file is absent or unreadable.
func LoadOrEmpty() *Prefs {
	p, err := Load(Path())
	if err != nil {
		return &Prefs{}
	}
	return p
}
