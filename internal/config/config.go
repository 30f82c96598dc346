package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elliotchance/orderedmap/v3"
)

// DefaultPath is the config file looked up when no override is given.
const DefaultPath = "config.json"

// ErrNotConfigured is returned when the config file does not exist yet.
// Callers should point the user at the setup wizard.
var ErrNotConfigured = errors.New("configuration file not found")

// Profile is one configured network: the captive portal endpoint and the
// credentials used against it, plus the SSID it applies to.
type Profile struct {
	SSID        string `json:"ssid,omitempty"`
	LoginURL    string `json:"wifi_url"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	ProductType string `json:"product_type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Dashboard holds the monitoring server settings carried alongside the
// network profiles. The resolver ignores it entirely.
type Dashboard struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Config is the parsed configuration file. Exactly one of Legacy or
// Networks is set: the raw shape is resolved at load time so nothing
// downstream has to re-inspect it.
type Config struct {
	// Legacy is the single implicit profile of the pre-multi-network
	// format. Set iff the file has no "networks" mapping.
	Legacy *Profile

	// Default names the profile used when nothing else matches.
	Default string

	// Networks maps profile name to profile, preserving the order the
	// entries appear in the file. Set iff Legacy is nil.
	Networks *orderedmap.OrderedMap[string, Profile]

	Dashboard Dashboard
}

// IsLegacy reports whether the file used the single-network format.
func (c *Config) IsLegacy() bool { return c.Legacy != nil }

// DefaultDashboard returns the dashboard settings used when the config
// file is missing or carries no dashboard section.
func DefaultDashboard() Dashboard {
	return Dashboard{Host: "127.0.0.1", Port: 8000, Username: "admin", Password: "admin123"}
}

type rawConfig struct {
	WifiURL        string          `json:"wifi_url"`
	Username       string          `json:"username"`
	Password       string          `json:"password"`
	ProductType    string          `json:"product_type"`
	SSID           string          `json:"ssid"`
	DefaultNetwork string          `json:"default_network"`
	Networks       json.RawMessage `json:"networks"`
	Dashboard      *Dashboard      `json:"dashboard"`
}

// Load reads and parses the config file at path. A missing file yields
// ErrNotConfigured; everything else is a parse error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg := &Config{Dashboard: DefaultDashboard()}
	if raw.Dashboard != nil {
		cfg.Dashboard = mergeDashboard(*raw.Dashboard)
	}

	if raw.Networks == nil {
		cfg.Legacy = &Profile{
			SSID:        raw.SSID,
			LoginURL:    raw.WifiURL,
			Username:    raw.Username,
			Password:    raw.Password,
			ProductType: raw.ProductType,
			Description: "Legacy configuration",
		}
		if cfg.Legacy.SSID == "" {
			cfg.Legacy.SSID = "Unknown"
		}
		if cfg.Legacy.ProductType == "" {
			cfg.Legacy.ProductType = "0"
		}
		return cfg, nil
	}

	networks, err := parseNetworks(raw.Networks)
	if err != nil {
		return nil, fmt.Errorf("parse %s: networks: %w", path, err)
	}
	cfg.Default = raw.DefaultNetwork
	cfg.Networks = networks
	return cfg, nil
}

// parseNetworks decodes the networks object token by token so profile
// order matches the order in the file. A plain map would lose it, and
// first-match resolution depends on it.
func parseNetworks(raw json.RawMessage) (*orderedmap.OrderedMap[string, Profile], error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	networks := orderedmap.NewOrderedMap[string, Profile]()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected profile name, got %v", keyTok)
		}
		var p Profile
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		networks.Set(name, p)
	}
	return networks, nil
}

func mergeDashboard(d Dashboard) Dashboard {
	def := DefaultDashboard()
	if d.Host == "" {
		d.Host = def.Host
	}
	if d.Port == 0 {
		d.Port = def.Port
	}
	if d.Username == "" {
		d.Username = def.Username
	}
	if d.Password == "" {
		d.Password = def.Password
	}
	return d
}

// Save writes cfg to path, creating parent dirs as needed. Profile order
// in the networks mapping is preserved.
func Save(path string, cfg *Config) error {
	data, err := marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0600)
}

func marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	if cfg.IsLegacy() {
		p := cfg.Legacy
		writeField(&buf, "wifi_url", p.LoginURL)
		writeField(&buf, "username", p.Username)
		writeField(&buf, "password", p.Password)
		writeField(&buf, "product_type", p.ProductType)
		if p.SSID != "" && p.SSID != "Unknown" {
			writeField(&buf, "ssid", p.SSID)
		}
	} else {
		if cfg.Default != "" {
			writeField(&buf, "default_network", cfg.Default)
		}
		buf.WriteString("  \"networks\": {\n")
		first := true
		for name, p := range cfg.Networks.AllFromFront() {
			if !first {
				buf.WriteString(",\n")
			}
			first = false
			nameJSON, _ := json.Marshal(name)
			profJSON, err := json.MarshalIndent(p, "    ", "  ")
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&buf, "    %s: %s", nameJSON, profJSON)
		}
		buf.WriteString("\n  },\n")
	}

	dashJSON, err := json.MarshalIndent(cfg.Dashboard, "  ", "  ")
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&buf, "  \"dashboard\": %s\n}\n", dashJSON)
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key, value string) {
	k, _ := json.Marshal(key)
	v, _ := json.Marshal(value)
	fmt.Fprintf(buf, "  %s: %s,\n", k, v)
}
