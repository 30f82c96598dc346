package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/mcastro/wifiauth/internal/config"
)

// stubDetector returns a fixed SSID, or not-detected when ssid is empty.
type stubDetector struct{ ssid string }

func (s stubDetector) CurrentSSID(context.Context) (string, bool) {
	return s.ssid, s.ssid != ""
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

const multiConfig = `{
	"default_network": "work",
	"networks": {
		"home": {"ssid": "Home-5G", "wifi_url": "http://h/login", "username": "hu", "password": "hp"},
		"work": {"ssid": "CorpNet", "wifi_url": "http://w/login", "username": "wu", "password": "wp"}
	}
}`

const multiConfigNoDefault = `{
	"networks": {
		"home": {"ssid": "Home-5G", "wifi_url": "http://h/login", "username": "hu", "password": "hp"},
		"work": {"ssid": "CorpNet", "wifi_url": "http://w/login", "username": "wu", "password": "wp"}
	}
}`

func newResolver(t *testing.T, content, detectedSSID string) *Resolver {
	t.Helper()
	return NewResolver(writeConfig(t, content), stubDetector{detectedSSID}, zap.NewNop())
}

func TestResolveMissingConfig(t *testing.T) {
	r := NewResolver(filepath.Join(t.TempDir(), "config.json"), stubDetector{}, zap.NewNop())
	_, _, err := r.Resolve(context.Background(), "", true)
	if !errors.Is(err, config.ErrNotConfigured) {
		t.Errorf("Resolve() error = %v, want ErrNotConfigured", err)
	}
}

func TestResolveLegacy(t *testing.T) {
	r := newResolver(t, `{"wifi_url": "http://p/login", "username": "u", "password": "p"}`, "Home-5G")

	// Explicit name and auto-detect are both ignored for legacy configs.
	name, p, err := r.Resolve(context.Background(), "whatever", true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != LegacyName {
		t.Errorf("name = %q, want %q", name, LegacyName)
	}
	if p.LoginURL != "http://p/login" {
		t.Errorf("LoginURL = %q", p.LoginURL)
	}
	if p.SSID != "Unknown" || p.ProductType != "0" {
		t.Errorf("defaults = (%q, %q), want (Unknown, 0)", p.SSID, p.ProductType)
	}
}

func TestResolveLegacyMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing wifi_url", `{"username": "u", "password": "p"}`},
		{"missing username", `{"wifi_url": "http://p", "password": "p"}`},
		{"missing password", `{"wifi_url": "http://p", "username": "u"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, tt.content, "")
			_, _, err := r.Resolve(context.Background(), "", false)
			if !errors.Is(err, ErrIncompleteConfig) {
				t.Errorf("Resolve() error = %v, want ErrIncompleteConfig", err)
			}
		})
	}
}

func TestResolveExplicitName(t *testing.T) {
	// Explicit selection wins even when the detected SSID matches
	// another profile.
	r := newResolver(t, multiConfig, "Home-5G")

	name, p, err := r.Resolve(context.Background(), "work", true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != "work" || p.Username != "wu" {
		t.Errorf("Resolve() = (%q, %q), want (work, wu)", name, p.Username)
	}
}

func TestResolveExplicitUnknown(t *testing.T) {
	r := newResolver(t, multiConfig, "")
	_, _, err := r.Resolve(context.Background(), "nonexistent", false)
	if !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("Resolve() error = %v, want ErrUnknownProfile", err)
	}
}

func TestResolveBySSID(t *testing.T) {
	r := newResolver(t, multiConfig, "Home-5G")

	name, _, err := r.Resolve(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != "home" {
		t.Errorf("name = %q, want home (ssid match beats default)", name)
	}
}

func TestResolveUnmatchedSSIDFallsBackToDefault(t *testing.T) {
	r := newResolver(t, multiConfig, "CafeWifi")

	name, _, err := r.Resolve(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != "work" {
		t.Errorf("name = %q, want work (configured default)", name)
	}
}

func TestResolveNoDetectionNoDefaultUsesFirst(t *testing.T) {
	r := newResolver(t, multiConfigNoDefault, "")

	name, _, err := r.Resolve(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != "home" {
		t.Errorf("name = %q, want home (first in file order)", name)
	}
}

func TestResolveAutoDetectDisabled(t *testing.T) {
	// With auto-detect off, the detected SSID must not influence the
	// result: the configured default wins.
	r := newResolver(t, multiConfig, "Home-5G")

	name, _, err := r.Resolve(context.Background(), "", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != "work" {
		t.Errorf("name = %q, want work", name)
	}
}

func TestResolveDanglingDefault(t *testing.T) {
	content := `{
		"default_network": "gone",
		"networks": {
			"home": {"ssid": "Home-5G", "wifi_url": "http://h", "username": "u", "password": "p"}
		}
	}`
	r := newResolver(t, content, "")

	name, _, err := r.Resolve(context.Background(), "", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != "home" {
		t.Errorf("name = %q, want home (first, default dangles)", name)
	}
}

func TestResolveDuplicateSSIDFirstWins(t *testing.T) {
	content := `{
		"networks": {
			"office-a": {"ssid": "CorpNet", "wifi_url": "http://a", "username": "u", "password": "p"},
			"office-b": {"ssid": "CorpNet", "wifi_url": "http://b", "username": "u", "password": "p"}
		}
	}`
	r := newResolver(t, content, "CorpNet")

	name, _, err := r.Resolve(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != "office-a" {
		t.Errorf("name = %q, want office-a (first in file order)", name)
	}
}

func TestResolveEmptyNetworks(t *testing.T) {
	r := newResolver(t, `{"networks": {}}`, "")
	_, _, err := r.Resolve(context.Background(), "", false)
	if !errors.Is(err, ErrNoProfiles) {
		t.Errorf("Resolve() error = %v, want ErrNoProfiles", err)
	}
}

func TestListLegacy(t *testing.T) {
	r := newResolver(t, `{"wifi_url": "http://p", "username": "u", "password": "p"}`, "")

	list := r.List()
	if list.Len() != 1 {
		t.Fatalf("List() len = %d, want 1", list.Len())
	}
	if _, ok := list.Get(LegacyName); !ok {
		t.Errorf("List() missing %q entry", LegacyName)
	}
}

func TestListMultiProfile(t *testing.T) {
	r := newResolver(t, multiConfig, "")

	list := r.List()
	if list.Len() != 2 {
		t.Fatalf("List() len = %d, want 2", list.Len())
	}
	p, ok := list.Get("home")
	if !ok || p.SSID != "Home-5G" {
		t.Errorf("List()[home] = (%+v, %v)", p, ok)
	}
}

func TestListMissingConfigIsEmpty(t *testing.T) {
	r := NewResolver(filepath.Join(t.TempDir(), "config.json"), stubDetector{}, zap.NewNop())
	if list := r.List(); list.Len() != 0 {
		t.Errorf("List() len = %d, want 0", list.Len())
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"multi profile", multiConfig, []string{"home", "work"}},
		{
			"legacy uses canonical name",
			`{"wifi_url": "http://p", "username": "u", "password": "p"}`,
			[]string{LegacyName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, tt.content, "")
			got := r.Names()
			if len(got) != len(tt.want) {
				t.Fatalf("Names() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Names()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
