// Package profile selects which configured network profile a login
// attempt should use.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/elliotchance/orderedmap/v3"
	"go.uber.org/zap"

	"github.com/mcastro/wifiauth/internal/config"
)

// LegacyName is the synthetic profile name for single-network configs.
// It is used everywhere a legacy config needs a name; the resolver never
// emits any other placeholder.
const LegacyName = "legacy"

var (
	// ErrUnknownProfile means an explicitly requested profile name does
	// not exist in the configuration.
	ErrUnknownProfile = errors.New("unknown network profile")

	// ErrIncompleteConfig means a legacy config is missing one of its
	// required fields.
	ErrIncompleteConfig = errors.New("incomplete legacy configuration")

	// ErrNoProfiles means the networks mapping is present but empty.
	ErrNoProfiles = errors.New("no network profiles configured")
)

// SSIDSource reports the SSID of the currently associated network.
// Satisfied by *wifi.Detector; tests substitute stubs.
type SSIDSource interface {
	CurrentSSID(ctx context.Context) (string, bool)
}

// Resolver picks a profile for a login attempt. It holds no state
// between calls: configuration is re-read from disk on every call, so
// concurrent callers are independent.
type Resolver struct {
	configPath string
	detector   SSIDSource
	log        *zap.Logger
}

// NewResolver returns a resolver reading configuration from configPath
// and detecting the current network through detector.
func NewResolver(configPath string, detector SSIDSource, log *zap.Logger) *Resolver {
	return &Resolver{configPath: configPath, detector: detector, log: log}
}

// Resolve returns the profile to use for a login attempt.
//
// Precedence, first match wins:
//  1. legacy config: the synthetic "legacy" profile, regardless of the
//     other arguments;
//  2. explicit name, failing if unknown;
//  3. the first profile (in config file order) whose ssid matches the
//     detected network, when autoDetect is set;
//  4. the configured default network, if it names an existing profile;
//  5. the first profile in config file order.
//
// Configuration problems (missing file, unknown explicit name,
// incomplete legacy config) are returned as errors; detection failures
// are not, they just fall through to the next rule.
func (r *Resolver) Resolve(ctx context.Context, explicit string, autoDetect bool) (string, config.Profile, error) {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return "", config.Profile{}, err
	}

	if cfg.IsLegacy() {
		p := *cfg.Legacy
		for _, f := range []struct{ name, value string }{
			{"wifi_url", p.LoginURL},
			{"username", p.Username},
			{"password", p.Password},
		} {
			if f.value == "" {
				return "", config.Profile{}, fmt.Errorf("%w: missing %q", ErrIncompleteConfig, f.name)
			}
		}
		r.log.Info("using legacy configuration")
		return LegacyName, p, nil
	}

	if explicit != "" {
		p, ok := cfg.Networks.Get(explicit)
		if !ok {
			return "", config.Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, explicit)
		}
		r.log.Info("using specified network profile", zap.String("profile", explicit))
		return explicit, p, nil
	}

	if autoDetect {
		if ssid, ok := r.detector.CurrentSSID(ctx); ok {
			r.log.Info("detected current ssid", zap.String("ssid", ssid))
			for name, p := range cfg.Networks.AllFromFront() {
				if p.SSID == ssid {
					r.log.Info("matched network profile by ssid",
						zap.String("profile", name), zap.String("ssid", ssid))
					return name, p, nil
				}
			}
			r.log.Warn("no network profile for detected ssid", zap.String("ssid", ssid))
		} else {
			r.log.Warn("could not detect current network ssid")
		}
	}

	if cfg.Default != "" {
		if p, ok := cfg.Networks.Get(cfg.Default); ok {
			r.log.Info("using default network profile", zap.String("profile", cfg.Default))
			return cfg.Default, p, nil
		}
		r.log.Warn("default network not found in configuration",
			zap.String("profile", cfg.Default))
	}

	for name, p := range cfg.Networks.AllFromFront() {
		r.log.Info("using first available network profile", zap.String("profile", name))
		return name, p, nil
	}

	return "", config.Profile{}, ErrNoProfiles
}

// List returns every configured profile keyed by name, in config file
// order. A legacy config yields a single "legacy" entry. List never
// fails: configuration problems are logged and yield an empty mapping.
func (r *Resolver) List() *orderedmap.OrderedMap[string, config.Profile] {
	out := orderedmap.NewOrderedMap[string, config.Profile]()

	cfg, err := config.Load(r.configPath)
	if err != nil {
		r.log.Error("cannot list network profiles", zap.Error(err))
		return out
	}

	if cfg.IsLegacy() {
		out.Set(LegacyName, *cfg.Legacy)
		return out
	}
	for name, p := range cfg.Networks.AllFromFront() {
		out.Set(name, p)
	}
	return out
}

// Names returns the configured profile names in config file order,
// mirroring List.
func (r *Resolver) Names() []string {
	var names []string
	for name := range r.List().AllFromFront() {
		names = append(names, name)
	}
	return names
}
