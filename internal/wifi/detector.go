// Package wifi answers one question: what is the SSID of the wireless
// network this host is currently associated with?
//
// Each platform exposes the answer through a different tool, and every
// tool can be missing or fail to parse. Detection therefore runs an
// ordered list of strategies and takes the first one that yields an
// SSID; failures degrade to "not detected" and are never surfaced as
// errors to the caller.
package wifi

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// commandTimeout bounds every external tool invocation. The tools are
// single-shot status queries; anything slower is effectively hung.
const commandTimeout = 5 * time.Second

// Outcome classifies one strategy attempt.
type Outcome int

const (
	// Detected means the strategy found a non-empty SSID.
	Detected Outcome = iota
	// NotAvailable means the tool ran but reported no association.
	NotAvailable
	// ToolError means the tool is missing, failed, or timed out.
	ToolError
)

// Result is the outcome of a single strategy attempt.
type Result struct {
	SSID    string
	Outcome Outcome
	Err     error
}

func detected(ssid string) Result { return Result{SSID: ssid, Outcome: Detected} }
func notAvailable() Result { return Result{Outcome: NotAvailable} }
func toolError(err error) Result { return Result{Outcome: ToolError, Err: err} }

// Strategy is one platform mechanism for reading the current SSID.
type Strategy interface {
	Name() string
	Detect(ctx context.Context) Result
}

// runner executes an external command and returns its stdout. Split out
// so strategy parsing is testable without the underlying tools.
type runner func(ctx context.Context, name string, args ...string) (string, error)

func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

// Detector tries an ordered list of strategies until one detects an SSID.
type Detector struct {
	strategies []Strategy
	log        *zap.Logger
}

// NewDetector builds a detector for the host platform. On platforms with
// no known WiFi tooling the detector has no strategies and always
// reports "not detected".
func NewDetector(log *zap.Logger) *Detector {
	return &Detector{strategies: strategiesFor(runtime.GOOS, execRunner), log: log}
}

// newDetectorWith is the injectable constructor used by tests.
func newDetectorWith(strategies []Strategy, log *zap.Logger) *Detector {
	return &Detector{strategies: strategies, log: log}
}

func strategiesFor(goos string, run runner) []Strategy {
	switch goos {
	case "windows":
		return []Strategy{netshStrategy{run}}
	case "darwin":
		return []Strategy{networksetupStrategy{run}, airportStrategy{run}}
	case "linux":
		return []Strategy{iwgetidStrategy{run}, nmcliStrategy{run}, iwconfigStrategy{run}}
	default:
		return nil
	}
}

// CurrentSSID returns the SSID of the associated network. The second
// return value is false when no strategy detected one; individual tool
// failures are logged and skipped, never returned.
func (d *Detector) CurrentSSID(ctx context.Context) (string, bool) {
	if len(d.strategies) == 0 {
		d.log.Warn("ssid detection unsupported on this platform", zap.String("goos", runtime.GOOS))
		return "", false
	}

	for _, s := range d.strategies {
		res := s.Detect(ctx)
		switch res.Outcome {
		case Detected:
			ssid := strings.TrimSpace(res.SSID)
			if ssid == "" {
				continue
			}
			d.log.Debug("detected current ssid",
				zap.String("strategy", s.Name()), zap.String("ssid", ssid))
			return ssid, true
		case NotAvailable:
			d.log.Debug("no active wifi association", zap.String("strategy", s.Name()))
		case ToolError:
			d.log.Debug("ssid detection tool failed",
				zap.String("strategy", s.Name()), zap.Error(res.Err))
		}
	}

	d.log.Warn("could not detect current ssid")
	return "", false
}
