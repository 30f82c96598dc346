package wifi

import (
	"context"
	"regexp"
	"strings"
)

// Windows: netsh wlan show interfaces prints an indented "SSID : name"
// field. BSSID lines contain the same substring and must be skipped.
type netshStrategy struct{ run runner }

func (netshStrategy) Name() string { return "netsh" }

func (s netshStrategy) Detect(ctx context.Context) Result {
	out, err := s.run(ctx, "netsh", "wlan", "show", "interfaces")
	if err != nil {
		return toolError(err)
	}
	return parseNetsh(out)
}

var netshSSIDRe = regexp.MustCompile(`SSID\s*:\s*(.+)`)

func parseNetsh(out string) Result {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "SSID") || strings.Contains(line, "BSSID") {
			continue
		}
		if m := netshSSIDRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if ssid := strings.TrimSpace(m[1]); ssid != "" {
				return detected(ssid)
			}
		}
	}
	return notAvailable()
}

// macOS: networksetup reports "Current Wi-Fi Network: name" for the
// primary interface, or a canonical not-associated message.
type networksetupStrategy struct{ run runner }

func (networksetupStrategy) Name() string { return "networksetup" }

func (s networksetupStrategy) Detect(ctx context.Context) Result {
	out, err := s.run(ctx, "networksetup", "-getairportnetwork", "en0")
	if err != nil {
		return toolError(err)
	}
	return parseNetworksetup(out)
}

const networksetupMarker = "Current Wi-Fi Network:"

func parseNetworksetup(out string) Result {
	const notAssociated = "You are not associated with an AirPort network."
	idx := strings.LastIndex(out, networksetupMarker)
	if idx < 0 {
		return notAvailable()
	}
	ssid := strings.TrimSpace(out[idx+len(networksetupMarker):])
	if ssid == "" || ssid == notAssociated {
		return notAvailable()
	}
	return detected(ssid)
}

// macOS fallback: the legacy airport diagnostic utility prints an
// indented "SSID: name" field when associated.
type airportStrategy struct{ run runner }

const airportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

func (airportStrategy) Name() string { return "airport" }

func (s airportStrategy) Detect(ctx context.Context) Result {
	out, err := s.run(ctx, airportPath, "-I")
	if err != nil {
		return toolError(err)
	}
	return parseAirport(out)
}

func parseAirport(out string) Result {
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "BSSID:") {
			continue
		}
		if rest, ok := strings.CutPrefix(trimmed, "SSID:"); ok {
			if ssid := strings.TrimSpace(rest); ssid != "" {
				return detected(ssid)
			}
		}
	}
	return notAvailable()
}

// Linux: iwgetid -r prints the bare SSID, or nothing when unassociated.
type iwgetidStrategy struct{ run runner }

func (iwgetidStrategy) Name() string { return "iwgetid" }

func (s iwgetidStrategy) Detect(ctx context.Context) Result {
	out, err := s.run(ctx, "iwgetid", "-r")
	if err != nil {
		return toolError(err)
	}
	if ssid := strings.TrimSpace(out); ssid != "" {
		return detected(ssid)
	}
	return notAvailable()
}

// Linux: nmcli in terse mode prints "yes:name" for the active network.
type nmcliStrategy struct{ run runner }

func (nmcliStrategy) Name() string { return "nmcli" }

func (s nmcliStrategy) Detect(ctx context.Context) Result {
	out, err := s.run(ctx, "nmcli", "-t", "-f", "active,ssid", "dev", "wifi")
	if err != nil {
		return toolError(err)
	}
	return parseNmcli(out)
}

func parseNmcli(out string) Result {
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "yes:"); ok {
			if ssid := strings.TrimSpace(rest); ssid != "" {
				return detected(ssid)
			}
		}
	}
	return notAvailable()
}

// Linux fallback: iwconfig prints ESSID:"name" for associated
// interfaces and ESSID:off/any otherwise.
type iwconfigStrategy struct{ run runner }

func (iwconfigStrategy) Name() string { return "iwconfig" }

func (s iwconfigStrategy) Detect(ctx context.Context) Result {
	out, err := s.run(ctx, "iwconfig")
	if err != nil {
		return toolError(err)
	}
	return parseIwconfig(out)
}

var essidRe = regexp.MustCompile(`ESSID:"([^"]*)"`)

func parseIwconfig(out string) Result {
	for _, line := range strings.Split(out, "\n") {
		if m := essidRe.FindStringSubmatch(line); m != nil && m[1] != "" {
			return detected(m[1])
		}
	}
	return notAvailable()
}
