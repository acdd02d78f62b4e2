package model

import (
	"encoding/json"
	"strings"
)

// Status is the single derived state of Tor routing on this host.
// It is recomputed every invocation. The zero value StatusNone only appears
// in persisted state and means "no previous run".
//
// The ordering StatusOff < StatusStarting < StatusConnecting < StatusConnected
// follows how far the daemon has progressed.
type Status int

const (
	// StatusNone means no status has been recorded yet.
	StatusNone Status = iota

	// StatusOff means the Tor service is not active.
	StatusOff

	// StatusStarting means the service is active but bootstrap has not
	// reported any progress.
	StatusStarting

	// StatusConnecting means bootstrap is in progress, or complete but
	// traffic is not yet verified as going through Tor.
	StatusConnecting

	// StatusConnected means the connectivity check confirmed Tor egress.
	StatusConnected
)

// String returns the persisted name of the status. StatusNone is "".
func (s Status) String() string {
	switch s {
	case StatusOff:
		return "off"
	case StatusStarting:
		return "starting"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return ""
	}
}

// ParseStatus converts a persisted name back to a Status.
// Unknown names return StatusNone and false.
func ParseStatus(name string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "off":
		return StatusOff, true
	case "starting":
		return StatusStarting, true
	case "connecting":
		return StatusConnecting, true
	case "connected":
		return StatusConnected, true
	default:
		return StatusNone, false
	}
}

// MarshalJSON encodes StatusNone as null and every other status as its name.
func (s Status) MarshalJSON() ([]byte, error) {
	if s.String() == "" {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts null, a known name, or anything else. Values that
// are not a known name decode to StatusNone rather than failing, so a state
// file written by another version still loads.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		*s = StatusNone
		return nil //nolint:nilerr // non-string status is treated as absent
	}
	*s, _ = ParseStatus(name)
	return nil
}
