package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while users still get a readable message.
var (
	// ErrEmptyServiceUnit is returned when no systemd unit name is configured.
	ErrEmptyServiceUnit = errors.New("invalid service unit: must not be empty")

	// ErrInvalidServiceBackend is returned for a service backend other than
	// "systemctl" or "dbus".
	ErrInvalidServiceBackend = errors.New("invalid service backend: must be systemctl or dbus")

	// ErrInvalidFirewallBackend is returned for a firewall backend other than
	// "auto", "iptables" or "sudo".
	ErrInvalidFirewallBackend = errors.New("invalid firewall backend: must be auto, iptables or sudo")

	// ErrInvalidPort is returned when a redirection port is outside 1-65535.
	ErrInvalidPort = errors.New("invalid port: must be between 1 and 65535")

	// ErrInvalidSocksAddress is returned when the SOCKS address is not "host:port".
	ErrInvalidSocksAddress = errors.New("invalid socks address: expected host:port")

	// ErrInvalidCheckURL is returned when the connectivity check URL is not an
	// absolute http(s) URL.
	ErrInvalidCheckURL = errors.New("invalid check url: must be an absolute http or https url")

	// ErrInvalidTimeout is returned when any timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidJournalLines is returned when the journal window is not positive.
	ErrInvalidJournalLines = errors.New("invalid journal lines: must be positive")

	// ErrEmptyPath is returned when one of the managed file paths is empty.
	ErrEmptyPath = errors.New("invalid path: must not be empty")
)
