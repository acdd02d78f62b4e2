package config

import (
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Service backends.
const (
	// ServiceBackendSystemctl shells out to systemctl(1).
	ServiceBackendSystemctl = "systemctl"
	// ServiceBackendDBus talks to org.freedesktop.systemd1 on the system bus.
	ServiceBackendDBus = "dbus"
)

// Firewall backends.
const (
	// FirewallBackendAuto picks iptables when running as root and sudo otherwise.
	FirewallBackendAuto = "auto"
	// FirewallBackendIPTables drives iptables directly through go-iptables.
	FirewallBackendIPTables = "iptables"
	// FirewallBackendSudo runs iptables behind the privilege command.
	FirewallBackendSudo = "sudo"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "torbar"

	// DefaultServiceUnit is the systemd unit of the Tor daemon.
	DefaultServiceUnit = "tor"

	// DefaultSocksAddress is the Tor SOCKS5 listener written into the proxy
	// environment file.
	DefaultSocksAddress = "127.0.0.1:9050"

	// DefaultTransPort is Tor's TransPort; outbound TCP SYNs are redirected here.
	DefaultTransPort = 9040

	// DefaultDNSPort is Tor's DNSPort; outbound DNS (udp and tcp 53) goes here.
	DefaultDNSPort = 5353

	// DefaultCheckURL answers {"IsTor": bool, "IP": "..."} for the caller.
	DefaultCheckURL = "https://check.torproject.org/api/ip"

	// DefaultUserAgent is sent with the connectivity check.
	DefaultUserAgent = "Mozilla/5.0"

	// DefaultJournalLines is the size of the log window scanned for
	// bootstrap progress.
	DefaultJournalLines = 50

	// DefaultProbeTimeout bounds service and journal queries.
	DefaultProbeTimeout = 2 * time.Second

	// DefaultFirewallTimeout bounds each packet filter command.
	DefaultFirewallTimeout = 3 * time.Second

	// DefaultNetworkTimeout bounds the connectivity check request.
	DefaultNetworkTimeout = 5 * time.Second

	// DefaultControlTimeout bounds service start and stop.
	DefaultControlTimeout = 5 * time.Second

	// DefaultNotifyTimeout bounds a single desktop notification.
	DefaultNotifyTimeout = 3 * time.Second

	// DefaultSignalTimeout bounds the browser refresh signal.
	DefaultSignalTimeout = 2 * time.Second

	// StateFileName is the persisted state file inside the XDG cache home.
	// The name matches the one used by the waybar shell module so existing state
	// keeps loading.
	StateFileName = "tor_status_state.json"

	// ProxyEnvFileName is the environment.d drop-in holding the proxy variables.
	ProxyEnvFileName = "proxy.conf"
)

// DefaultPrivilegeCommand prefixes privileged commands (service start/stop,
// iptables). "-n" makes sudo fail instead of prompting, which would hang the bar.
var DefaultPrivilegeCommand = []string{"sudo", "-n"}

// DefaultSignalProcesses are the browser process names sent SIGUSR1 on revert
// so they reload their proxy settings.
var DefaultSignalProcesses = []string{"firefox"}

// Config holds all configuration options for torbar.
// It is populated from defaults, the optional YAML file and CLI flags, then
// passed to components explicitly.
type Config struct {
	// ServiceUnit is the systemd unit name of the Tor daemon ("tor").
	ServiceUnit string

	// ServiceBackend selects how the unit is queried and controlled.
	ServiceBackend string

	// PrivilegeCommand prefixes privileged commands. Empty runs them directly.
	PrivilegeCommand []string

	// FirewallBackend selects how redirection rules are managed.
	FirewallBackend string

	// TransPort is the local port TCP SYNs are redirected to.
	TransPort int

	// DNSPort is the local port DNS queries are redirected to.
	DNSPort int

	// SocksAddress is the Tor SOCKS5 proxy in "host:port" format.
	SocksAddress string

	// CheckURL is the connectivity verification endpoint.
	CheckURL string

	// CheckViaSocks routes the connectivity check through SocksAddress
	// instead of the (redirected) direct path.
	CheckViaSocks bool

	// UserAgent is sent with the connectivity check.
	UserAgent string

	// SignalProcesses are browser process names refreshed on revert.
	SignalProcesses []string

	// FlagFiles are browser flag files whose --proxy-server lines are
	// stripped on revert.
	FlagFiles []string

	// ProxyEnvFile is the environment.d file carrying the proxy variables.
	ProxyEnvFile string

	// StateFile is where the state between invocations is persisted.
	StateFile string

	// HistoryEnabled records status transitions in the history database.
	HistoryEnabled bool

	// HistoryDir is the directory holding the history database.
	HistoryDir string

	// JournalLines is the number of recent log lines scanned for bootstrap
	// progress.
	JournalLines int

	// ProbeTimeout bounds service and journal queries.
	ProbeTimeout time.Duration

	// FirewallTimeout bounds each packet filter command.
	FirewallTimeout time.Duration

	// NetworkTimeout bounds the connectivity check.
	NetworkTimeout time.Duration

	// ControlTimeout bounds service start and stop.
	ControlTimeout time.Duration

	// NotifyTimeout bounds a desktop notification.
	NotifyTimeout time.Duration

	// SignalTimeout bounds the browser refresh signal.
	SignalTimeout time.Duration

	// Verbose enables debug logging on stderr.
	Verbose bool

	// ConfigFilePath is the configuration file the values were loaded from,
	// empty when running on defaults.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ServiceUnit:      DefaultServiceUnit,
		ServiceBackend:   ServiceBackendSystemctl,
		PrivilegeCommand: append([]string(nil), DefaultPrivilegeCommand...),
		FirewallBackend:  FirewallBackendAuto,
		TransPort:        DefaultTransPort,
		DNSPort:          DefaultDNSPort,
		SocksAddress:     DefaultSocksAddress,
		CheckURL:         DefaultCheckURL,
		UserAgent:        DefaultUserAgent,
		SignalProcesses:  append([]string(nil), DefaultSignalProcesses...),
		FlagFiles:        DefaultFlagFiles(),
		ProxyEnvFile:     DefaultProxyEnvFile(),
		StateFile:        DefaultStateFile(),
		HistoryEnabled:   true,
		HistoryDir:       XDGDataDir(),
		JournalLines:     DefaultJournalLines,
		ProbeTimeout:     DefaultProbeTimeout,
		FirewallTimeout:  DefaultFirewallTimeout,
		NetworkTimeout:   DefaultNetworkTimeout,
		ControlTimeout:   DefaultControlTimeout,
		NotifyTimeout:    DefaultNotifyTimeout,
		SignalTimeout:    DefaultSignalTimeout,
	}
}

// ProxyURL returns the value assigned to every proxy environment variable.
func (c *Config) ProxyURL() string {
	return "socks5://" + c.SocksAddress
}

// XDGDataDir returns the XDG data directory for torbar.
// On Linux: ~/.local/share/torbar
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for torbar.
// On Linux: ~/.config/torbar
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultStateFile returns ~/.cache/tor_status_state.json (XDG cache home).
func DefaultStateFile() string {
	return filepath.Join(xdg.CacheHome, StateFileName)
}

// DefaultProxyEnvFile returns ~/.config/environment.d/proxy.conf.
// systemd --user reads environment.d at session start, which is why the
// enable notification asks the user to restart applications.
func DefaultProxyEnvFile() string {
	return filepath.Join(xdg.ConfigHome, "environment.d", ProxyEnvFileName)
}

// DefaultFlagFiles returns the Chromium and Brave flag files in the XDG
// config home.
func DefaultFlagFiles() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, "chromium-flags.conf"),
		filepath.Join(xdg.ConfigHome, "brave-flags.conf"),
	}
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.ServiceUnit == "" {
		return ErrEmptyServiceUnit
	}

	switch c.ServiceBackend {
	case ServiceBackendSystemctl, ServiceBackendDBus:
	default:
		return ErrInvalidServiceBackend
	}

	switch c.FirewallBackend {
	case FirewallBackendAuto, FirewallBackendIPTables, FirewallBackendSudo:
	default:
		return ErrInvalidFirewallBackend
	}

	if !validPort(c.TransPort) || !validPort(c.DNSPort) {
		return ErrInvalidPort
	}

	if !isValidHostPort(c.SocksAddress) {
		return ErrInvalidSocksAddress
	}

	u, err := url.Parse(c.CheckURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidCheckURL
	}

	if c.JournalLines <= 0 {
		return ErrInvalidJournalLines
	}

	for _, d := range []time.Duration{
		c.ProbeTimeout, c.FirewallTimeout, c.NetworkTimeout,
		c.ControlTimeout, c.NotifyTimeout, c.SignalTimeout,
	} {
		if d <= 0 {
			return ErrInvalidTimeout
		}
	}

	if c.ProxyEnvFile == "" || c.StateFile == "" {
		return ErrEmptyPath
	}
	if c.HistoryEnabled && c.HistoryDir == "" {
		return ErrEmptyPath
	}

	return nil
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

// isValidHostPort reports whether address is "host:port" with a non-empty
// host and a numeric port in range.
func isValidHostPort(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return validPort(n)
}
