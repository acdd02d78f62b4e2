package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// File represents the structure of the torbar configuration file.
// Every field is optional; unset fields keep the value already present in
// the Config the file is applied to.
type File struct {
	Service   ServiceSection   `yaml:"service,omitempty"`
	Privilege PrivilegeSection `yaml:"privilege,omitempty"`
	Firewall  FirewallSection  `yaml:"firewall,omitempty"`
	Tor       TorSection       `yaml:"tor,omitempty"`
	Browsers  BrowsersSection  `yaml:"browsers,omitempty"`
	Paths     PathsSection     `yaml:"paths,omitempty"`
	History   HistorySection   `yaml:"history,omitempty"`
	Timeouts  TimeoutsSection  `yaml:"timeouts,omitempty"`
}

// ServiceSection configures the Tor unit.
type ServiceSection struct {
	// Unit is the systemd unit name.
	Unit string `yaml:"unit,omitempty"`
	// Backend is "systemctl" or "dbus".
	Backend string `yaml:"backend,omitempty"`
	// JournalLines is the log window scanned for bootstrap progress.
	JournalLines int `yaml:"journal_lines,omitempty"`
}

// PrivilegeSection configures how privileged commands are run.
type PrivilegeSection struct {
	// Command is the prefix, e.g. ["sudo", "-n"] or ["doas"].
	// A present but empty list runs privileged commands directly.
	Command *[]string `yaml:"command,omitempty"`
}

// FirewallSection configures the redirection rules.
type FirewallSection struct {
	Backend   string `yaml:"backend,omitempty"`
	TransPort int    `yaml:"trans_port,omitempty"`
	DNSPort   int    `yaml:"dns_port,omitempty"`
}

// TorSection configures the proxy address and connectivity check.
type TorSection struct {
	SocksAddress  string `yaml:"socks_address,omitempty"`
	CheckURL      string `yaml:"check_url,omitempty"`
	CheckViaSocks *bool  `yaml:"check_via_socks,omitempty"`
	UserAgent     string `yaml:"user_agent,omitempty"`
}

// BrowsersSection configures the revert-time browser cleanup.
type BrowsersSection struct {
	SignalProcesses *[]string `yaml:"signal_processes,omitempty"`
	FlagFiles       *[]string `yaml:"flag_files,omitempty"`
}

// PathsSection overrides the managed file locations.
type PathsSection struct {
	ProxyEnvFile string `yaml:"proxy_env_file,omitempty"`
	StateFile    string `yaml:"state_file,omitempty"`
}

// HistorySection configures transition recording.
type HistorySection struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// TimeoutsSection overrides operation timeouts. Values use Go duration
// syntax ("2s", "500ms").
type TimeoutsSection struct {
	Probe    time.Duration `yaml:"probe,omitempty"`
	Firewall time.Duration `yaml:"firewall,omitempty"`
	Network  time.Duration `yaml:"network,omitempty"`
	Control  time.Duration `yaml:"control,omitempty"`
	Notify   time.Duration `yaml:"notify,omitempty"`
	Signal   time.Duration `yaml:"signal,omitempty"`
}

// Apply overlays the values set in f onto c.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}

	setString(&c.ServiceUnit, f.Service.Unit)
	setString(&c.ServiceBackend, f.Service.Backend)
	setInt(&c.JournalLines, f.Service.JournalLines)

	if f.Privilege.Command != nil {
		c.PrivilegeCommand = cloneStrings(*f.Privilege.Command)
	}

	setString(&c.FirewallBackend, f.Firewall.Backend)
	setInt(&c.TransPort, f.Firewall.TransPort)
	setInt(&c.DNSPort, f.Firewall.DNSPort)

	setString(&c.SocksAddress, f.Tor.SocksAddress)
	setString(&c.CheckURL, f.Tor.CheckURL)
	setString(&c.UserAgent, f.Tor.UserAgent)
	if f.Tor.CheckViaSocks != nil {
		c.CheckViaSocks = *f.Tor.CheckViaSocks
	}

	if f.Browsers.SignalProcesses != nil {
		c.SignalProcesses = cloneStrings(*f.Browsers.SignalProcesses)
	}
	if f.Browsers.FlagFiles != nil {
		c.FlagFiles = cloneStrings(*f.Browsers.FlagFiles)
		for i, p := range c.FlagFiles {
			c.FlagFiles[i] = expandHome(p)
		}
	}

	setString(&c.ProxyEnvFile, expandHome(f.Paths.ProxyEnvFile))
	setString(&c.StateFile, expandHome(f.Paths.StateFile))

	if f.History.Enabled != nil {
		c.HistoryEnabled = *f.History.Enabled
	}
	setString(&c.HistoryDir, expandHome(f.History.Dir))

	setDuration(&c.ProbeTimeout, f.Timeouts.Probe)
	setDuration(&c.FirewallTimeout, f.Timeouts.Firewall)
	setDuration(&c.NetworkTimeout, f.Timeouts.Network)
	setDuration(&c.ControlTimeout, f.Timeouts.Control)
	setDuration(&c.NotifyTimeout, f.Timeouts.Notify)
	setDuration(&c.SignalTimeout, f.Timeouts.Signal)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return filepath.Join(xdg.Home, rest)
	}
	return p
}

// cloneStrings copies s, keeping an explicit empty list non-nil.
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
