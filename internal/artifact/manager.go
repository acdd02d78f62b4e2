package artifact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/torbar/internal/config"
	"github.com/nao1215/torbar/internal/fileutil"
	"github.com/nao1215/torbar/internal/firewall"
)

// Step names reported in a Result.
const (
	StepEnvDir       = "create environment.d"
	StepEnvFile      = "write proxy env file"
	StepRemoveEnv    = "remove proxy env file"
	StepAddRules     = "add redirection rules"
	StepRemoveRules  = "remove redirection rules"
	StepSignal       = "signal browsers"
	StepFlagFilePref = "strip proxy flags from "
)

// Rules installs and removes the redirection rules.
type Rules interface {
	Apply(ctx context.Context) error
	Remove(ctx context.Context) error
}

// Manager owns the proxy artifacts.
type Manager struct {
	envFile   string
	proxyURL  string
	flagFiles []string
	rules     Rules
	signaler  Signaler
	logger    *slog.Logger
}

// NewManager returns a Manager. A nil signaler skips browser signalling.
func NewManager(envFile, proxyURL string, flagFiles []string, rules Rules, signaler Signaler, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		envFile:   envFile,
		proxyURL:  proxyURL,
		flagFiles: append([]string(nil), flagFiles...),
		rules:     rules,
		signaler:  signaler,
		logger:    logger,
	}
}

// NewFromConfig wires a Manager from cfg using the configured firewall backend.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	backend, err := firewall.NewBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	rules := firewall.NewRedirector(backend, firewall.RedirectRules(cfg.TransPort, cfg.DNSPort), logger)
	signaler := NewProcessSignaler(cfg.SignalProcesses, cfg.SignalTimeout, logger)
	return NewManager(cfg.ProxyEnvFile, cfg.ProxyURL(), cfg.FlagFiles, rules, signaler, logger), nil
}

// Present reports whether the proxy artifacts are considered installed.
// The environment file decides: it is the artifact every proxy-aware
// program in the session reads.
func (m *Manager) Present() bool {
	return fileutil.Exists(m.envFile)
}

// Apply installs the proxy artifacts.
func (m *Manager) Apply(ctx context.Context) Result {
	var res Result

	dirErr := ensureEnvDir(m.envFile)
	res.record(StepEnvDir, dirErr)
	if dirErr != nil {
		res.record(StepEnvFile, fmt.Errorf("skipped: %w", dirErr))
	} else {
		res.record(StepEnvFile, writeProxyEnv(m.envFile, m.proxyURL))
	}

	res.record(StepAddRules, m.rules.Apply(ctx))

	m.log("apply", res)
	return res
}

// Revert removes the proxy artifacts.
func (m *Manager) Revert(ctx context.Context) Result {
	var res Result

	res.record(StepRemoveEnv, removeProxyEnv(m.envFile))
	res.record(StepRemoveRules, m.rules.Remove(ctx))

	if m.signaler != nil {
		res.record(StepSignal, m.signaler.Signal(ctx))
	}

	for _, path := range m.flagFiles {
		n, err := StripProxyFlags(path)
		if n > 0 {
			m.logger.Debug("proxy flags removed", "file", path, "lines", n)
		}
		res.record(StepFlagFilePref+path, err)
	}

	m.log("revert", res)
	return res
}

func (m *Manager) log(op string, res Result) {
	if err := res.Err(); err != nil {
		m.logger.Warn("proxy artifacts partially updated", "op", op, "failed", res.Failed(), "error", err)
		return
	}
	m.logger.Debug("proxy artifacts updated", "op", op)
}
