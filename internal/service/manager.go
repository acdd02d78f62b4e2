package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/torbar/internal/command"
	"github.com/nao1215/torbar/internal/config"
)

// Manager reports and changes the activity of one service unit.
type Manager interface {
	// IsActive reports whether the unit is active. It never fails; every
	// error path reports false.
	IsActive(ctx context.Context) bool
	// Start starts the unit.
	Start(ctx context.Context) error
	// Stop stops the unit.
	Stop(ctx context.Context) error
}

// options are shared by both backends.
type options struct {
	logger         *slog.Logger
	runner         command.Runner
	privilege      []string
	probeTimeout   time.Duration
	controlTimeout time.Duration
}

// Option configures a Manager.
type Option func(*options)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRunner replaces the command runner.
func WithRunner(r command.Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithPrivilegeCommand sets the prefix used for start and stop.
func WithPrivilegeCommand(prefix []string) Option {
	return func(o *options) { o.privilege = append([]string(nil), prefix...) }
}

// WithTimeouts sets the probe and control deadlines.
func WithTimeouts(probe, control time.Duration) Option {
	return func(o *options) {
		o.probeTimeout = probe
		o.controlTimeout = control
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:         slog.Default(),
		runner:         command.ExecRunner{},
		privilege:      append([]string(nil), config.DefaultPrivilegeCommand...),
		probeTimeout:   config.DefaultProbeTimeout,
		controlTimeout: config.DefaultControlTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the Manager selected by cfg.ServiceBackend.
func New(cfg *config.Config, logger *slog.Logger) (Manager, error) {
	opts := []Option{
		WithLogger(logger),
		WithPrivilegeCommand(cfg.PrivilegeCommand),
		WithTimeouts(cfg.ProbeTimeout, cfg.ControlTimeout),
	}
	switch cfg.ServiceBackend {
	case config.ServiceBackendSystemctl:
		return NewSystemctl(cfg.ServiceUnit, opts...), nil
	case config.ServiceBackendDBus:
		return NewDBus(cfg.ServiceUnit, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.ServiceBackend)
	}
}
