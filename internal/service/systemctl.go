package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/torbar/internal/command"
)

// Systemctl manages a unit through systemctl(1).
type Systemctl struct {
	unit string
	opts options
}

// NewSystemctl returns a systemctl-backed Manager for unit.
func NewSystemctl(unit string, opts ...Option) *Systemctl {
	return &Systemctl{unit: unit, opts: newOptions(opts)}
}

// IsActive runs "systemctl is-active <unit>". systemctl exits non-zero for
// every state but active, so only a clean "active" answer counts.
func (s *Systemctl) IsActive(ctx context.Context) bool {
	out, err := command.RunTimeout(ctx, s.opts.runner, s.opts.probeTimeout, "systemctl", "is-active", s.unit)
	state := strings.TrimSpace(string(out))
	if err != nil {
		s.opts.logger.Debug("service probe failed", "unit", s.unit, "state", state, "error", err)
		return false
	}
	return state == "active"
}

// Start runs "<privilege> systemctl start <unit>".
func (s *Systemctl) Start(ctx context.Context) error {
	if err := s.control(ctx, "start"); err != nil {
		return fmt.Errorf("%w %s: %w", ErrStart, s.unit, err)
	}
	return nil
}

// Stop runs "<privilege> systemctl stop <unit>".
func (s *Systemctl) Stop(ctx context.Context) error {
	if err := s.control(ctx, "stop"); err != nil {
		return fmt.Errorf("%w %s: %w", ErrStop, s.unit, err)
	}
	return nil
}

func (s *Systemctl) control(ctx context.Context, verb string) error {
	name, args := command.Privileged(s.opts.privilege, "systemctl", verb, s.unit)
	s.opts.logger.Debug("service control", "command", name, "args", strings.Join(args, " "))
	_, err := command.RunTimeout(ctx, s.opts.runner, s.opts.controlTimeout, name, args...)
	return err
}
