package artifact

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/shirou/gopsutil/process"
)

// Signaler asks running browsers to reload their proxy settings.
type Signaler interface {
	Signal(ctx context.Context) error
}

// ProcessSignaler sends SIGUSR1 to processes whose name contains one of
// the configured names.
type ProcessSignaler struct {
	names   []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewProcessSignaler returns a ProcessSignaler for names.
func NewProcessSignaler(names []string, timeout time.Duration, logger *slog.Logger) *ProcessSignaler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessSignaler{
		names:   append([]string(nil), names...),
		timeout: timeout,
		logger:  logger,
	}
}

// Signal sends SIGUSR1 to every matching process. No match is not an error.
func (s *ProcessSignaler) Signal(ctx context.Context) error {
	if len(s.names) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return err
	}

	self := int32(os.Getpid()) //nolint:gosec // pids fit in int32 on Linux
	var result *multierror.Error
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || !s.matches(name) {
			continue
		}
		if err := signalErr(p.SendSignalWithContext(ctx, syscall.SIGUSR1)); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		s.logger.Debug("browser signalled", "name", name, "pid", p.Pid)
	}
	return result.ErrorOrNil()
}

// signalErr drops the error of a process that exited after it was listed.
func signalErr(err error) error {
	if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (s *ProcessSignaler) matches(name string) bool {
	for _, n := range s.names {
		if n != "" && strings.Contains(name, n) {
			return true
		}
	}
	return false
}
