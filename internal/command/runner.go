// Package command runs external programs with a bounded lifetime.
//
// Every probe and control action in torbar shells out to a system tool
// (systemctl, journalctl, iptables, notify-send). They all go through a
// Runner so tests can substitute a fake and so every call carries a timeout.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a command does not finish in time.
var ErrTimeout = errors.New("command timed out")

const waitDelay = 250 * time.Millisecond

// Runner executes a program and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit is returned as *ExitError
// carrying the exit code and trimmed stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // arguments are built from configuration, not user input
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Children that inherit stdout must not keep Run blocked past the deadline.
	cmd.WaitDelay = waitDelay

	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s: %w", name, ErrTimeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, &ExitError{
			Command: strings.Join(append([]string{name}, args...), " "),
			Code:    exitErr.ExitCode(),
			Stderr:  strings.TrimSpace(stderr.String()),
		}
	}
	return out, err
}

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.Code, e.Stderr)
}

// ExitCode returns the exit status of a failed command, or -1 when err is
// not an *ExitError.
func ExitCode(err error) int {
	var e *ExitError
	if errors.As(err, &e) {
		return e.Code
	}
	return -1
}

// RunTimeout runs name under r with a deadline of d.
func RunTimeout(ctx context.Context, r Runner, d time.Duration, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return r.Run(ctx, name, args...)
}

// Privileged prepends the privilege prefix to name and args. An empty
// prefix runs the program directly.
func Privileged(prefix []string, name string, args ...string) (string, []string) {
	if len(prefix) == 0 {
		return name, args
	}
	full := make([]string, 0, len(prefix)+len(args))
	full = append(full, prefix[1:]...)
	full = append(full, name)
	full = append(full, args...)
	return prefix[0], full
}
