package firewall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-iptables/iptables"

	"github.com/nao1215/torbar/internal/command"
	"github.com/nao1215/torbar/internal/config"
)

// ErrUnknownBackend is returned by NewBackend for an unsupported name.
var ErrUnknownBackend = errors.New("unknown firewall backend")

// Backend checks, adds and deletes single rules.
type Backend interface {
	Exists(ctx context.Context, r Rule) (bool, error)
	Append(ctx context.Context, r Rule) error
	Delete(ctx context.Context, r Rule) error
}

// NewBackend returns the backend selected by cfg.FirewallBackend. "auto"
// picks the in-process iptables backend when running as root and the
// privileged command backend otherwise.
func NewBackend(cfg *config.Config, logger *slog.Logger) (Backend, error) {
	name := cfg.FirewallBackend
	if name == config.FirewallBackendAuto {
		name = config.FirewallBackendSudo
		if os.Geteuid() == 0 {
			name = config.FirewallBackendIPTables
		}
	}
	logger.Debug("firewall backend", "backend", name)

	switch name {
	case config.FirewallBackendIPTables:
		return NewIPTables(cfg.FirewallTimeout), nil
	case config.FirewallBackendSudo:
		return NewExec(cfg.PrivilegeCommand, cfg.FirewallTimeout, nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.FirewallBackend)
	}
}

// IPTables drives iptables in-process through go-iptables. It needs root.
type IPTables struct {
	timeout time.Duration
	ipt     *iptables.IPTables
}

// NewIPTables returns an IPTables backend. The iptables binary is located
// on first use so construction never fails.
func NewIPTables(timeout time.Duration) *IPTables {
	return &IPTables{timeout: timeout}
}

func (b *IPTables) handle() (*iptables.IPTables, error) {
	if b.ipt != nil {
		return b.ipt, nil
	}
	secs := int(b.timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	ipt, err := iptables.New(iptables.Timeout(secs))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize iptables: %w", err)
	}
	b.ipt = ipt
	return ipt, nil
}

// Exists reports whether r is installed.
func (b *IPTables) Exists(_ context.Context, r Rule) (bool, error) {
	ipt, err := b.handle()
	if err != nil {
		return false, err
	}
	return ipt.Exists(r.Table, r.Chain, r.Spec...)
}

// Append adds r at the end of its chain unless already present.
func (b *IPTables) Append(_ context.Context, r Rule) error {
	ipt, err := b.handle()
	if err != nil {
		return err
	}
	return ipt.AppendUnique(r.Table, r.Chain, r.Spec...)
}

// Delete removes one instance of r.
func (b *IPTables) Delete(_ context.Context, r Rule) error {
	ipt, err := b.handle()
	if err != nil {
		return err
	}
	err = ipt.Delete(r.Table, r.Chain, r.Spec...)
	var e *iptables.Error
	if errors.As(err, &e) && e.IsNotExist() {
		return nil
	}
	return err
}

// Exec runs iptables as a separate, optionally privileged, process.
//
// Design decision: "exists" and "missing" are read from iptables' own
// diagnostics rather than the exit status. Behind "sudo -n" an exit status
// of 1 can also mean sudo refused to run, and treating that as "no rule"
// would report a revert as done while the redirection stays installed.
type Exec struct {
	privilege []string
	timeout   time.Duration
	runner    command.Runner
}

// NewExec returns an Exec backend. A nil runner uses os/exec.
func NewExec(privilege []string, timeout time.Duration, runner command.Runner) *Exec {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &Exec{
		privilege: append([]string(nil), privilege...),
		timeout:   timeout,
		runner:    runner,
	}
}

// iptables reports a missing rule with exit status 1 on -C and -D.
// sudo also exits 1 when it refuses to run, so the status alone says
// nothing about the rule.
const exitRuleMissing = 1

// ruleMissingMessages are the iptables (legacy and nft) diagnostics for a
// rule or chain that is not there.
var ruleMissingMessages = []string{
	"does a matching rule exist",
	"Bad rule",
	"No chain/target/match by that name",
}

// isRuleMissing reports whether err is iptables saying the rule does not
// exist, as opposed to the privilege command failing.
func isRuleMissing(err error) bool {
	var e *command.ExitError
	if !errors.As(err, &e) || e.Code != exitRuleMissing {
		return false
	}
	if strings.HasPrefix(e.Stderr, "sudo:") {
		return false
	}
	for _, msg := range ruleMissingMessages {
		if strings.Contains(e.Stderr, msg) {
			return true
		}
	}
	return false
}

func (b *Exec) run(ctx context.Context, op string, r Rule) error {
	args := append([]string{"-t", r.Table, op, r.Chain}, r.Spec...)
	name, args := command.Privileged(b.privilege, "iptables", args...)
	_, err := command.RunTimeout(ctx, b.runner, b.timeout, name, args...)
	return err
}

// Exists runs "iptables -t <table> -C <chain> <spec>".
func (b *Exec) Exists(ctx context.Context, r Rule) (bool, error) {
	err := b.run(ctx, "-C", r)
	switch {
	case err == nil:
		return true, nil
	case isRuleMissing(err):
		return false, nil
	default:
		return false, err
	}
}

// Append runs "iptables -t <table> -A <chain> <spec>".
func (b *Exec) Append(ctx context.Context, r Rule) error {
	return b.run(ctx, "-A", r)
}

// Delete runs "iptables -t <table> -D <chain> <spec>". A missing rule is
// not an error.
func (b *Exec) Delete(ctx context.Context, r Rule) error {
	err := b.run(ctx, "-D", r)
	if isRuleMissing(err) {
		return nil
	}
	return err
}
