package firewall

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
)

// maxDeletes bounds how many duplicates of one rule Remove deletes.
const maxDeletes = 16

// Redirector installs and removes a fixed set of rules.
type Redirector struct {
	backend Backend
	rules   []Rule
	logger  *slog.Logger
}

// NewRedirector returns a Redirector for rules on backend.
func NewRedirector(backend Backend, rules []Rule, logger *slog.Logger) *Redirector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redirector{backend: backend, rules: rules, logger: logger}
}

// Rules returns the managed rules.
func (r *Redirector) Rules() []Rule {
	return r.rules
}

// Apply adds every rule that is not installed yet. Each rule is attempted
// regardless of earlier failures; all failures are returned together.
func (r *Redirector) Apply(ctx context.Context) error {
	var result *multierror.Error
	for _, rule := range r.rules {
		exists, err := r.backend.Exists(ctx, rule)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("check rule %q: %w", rule, err))
			continue
		}
		if exists {
			continue
		}
		if err := r.backend.Append(ctx, rule); err != nil {
			result = multierror.Append(result, fmt.Errorf("append rule %q: %w", rule, err))
			continue
		}
		r.logger.Debug("redirection rule added", "rule", rule.String())
	}
	return result.ErrorOrNil()
}

// Remove deletes every instance of every rule, including duplicates left
// by older non-idempotent runs.
func (r *Redirector) Remove(ctx context.Context) error {
	var result *multierror.Error
	for _, rule := range r.rules {
		if err := r.removeAll(ctx, rule); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (r *Redirector) removeAll(ctx context.Context, rule Rule) error {
	for range maxDeletes {
		exists, err := r.backend.Exists(ctx, rule)
		if err != nil {
			return fmt.Errorf("check rule %q: %w", rule, err)
		}
		if !exists {
			return nil
		}
		if err := r.backend.Delete(ctx, rule); err != nil {
			return fmt.Errorf("delete rule %q: %w", rule, err)
		}
		r.logger.Debug("redirection rule removed", "rule", rule.String())
	}
	return fmt.Errorf("delete rule %q: still present after %d deletions", rule, maxDeletes)
}

// RuleState is the installation state of one rule.
type RuleState struct {
	Rule    Rule
	Present bool
	Err     error
}

// States reports each rule's presence.
func (r *Redirector) States(ctx context.Context) []RuleState {
	out := make([]RuleState, 0, len(r.rules))
	for _, rule := range r.rules {
		ok, err := r.backend.Exists(ctx, rule)
		out = append(out, RuleState{Rule: rule, Present: ok, Err: err})
	}
	return out
}
