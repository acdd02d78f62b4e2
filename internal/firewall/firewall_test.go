package firewall

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/torbar/internal/command"
	"github.com/nao1215/torbar/internal/config"
	"github.com/nao1215/torbar/internal/log"
)

// memBackend is an in-memory packet filter counting installed copies.
type memBackend struct {
	mu        sync.Mutex
	installed map[string]int
	failOn    map[string]error
	appends   int
}

func newMemBackend() *memBackend {
	return &memBackend{installed: map[string]int{}, failOn: map[string]error{}}
}

func key(r Rule) string { return r.Table + " " + r.Chain + " " + r.String() }

func (m *memBackend) Exists(_ context.Context, r Rule) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["exists "+r.String()]; err != nil {
		return false, err
	}
	return m.installed[key(r)] > 0, nil
}

func (m *memBackend) Append(_ context.Context, r Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["append "+r.String()]; err != nil {
		return err
	}
	m.appends++
	m.installed[key(r)]++
	return nil
}

func (m *memBackend) Delete(_ context.Context, r Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.installed[key(r)] > 0 {
		m.installed[key(r)]--
	}
	return nil
}

func (m *memBackend) count(r Rule) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.installed[key(r)]
}

func TestRedirectRules(t *testing.T) {
	t.Parallel()

	rules := RedirectRules(9040, 5353)
	want := []string{
		"-p tcp --syn -j REDIRECT --to-ports 9040",
		"-p udp --dport 53 -j REDIRECT --to-ports 5353",
		"-p tcp --dport 53 -j REDIRECT --to-ports 5353",
	}
	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, r := range rules {
		if r.Table != "nat" || r.Chain != "OUTPUT" {
			t.Errorf("rule %d: expected nat OUTPUT, got %s %s", i, r.Table, r.Chain)
		}
		if r.String() != want[i] {
			t.Errorf("rule %d: expected %q, got %q", i, want[i], r.String())
		}
	}
}

func TestRedirectorApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	b := newMemBackend()
	r := NewRedirector(b, RedirectRules(9040, 5353), log.Discard())

	for i := range 3 {
		if err := r.Apply(context.Background()); err != nil {
			t.Fatalf("apply #%d: unexpected error: %v", i+1, err)
		}
	}
	for _, rule := range r.Rules() {
		if n := b.count(rule); n != 1 {
			t.Errorf("expected exactly one copy of %q, got %d", rule, n)
		}
	}
	if b.appends != 3 {
		t.Errorf("expected 3 appends in total, got %d", b.appends)
	}
}

func TestRedirectorRemoveClearsDuplicates(t *testing.T) {
	t.Parallel()

	b := newMemBackend()
	rules := RedirectRules(9040, 5353)
	b.installed[key(rules[0])] = 3
	b.installed[key(rules[2])] = 1

	r := NewRedirector(b, rules, log.Discard())
	if err := r.Remove(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rule := range rules {
		if n := b.count(rule); n != 0 {
			t.Errorf("expected %q to be gone, %d left", rule, n)
		}
	}
	if err := r.Remove(context.Background()); err != nil {
		t.Errorf("expected second remove to be a no-op, got %v", err)
	}
}

func TestRedirectorContinuesPastFailures(t *testing.T) {
	t.Parallel()

	b := newMemBackend()
	rules := RedirectRules(9040, 5353)
	errDenied := errors.New("permission denied")
	b.failOn["append "+rules[0].String()] = errDenied

	r := NewRedirector(b, rules, log.Discard())
	err := r.Apply(context.Background())
	if !errors.Is(err, errDenied) {
		t.Fatalf("expected aggregated error to wrap the failure, got %v", err)
	}
	if b.count(rules[1]) != 1 || b.count(rules[2]) != 1 {
		t.Error("expected the remaining rules to be installed despite the first failure")
	}

	states := r.States(context.Background())
	if len(states) != 3 || states[0].Present || !states[1].Present || !states[2].Present {
		t.Errorf("unexpected states %+v", states)
	}
}

func TestExecBackend(t *testing.T) {
	t.Parallel()

	rule := RedirectRules(9040, 5353)[1]
	line := "-t nat %s OUTPUT -p udp --dport 53 -j REDIRECT --to-ports 5353"
	cmd := func(op string) string {
		return "sudo -n iptables " + strings.Replace(line, "%s", op, 1)
	}

	const badRule = "iptables: Bad rule (does a matching rule exist in that chain?)."
	const sudoDenied = "sudo: a password is required"

	t.Run("exists maps a missing rule to absent", func(t *testing.T) {
		t.Parallel()

		fake := &command.Fake{Responses: map[string]command.Response{
			cmd("-C"): {Err: &command.ExitError{Code: 1, Stderr: badRule}},
		}}
		b := NewExec([]string{"sudo", "-n"}, 3*time.Second, fake)
		ok, err := b.Exists(context.Background(), rule)
		if err != nil || ok {
			t.Errorf("expected absent without error, got %v, %v", ok, err)
		}
	})

	t.Run("exists reports other failures", func(t *testing.T) {
		t.Parallel()

		fake := &command.Fake{Responses: map[string]command.Response{
			cmd("-C"): {Err: &command.ExitError{Code: 4, Stderr: "can't initialize iptables table"}},
		}}
		b := NewExec([]string{"sudo", "-n"}, 3*time.Second, fake)
		if _, err := b.Exists(context.Background(), rule); err == nil {
			t.Error("expected an error for exit status 4")
		}
	})

	t.Run("append and delete build the right command lines", func(t *testing.T) {
		t.Parallel()

		fake := &command.Fake{}
		b := NewExec([]string{"sudo", "-n"}, 3*time.Second, fake)
		if err := b.Append(context.Background(), rule); err != nil {
			t.Fatal(err)
		}
		if err := b.Delete(context.Background(), rule); err != nil {
			t.Fatal(err)
		}
		calls := fake.Calls()
		if len(calls) != 2 || calls[0] != cmd("-A") || calls[1] != cmd("-D") {
			t.Errorf("unexpected calls %v", calls)
		}
	})

	t.Run("delete of a missing rule is not an error", func(t *testing.T) {
		t.Parallel()

		fake := &command.Fake{Responses: map[string]command.Response{
			cmd("-D"): {Err: &command.ExitError{Code: 1, Stderr: badRule}},
		}}
		b := NewExec([]string{"sudo", "-n"}, 3*time.Second, fake)
		if err := b.Delete(context.Background(), rule); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("sudo refusal is an error, not a missing rule", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			stderr string
		}{
			{name: "password required", stderr: sudoDenied},
			{name: "no stderr", stderr: ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				fake := &command.Fake{Handler: func(command.Call) command.Response {
					return command.Response{Err: &command.ExitError{Code: 1, Stderr: tt.stderr}}
				}}
				b := NewExec([]string{"sudo", "-n"}, 3*time.Second, fake)

				if ok, err := b.Exists(context.Background(), rule); err == nil {
					t.Errorf("Exists() = %v, nil; want an error", ok)
				}
				if err := b.Delete(context.Background(), rule); err == nil {
					t.Error("Delete() = nil, want an error")
				}

				r := NewRedirector(b, []Rule{rule}, log.Discard())
				if err := r.Remove(context.Background()); err == nil {
					t.Error("Remove() = nil, want the sudo failure")
				}
			})
		}
	})
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	t.Run("explicit iptables", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.FirewallBackend = config.FirewallBackendIPTables
		b, err := NewBackend(cfg, log.Discard())
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := b.(*IPTables); !ok {
			t.Errorf("expected *IPTables, got %T", b)
		}
	})

	t.Run("explicit sudo", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.FirewallBackend = config.FirewallBackendSudo
		b, err := NewBackend(cfg, log.Discard())
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := b.(*Exec); !ok {
			t.Errorf("expected *Exec, got %T", b)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.FirewallBackend = "pf"
		if _, err := NewBackend(cfg, log.Discard()); !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("expected ErrUnknownBackend, got %v", err)
		}
	})
}
