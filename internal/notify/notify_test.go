package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/nao1215/torbar/internal/command"
	"github.com/nao1215/torbar/internal/log"
)

type recorder struct {
	got []Notification
	err error
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestUrgencyString(t *testing.T) {
	t.Parallel()

	tests := map[Urgency]string{
		UrgencyLow:      "low",
		UrgencyNormal:   "normal",
		UrgencyCritical: "critical",
	}
	for u, want := range tests {
		if u.String() != want {
			t.Errorf("expected %q, got %q", want, u.String())
		}
	}
}

func TestCommandNotify(t *testing.T) {
	t.Parallel()

	t.Run("normal with expiry", func(t *testing.T) {
		t.Parallel()

		fake := &command.Fake{}
		c := NewCommand(3*time.Second, fake)
		err := c.Notify(context.Background(), Notification{
			Summary: "🔓 Tor Disabled",
			Body:    "Proxy settings removed",
			Urgency: UrgencyNormal,
			Expire:  3 * time.Second,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		calls := fake.Calls()
		want := "notify-send -t 3000 -u normal 🔓 Tor Disabled Proxy settings removed"
		if len(calls) != 1 || calls[0] != want {
			t.Errorf("expected %q, got %v", want, calls)
		}
	})

	t.Run("critical without expiry", func(t *testing.T) {
		t.Parallel()

		fake := &command.Fake{}
		c := NewCommand(3*time.Second, fake)
		if err := c.Notify(context.Background(), Notification{Summary: "s", Body: "b", Urgency: UrgencyCritical}); err != nil {
			t.Fatal(err)
		}
		if calls := fake.Calls(); len(calls) != 1 || calls[0] != "notify-send -u critical s b" {
			t.Errorf("unexpected calls %v", calls)
		}
	})
}

func TestFallback(t *testing.T) {
	t.Parallel()

	n := Notification{Summary: "s", Body: "b"}

	t.Run("stops at first success", func(t *testing.T) {
		t.Parallel()

		first, second := &recorder{}, &recorder{}
		if err := NewFallback(log.Discard(), first, second).Notify(context.Background(), n); err != nil {
			t.Fatal(err)
		}
		if len(first.got) != 1 || len(second.got) != 0 {
			t.Errorf("expected only the first notifier to be used, got %d / %d", len(first.got), len(second.got))
		}
	})

	t.Run("falls through on error", func(t *testing.T) {
		t.Parallel()

		first, second := &recorder{err: errors.New("no session bus")}, &recorder{}
		if err := NewFallback(log.Discard(), first, second).Notify(context.Background(), n); err != nil {
			t.Fatal(err)
		}
		if len(second.got) != 1 {
			t.Error("expected the second notifier to be used")
		}
	})

	t.Run("aggregates when all fail", func(t *testing.T) {
		t.Parallel()

		errA, errB := errors.New("a"), errors.New("b")
		err := NewFallback(log.Discard(), &recorder{err: errA}, &recorder{err: errB}).Notify(context.Background(), n)
		if !errors.Is(err, errA) || !errors.Is(err, errB) {
			t.Errorf("expected both errors, got %v", err)
		}
	})
}

func TestDBusNotifyWithoutBus(t *testing.T) {
	t.Parallel()

	errNoBus := errors.New("no session bus")
	d := NewDBus(time.Second)
	d.connect = func(context.Context) (*dbus.Conn, error) { return nil, errNoBus }

	if err := d.Notify(context.Background(), Notification{Summary: "s"}); !errors.Is(err, errNoBus) {
		t.Errorf("expected bus error, got %v", err)
	}
}

func TestExpireMillis(t *testing.T) {
	t.Parallel()

	if expireMillis(0) != -1 {
		t.Error("expected -1 for server default")
	}
	if expireMillis(3*time.Second) != 3000 {
		t.Error("expected 3000ms")
	}
}
