// Package notify sends desktop notifications through the
// org.freedesktop.Notifications service.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/hashicorp/go-multierror"

	"github.com/nao1215/torbar/internal/command"
)

// Urgency follows the notification spec's urgency levels.
type Urgency byte

// Urgency levels.
const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// String returns the name notify-send(1) accepts.
func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Notification is one desktop notification.
type Notification struct {
	Summary string
	Body    string
	Urgency Urgency
	// Expire is how long the notification stays up. Zero leaves it to the
	// notification server.
	Expire time.Duration
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

const appName = "torbar"

// DBus sends notifications over the session bus.
type DBus struct {
	timeout time.Duration
	connect func(ctx context.Context) (*dbus.Conn, error)
}

// NewDBus returns a DBus notifier whose calls time out after timeout.
func NewDBus(timeout time.Duration) *DBus {
	return &DBus{
		timeout: timeout,
		connect: func(ctx context.Context) (*dbus.Conn, error) {
			return dbus.ConnectSessionBus(dbus.WithContext(ctx))
		},
	}
}

// Notify calls org.freedesktop.Notifications.Notify.
func (d *DBus) Notify(ctx context.Context, n Notification) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	conn, err := d.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(n.Urgency)),
	}
	var id uint32
	return conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications").
		CallWithContext(ctx, "org.freedesktop.Notifications.Notify", 0,
			appName, uint32(0), "", n.Summary, n.Body, []string{}, hints, expireMillis(n.Expire)).
		Store(&id)
}

// expireMillis converts Expire to the notification protocol's int32 milliseconds, -1 meaning
// server default.
func expireMillis(d time.Duration) int32 {
	if d <= 0 {
		return -1
	}
	return int32(d / time.Millisecond) //nolint:gosec // notification lifetimes are seconds
}

// Command sends notifications with notify-send(1).
type Command struct {
	timeout time.Duration
	runner  command.Runner
}

// NewCommand returns a notify-send notifier. A nil runner uses os/exec.
func NewCommand(timeout time.Duration, runner command.Runner) *Command {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &Command{timeout: timeout, runner: runner}
}

// Notify runs "notify-send [-t ms] -u <urgency> <summary> <body>".
func (c *Command) Notify(ctx context.Context, n Notification) error {
	var args []string
	if n.Expire > 0 {
		args = append(args, "-t", strconv.Itoa(int(expireMillis(n.Expire))))
	}
	args = append(args, "-u", n.Urgency.String(), n.Summary, n.Body)
	_, err := command.RunTimeout(ctx, c.runner, c.timeout, "notify-send", args...)
	return err
}

// Fallback tries each notifier in order until one succeeds.
type Fallback struct {
	notifiers []Notifier
	logger    *slog.Logger
}

// NewFallback returns a notifier chaining notifiers.
func NewFallback(logger *slog.Logger, notifiers ...Notifier) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{notifiers: notifiers, logger: logger}
}

// Notify delivers n through the first notifier that accepts it.
func (f *Fallback) Notify(ctx context.Context, n Notification) error {
	var result *multierror.Error
	for _, nt := range f.notifiers {
		err := nt.Notify(ctx, n)
		if err == nil {
			return nil
		}
		f.logger.Debug("notifier failed", "notifier", fmt.Sprintf("%T", nt), "error", err)
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// New returns the default desktop notifier: D-Bus, then notify-send.
func New(timeout time.Duration, logger *slog.Logger) Notifier {
	return NewFallback(logger, NewDBus(timeout), NewCommand(timeout, nil))
}
