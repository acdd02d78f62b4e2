package service

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	systemdDest          = "org.freedesktop.systemd1"
	systemdPath          = dbus.ObjectPath("/org/freedesktop/systemd1")
	systemdManager       = "org.freedesktop.systemd1.Manager"
	systemdUnitInterface = "org.freedesktop.systemd1.Unit"
	propertiesGet        = "org.freedesktop.DBus.Properties.Get"
)

// BusConnector opens a connection to the system bus.
type BusConnector func(ctx context.Context) (*dbus.Conn, error)

// DBus manages a unit through the systemd D-Bus API. Start and Stop are
// authorised by polkit rather than the privilege command.
type DBus struct {
	unit    string
	opts    options
	connect BusConnector
}

// NewDBus returns a D-Bus backed Manager for unit.
func NewDBus(unit string, opts ...Option) *DBus {
	return &DBus{
		unit: unit,
		opts: newOptions(opts),
		connect: func(ctx context.Context) (*dbus.Conn, error) {
			return dbus.ConnectSystemBus(dbus.WithContext(ctx))
		},
	}
}

// unitName returns the unit with its ".service" suffix as systemd expects.
func (d *DBus) unitName() string {
	return serviceUnitName(d.unit)
}

// IsActive loads the unit and reads its ActiveState property.
func (d *DBus) IsActive(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, d.opts.probeTimeout)
	defer cancel()

	state, err := d.activeState(ctx)
	if err != nil {
		d.opts.logger.Debug("service probe failed", "unit", d.unit, "error", err)
		return false
	}
	return state == "active"
}

func (d *DBus) activeState(ctx context.Context) (string, error) {
	conn, err := d.connect(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	var unitPath dbus.ObjectPath
	err = conn.Object(systemdDest, systemdPath).
		CallWithContext(ctx, systemdManager+".LoadUnit", 0, d.unitName()).
		Store(&unitPath)
	if err != nil {
		return "", fmt.Errorf("load unit %s: %w", d.unitName(), err)
	}

	var v dbus.Variant
	err = conn.Object(systemdDest, unitPath).
		CallWithContext(ctx, propertiesGet, 0, systemdUnitInterface, "ActiveState").
		Store(&v)
	if err != nil {
		return "", fmt.Errorf("read ActiveState: %w", err)
	}
	state, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected ActiveState type %s", v.Signature())
	}
	return state, nil
}

// Start calls StartUnit(unit, "replace").
func (d *DBus) Start(ctx context.Context) error {
	if err := d.control(ctx, "StartUnit"); err != nil {
		return fmt.Errorf("%w %s: %w", ErrStart, d.unit, err)
	}
	return nil
}

// Stop calls StopUnit(unit, "replace").
func (d *DBus) Stop(ctx context.Context) error {
	if err := d.control(ctx, "StopUnit"); err != nil {
		return fmt.Errorf("%w %s: %w", ErrStop, d.unit, err)
	}
	return nil
}

func (d *DBus) control(ctx context.Context, method string) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.controlTimeout)
	defer cancel()

	conn, err := d.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var job dbus.ObjectPath
	err = conn.Object(systemdDest, systemdPath).
		CallWithContext(ctx, systemdManager+"."+method, 0, d.unitName(), "replace").
		Store(&job)
	if err != nil {
		return err
	}
	d.opts.logger.Debug("service job queued", "method", method, "unit", d.unitName(), "job", string(job))
	return nil
}
