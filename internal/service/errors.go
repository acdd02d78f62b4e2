package service

import "errors"

var (
	// ErrStart is returned when the unit could not be started.
	ErrStart = errors.New("failed to start service")

	// ErrStop is returned when the unit could not be stopped.
	ErrStop = errors.New("failed to stop service")

	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown service backend")
)
