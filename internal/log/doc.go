// Package log provides the slog loggers used by torbar.
//
// Everything torbar logs goes to stderr; stdout is reserved for the single
// status line the bar consumes. The SecureHandler masks values that would
// identify the user before a record is written:
//   - IP literals other than loopback (the exit or direct address returned
//     by the connectivity check)
//   - attributes keyed ip, exit_ip, password, token and similar
//   - passwords embedded in proxy URLs
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("connectivity check", "is_tor", true, "exit_ip", "185.220.101.1")
//	// exit_ip=***REDACTED***
//
// When stderr is a terminal the output is colorized with tint.
package log
