// Package config provides configuration structures and utilities for torbar.
// It defines the Tor unit to watch, the proxy endpoint written into the
// environment file, the redirection ports, the per-user file locations and
// the timeouts applied to every external call.
package config
