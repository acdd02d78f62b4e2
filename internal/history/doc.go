// Package history records status transitions in a SQLite database so the
// user can see when Tor came up, dropped or was toggled.
//
// The database lives at $XDG_DATA_HOME/torbar/history.db. Writes happen at
// most once per status run and only when the status changed.
package history
