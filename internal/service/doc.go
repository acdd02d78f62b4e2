// Package service queries and controls the Tor systemd unit.
//
// Two backends implement Manager: Systemctl shells out to systemctl(1) and
// DBus talks to org.freedesktop.systemd1 directly. IsActive is fail-closed:
// any error, timeout or state other than "active" reports false.
package service
