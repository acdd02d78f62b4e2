// Package bootstrap reads Tor's bootstrap progress from the service journal.
//
// Tor logs lines such as
//
//	Bootstrapped 45% (loading_descriptors): Loading relay descriptors
//
// while it builds its first circuits. Progress is taken from the newest such
// line in a bounded window of recent log lines.
package bootstrap
