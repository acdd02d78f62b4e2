// Package tor talks to the local Tor daemon and to the Tor Project's check
// endpoint.
//
// Client speaks SOCKS5 to Tor's SOCKS port: it verifies that the listener is
// really a SOCKS5 proxy and can build HTTP clients that route through it.
// Checker asks the check endpoint whether a request arrived over Tor. By
// default the check request goes out directly, because the redirection rules
// are what is being verified; it can also be routed through the SOCKS port.
package tor
