// Package firewall manages the nat OUTPUT rules that send local traffic into
// Tor: TCP connection attempts go to Tor's TransPort and DNS queries go to its
// DNSPort.
//
// Rules are only ever added when missing and removed while present, so
// Apply and Remove can be repeated safely and converge from any partial state.
package firewall
