// Package main provides the entry point for the torbar CLI.
//
// torbar is a waybar custom module for Tor. Run without arguments it prints
// one JSON status line for the bar; "torbar toggle" is the on-click action.
//
// Usage:
//
//	torbar            # status line
//	torbar toggle     # start or stop Tor and its proxy settings
//	torbar doctor     # explain the current state
//
// See --help for all available options.
package main

// main is the entry point for torbar.
func main() {
	Execute()
}
