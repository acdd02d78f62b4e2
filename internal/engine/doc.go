// Package engine derives the Tor routing status for one status invocation
// and reconciles the proxy artifacts with what the probes observed.
//
// The decision and classification rules are pure functions (Decide and
// Classify) so they can be tested exhaustively. Engine.Run sequences the
// probes, applies the decision and persists the outcome.
package engine
