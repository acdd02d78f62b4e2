// Package artifact installs and removes everything that routes this user's
// traffic into Tor: the environment.d proxy file, the nat redirection rules
// and, on removal, browser proxy flags.
//
// Every step is attempted independently and reported in a Result. A failed
// step never stops the ones after it, and repeating Apply or Revert converges
// to the same end state.
package artifact
