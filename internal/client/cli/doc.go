// Package cli is the interactive profile client. It mounts a profile page
// over the backend SDK and drives it from a line-oriented REPL.
//
// Failures are written to the diagnostic log only; the REPL renders generic
// state such as "no profile" or "no bio yet".
package cli
