// Package installer executes an install plan against a target directory.
//
// It is the native counterpart of the generated shell installer and follows
// the same state machine: every instruction inspects its target afresh,
// then creates, overwrites, links, skips or aborts. The first abort halts
// the run and leaves earlier effects in place. Re-running is safe because
// every instruction is idempotent.
//
// All filesystem access goes through types.FS, so a dry run is the same
// code path over a filesystem that logs mutations instead of applying them.
package installer
