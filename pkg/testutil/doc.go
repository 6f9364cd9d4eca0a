// Package testutil provides utilities for testing deftsilo components.
//
// Key components:
//   - File helpers: create files, directories and symlinks under t.TempDir()
//   - MemoryFS: in-memory types.FS with error injection for installer tests
//   - FakeVCS: scripted history.VCS for resolver and generator tests
//
// Tests that need real tools (git, sh) call RequireCommand so they skip
// cleanly where the tool is missing.
package testutil
