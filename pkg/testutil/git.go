package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// GitRepo initialises a throwaway repository isolated from the user's git
// configuration and returns its directory and a function running git
// inside it. HOME and XDG_STATE_HOME point outside the repository so log
// files never land in the tree under test. The test is skipped when git is
// not installed.
func GitRepo(t *testing.T) (string, func(args ...string)) {
	t.Helper()
	RequireCommand(t, "git")

	dir := t.TempDir()
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	git := func(args ...string) {
		t.Helper()
		base := []string{
			"-c", "user.name=deftsilo",
			"-c", "user.email=deftsilo@example.com",
			"-c", "commit.gpgsign=false",
		}
		cmd := exec.Command("git", append(base, args...)...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	git("init", "-q")
	return dir, git
}
