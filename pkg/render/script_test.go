// TEST TYPE: Integration Test
// DEPENDENCIES: /bin/sh, sha256sum or shasum, temp directories
// PURPOSE: Run generated installers and the self-test in a real shell

package render

import (
	stderrors "errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deftsilo/pkg/testutil"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

func requireShell(t *testing.T) {
	t.Helper()
	testutil.SkipOnWindows(t)
	testutil.RequireCommand(t, "sh", "awk", "cut")
	testutil.RequireAnyCommand(t, "sha256sum", "shasum")
}

// runScript runs script with sh and returns its combined output and exit code
func runScript(t *testing.T, script string, args ...string) (string, int) {
	t.Helper()
	out, err := exec.Command("sh", append([]string{script}, args...)...).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		require.True(t, stderrors.As(err, &exitErr), "sh did not run: %v", err)
		return string(out), exitErr.ExitCode()
	}
	return string(out), 0
}

// installerFixture builds a source tree and its generated installer
func installerFixture(t *testing.T) (root, script string) {
	t.Helper()
	root = t.TempDir()
	testutil.CreateFileMode(t, root, ".config/app.conf", "v2\n", 0600)
	testutil.CreateFileMode(t, root, "bin/tool", "#!/bin/sh\n", 0755)

	plan := types.NewPlan(
		[]types.DirEntry{{Path: ".config", Mode: 0700}, {Path: "bin", Mode: 0755}},
		[]types.FileEntry{
			{Path: ".config/app.conf", Mode: 0600, Hashes: []string{
				testutil.GetTestChecksum("v2\n"), testutil.GetTestChecksum("v1\n"),
			}},
			{Path: "bin/tool", Mode: 0755, Hashes: []string{testutil.GetTestChecksum("#!/bin/sh\n")}},
		},
	)

	script = filepath.Join(root, "install.sh")
	f, err := os.Create(script)
	require.NoError(t, err)
	require.NoError(t, Write(f, NewShell("test"), plan))
	require.NoError(t, f.Close())
	return root, script
}

func TestScript_CopyInstall(t *testing.T) {
	requireShell(t)
	_, script := installerFixture(t)
	target := t.TempDir()

	out, code := runScript(t, script, target)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "all files successfully installed")

	conf := filepath.Join(target, ".config", "app.conf")
	testutil.AssertFileContent(t, conf, "v2\n")
	assert.Equal(t, fs.FileMode(0600), testutil.FileMode(t, conf))
	assert.Equal(t, fs.FileMode(0700), testutil.FileMode(t, filepath.Join(target, ".config")))
	assert.Equal(t, fs.FileMode(0755), testutil.FileMode(t, filepath.Join(target, "bin", "tool")))

	// idempotent
	out, code = runScript(t, script, target)
	require.Equal(t, 0, code, out)
	testutil.AssertFileContent(t, conf, "v2\n")

	// an older committed version is overwritten
	require.NoError(t, os.WriteFile(conf, []byte("v1\n"), 0600))
	out, code = runScript(t, script, "--", target)
	require.Equal(t, 0, code, out)
	testutil.AssertFileContent(t, conf, "v2\n")
}

func TestScript_RefusesUnsavedChanges(t *testing.T) {
	requireShell(t)
	_, script := installerFixture(t)
	target := t.TempDir()

	testutil.CreateFileMode(t, target, ".config/app.conf", "local edit\n", 0644)

	out, code := runScript(t, script, target)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, `failed to copy ".config/app.conf": unsaved changes`)
	assert.NotContains(t, out, "successfully installed")

	testutil.AssertFileContent(t, filepath.Join(target, ".config", "app.conf"), "local edit\n")
	assert.Equal(t, fs.FileMode(0644), testutil.FileMode(t, filepath.Join(target, ".config", "app.conf")))

	out, code = runScript(t, script, "-l", target)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, `failed to link ".config/app.conf": unsaved changes`)
	testutil.AssertFileContent(t, filepath.Join(target, ".config", "app.conf"), "local edit\n")
}

func TestScript_RefusesTypeConflict(t *testing.T) {
	requireShell(t)
	_, script := installerFixture(t)
	target := t.TempDir()

	testutil.CreateDir(t, target, "bin/tool")

	out, code := runScript(t, script, target)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, `cannot copy "`+filepath.Join(target, "bin", "tool")+`": would clobber a directory`)
	// earlier instructions stay applied
	testutil.AssertFileContent(t, filepath.Join(target, ".config", "app.conf"), "v2\n")
}

func TestScript_LinkMode(t *testing.T) {
	requireShell(t)
	root, script := installerFixture(t)
	target := t.TempDir()

	canonRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	out, code := runScript(t, script, "-l", target)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "linking, not copying")

	link := filepath.Join(target, "bin", "tool")
	testutil.AssertSymlink(t, link, filepath.Join(canonRoot, "bin", "tool"))

	// existing links are left alone
	out, code = runScript(t, script, "-l", target)
	require.Equal(t, 0, code, out)
	testutil.AssertSymlink(t, link, filepath.Join(canonRoot, "bin", "tool"))
}

func TestScript_Usage(t *testing.T) {
	requireShell(t)
	_, script := installerFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no target", nil},
		{"unknown flag", []string{"-x", t.TempDir()}},
		{"two targets", []string{t.TempDir(), t.TempDir()}},
		{"missing target", []string{filepath.Join(t.TempDir(), "missing")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code := runScript(t, script, tt.args...)
			assert.Equal(t, 2, code)
		})
	}
}

func TestScript_SelfTest(t *testing.T) {
	requireShell(t)
	testutil.RequireCommand(t, "mktemp")

	script := filepath.Join(t.TempDir(), "selftest.sh")
	f, err := os.Create(script)
	require.NoError(t, err)
	require.NoError(t, NewShell("test").RenderSelfTest(f))
	require.NoError(t, f.Close())

	out, code := runScript(t, script)
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "SUCCESS")
}
