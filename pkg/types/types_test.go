package types_test

import (
	"io/fs"
	"testing"

	"github.com/arthur-debert/deftsilo/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan_DirectoriesBeforeFiles(t *testing.T) {
	plan := types.NewPlan(
		[]types.DirEntry{{Path: "a", Mode: 0o755}, {Path: "a/b", Mode: fs.ModeDir | 0o700}},
		[]types.FileEntry{{Path: ".bashrc", Mode: 0o644, Hashes: []string{"h1"}}},
	)

	require.Len(t, plan.Instructions, 3)
	assert.Equal(t, types.EnsureDirectory, plan.Instructions[0].Kind)
	assert.Equal(t, types.EnsureDirectory, plan.Instructions[1].Kind)
	assert.Equal(t, types.InstallFile, plan.Instructions[2].Kind)

	// non-permission bits are stripped
	assert.Equal(t, fs.FileMode(0o700), plan.Instructions[1].Mode)

	assert.Len(t, plan.Directories(), 2)
	assert.Len(t, plan.Files(), 1)
}

func TestInstruction_Allows(t *testing.T) {
	ins := types.Instruction{Kind: types.InstallFile, Hashes: []string{"aa", "bb", "aa"}}

	assert.True(t, ins.Allows("aa"))
	assert.True(t, ins.Allows("bb"))
	assert.False(t, ins.Allows("cc"))
	assert.False(t, types.Instruction{}.Allows(""))
}

func TestFormatAndParseMode(t *testing.T) {
	tests := []struct {
		mode fs.FileMode
		text string
	}{
		{0o644, "644"},
		{0o750, "750"},
		{0o7, "7"},
		{0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.text, types.FormatMode(tt.mode))

			got, err := types.ParseMode(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, got)
		})
	}

	got, err := types.ParseMode("0750")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o750), got)

	_, err = types.ParseMode("999")
	assert.Error(t, err)
	_, err = types.ParseMode("1777")
	assert.Error(t, err)
}

func TestParseInstallMode(t *testing.T) {
	mode, err := types.ParseInstallMode("")
	require.NoError(t, err)
	assert.Equal(t, types.InstallCopy, mode)

	mode, err = types.ParseInstallMode("link")
	require.NoError(t, err)
	assert.Equal(t, types.InstallLink, mode)

	_, err = types.ParseInstallMode("hardlink")
	assert.Error(t, err)
}

func TestInstructionKindString(t *testing.T) {
	assert.Equal(t, "ensure_directory", types.EnsureDirectory.String())
	assert.Equal(t, "install_file", types.InstallFile.String())
	assert.Equal(t, "dangling symlink", types.IsDangling.String())
}
