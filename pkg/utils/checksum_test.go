// Test Type: Unit Test
// Description: Tests for content hashing used by allow-lists

package utils_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/deftsilo/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFileHash = "b6668cf8c46c7075e18215d922e7812ca082fa6cc34668d00a6c20aee4551fb6"

func TestContentHash(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "known_test_file",
			content: "this is a test file\n",
			want:    testFileHash,
		},
		{
			name:    "empty",
			content: "",
			want:    "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.ContentHash([]byte(tt.content)))

			streamed, err := utils.HashReader(bytes.NewBufferString(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, streamed)
		})
	}
}

func TestCalculateFileChecksum(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "file1")
	require.NoError(t, os.WriteFile(testFile, []byte("this is a test file\n"), 0o644))

	sum, err := utils.CalculateFileChecksum(testFile)
	require.NoError(t, err)
	assert.Equal(t, testFileHash, sum)
	assert.Len(t, sum, 64)
}

func TestCalculateFileChecksum_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string) string
		errorMsg string
	}{
		{
			name: "non_existent_file",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "missing")
			},
			errorMsg: "no such file or directory",
		},
		{
			name: "directory_instead_of_file",
			setup: func(t *testing.T, dir string) string {
				sub := filepath.Join(dir, "subdir")
				require.NoError(t, os.Mkdir(sub, 0o755))
				return sub
			},
			errorMsg: "is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t, t.TempDir())

			_, err := utils.CalculateFileChecksum(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
