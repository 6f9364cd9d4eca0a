// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test parsing of git raw log output

package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deftsilo/pkg/errors"
)

func TestParseRawLog(t *testing.T) {
	out := "" +
		"9f1c3b0e8a2d4c6e8f0a1b2c3d4e5f60718293a4\n" +
		"\n" +
		":100644 100644 1111111111111111111111111111111111111111 2222222222222222222222222222222222222222 R100\told\tnew\n" +
		"5a6b7c8d9e0f1a2b3c4d5e6f708192a3b4c5d6e7\n" +
		"\n" +
		":100644 000000 3333333333333333333333333333333333333333 0000000000000000000000000000000000000000 D\told\n" +
		"0123456789abcdef0123456789abcdef01234567\n" +
		"\n" +
		":000000 100644 0000000000000000000000000000000000000000 3333333333333333333333333333333333333333 A\told\n"

	refs, err := parseRawLog([]byte(out))
	require.Nil(t, err)
	assert.Equal(t, []string{
		"2222222222222222222222222222222222222222",
		"0000000000000000000000000000000000000000",
		"3333333333333333333333333333333333333333",
	}, refs)
}

func TestParseRawLog_Malformed(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"short record", ":100644 100644 abc\n"},
		{"non hex id", ":100644 100644 1111 XYZ M\tf\n"},
		{"abbreviated marker", ":100644 100644 1111... 2222... M\tf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRawLog([]byte(tt.out))
			require.NotNil(t, err)
			assert.Equal(t, errors.ErrSubprocess, err.Code)
		})
	}
}

func TestParseRawLog_Empty(t *testing.T) {
	refs, err := parseRawLog(nil)
	require.Nil(t, err)
	assert.Empty(t, refs)
}
