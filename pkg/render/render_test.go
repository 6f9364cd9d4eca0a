// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test backend registry, shell rendering and output buffering

package render

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

const exampleHash = "b6668cf8c46c7075e18215d922e7812ca082fa6cc34668d00a6c20aee4551fb6"

func samplePlan() *types.Plan {
	return types.NewPlan(
		[]types.DirEntry{
			{Path: ".config", Mode: 0700},
			{Path: ".config/nvim", Mode: 0755},
		},
		[]types.FileEntry{
			{Path: ".config/nvim/init.lua", Mode: 0644, Hashes: []string{exampleHash}},
			{Path: "bin/my tool", Mode: 0755, Hashes: []string{}},
		},
	)
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{"with space", `"with space"`},
		{"cost$HOME", `"cost\$HOME"`},
		{"back`tick`", "\"back\\`tick\\`\""},
		{`back\slash`, `"back\\slash"`},
		{"it's", `"it's"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.in), tt.in)
	}
}

func TestLine(t *testing.T) {
	line, err := Line(types.Instruction{Kind: types.EnsureDirectory, Path: "a/b", Mode: 0750})
	require.NoError(t, err)
	assert.Equal(t, "ensure_directory \"a/b\" 750\n", line)

	line, err = Line(types.Instruction{Kind: types.InstallFile, Path: "a_file", Mode: 0644, Hashes: []string{exampleHash, "ff"}})
	require.NoError(t, err)
	assert.Equal(t, "install_file \"a_file\" 644 "+exampleHash+" ff\n", line)

	line, err = Line(types.Instruction{Kind: types.InstallFile, Path: "new", Mode: 0600})
	require.NoError(t, err)
	assert.Equal(t, "install_file \"new\" 600\n", line)

	_, err = Line(types.Instruction{Kind: types.InstallFile, Path: "bad\"name", Mode: 0600})
	assert.True(t, errors.IsErrorCode(err, errors.ErrEncoding))
}

func TestShell_Render(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewShell("1.2.3").Render(&buf, samplePlan()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "#!/bin/sh\n"))
	assert.Contains(t, out, "deftsilo 1.2.3")
	assert.Contains(t, out, "deftsilo_usage")
	assert.True(t, strings.HasSuffix(out, "ensure_directory \".config\" 700\n"+
		"ensure_directory \".config/nvim\" 755\n"+
		"install_file \".config/nvim/init.lua\" 644 "+exampleHash+"\n"+
		"install_file \"bin/my tool\" 755\n"+
		"echo all files successfully installed\n"), out)
	assert.NotContains(t, out, "{{")
}

func TestShell_RenderSelfTest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewShell("dev").RenderSelfTest(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "#!/bin/sh\n"))
	assert.Contains(t, out, "ensure_directory() {")
	assert.NotContains(t, out, "deftsilo_usage")
	assert.True(t, strings.HasSuffix(out, "echo SUCCESS\n"))
}

func TestShell_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, NewShell("dev").Render(&a, samplePlan()))
	require.NoError(t, NewShell("dev").Render(&b, samplePlan()))
	assert.Equal(t, a.String(), b.String())
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry("dev")
	assert.Equal(t, []string{"sh", "toml", "yaml"}, r.Names())

	b, err := r.Get("sh")
	require.NoError(t, err)
	assert.Equal(t, "sh", b.Name())

	_, err = r.Get("xml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	assert.Error(t, r.Register(NewShell("other")))
	assert.Panics(t, func() { r.MustRegister(NewYAML("other")) })
	assert.NotPanics(t, func() { NewRegistry().MustRegister(NewTOML("dev")) })
}

// failingBackend writes part of an artifact and then fails
type failingBackend struct{ err error }

func (f failingBackend) Name() string { return "failing" }
func (f failingBackend) Render(w io.Writer, _ *types.Plan) error {
	_, _ = io.WriteString(w, "#!/bin/sh\npartial")
	return f.err
}

func TestWrite_NothingOnFailure(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		var out bytes.Buffer
		err := Write(&out, failingBackend{err: stderrors.New("boom")}, samplePlan())
		assert.True(t, errors.IsErrorCode(err, errors.ErrRender))
		assert.Zero(t, out.Len())
	})

	t.Run("encoding error", func(t *testing.T) {
		var out bytes.Buffer
		plan := types.NewPlan(nil, []types.FileEntry{
			{Path: "good", Mode: 0644},
			{Path: "bad\x01", Mode: 0644},
		})
		err := Write(&out, NewShell("dev"), plan)
		assert.True(t, errors.IsErrorCode(err, errors.ErrEncoding))
		assert.Zero(t, out.Len())
	})
}

func TestWrite_Success(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(&out, NewShell("dev"), samplePlan()))
	assert.Contains(t, out.String(), "install_file \"bin/my tool\" 755\n")
}
