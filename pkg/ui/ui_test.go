package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/installer"
	"github.com/arthur-debert/deftsilo/pkg/types"
	"github.com/arthur-debert/deftsilo/pkg/ui"
)

func sampleReport() *installer.Report {
	return &installer.Report{Results: []types.ActionResult{
		{
			Instruction: types.Instruction{Kind: types.EnsureDirectory, Path: "conf", Mode: 0700},
			Target:      "/dst/conf",
			State:       types.Absent,
			Outcome:     types.OutcomeCreated,
		},
		{
			Instruction: types.Instruction{Kind: types.InstallFile, Path: "conf/app", Mode: 0600},
			Target:      "/dst/conf/app",
			State:       types.IsFile,
			Outcome:     types.OutcomeUpdated,
			Message:     "mode 644 -> 600",
		},
		{
			Instruction: types.Instruction{Kind: types.InstallFile, Path: "a_file", Mode: 0644},
			Target:      "/dst/a_file",
			State:       types.IsFile,
			Outcome:     types.OutcomeCreated,
		},
	}}
}

func samplePlan() *types.Plan {
	return types.NewPlan(
		[]types.DirEntry{{Path: "conf", Mode: 0700}},
		[]types.FileEntry{{Path: "conf/app", Mode: 0600, Hashes: []string{"aa", "bb"}}},
	)
}

func render(t *testing.T, format ui.Format, fn func(ui.Renderer) error) string {
	t.Helper()
	var buf bytes.Buffer
	r, err := ui.NewRenderer(format, &buf)
	require.NoError(t, err)
	require.NoError(t, fn(r))
	return buf.String()
}

func TestNewRenderer(t *testing.T) {
	for _, f := range []ui.Format{ui.FormatAuto, ui.FormatTerminal, ui.FormatText, ui.FormatJSON} {
		r, err := ui.NewRenderer(f, &bytes.Buffer{})
		require.NoError(t, err, f.String())
		assert.NotNil(t, r)
	}

	_, err := ui.NewRenderer(ui.Format(999), &bytes.Buffer{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestTextRenderer(t *testing.T) {
	t.Run("report", func(t *testing.T) {
		out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderReport(sampleReport()) })
		assert.Equal(t, ""+
			"created   dir  conf\n"+
			"updated   file conf/app (mode 644 -> 600)\n"+
			"created   file a_file\n"+
			"2 created, 1 updated\n", out)
	})

	t.Run("dry run", func(t *testing.T) {
		report := sampleReport()
		report.DryRun = true
		out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderReport(report) })
		assert.Contains(t, out, "Dry run: no changes were made\n")
	})

	t.Run("plan", func(t *testing.T) {
		out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderPlan(samplePlan()) })
		assert.Equal(t, "dir  700 conf\nfile 600 conf/app (2 known versions)\n", out)
	})

	t.Run("error", func(t *testing.T) {
		out := render(t, ui.FormatText, func(r ui.Renderer) error {
			return r.RenderError(errors.New(errors.ErrClobber, "boom"))
		})
		assert.Equal(t, "Error: [CLOBBER] boom\n", out)
	})
}

func TestTerminalRenderer(t *testing.T) {
	out := render(t, ui.FormatTerminal, func(r ui.Renderer) error { return r.RenderReport(sampleReport()) })
	assert.Contains(t, out, "conf/app")
	assert.Contains(t, out, "mode 644 -> 600")
	assert.Contains(t, out, "2 created")

	out = render(t, ui.FormatTerminal, func(r ui.Renderer) error { return r.RenderPlan(samplePlan()) })
	assert.Contains(t, out, "conf/app")
	assert.Contains(t, out, "600")

	out = render(t, ui.FormatTerminal, func(r ui.Renderer) error {
		return r.RenderError(errors.New(errors.ErrClobber, "boom").WithPath("/dst/a"))
	})
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "/dst/a")
}

func TestJSONRenderer(t *testing.T) {
	t.Run("report", func(t *testing.T) {
		out := render(t, ui.FormatJSON, func(r ui.Renderer) error { return r.RenderReport(sampleReport()) })

		var decoded struct {
			DryRun  bool `json:"dry_run"`
			Results []struct {
				Kind    string `json:"kind"`
				Path    string `json:"path"`
				State   string `json:"state"`
				Outcome string `json:"outcome"`
			} `json:"results"`
			Summary map[string]int `json:"summary"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		require.Len(t, decoded.Results, 3)
		assert.Equal(t, "ensure_directory", decoded.Results[0].Kind)
		assert.Equal(t, "conf/app", decoded.Results[1].Path)
		assert.Equal(t, "updated", decoded.Results[1].Outcome)
		assert.Equal(t, map[string]int{"created": 2, "updated": 1}, decoded.Summary)
	})

	t.Run("error", func(t *testing.T) {
		out := render(t, ui.FormatJSON, func(r ui.Renderer) error {
			return r.RenderError(errors.New(errors.ErrUnsavedChanges, "dirty").WithPath("/dst/a"))
		})

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "UNSAVED_CHANGES", decoded["code"])
		assert.Equal(t, "/dst/a", decoded["details"].(map[string]interface{})["path"])
	})
}
