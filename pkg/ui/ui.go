// Package ui renders installer reports, plans and errors for the command
// line. Terminal output is styled with lipgloss and pterm tables, text
// output is plain and JSON output is meant for scripts.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/installer"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderReport renders what an install run did
	RenderReport(report *installer.Report) error

	// RenderPlan renders the instructions of a plan
	RenderPlan(plan *types.Plan) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format. FormatAuto inspects output
// when it is an *os.File and falls back to plain text otherwise.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return newTerminal(output), nil
	case FormatText:
		return newText(output), nil
	case FormatJSON:
		return newJSON(output), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}

// kindLabel is the short name of an instruction kind used in listings
func kindLabel(k types.InstructionKind) string {
	if k == types.EnsureDirectory {
		return "dir"
	}
	return "file"
}

// summaryCounts lists the non-zero outcome counts of a report in a fixed
// order
func summaryCounts(report *installer.Report) []outcomeCount {
	var counts []outcomeCount
	for _, o := range []types.Outcome{
		types.OutcomeCreated,
		types.OutcomeUpdated,
		types.OutcomeLinked,
		types.OutcomeUnchanged,
		types.OutcomeSkipped,
		types.OutcomeFailed,
	} {
		if n := report.Count(o); n > 0 {
			counts = append(counts, outcomeCount{outcome: o, n: n})
		}
	}
	return counts
}

type outcomeCount struct {
	outcome types.Outcome
	n       int
}
