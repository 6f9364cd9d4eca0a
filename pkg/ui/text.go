package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/deftsilo/pkg/installer"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

// textRenderer writes plain, unstyled lines
type textRenderer struct {
	output io.Writer
}

func newText(output io.Writer) *textRenderer {
	return &textRenderer{output: output}
}

func (r *textRenderer) RenderReport(report *installer.Report) error {
	var b strings.Builder
	if report.DryRun {
		b.WriteString("Dry run: no changes were made\n")
	}
	for _, res := range report.Results {
		line := fmt.Sprintf("%-9s %-4s %s", res.Outcome, kindLabel(res.Instruction.Kind), res.Instruction.Path)
		if res.Message != "" {
			line += " (" + res.Message + ")"
		}
		b.WriteString(line + "\n")
	}

	var parts []string
	for _, c := range summaryCounts(report) {
		parts = append(parts, fmt.Sprintf("%d %s", c.n, c.outcome))
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, ", ") + "\n")
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *textRenderer) RenderPlan(plan *types.Plan) error {
	var b strings.Builder
	for _, ins := range plan.Instructions {
		fmt.Fprintf(&b, "%-4s %s %s", kindLabel(ins.Kind), types.FormatMode(ins.Mode), ins.Path)
		if ins.Kind == types.InstallFile {
			fmt.Fprintf(&b, " (%d known versions)", len(ins.Hashes))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *textRenderer) RenderError(err error) error {
	if err == nil {
		return nil
	}
	_, werr := fmt.Fprintf(r.output, "Error: %s\n", err.Error())
	return werr
}

func (r *textRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
