package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/installer"
	"github.com/arthur-debert/deftsilo/pkg/types"
	"github.com/arthur-debert/deftsilo/pkg/ui/styles"
)

// outcomeStyles maps an outcome to its style name in styles.yaml
var outcomeStyles = map[types.Outcome]string{
	types.OutcomeCreated:   "Created",
	types.OutcomeUpdated:   "Updated",
	types.OutcomeUnchanged: "Unchanged",
	types.OutcomeLinked:    "Linked",
	types.OutcomeSkipped:   "Skipped",
	types.OutcomeFailed:    "Failed",
}

// terminalRenderer styles output with lipgloss and lays out listings as
// pterm tables
type terminalRenderer struct {
	output io.Writer
	theme  *styles.Theme
}

func newTerminal(output io.Writer) *terminalRenderer {
	return &terminalRenderer{output: output, theme: styles.Default}
}

func (r *terminalRenderer) style(name, s string) string {
	return r.theme.Get(name).Render(s)
}

func (r *terminalRenderer) table(data pterm.TableData) (string, error) {
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func (r *terminalRenderer) RenderReport(report *installer.Report) error {
	var b strings.Builder
	if report.DryRun {
		b.WriteString(r.style("DryRunBanner", "Dry run: no changes were made") + "\n")
	}

	data := pterm.TableData{{"Outcome", "Kind", "Path", "Detail"}}
	for _, res := range report.Results {
		data = append(data, []string{
			r.style(outcomeStyles[res.Outcome], string(res.Outcome)),
			kindLabel(res.Instruction.Kind),
			r.style("FilePath", res.Instruction.Path),
			r.style("Muted", res.Message),
		})
	}
	if len(report.Results) > 0 {
		table, err := r.table(data)
		if err != nil {
			return err
		}
		b.WriteString(table + "\n")
	}

	var parts []string
	for _, c := range summaryCounts(report) {
		parts = append(parts, r.style(outcomeStyles[c.outcome], fmt.Sprintf("%d %s", c.n, c.outcome)))
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, r.style("Muted", ", ")) + "\n")
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *terminalRenderer) RenderPlan(plan *types.Plan) error {
	if len(plan.Instructions) == 0 {
		return r.RenderMessage(r.style("Muted", "Nothing to install"))
	}

	data := pterm.TableData{{"Kind", "Mode", "Path", "Versions"}}
	for _, ins := range plan.Instructions {
		versions := ""
		if ins.Kind == types.InstallFile {
			versions = fmt.Sprintf("%d", len(ins.Hashes))
		}
		data = append(data, []string{
			kindLabel(ins.Kind),
			r.style("Mode", types.FormatMode(ins.Mode)),
			r.style("FilePath", ins.Path),
			versions,
		})
	}
	table, err := r.table(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.output, table)
	return err
}

func (r *terminalRenderer) RenderError(err error) error {
	if err == nil {
		return nil
	}

	line := r.style("Error", "Error:") + " " + err.Error()
	if path, ok := errors.GetErrorDetails(err)[errors.DetailPath].(string); ok && path != "" {
		line += "\n  " + r.style("Muted", "path: ") + r.style("FilePath", path)
	}
	_, werr := fmt.Fprintln(r.output, line)
	return werr
}

func (r *terminalRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
