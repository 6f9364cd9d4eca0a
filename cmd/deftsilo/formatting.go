package deftsilo

import (
	"os"
	"strings"
	"text/template"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/deftsilo/pkg/logging"
	"github.com/arthur-debert/deftsilo/pkg/ui"
)

// stdoutIsTerminal reports whether help output goes to a terminal
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// formatBold returns s in bold when stdout is a terminal
func formatBold(s string) string {
	if !stdoutIsTerminal() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// formatBoldUpper returns s upper-cased, in bold when stdout is a terminal
func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      formatBold,
		"upper":     strings.ToUpper,
		"boldUpper": formatBoldUpper,
	})
}

// reportFailure writes err to stdout as a JSON error document when the
// command was asked for JSON, so scripts read one stream. Other formats
// leave the error to main, which prints it on stderr.
func reportFailure(renderer ui.Renderer, format ui.Format, err error) error {
	if err == nil || format != ui.FormatJSON {
		return err
	}
	if rerr := renderer.RenderError(err); rerr != nil {
		logger := logging.GetLogger("cmd")
		logger.Warn().Err(rerr).Msg("Failed to render error")
	}
	return err
}
