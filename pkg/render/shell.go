package render

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

//go:embed templates/preamble.sh.tmpl
var preambleSource string

//go:embed templates/selftest.sh
var selfTestHarness string

//go:embed templates/trailer.sh
var trailer string

var preamble = template.Must(template.New("preamble").Parse(preambleSource))

// preambleData feeds preamble.sh.tmpl
type preambleData struct {
	Version  string
	SelfTest bool
}

// ShellName is the registry key of the shell backend
const ShellName = "sh"

// Shell renders a self-contained POSIX shell installer
type Shell struct {
	version string
}

// NewShell creates the shell backend
func NewShell(version string) *Shell {
	return &Shell{version: version}
}

// Name implements Backend
func (s *Shell) Name() string { return ShellName }

// Render implements Backend: preamble, one line per instruction, trailer
func (s *Shell) Render(w io.Writer, plan *types.Plan) error {
	if err := preamble.Execute(w, preambleData{Version: s.version}); err != nil {
		return errors.Wrap(err, errors.ErrRender, "cannot render preamble")
	}
	for _, ins := range plan.Instructions {
		line, err := Line(ins)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, trailer)
	return err
}

// RenderSelfTest writes the preamble without argument handling followed by
// the self-test harness. Running the result prints SUCCESS when the
// installer primitives behave correctly on the host.
func (s *Shell) RenderSelfTest(w io.Writer) error {
	if err := preamble.Execute(w, preambleData{Version: s.version, SelfTest: true}); err != nil {
		return errors.Wrap(err, errors.ErrRender, "cannot render preamble")
	}
	_, err := io.WriteString(w, selfTestHarness)
	return err
}

// Line renders one instruction as a shell command line
func Line(ins types.Instruction) (string, error) {
	if err := types.ValidatePath(ins.Path); err != nil {
		return "", errors.Wrap(err, errors.ErrEncoding, "path cannot be embedded in an installer").WithPath(ins.Path)
	}

	switch ins.Kind {
	case types.EnsureDirectory:
		return fmt.Sprintf("%s %s %s\n", ins.Kind, Quote(ins.Path), types.FormatMode(ins.Mode)), nil
	case types.InstallFile:
		fields := append([]string{ins.Kind.String(), Quote(ins.Path), types.FormatMode(ins.Mode)}, ins.Hashes...)
		return strings.Join(fields, " ") + "\n", nil
	default:
		return "", errors.Newf(errors.ErrRender, "unknown instruction %s", ins.Kind).WithPath(ins.Path)
	}
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, "`", "\\`")

// Quote wraps a validated path in double quotes, escaping the characters
// the shell still expands inside them.
func Quote(path string) string {
	return `"` + quoteEscaper.Replace(path) + `"`
}
