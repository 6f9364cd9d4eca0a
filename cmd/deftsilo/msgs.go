package deftsilo

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Generate safe, idempotent installers for git-managed dotfiles"
	MsgApplyShort      = "Install the tree into a target directory"
	MsgInspectShort    = "Show the install plan"
	MsgVersionShort    = "Print version information"
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgCompletionShort = "Generate shell completion script"
	MsgConfigShort     = "Print the built-in configuration defaults"
	MsgConfigLong      = "Print the built-in defaults as a commented TOML file, a starting point for config.toml or .deftsilo.toml."

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "User configuration file (default $XDG_CONFIG_HOME/deftsilo/config.toml)"
	MsgFlagPath     = "Root of the dotfiles tree"
	MsgFlagTest     = "Emit the self-test program instead of an installer"
	MsgFlagBackend  = "Artifact format: sh, toml or yaml (default from configuration)"
	MsgFlagOutput   = "Write the artifact to FILE instead of stdout"
	MsgFlagLink     = "Link files into the target instead of copying them"
	MsgFlagDryRun   = "Report what would change without changing anything"
	MsgFlagManifest = "Install from a TOML or YAML manifest instead of the tree"
	MsgFlagFormat   = "Output format: auto, term, text or json"

	// Errors
	MsgErrNoCommand       = "unexpected arguments %v: the generator takes no positional arguments"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)

	//go:embed msgs/apply-example.txt
	msgApplyExampleRaw string
	MsgApplyExample    = strings.TrimRight(msgApplyExampleRaw, "\n")

	//go:embed msgs/inspect-long.txt
	msgInspectLongRaw string
	MsgInspectLong    = strings.TrimSpace(msgInspectLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
