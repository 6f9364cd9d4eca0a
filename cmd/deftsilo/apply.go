package deftsilo

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/deftsilo/pkg/installer"
	"github.com/arthur-debert/deftsilo/pkg/logging"
	"github.com/arthur-debert/deftsilo/pkg/render"
	"github.com/arthur-debert/deftsilo/pkg/types"
	"github.com/arthur-debert/deftsilo/pkg/ui"
)

type applyOptions struct {
	path     string
	manifest string
	link     bool
	dryRun   bool
	format   string
}

func newApplyCmd(global *globalOptions) *cobra.Command {
	var opts applyOptions

	cmd := &cobra.Command{
		Use:     "apply [flags] <target>",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		Example: MsgApplyExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, global, &opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.path, "path", "p", ".", MsgFlagPath)
	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", MsgFlagManifest)
	cmd.Flags().BoolVarP(&opts.link, "link", "l", false, MsgFlagLink)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "auto", MsgFlagFormat)
	_ = cmd.RegisterFlagCompletionFunc("manifest", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"toml", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	return cmd
}

func runApply(cmd *cobra.Command, global *globalOptions, opts *applyOptions, target string) error {
	format, err := ui.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return reportFailure(renderer, format, applyPlan(cmd, global, opts, renderer, format, target))
}

func applyPlan(cmd *cobra.Command, global *globalOptions, opts *applyOptions, renderer ui.Renderer, format ui.Format, target string) error {
	logger := logging.GetLogger("cmd.apply")

	// A manifest lives next to the files it describes unless --path says
	// otherwise
	source := opts.path
	if opts.manifest != "" && !cmd.Flags().Changed("path") {
		source = filepath.Dir(opts.manifest)
	}

	overrides := map[string]interface{}{}
	if opts.link {
		overrides["install.mode"] = string(types.InstallLink)
	}
	cfg, err := loadConfig(global, source, overrides)
	if err != nil {
		return err
	}

	var plan *types.Plan
	if opts.manifest != "" {
		plan, err = render.LoadManifest(opts.manifest)
	} else {
		plan, err = buildPlan(cmd, cfg, source)
	}
	if err != nil {
		return err
	}

	mode, err := types.ParseInstallMode(cfg.Install.Mode)
	if err != nil {
		return err
	}

	// Links must point at the canonical tree, as the script's do
	if canonical, err := filepath.EvalSymlinks(source); err == nil {
		source = canonical
	}

	inst, err := installer.New(installer.Options{
		SourceRoot: source,
		Target:     target,
		Mode:       mode,
		DryRun:     opts.dryRun,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Str("source", source).
		Str("target", target).
		Str("mode", string(mode)).
		Bool("dryRun", opts.dryRun).
		Int("instructions", len(plan.Instructions)).
		Msg("Applying plan")

	report, runErr := inst.Run(cmd.Context(), plan)
	if report != nil {
		if err := renderer.RenderReport(report); err != nil {
			logger.Warn().Err(err).Msg("Failed to render report")
		}
	}
	if runErr != nil {
		return runErr
	}

	if !opts.dryRun && format != ui.FormatJSON {
		return renderer.RenderMessage("all files successfully installed")
	}
	return nil
}
