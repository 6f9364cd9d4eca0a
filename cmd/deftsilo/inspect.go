package deftsilo

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/deftsilo/pkg/ui"
)

func newInspectCmd(global *globalOptions) *cobra.Command {
	var (
		path   string
		format string
	)

	cmd := &cobra.Command{
		Use:     "inspect",
		Short:   MsgInspectShort,
		Long:    MsgInspectLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ui.ParseFormat(format)
			if err != nil {
				return err
			}
			renderer, err := ui.NewRenderer(f, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			cfg, err := loadConfig(global, path, nil)
			if err != nil {
				return reportFailure(renderer, f, err)
			}
			plan, err := buildPlan(cmd, cfg, path)
			if err != nil {
				return reportFailure(renderer, f, err)
			}
			return renderer.RenderPlan(plan)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", MsgFlagPath)
	cmd.Flags().StringVarP(&format, "format", "f", "auto", MsgFlagFormat)

	return cmd
}
