package deftsilo

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/deftsilo/internal/version"
	"github.com/arthur-debert/deftsilo/pkg/cobrax/topics"
	"github.com/arthur-debert/deftsilo/pkg/config"
	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/generator"
	"github.com/arthur-debert/deftsilo/pkg/logging"
	"github.com/arthur-debert/deftsilo/pkg/render"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	configFile string
}

// generateOptions are the flags of the root (generate) command
type generateOptions struct {
	path    string
	test    bool
	backend string
	output  string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		global globalOptions
		gen    generateOptions
	)

	rootCmd := &cobra.Command{
		Use:     "deftsilo",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errors.Newf(errors.ErrInvalidInput, MsgErrNoCommand, args)
			}
			return nil
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(global.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.LogCommand(logging.GetLogger("cmd"), "generate", os.Args[1:])
			return runGenerate(cmd, &global, &gen)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&global.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&global.configFile, "config", "", MsgFlagConfig)

	// Generate flags
	flags := rootCmd.Flags()
	flags.StringVarP(&gen.path, "path", "p", ".", MsgFlagPath)
	flags.BoolVar(&gen.test, "test", false, MsgFlagTest)
	flags.StringVarP(&gen.backend, "backend", "b", "", MsgFlagBackend)
	flags.StringVarP(&gen.output, "output", "o", "", MsgFlagOutput)
	_ = rootCmd.RegisterFlagCompletionFunc("backend", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return render.DefaultRegistry(version.Version).Names(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newApplyCmd(&global))
	rootCmd.AddCommand(newInspectCmd(&global))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Help topics are bundled, so a failure here is a build defect
	helpTopics, err := fs.Sub(topicsFS, "topics")
	if err != nil {
		panic(err)
	}
	tm, err := topics.InitializeWithOptions(rootCmd, helpTopics, topics.Options{
		Extensions: []string{".md", ".txt"},
		Renderer:   topics.NewGlamourRenderer(),
	})
	if err != nil {
		panic(err)
	}
	rootCmd.AddCommand(newTopicsCmd(tm))
	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// loadConfig loads the layered configuration for the tree at root. Flags
// the user set explicitly are applied as the last layer.
func loadConfig(global *globalOptions, root string, overrides map[string]interface{}) (*config.Config, error) {
	opts := config.LoadOptions{Root: root, Overrides: overrides}
	if global.configFile != "" {
		opts.UserConfigPath = global.configFile
	}
	return config.LoadWithOptions(opts)
}

// buildPlan collects the tree at root and resolves its history. extra
// names are skipped in addition to the configured reserved names.
func buildPlan(cmd *cobra.Command, cfg *config.Config, root string, extra ...string) (*types.Plan, error) {
	g, err := generator.New(generator.Options{
		Root:      root,
		Reserved:  append(cfg.ReservedNames(), extra...),
		GitBinary: cfg.VCS.Binary,
	})
	if err != nil {
		return nil, err
	}
	return g.Generate(cmd.Context())
}

func runGenerate(cmd *cobra.Command, global *globalOptions, gen *generateOptions) error {
	logger := logging.GetLogger("cmd.generate")

	if gen.test {
		var buf bytes.Buffer
		if err := render.NewShell(version.Version).RenderSelfTest(&buf); err != nil {
			return err
		}
		return writeArtifact(cmd, gen.output, buf.Bytes(), true)
	}

	overrides := map[string]interface{}{}
	if cmd.Flags().Changed("backend") {
		overrides["generate.backend"] = gen.backend
	}
	cfg, err := loadConfig(global, gen.path, overrides)
	if err != nil {
		return err
	}

	backend, err := render.DefaultRegistry(version.Version).Get(cfg.Generate.Backend)
	if err != nil {
		return err
	}

	var extra []string
	if name, inside := artifactInsideRoot(gen.path, gen.output); inside {
		extra = append(extra, name)
	}
	plan, err := buildPlan(cmd, cfg, gen.path, extra...)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, backend, plan); err != nil {
		return err
	}

	logger.Info().
		Str("backend", backend.Name()).
		Int("directories", len(plan.Directories())).
		Int("files", len(plan.Files())).
		Msg("Generated installer")

	return writeArtifact(cmd, gen.output, buf.Bytes(), backend.Name() == render.ShellName)
}

// artifactInsideRoot reports whether output lands somewhere under root,
// returning its base name so later runs do not collect it.
func artifactInsideRoot(root, output string) (string, bool) {
	if output == "" {
		return "", false
	}
	rel, err := filepath.Rel(canonicalDir(root), canonicalDir(filepath.Dir(output)))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Base(output), true
}

// canonicalDir resolves dir to an absolute, symlink-free path when it
// exists and to its absolute form otherwise
func canonicalDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// writeArtifact sends a fully rendered artifact to stdout or to file.
// Scripts are made executable.
func writeArtifact(cmd *cobra.Command, file string, data []byte, executable bool) error {
	if file == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return errors.Wrap(err, errors.ErrFilesystem, "failed to write output")
		}
		return nil
	}

	mode := os.FileMode(0644)
	if executable {
		mode = 0755
	}
	if err := os.WriteFile(file, data, mode); err != nil {
		return errors.Wrap(err, errors.ErrFilesystem, "failed to write output").WithPath(file)
	}
	if err := os.Chmod(file, mode); err != nil {
		return errors.Wrap(err, errors.ErrFilesystem, "failed to set output mode").WithPath(file)
	}
	return nil
}

// ExitCode maps an error returned by the root command to a process exit
// status. Usage errors exit 2 like the generated script's.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsErrorCode(err, errors.ErrInvalidInput):
		return 2
	default:
		return 1
	}
}
