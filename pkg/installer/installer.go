package installer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/filesystem"
	"github.com/arthur-debert/deftsilo/pkg/logging"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

// Options configures an Installer
type Options struct {
	// SourceRoot holds the files named by the plan. Link mode points
	// symlinks at SourceRoot/<path>, so it is made absolute.
	SourceRoot string

	// Target is the existing directory to install into
	Target string

	// Mode selects copy (default) or link
	Mode types.InstallMode

	// FS is the filesystem to operate on; nil means the OS
	FS types.FS

	// DryRun logs mutations instead of performing them
	DryRun bool
}

// Installer runs plans against one target
type Installer struct {
	source string
	target string
	mode   types.InstallMode
	dryRun bool
	fs     types.FS
	logger zerolog.Logger
}

// Report lists what every executed instruction did, in plan order
type Report struct {
	Results []types.ActionResult
	DryRun  bool
}

// Count returns how many results have outcome o
func (r *Report) Count(o types.Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// New validates opts and prepares an installer
func New(opts Options) (*Installer, error) {
	logger := logging.GetLogger("installer")

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	if opts.DryRun {
		fsys = filesystem.NewDryRun(fsys, logger)
	}

	mode := opts.Mode
	if mode == "" {
		mode = types.InstallCopy
	}
	if mode != types.InstallCopy && mode != types.InstallLink {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown install mode %q", mode)
	}

	source, err := filepath.Abs(opts.SourceRoot)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFilesystem, "cannot resolve source root").WithPath(opts.SourceRoot)
	}

	info, err := fsys.Stat(opts.Target)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "target directory does not exist").WithPath(opts.Target)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "target is not a directory").WithPath(opts.Target)
	}

	return &Installer{
		source: source,
		target: opts.Target,
		mode:   mode,
		dryRun: opts.DryRun,
		fs:     fsys,
		logger: logger,
	}, nil
}

// Run executes plan in order. It stops at the first failure and returns
// the report so far together with the error. Cancellation is checked
// between instructions.
func (i *Installer) Run(ctx context.Context, plan *types.Plan) (*Report, error) {
	defer logging.LogOperationStart(i.logger, "install")()

	report := &Report{DryRun: i.dryRun}

	for _, ins := range plan.Instructions {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		start := time.Now()
		res, err := i.apply(ins)
		res.Duration = time.Since(start)

		if err != nil {
			res.Outcome = types.OutcomeFailed
			res.Error = err
			report.Results = append(report.Results, res)
			i.logger.Error().
				Err(err).
				Str("instruction", ins.Kind.String()).
				Str("path", ins.Path).
				Msg("Install halted")
			return report, err
		}

		report.Results = append(report.Results, res)
		i.logger.Info().
			Str("instruction", ins.Kind.String()).
			Str("path", ins.Path).
			Str("state", res.State.String()).
			Str("outcome", string(res.Outcome)).
			Msg("Applied instruction")
	}

	i.logger.Info().
		Int("instructions", len(report.Results)).
		Int("created", report.Count(types.OutcomeCreated)).
		Int("updated", report.Count(types.OutcomeUpdated)).
		Int("linked", report.Count(types.OutcomeLinked)).
		Msg("All files successfully installed")

	return report, nil
}

func (i *Installer) apply(ins types.Instruction) (types.ActionResult, error) {
	switch ins.Kind {
	case types.EnsureDirectory:
		return i.ensureDirectory(ins)
	case types.InstallFile:
		if i.mode == types.InstallLink {
			return i.installLink(ins)
		}
		return i.installCopy(ins)
	default:
		return types.ActionResult{Instruction: ins}, errors.Newf(errors.ErrInternal, "unknown instruction %s", ins.Kind)
	}
}

// dest maps a plan path into the target
func (i *Installer) dest(rel string) string {
	return filepath.Join(i.target, filepath.FromSlash(rel))
}

// src maps a plan path into the source root
func (i *Installer) src(rel string) string {
	return filepath.Join(i.source, filepath.FromSlash(rel))
}
