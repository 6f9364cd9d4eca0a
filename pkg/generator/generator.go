// Package generator builds an install plan from a dotfiles tree: the
// collected directories and files, their permission bits and the
// allow-list of every content each file has had in history.
package generator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deftsilo/pkg/collector"
	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/history"
	"github.com/arthur-debert/deftsilo/pkg/logging"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

// Options configures a Generator
type Options struct {
	// Root is the dotfiles tree; it is canonicalised
	Root string

	// Reserved base names skipped at every depth; nil selects the defaults
	Reserved []string

	// VCS overrides the history backend. When nil a git backend rooted at
	// Root is used, running GitBinary.
	VCS       history.VCS
	GitBinary string
}

// Generator produces plans for one source tree
type Generator struct {
	collector *collector.Collector
	resolver  *history.Resolver
	logger    zerolog.Logger
}

// New prepares a generator for opts.Root
func New(opts Options) (*Generator, error) {
	c, err := collector.New(opts.Root, opts.Reserved)
	if err != nil {
		return nil, err
	}

	vcs := opts.VCS
	if vcs == nil {
		vcs = history.NewGitCLI(c.Root(), opts.GitBinary)
	}

	return &Generator{
		collector: c,
		resolver:  history.NewResolver(vcs),
		logger:    logging.GetLogger("generator"),
	}, nil
}

// Root returns the canonical source root
func (g *Generator) Root() string {
	return g.collector.Root()
}

// Generate collects the tree and builds its plan. Any failure aborts the
// whole generation; no partial plan is returned.
func (g *Generator) Generate(ctx context.Context) (*types.Plan, error) {
	defer logging.LogOperationStart(g.logger, "generate")()

	tree, err := g.collector.Collect()
	if err != nil {
		return nil, err
	}
	root := tree.Root

	dirs := make([]types.DirEntry, 0, len(tree.Directories))
	for _, rel := range tree.Directories {
		if err := validate(rel); err != nil {
			return nil, err
		}
		mode, err := collector.Mode(root, rel)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, types.DirEntry{Path: rel, Mode: mode})
	}

	files := make([]types.FileEntry, 0, len(tree.Files))
	for _, rel := range tree.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := validate(rel); err != nil {
			return nil, err
		}
		mode, err := collector.Mode(root, rel)
		if err != nil {
			return nil, err
		}
		hashes, err := g.resolver.Hashes(ctx, rel)
		if err != nil {
			return nil, err
		}
		if len(hashes) == 0 {
			g.logger.Warn().Str("path", rel).Msg("File has no history; installer will only create it")
		}
		files = append(files, types.FileEntry{Path: rel, Mode: mode, Hashes: hashes})
	}

	g.logger.Info().
		Int("directories", len(dirs)).
		Int("files", len(files)).
		Msg("Plan generated")

	return types.NewPlan(dirs, files), nil
}

func validate(rel string) error {
	if err := types.ValidatePath(rel); err != nil {
		return errors.Wrap(err, errors.ErrEncoding, "path cannot be embedded in an installer").WithPath(rel)
	}
	return nil
}
