package collector

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/logging"
)

// DefaultReserved are the names skipped when no configuration is supplied
var DefaultReserved = []string{".git", "install.sh", ".deftsilo.toml"}

// Tree is the result of a collection: root-relative slash-separated paths,
// sorted and free of duplicates. The root itself is never listed.
type Tree struct {
	Root        string
	Directories []string
	Files       []string
}

// Collector walks a single source root
type Collector struct {
	root     string
	reserved map[string]bool
	logger   zerolog.Logger
}

// New creates a collector for root. The root is canonicalised up front so
// every containment check compares canonical paths.
func New(root string, reserved []string) (*Collector, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFilesystem, "cannot resolve source root").WithPath(root)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFilesystem, "cannot resolve source root").WithPath(root)
	}
	info, err := os.Stat(canon)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFilesystem, "cannot access source root").WithPath(root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "source root is not a directory").WithPath(root)
	}

	if reserved == nil {
		reserved = DefaultReserved
	}
	names := make(map[string]bool, len(reserved))
	for _, name := range reserved {
		names[name] = true
	}

	return &Collector{
		root:     canon,
		reserved: names,
		logger:   logging.GetLogger("collector"),
	}, nil
}

// Root returns the canonical source root
func (c *Collector) Root() string {
	return c.root
}

// Collect walks the tree and returns its directories and files
func (c *Collector) Collect() (*Tree, error) {
	defer logging.LogOperationStart(c.logger, "collect")()

	w := &walk{
		collector: c,
		visited:   map[string]bool{c.root: true},
		dirs:      make(map[string]bool),
		files:     make(map[string]bool),
	}
	if err := w.enter(c.root); err != nil {
		return nil, err
	}

	tree := &Tree{
		Root:        c.root,
		Directories: sortedKeys(w.dirs),
		Files:       sortedKeys(w.files),
	}

	c.logger.Info().
		Str("root", c.root).
		Int("directories", len(tree.Directories)).
		Int("files", len(tree.Files)).
		Msg("Collected source tree")

	return tree, nil
}

// walk holds the state of one Collect call
type walk struct {
	collector *Collector
	visited   map[string]bool
	dirs      map[string]bool
	files     map[string]bool
}

func (w *walk) enter(dir string) error {
	c := w.collector

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrFilesystem, "cannot read directory").WithPath(dir)
	}

	for _, entry := range entries {
		name := entry.Name()
		if c.reserved[name] {
			c.logger.Trace().Str("dir", dir).Str("name", name).Msg("Skipping reserved name")
			continue
		}
		if err := w.visit(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) visit(candidate string) error {
	c := w.collector

	canon, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.New(errors.ErrType, "is not a file or directory").
				WithPath(candidate).
				WithDetail(errors.DetailReason, "dangling symlink")
		}
		return errors.Wrap(err, errors.ErrFilesystem, "cannot resolve path").WithPath(candidate)
	}

	rel, ok := c.relative(canon)
	if !ok {
		return errors.Newf(errors.ErrEscape, "%s canonicalizes to outside the provided root", candidate).
			WithPath(candidate).
			WithDetail("resolved", canon)
	}

	info, err := os.Stat(canon)
	if err != nil {
		return errors.Wrap(err, errors.ErrFilesystem, "cannot access path").WithPath(candidate)
	}

	switch {
	case info.IsDir():
		if rel != "." {
			w.dirs[rel] = true
		}
		if w.visited[canon] {
			c.logger.Debug().Str("path", candidate).Str("resolved", canon).Msg("Directory already visited")
			return nil
		}
		w.visited[canon] = true
		return w.enter(canon)
	case info.Mode().IsRegular():
		w.files[rel] = true
		return nil
	default:
		return errors.New(errors.ErrType, "is not a file or directory").
			WithPath(candidate).
			WithDetail(errors.DetailReason, info.Mode().Type().String())
	}
}

// relative converts a canonical path into a slash-separated path relative
// to the root, reporting false when it lies outside the root.
func (c *Collector) relative(canon string) (string, bool) {
	rel, err := filepath.Rel(c.root, canon)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
