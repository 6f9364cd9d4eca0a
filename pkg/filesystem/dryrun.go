package filesystem

import (
	"io/fs"

	"github.com/arthur-debert/deftsilo/pkg/types"
	"github.com/rs/zerolog"
)

// dryRunFS forwards reads to the wrapped filesystem and logs mutations
// instead of performing them.
type dryRunFS struct {
	base   types.FS
	logger zerolog.Logger
}

// NewDryRun wraps base so that no mutation reaches it
func NewDryRun(base types.FS, logger zerolog.Logger) types.FS {
	return &dryRunFS{base: base, logger: logger}
}

func (d *dryRunFS) Stat(name string) (fs.FileInfo, error)  { return d.base.Stat(name) }
func (d *dryRunFS) Lstat(name string) (fs.FileInfo, error) { return d.base.Lstat(name) }
func (d *dryRunFS) ReadFile(name string) ([]byte, error)   { return d.base.ReadFile(name) }
func (d *dryRunFS) Readlink(name string) (string, error)   { return d.base.Readlink(name) }

func (d *dryRunFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	d.logger.Info().Str("path", name).Int("bytes", len(data)).Str("mode", perm.String()).Msg("Would write file")
	return nil
}

func (d *dryRunFS) Chmod(name string, mode fs.FileMode) error {
	d.logger.Info().Str("path", name).Str("mode", mode.String()).Msg("Would chmod")
	return nil
}

func (d *dryRunFS) Rename(oldpath, newpath string) error {
	d.logger.Info().Str("from", oldpath).Str("to", newpath).Msg("Would rename")
	return nil
}

func (d *dryRunFS) Mkdir(path string, perm fs.FileMode) error {
	d.logger.Info().Str("path", path).Str("mode", perm.String()).Msg("Would create directory")
	return nil
}

func (d *dryRunFS) Symlink(oldname, newname string) error {
	d.logger.Info().Str("source", oldname).Str("target", newname).Msg("Would create symlink")
	return nil
}

func (d *dryRunFS) Remove(name string) error {
	d.logger.Info().Str("path", name).Msg("Would remove")
	return nil
}
