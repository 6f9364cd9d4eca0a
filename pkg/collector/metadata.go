package collector

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

// Mode returns the permission bits of rel under root, following symlinks
func Mode(root, rel string) (fs.FileMode, error) {
	path := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrFilesystem, "cannot read metadata").WithPath(path)
	}
	return info.Mode() & types.PermMask, nil
}
