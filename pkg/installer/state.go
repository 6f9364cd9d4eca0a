package installer

import (
	stderrors "errors"
	"io/fs"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

// inspection is the state of a target path at the moment it is examined.
// For IsSymlink, resolved describes what the link points at.
type inspection struct {
	state    types.TargetState
	resolved fs.FileInfo
}

func (in inspection) linksToDir() bool {
	return in.state == types.IsSymlink && in.resolved.IsDir()
}

func (in inspection) linksToFile() bool {
	return in.state == types.IsSymlink && in.resolved.Mode().IsRegular()
}

// inspect classifies path without following a final symlink, then
// resolves the link separately. A link whose destination cannot be
// reached counts as dangling.
func (i *Installer) inspect(path string) (inspection, error) {
	info, err := i.fs.Lstat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return inspection{state: types.Absent}, nil
		}
		return inspection{}, errors.Wrap(err, errors.ErrFilesystem, "cannot inspect target").WithPath(path)
	}

	mode := info.Mode()
	switch {
	case mode&fs.ModeSymlink != 0:
		resolved, err := i.fs.Stat(path)
		if err != nil {
			return inspection{state: types.IsDangling}, nil
		}
		return inspection{state: types.IsSymlink, resolved: resolved}, nil
	case mode.IsDir():
		return inspection{state: types.IsDirectory, resolved: info}, nil
	case mode.IsRegular():
		return inspection{state: types.IsFile, resolved: info}, nil
	default:
		return inspection{state: types.IsOther, resolved: info}, nil
	}
}
