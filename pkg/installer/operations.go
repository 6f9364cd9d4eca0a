package installer

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/types"
	"github.com/arthur-debert/deftsilo/pkg/utils"
)

const (
	reasonClobberFile      = "would clobber a file"
	reasonClobberDirectory = "would clobber a directory"
	reasonClobberSpecial   = "would clobber a special file"
	reasonUnsaved          = "unsaved changes"
)

// clobber reports an abort because the target has the wrong type
func clobber(verb, dest, reason string) error {
	return errors.Newf(errors.ErrClobber, "cannot %s \"%s\": %s", verb, dest, reason).
		WithPath(dest).
		WithDetail(errors.DetailReason, reason)
}

// unsaved reports an abort because the target holds content that is not in
// the allow-list
func unsaved(verb, rel, dest string) error {
	return errors.Newf(errors.ErrUnsavedChanges, "failed to %s \"%s\": %s", verb, rel, reasonUnsaved).
		WithPath(dest).
		WithDetail(errors.DetailReason, reasonUnsaved)
}

func fsError(err error, message, path string) error {
	return errors.Wrap(err, errors.ErrFilesystem, message).WithPath(path)
}

func (i *Installer) ensureDirectory(ins types.Instruction) (types.ActionResult, error) {
	dest := i.dest(ins.Path)
	res := types.ActionResult{Instruction: ins, Target: dest}

	in, err := i.inspect(dest)
	if err != nil {
		return res, err
	}
	res.State = in.state

	switch {
	case in.state == types.Absent:
		if err := i.fs.Mkdir(dest, ins.Mode); err != nil {
			return res, fsError(err, "cannot create directory", dest)
		}
		// Mkdir is subject to the umask
		if err := i.fs.Chmod(dest, ins.Mode); err != nil {
			return res, fsError(err, "cannot set mode", dest)
		}
		res.Outcome = types.OutcomeCreated
		return res, nil

	case in.state == types.IsDirectory || in.linksToDir():
		return i.resetMode(res, in.resolved, ins.Mode)

	case in.state == types.IsFile || in.linksToFile():
		return res, clobber("mkdir", dest, reasonClobberFile)

	default:
		return res, clobber("mkdir", dest, reasonClobberSpecial)
	}
}

func (i *Installer) installCopy(ins types.Instruction) (types.ActionResult, error) {
	dest := i.dest(ins.Path)
	res := types.ActionResult{Instruction: ins, Target: dest}

	in, err := i.inspect(dest)
	if err != nil {
		return res, err
	}
	res.State = in.state

	switch {
	case in.state == types.IsDirectory || in.linksToDir():
		return res, clobber("copy", dest, reasonClobberDirectory)

	case in.state == types.Absent:
		if err := i.copyFile(ins, dest); err != nil {
			return res, err
		}
		res.Outcome = types.OutcomeCreated
		return res, nil

	case in.state == types.IsDangling:
		if err := i.fs.Remove(dest); err != nil {
			return res, fsError(err, "cannot remove dangling symlink", dest)
		}
		if err := i.copyFile(ins, dest); err != nil {
			return res, err
		}
		res.Outcome = types.OutcomeUpdated
		res.Message = "replaced dangling symlink"
		return res, nil

	case in.state == types.IsFile || in.linksToFile():
		have, err := i.hash(dest)
		if err != nil {
			return res, err
		}
		if !ins.Allows(have) {
			return res, unsaved("copy", ins.Path, dest)
		}

		if in.state == types.IsSymlink {
			// rename replaces the link itself, never its destination
			if err := i.copyFile(ins, dest); err != nil {
				return res, err
			}
			res.Outcome = types.OutcomeUpdated
			res.Message = "replaced symlink with a copy"
			return res, nil
		}

		want, err := i.hash(i.src(ins.Path))
		if err != nil {
			return res, err
		}
		if want == have {
			return i.resetMode(res, in.resolved, ins.Mode)
		}
		if err := i.copyFile(ins, dest); err != nil {
			return res, err
		}
		res.Outcome = types.OutcomeUpdated
		return res, nil

	default:
		return res, clobber("copy", dest, reasonClobberSpecial)
	}
}

func (i *Installer) installLink(ins types.Instruction) (types.ActionResult, error) {
	dest := i.dest(ins.Path)
	src := i.src(ins.Path)
	res := types.ActionResult{Instruction: ins, Target: dest}

	in, err := i.inspect(dest)
	if err != nil {
		return res, err
	}
	res.State = in.state

	switch in.state {
	case types.IsSymlink, types.IsDangling:
		res.Outcome = types.OutcomeSkipped
		return res, nil

	case types.IsDirectory:
		return res, clobber("link", dest, reasonClobberDirectory)

	case types.Absent:
		if err := i.fs.Symlink(src, dest); err != nil {
			return res, fsError(err, "cannot create symlink", dest)
		}
		res.Outcome = types.OutcomeLinked
		return res, nil

	case types.IsFile:
		have, err := i.hash(dest)
		if err != nil {
			return res, err
		}
		if !ins.Allows(have) {
			return res, unsaved("link", ins.Path, dest)
		}
		if err := i.fs.Remove(dest); err != nil {
			return res, fsError(err, "cannot remove file", dest)
		}
		if err := i.fs.Symlink(src, dest); err != nil {
			return res, fsError(err, "cannot create symlink", dest)
		}
		res.Outcome = types.OutcomeLinked
		res.Message = "replaced file with a symlink"
		return res, nil

	default:
		return res, clobber("link", dest, reasonClobberSpecial)
	}
}

// resetMode applies mode to an existing directory or file when it differs
func (i *Installer) resetMode(res types.ActionResult, info fs.FileInfo, mode fs.FileMode) (types.ActionResult, error) {
	if info.Mode().Perm() == mode.Perm() {
		res.Outcome = types.OutcomeUnchanged
		return res, nil
	}
	if err := i.fs.Chmod(res.Target, mode); err != nil {
		return res, fsError(err, "cannot set mode", res.Target)
	}
	res.Outcome = types.OutcomeUpdated
	res.Message = fmt.Sprintf("mode %s -> %s", types.FormatMode(info.Mode()), types.FormatMode(mode))
	return res, nil
}

// copyFile writes the source content next to dest and renames it into
// place, so dest is never observed half written and a symlink at dest is
// replaced rather than written through.
func (i *Installer) copyFile(ins types.Instruction, dest string) error {
	src := i.src(ins.Path)
	data, err := i.fs.ReadFile(src)
	if err != nil {
		return fsError(err, "cannot read source", src)
	}

	tmp := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".deftsilo-tmp")
	if err := i.fs.Remove(tmp); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fsError(err, "cannot remove stale temporary file", tmp)
	}
	if err := i.fs.WriteFile(tmp, data, ins.Mode); err != nil {
		return fsError(err, "cannot write file", tmp)
	}
	if err := i.fs.Chmod(tmp, ins.Mode); err != nil {
		_ = i.fs.Remove(tmp)
		return fsError(err, "cannot set mode", tmp)
	}
	if err := i.fs.Rename(tmp, dest); err != nil {
		_ = i.fs.Remove(tmp)
		return fsError(err, "cannot move file into place", dest)
	}
	return nil
}

// hash returns the content hash of the file at path, following symlinks
func (i *Installer) hash(path string) (string, error) {
	data, err := i.fs.ReadFile(path)
	if err != nil {
		return "", fsError(err, "cannot read file", path)
	}
	return utils.ContentHash(data), nil
}
