package types

import "fmt"

// InstallMode selects how the installer deploys files
type InstallMode string

const (
	// InstallCopy deploys independent copies of the source files
	InstallCopy InstallMode = "copy"

	// InstallLink deploys symbolic links pointing at the source files
	InstallLink InstallMode = "link"
)

// ParseInstallMode validates an install mode name. The empty string
// selects the copy default.
func ParseInstallMode(s string) (InstallMode, error) {
	switch InstallMode(s) {
	case "", InstallCopy:
		return InstallCopy, nil
	case InstallLink:
		return InstallLink, nil
	default:
		return "", fmt.Errorf("unknown install mode %q (want copy or link)", s)
	}
}

// TargetState classifies what currently occupies a target path
type TargetState int

const (
	Absent TargetState = iota
	IsDirectory
	IsFile
	IsSymlink
	// IsDangling is a symbolic link whose destination does not exist
	IsDangling
	// IsOther covers devices, sockets and fifos
	IsOther
)

// String returns a human readable state name
func (s TargetState) String() string {
	switch s {
	case Absent:
		return "absent"
	case IsDirectory:
		return "directory"
	case IsFile:
		return "file"
	case IsSymlink:
		return "symlink"
	case IsDangling:
		return "dangling symlink"
	case IsOther:
		return "special file"
	default:
		return "unknown"
	}
}
