package types

import (
	"fmt"
	"io/fs"
	"strconv"
)

// PermMask selects the permission bits recorded for every entry
const PermMask fs.FileMode = 0o777

// DirEntry is a directory collected from the source tree
type DirEntry struct {
	Path string
	Mode fs.FileMode
}

// FileEntry is a regular file collected from the source tree together with
// every content hash the file has had in version control.
type FileEntry struct {
	Path   string
	Mode   fs.FileMode
	Hashes []string
}

// InstructionKind tags an Instruction
type InstructionKind int

const (
	// EnsureDirectory creates a directory when missing and resets its mode.
	EnsureDirectory InstructionKind = iota

	// InstallFile copies or links a file, refusing to overwrite content
	// that is not in the allow-list.
	InstallFile
)

// String returns the instruction name used in logs and tables
func (k InstructionKind) String() string {
	switch k {
	case EnsureDirectory:
		return "ensure_directory"
	case InstallFile:
		return "install_file"
	default:
		return fmt.Sprintf("instruction(%d)", int(k))
	}
}

// Instruction is one atomic directive of an install plan.
// Hashes is only meaningful for InstallFile.
type Instruction struct {
	Kind   InstructionKind
	Path   string
	Mode   fs.FileMode
	Hashes []string
}

// Allows reports whether a content hash is in the instruction's allow-list
func (i Instruction) Allows(hash string) bool {
	for _, h := range i.Hashes {
		if h == hash {
			return true
		}
	}
	return false
}

// Plan is the ordered instruction list of an installer: every
// EnsureDirectory in sorted order followed by every InstallFile in sorted
// order. A Plan is built once and never mutated.
type Plan struct {
	Instructions []Instruction
}

// NewPlan builds a plan from sorted directory and file entries
func NewPlan(dirs []DirEntry, files []FileEntry) *Plan {
	ins := make([]Instruction, 0, len(dirs)+len(files))
	for _, d := range dirs {
		ins = append(ins, Instruction{Kind: EnsureDirectory, Path: d.Path, Mode: d.Mode & PermMask})
	}
	for _, f := range files {
		ins = append(ins, Instruction{Kind: InstallFile, Path: f.Path, Mode: f.Mode & PermMask, Hashes: f.Hashes})
	}
	return &Plan{Instructions: ins}
}

// Directories returns the EnsureDirectory instructions in plan order
func (p *Plan) Directories() []Instruction {
	return p.filter(EnsureDirectory)
}

// Files returns the InstallFile instructions in plan order
func (p *Plan) Files() []Instruction {
	return p.filter(InstallFile)
}

func (p *Plan) filter(kind InstructionKind) []Instruction {
	var out []Instruction
	for _, i := range p.Instructions {
		if i.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

// FormatMode renders permission bits the way chmod expects them
func FormatMode(mode fs.FileMode) string {
	return strconv.FormatUint(uint64(mode&PermMask), 8)
}

// ParseMode parses an octal permission string such as "644" or "0750"
func ParseMode(s string) (fs.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	if fs.FileMode(v)&^PermMask != 0 {
		return 0, fmt.Errorf("invalid mode %q: only permission bits are allowed", s)
	}
	return fs.FileMode(v), nil
}
