package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

const (
	// ManifestFormat identifies deftsilo manifests
	ManifestFormat = "deftsilo-manifest"

	// ManifestVersion is the only schema version understood
	ManifestVersion = 1

	// TOMLName and YAMLName are the registry keys of the manifest backends
	TOMLName = "toml"
	YAMLName = "yaml"
)

// Manifest is the serialised form of a plan
type Manifest struct {
	Format      string              `toml:"format" yaml:"format"`
	Version     int                 `toml:"version" yaml:"version"`
	Generator   string              `toml:"generator,omitempty" yaml:"generator,omitempty"`
	Directories []ManifestDirectory `toml:"directories" yaml:"directories"`
	Files       []ManifestFile      `toml:"files" yaml:"files"`
}

// ManifestDirectory is one EnsureDirectory instruction
type ManifestDirectory struct {
	Path string `toml:"path" yaml:"path"`
	Mode string `toml:"mode" yaml:"mode"`
}

// ManifestFile is one InstallFile instruction
type ManifestFile struct {
	Path   string   `toml:"path" yaml:"path"`
	Mode   string   `toml:"mode" yaml:"mode"`
	Hashes []string `toml:"hashes" yaml:"hashes"`
}

// NewManifest converts a plan into its manifest
func NewManifest(plan *types.Plan, generator string) (*Manifest, error) {
	m := &Manifest{
		Format:      ManifestFormat,
		Version:     ManifestVersion,
		Generator:   generator,
		Directories: []ManifestDirectory{},
		Files:       []ManifestFile{},
	}
	for _, ins := range plan.Instructions {
		if err := types.ValidatePath(ins.Path); err != nil {
			return nil, errors.Wrap(err, errors.ErrEncoding, "path cannot be embedded in a manifest").WithPath(ins.Path)
		}
		mode := types.FormatMode(ins.Mode)
		switch ins.Kind {
		case types.EnsureDirectory:
			m.Directories = append(m.Directories, ManifestDirectory{Path: ins.Path, Mode: mode})
		case types.InstallFile:
			hashes := append([]string{}, ins.Hashes...)
			m.Files = append(m.Files, ManifestFile{Path: ins.Path, Mode: mode, Hashes: hashes})
		}
	}
	return m, nil
}

// Plan validates the manifest and converts it back into a plan. Entries
// are re-sorted so ancestors always precede descendants.
func (m *Manifest) Plan() (*types.Plan, error) {
	if m.Format != ManifestFormat {
		return nil, errors.Newf(errors.ErrManifest, "unexpected manifest format %q", m.Format)
	}
	if m.Version != ManifestVersion {
		return nil, errors.Newf(errors.ErrManifest, "unsupported manifest version %d", m.Version)
	}

	dirs := make([]types.DirEntry, 0, len(m.Directories))
	for _, d := range m.Directories {
		mode, err := checkEntry(d.Path, d.Mode)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, types.DirEntry{Path: d.Path, Mode: mode})
	}

	files := make([]types.FileEntry, 0, len(m.Files))
	for _, f := range m.Files {
		mode, err := checkEntry(f.Path, f.Mode)
		if err != nil {
			return nil, err
		}
		for _, h := range f.Hashes {
			if !isSHA256(h) {
				return nil, errors.Newf(errors.ErrManifest, "invalid hash %q", h).WithPath(f.Path)
			}
		}
		files = append(files, types.FileEntry{Path: f.Path, Mode: mode, Hashes: append([]string{}, f.Hashes...)})
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return types.NewPlan(dirs, files), nil
}

// checkEntry rejects paths that could leave the target and parses the mode
func checkEntry(rel, mode string) (os.FileMode, error) {
	if err := types.ValidatePath(rel); err != nil {
		return 0, errors.Wrap(err, errors.ErrManifest, "invalid path").WithPath(rel)
	}
	if rel == "" || strings.HasPrefix(rel, "/") || path.Clean(rel) != rel || rel == ".." || strings.HasPrefix(rel, "../") {
		return 0, errors.Newf(errors.ErrManifest, "path %q is not a clean relative path", rel).WithPath(rel)
	}
	m, err := types.ParseMode(mode)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrManifest, "invalid mode").WithPath(rel)
	}
	return m, nil
}

func isSHA256(h string) bool {
	if len(h) != 64 {
		return false
	}
	for _, c := range h {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// TOML renders manifests with go-toml
type TOML struct{ version string }

// NewTOML creates the TOML manifest backend
func NewTOML(version string) *TOML { return &TOML{version: version} }

// Name implements Backend
func (t *TOML) Name() string { return TOMLName }

// Render implements Backend
func (t *TOML) Render(w io.Writer, plan *types.Plan) error {
	m, err := NewManifest(plan, generatorName(t.version))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# Generated by deftsilo %s. Apply with: deftsilo apply --manifest <this file> <target>\n", t.version); err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(m)
}

// YAML renders manifests with yaml.v3
type YAML struct{ version string }

// NewYAML creates the YAML manifest backend
func NewYAML(version string) *YAML { return &YAML{version: version} }

// Name implements Backend
func (y *YAML) Name() string { return YAMLName }

// Render implements Backend
func (y *YAML) Render(w io.Writer, plan *types.Plan) error {
	m, err := NewManifest(plan, generatorName(y.version))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# Generated by deftsilo %s. Apply with: deftsilo apply --manifest <this file> <target>\n", y.version); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

func generatorName(version string) string {
	return "deftsilo " + version
}

// ParseManifest decodes a manifest in the named format (toml or yaml)
// and returns its plan. Unknown fields are rejected.
func ParseManifest(data []byte, format string) (*types.Plan, error) {
	var m Manifest
	switch format {
	case TOMLName:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, errors.Wrap(err, errors.ErrManifest, "cannot parse TOML manifest")
		}
	case YAMLName:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, errors.Wrap(err, errors.ErrManifest, "cannot parse YAML manifest")
		}
	default:
		return nil, errors.Newf(errors.ErrManifest, "unknown manifest format %q", format)
	}
	return m.Plan()
}

// LoadManifest reads a manifest file, choosing the format from its
// extension (.toml, .yaml or .yml).
func LoadManifest(file string) (*types.Plan, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFilesystem, "cannot read manifest").WithPath(file)
	}

	var format string
	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml":
		format = TOMLName
	case ".yaml", ".yml":
		format = YAMLName
	default:
		return nil, errors.Newf(errors.ErrManifest, "cannot tell manifest format from %q", filepath.Base(file)).WithPath(file)
	}

	plan, err := ParseManifest(data, format)
	if err != nil {
		return nil, errors.Classify(err, errors.ErrManifest, "invalid manifest").WithPath(file)
	}
	return plan, nil
}
