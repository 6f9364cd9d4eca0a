package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/arthur-debert/deftsilo/pkg/errors"
)

// ProjectConfigName is the per-repository configuration file. It is always
// excluded from generated installers.
const ProjectConfigName = ".deftsilo.toml"

// Config is the merged deftsilo configuration
type Config struct {
	Generate GenerateConfig `koanf:"generate"`
	VCS      VCSConfig      `koanf:"vcs"`
	Install  InstallConfig  `koanf:"install"`
}

// GenerateConfig controls tree collection and artifact rendering
type GenerateConfig struct {
	Backend     string   `koanf:"backend" validate:"required,oneof=sh toml yaml"`
	OutputName  string   `koanf:"output_name" validate:"required,excludesall=/"`
	MetadataDir string   `koanf:"metadata_dir" validate:"required,excludesall=/"`
	Exclude     []string `koanf:"exclude" validate:"dive,required,excludesall=/"`
}

// VCSConfig selects the version-control tooling
type VCSConfig struct {
	Binary string `koanf:"binary" validate:"required"`
}

// InstallConfig holds defaults for the native installer
type InstallConfig struct {
	Mode string `koanf:"mode" validate:"oneof=copy link"`
}

var validate = validator.New()

// Validate checks the configuration against its constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "invalid configuration")
	}
	return nil
}

// ReservedNames returns the base names the tree collector must skip
func (c *Config) ReservedNames() []string {
	names := []string{c.Generate.MetadataDir, c.Generate.OutputName, ProjectConfigName}
	return append(names, c.Generate.Exclude...)
}
