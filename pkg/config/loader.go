package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/logging"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "DEFTSILO_"

// LoadOptions controls which layers Load reads
type LoadOptions struct {
	// Root is the dotfiles repository; its .deftsilo.toml is loaded when present
	Root string

	// UserConfigPath overrides $XDG_CONFIG_HOME/deftsilo/config.toml
	UserConfigPath string

	// SkipEnv disables DEFTSILO_* environment overrides
	SkipEnv bool

	// Overrides are applied last, keyed by dotted path ("generate.backend").
	// The CLI passes explicitly set flags here.
	Overrides map[string]interface{}
}

// Load merges defaults, user config, project config and environment for root
func Load(root string) (*Config, error) {
	return LoadWithOptions(LoadOptions{Root: root})
}

// LoadWithOptions merges the configuration layers selected by opts
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config
	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath = UserConfigPath()
	}
	if err := loadFileIfExists(k, userPath); err != nil {
		return nil, err
	}

	// 3. Project config
	if opts.Root != "" {
		if err := loadFileIfExists(k, filepath.Join(opts.Root, ProjectConfigName)); err != nil {
			return nil, err
		}
	}

	// 4. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
		}
	}

	// 5. Command line
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("backend", cfg.Generate.Backend).
		Strs("reserved", cfg.ReservedNames()).
		Str("vcs", cfg.VCS.Binary).
		Msg("Configuration loaded")

	return &cfg, nil
}

// UserConfigPath returns the per-user configuration file location
func UserConfigPath() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, logging.AppName, "config.toml")
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).WithPath(path)
	}
	return nil
}

// envKey maps DEFTSILO_GENERATE_OUTPUT_NAME to generate.output_name: the
// first underscore separates the section, the rest belong to the key.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}
