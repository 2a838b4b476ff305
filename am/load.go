package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/plugmig/errors"
)

const (
	// EnvPrefix prefixes environment overrides: PLUGMIG_REGISTRY_URL sets registry.url.
	EnvPrefix = "PLUGMIG"
	// ProjectFile is read from the plugin root.
	ProjectFile = "plugmig.toml"

	userDir  = ".plugmig"
	userFile = "config.toml"
)

// Loaded is a merged configuration together with where each value came from.
type Loaded struct {
	Config  *Config
	Viper   *viper.Viper
	Files   []string              // config files merged, lowest precedence first
	Sources map[string]SourceInfo // by dotted key; keys absent here are defaults
}

// Load merges defaults, ~/.plugmig/config.toml, <root>/plugmig.toml and
// PLUGMIG_* environment variables, in that order of precedence.
func Load(root string) (*Loaded, error) {
	home, _ := os.UserHomeDir()
	return load(home, root)
}

func load(home, root string) (*Loaded, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	files, sources, err := mergeConfigFiles(v, configPaths(home, root))
	if err != nil {
		return nil, err
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	return &Loaded{Config: cfg, Viper: v, Files: files, Sources: sources}, nil
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads defaults plus a single config file, without environment overrides.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config from %s", configPath)
	}
	return cfg, nil
}

type configPath struct {
	path   string
	source ConfigSource
}

// configPaths lists candidate files, lowest precedence first.
func configPaths(home, root string) []configPath {
	var paths []configPath
	if home != "" {
		paths = append(paths, configPath{filepath.Join(home, userDir, userFile), SourceUser})
	}
	if root != "" {
		paths = append(paths, configPath{filepath.Join(root, ProjectFile), SourceProject})
	}
	return paths
}

// ProjectConfigPath returns the project config file for root.
func ProjectConfigPath(root string) string {
	return filepath.Join(root, ProjectFile)
}

// mergeConfigFiles merges each existing file over v. A file that exists but
// does not parse is an error; a missing file is skipped.
func mergeConfigFiles(v *viper.Viper, paths []configPath) ([]string, map[string]SourceInfo, error) {
	var merged []string
	sources := make(map[string]SourceInfo)

	for _, p := range paths {
		if _, err := os.Stat(p.path); err != nil {
			continue
		}

		tempViper := viper.New()
		tempViper.SetConfigFile(p.path)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			return nil, nil, errors.WithHint(
				errors.Wrapf(err, "failed to read config file %s", p.path),
				"fix the TOML syntax or run 'plugmig am validate'",
			)
		}

		for _, key := range tempViper.AllKeys() {
			v.Set(key, tempViper.Get(key))
			sources[key] = SourceInfo{Source: p.source, Path: p.path}
		}
		merged = append(merged, p.path)
	}

	return merged, sources, nil
}
