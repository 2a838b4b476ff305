// Package am holds plugmig's configuration: defaults, the user and project
// TOML files, and PLUGMIG_* environment variables, merged with viper.
package am

// Config is the plugmig configuration.
type Config struct {
	Source   SourceConfig   `mapstructure:"source" toml:"source" json:"source" yaml:"source"`
	Output   OutputConfig   `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Manifest ManifestConfig `mapstructure:"manifest" toml:"manifest" json:"manifest" yaml:"manifest"`
	Registry RegistryConfig `mapstructure:"registry" toml:"registry" json:"registry" yaml:"registry"`
	Git      GitConfig      `mapstructure:"git" toml:"git" json:"git" yaml:"git"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`
}

// SourceConfig locates the legacy plugin definition.
type SourceConfig struct {
	File string `mapstructure:"file" toml:"file" json:"file" yaml:"file"` // relative to the plugin root (default: src/plugin.ts)
}

// OutputConfig places the generated documents.
type OutputConfig struct {
	AlphaDir  string `mapstructure:"alpha_dir" toml:"alpha_dir" json:"alpha_dir" yaml:"alpha_dir"`     // default: src/alpha
	EntryFile string `mapstructure:"entry_file" toml:"entry_file" json:"entry_file" yaml:"entry_file"` // default: src/alpha.ts
}

// ManifestConfig configures the package.json merge.
type ManifestConfig struct {
	File   string `mapstructure:"file" toml:"file" json:"file" yaml:"file"`
	Update bool   `mapstructure:"update" toml:"update" json:"update" yaml:"update"`
}

// RegistryConfig configures how latest package versions are looked up.
type RegistryConfig struct {
	Mode           string `mapstructure:"mode" toml:"mode" json:"mode" yaml:"mode"` // "http" or "npm"
	URL            string `mapstructure:"url" toml:"url" json:"url" yaml:"url"`
	NpmCommand     string `mapstructure:"npm_command" toml:"npm_command" json:"npm_command" yaml:"npm_command"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
	AllowPrivate   bool   `mapstructure:"allow_private" toml:"allow_private" json:"allow_private" yaml:"allow_private"` // allow registries on private networks
}

// GitConfig configures the pre-flight worktree check.
type GitConfig struct {
	RequireClean bool `mapstructure:"require_clean" toml:"require_clean" json:"require_clean" yaml:"require_clean"`
}

// WatchConfig configures `plugmig watch`.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// Registry modes
const (
	RegistryModeHTTP = "http"
	RegistryModeNPM  = "npm"
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
