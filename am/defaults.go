package am

import "github.com/spf13/viper"

// Default values
const (
	DefaultSourceFile     = "src/plugin.ts"
	DefaultAlphaDir       = "src/alpha"
	DefaultEntryFile      = "src/alpha.ts"
	DefaultManifestFile   = "package.json"
	DefaultRegistryURL    = "https://registry.npmjs.org"
	DefaultNpmCommand     = "npm show"
	DefaultTimeoutSeconds = 30
	DefaultDebounceMS     = 500
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.file", DefaultSourceFile)

	v.SetDefault("output.alpha_dir", DefaultAlphaDir)
	v.SetDefault("output.entry_file", DefaultEntryFile)

	v.SetDefault("manifest.file", DefaultManifestFile)
	v.SetDefault("manifest.update", true)

	v.SetDefault("registry.mode", RegistryModeHTTP)
	v.SetDefault("registry.url", DefaultRegistryURL)
	v.SetDefault("registry.npm_command", DefaultNpmCommand)
	v.SetDefault("registry.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("registry.allow_private", false)

	v.SetDefault("git.require_clean", true)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
}

// Defaults returns the configuration with only defaults applied.
func Defaults() *Config {
	return &Config{
		Source:   SourceConfig{File: DefaultSourceFile},
		Output:   OutputConfig{AlphaDir: DefaultAlphaDir, EntryFile: DefaultEntryFile},
		Manifest: ManifestConfig{File: DefaultManifestFile, Update: true},
		Registry: RegistryConfig{
			Mode:           RegistryModeHTTP,
			URL:            DefaultRegistryURL,
			NpmCommand:     DefaultNpmCommand,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Git:   GitConfig{RequireClean: true},
		Watch: WatchConfig{DebounceMS: DefaultDebounceMS},
	}
}
