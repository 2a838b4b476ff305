package am

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/plugmig/errors"
	"github.com/teranos/plugmig/generate"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.File) == "" {
		return errors.New("source.file cannot be empty")
	}

	if err := relativePath("output.alpha_dir", c.Output.AlphaDir); err != nil {
		return err
	}
	if err := relativePath("output.entry_file", c.Output.EntryFile); err != nil {
		return err
	}
	if ext := path.Ext(c.Output.EntryFile); ext != ".ts" && ext != ".tsx" {
		return errors.Newf("output.entry_file must end in .ts or .tsx, got %q", c.Output.EntryFile)
	}

	if c.Manifest.Update && strings.TrimSpace(c.Manifest.File) == "" {
		return errors.New("manifest.file cannot be empty when manifest.update is enabled")
	}

	if err := c.validateLayout(); err != nil {
		return err
	}

	switch c.Registry.Mode {
	case RegistryModeHTTP:
		u, err := url.Parse(c.Registry.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Newf("registry.url must be an http(s) URL, got %q", c.Registry.URL)
		}
	case RegistryModeNPM:
		if strings.TrimSpace(c.Registry.NpmCommand) == "" {
			return errors.New("registry.npm_command cannot be empty when registry.mode is npm")
		}
	default:
		return errors.Newf("registry.mode must be %q or %q, got %q", RegistryModeHTTP, RegistryModeNPM, c.Registry.Mode)
	}

	if c.Registry.TimeoutSeconds <= 0 {
		return errors.Newf("registry.timeout_seconds must be > 0, got %d", c.Registry.TimeoutSeconds)
	}

	// 0 = re-run on every event
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return nil
}

// validateLayout rejects output settings under which a generated document
// would overwrite the legacy source, the manifest or another document.
func (c *Config) validateLayout() error {
	layout := generate.Layout{
		AlphaDir:  filepath.ToSlash(c.Output.AlphaDir),
		EntryFile: filepath.ToSlash(c.Output.EntryFile),
	}
	reserved := []generate.Target{{Role: "source.file", Path: filepath.ToSlash(c.Source.File)}}
	if strings.TrimSpace(c.Manifest.File) != "" {
		reserved = append(reserved, generate.Target{Role: "manifest.file", Path: filepath.ToSlash(c.Manifest.File)})
	}

	written, other, found := layout.Collision(reserved...)
	if !found {
		return nil
	}
	return errors.WithHint(
		errors.Newf("output.alpha_dir and output.entry_file place the %s at %s, which is also the %s",
			written.Role, written.Path, other.Role),
		"move output.alpha_dir or output.entry_file so generated documents get paths of their own",
	)
}

// relativePath rejects empty, absolute and root-escaping paths.
func relativePath(key, p string) error {
	if strings.TrimSpace(p) == "" {
		return errors.Newf("%s cannot be empty", key)
	}
	if filepath.IsAbs(p) || path.IsAbs(p) {
		return errors.Newf("%s must be relative to the plugin root, got %q", key, p)
	}
	if clean := path.Clean(filepath.ToSlash(p)); clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.Newf("%s must stay inside the plugin root, got %q", key, p)
	}
	return nil
}

// UnknownKeys returns the keys in a TOML config file that plugmig does not
// recognize, as dotted paths in file order.
func UnknownKeys(configPath string) ([]string, error) {
	var cfg Config
	md, err := toml.DecodeFile(configPath, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", configPath)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return unknown, nil
}
