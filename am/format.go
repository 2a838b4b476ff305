package am

import (
	"encoding/json"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/plugmig/errors"
)

// Output formats for `plugmig am show`
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode writes v to w in the given format.
func Encode(w io.Writer, v interface{}, format string) error {
	switch format {
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return errors.Wrap(enc.Encode(v), "failed to encode TOML")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "failed to encode JSON")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "failed to encode YAML")
		}
		return errors.Wrap(enc.Close(), "failed to encode YAML")
	default:
		return errors.WithHint(
			errors.Newf("unknown format %q", format),
			"use one of: toml, json, yaml",
		)
	}
}
