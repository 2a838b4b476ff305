// Package manifest merges the new-frontend-system entries into a plugin's
// package.json: the alpha export map, typesVersions, and the two frontend
// API dependencies. Keys not touched keep their order and values.
package manifest

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/teranos/plugmig/errors"
)

// Packages the migrated plugin depends on.
const (
	FrontendAppAPI    = "@backstage/frontend-app-api"
	FrontendPluginAPI = "@backstage/frontend-plugin-api"
)

// Dependencies lists the packages whose latest versions Merge needs.
var Dependencies = []string{FrontendAppAPI, FrontendPluginAPI}

const filePermissions = 0644

// Change describes what happened to one dependency.
type Change struct {
	Package string
	From    string // previous range; empty when the dependency was added
	To      string
	Kept    bool // From already admitted the latest version
}

// Merge returns data with exports, typesVersions and dependencies updated.
// entry is the alpha entry file relative to the package root, e.g.
// "src/alpha.ts". latest maps each of Dependencies to its latest version.
func Merge(data []byte, entry string, latest map[string]string) ([]byte, []Change, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, nil, errors.New("package.json is not a JSON object")
	}
	for _, pkg := range Dependencies {
		if latest[pkg] == "" {
			return nil, nil, errors.Newf("no version for %s", pkg)
		}
	}

	entry = path.Clean(entry)

	exports, err := json.Marshal(map[string]string{
		".":              "./src/index.ts",
		"./alpha":        "./" + entry,
		"./package.json": "./package.json",
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to encode exports")
	}

	typesVersions, err := json.Marshal(map[string]map[string][]string{
		"*": {
			strings.TrimSuffix(path.Base(entry), path.Ext(entry)): {entry},
			"package.json": {"package.json"},
		},
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to encode typesVersions")
	}

	deps, changes, err := mergeDependencies(gjson.GetBytes(data, "dependencies"), latest)
	if err != nil {
		return nil, nil, err
	}

	out := data
	for _, field := range []struct {
		key string
		raw []byte
	}{
		{"exports", exports},
		{"typesVersions", typesVersions},
		{"dependencies", deps},
	} {
		out, err = sjson.SetRawBytes(out, field.key, field.raw)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to set %s", field.key)
		}
	}

	return pretty.PrettyOptions(out, &pretty.Options{Indent: "  "}), changes, nil
}

// mergeDependencies rebuilds the dependencies object in its existing key
// order, appending packages that were not listed.
func mergeDependencies(existing gjson.Result, latest map[string]string) ([]byte, []Change, error) {
	type entry struct {
		key string
		raw string
	}
	var entries []entry
	index := make(map[string]int)

	if existing.Exists() {
		if !existing.IsObject() {
			return nil, nil, errors.New("package.json dependencies is not an object")
		}
		existing.ForEach(func(k, v gjson.Result) bool {
			index[k.String()] = len(entries)
			entries = append(entries, entry{key: k.String(), raw: v.Raw})
			return true
		})
	}

	var changes []Change
	for _, pkg := range Dependencies {
		change := Change{Package: pkg, To: "^" + latest[pkg]}

		if i, ok := index[pkg]; ok {
			change.From = gjson.Parse(entries[i].raw).String()
			if admits(change.From, latest[pkg]) {
				change.To = change.From
				change.Kept = true
			}
			entries[i].raw = quote(change.To)
		} else {
			entries = append(entries, entry{key: pkg, raw: quote(change.To)})
		}
		changes = append(changes, change)
	}

	var sb strings.Builder
	sb.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(quote(e.key))
		sb.WriteString(":")
		sb.WriteString(e.raw)
	}
	sb.WriteString("}")

	return []byte(sb.String()), changes, nil
}

// admits reports whether the npm range r already accepts version v.
func admits(r, v string) bool {
	if r == "" {
		return false
	}
	constraint, err := semver.NewConstraint(r)
	if err != nil {
		return false
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		return false
	}
	return constraint.Check(version)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Update merges the manifest at file on fsys in place.
func Update(fsys afero.Fs, file, entry string, latest map[string]string) ([]Change, error) {
	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "failed to read %s", file),
			"run plugmig from a plugin package root or set manifest.file",
		)
	}

	merged, changes, err := Merge(data, entry, latest)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to merge %s", file)
	}

	if err := afero.WriteFile(fsys, file, merged, filePermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", file)
	}
	return changes, nil
}
