// Package generate renders extracted declaration records into the documents
// of a Backstage new-frontend-system plugin: one document per declaration
// kind, the plugin registration document that wires them together, and the
// two re-export documents that make it reachable.
//
// Every function here is pure. Generators return their export names as
// values; nothing is accumulated across calls.
package generate

import (
	"path"
	"strings"
)

// Document is one generated file. Path is slash-separated and relative to the
// plugin package root.
type Document struct {
	Path    string
	Content string
}

// Output is what a per-kind generator produces. Document is nil when there
// were no records of that kind; Exports is then empty.
type Output struct {
	Document *Document
	Exports  []string
}

// Layout places the generated documents inside the plugin package.
type Layout struct {
	// AlphaDir holds the per-kind documents, the plugin document and its index.
	AlphaDir string
	// EntryFile re-exports the index as the package's alpha entry point.
	EntryFile string
}

// DefaultLayout is the layout Backstage plugins use for their alpha exports.
var DefaultLayout = Layout{
	AlphaDir:  "src/alpha",
	EntryFile: "src/alpha.ts",
}

const (
	apisBase    = "apis"
	cardsBase   = "entityCard"
	contentBase = "entityContent"
	pluginBase  = "plugin"
	indexBase   = "index"
)

func (l Layout) Apis() string    { return path.Join(l.AlphaDir, apisBase+".ts") }
func (l Layout) Cards() string   { return path.Join(l.AlphaDir, cardsBase+".tsx") }
func (l Layout) Content() string { return path.Join(l.AlphaDir, contentBase+".tsx") }
func (l Layout) Plugin() string  { return path.Join(l.AlphaDir, pluginBase+".ts") }
func (l Layout) Index() string   { return path.Join(l.AlphaDir, indexBase+".ts") }
func (l Layout) Entry() string   { return path.Clean(l.EntryFile) }

// Target is a path the migrator reads or writes, named by what it holds.
type Target struct {
	Role string
	Path string
}

// Targets lists the documents the layout writes, in write order.
func (l Layout) Targets() []Target {
	return []Target{
		{"api document", l.Apis()},
		{"card document", l.Cards()},
		{"content document", l.Content()},
		{"plugin document", l.Plugin()},
		{"index document", l.Index()},
		{"entry document", l.Entry()},
	}
}

// Collision returns the first generated document whose path equals another
// generated document or one of the reserved paths. Reserved paths are
// compared after path.Clean.
func (l Layout) Collision(reserved ...Target) (written, other Target, found bool) {
	seen := make(map[string]Target)
	for _, r := range reserved {
		seen[path.Clean(r.Path)] = r
	}
	for _, t := range l.Targets() {
		if prev, ok := seen[t.Path]; ok {
			return t, prev, true
		}
		seen[t.Path] = t
	}
	return Target{}, Target{}, false
}

// Duplicates returns the names that occur more than once, in order of their
// second occurrence. Generators never rename; callers decide what to report.
func Duplicates(names []string) []string {
	seen := make(map[string]int, len(names))
	var dups []string
	for _, name := range names {
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}

// specifier is the module specifier for importing target from a file in dir:
// "./x" style, without the TypeScript extension.
func specifier(dir, target string) string {
	rel := trimExt(relative(dir, target))
	if !strings.HasPrefix(rel, "./") && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

func trimExt(p string) string {
	switch ext := path.Ext(p); ext {
	case ".ts", ".tsx":
		return p[:len(p)-len(ext)]
	}
	return p
}

// relative is path/filepath.Rel for slash paths.
func relative(base, target string) string {
	base, target = path.Clean(base), path.Clean(target)
	if base == "." {
		return target
	}
	bs, ts := splitPath(base), splitPath(target)
	i := 0
	for i < len(bs) && i < len(ts) && bs[i] == ts[i] {
		i++
	}
	parts := make([]string, 0, len(bs)-i+len(ts)-i)
	for range bs[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, ts[i:]...)
	if len(parts) == 0 {
		return "."
	}
	return path.Join(parts...)
}

func splitPath(p string) []string {
	var parts []string
	for p != "" && p != "." && p != "/" {
		dir, file := path.Split(p)
		parts = append([]string{file}, parts...)
		p = path.Clean(dir)
		if dir == "" {
			break
		}
	}
	return parts
}
