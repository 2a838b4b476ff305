// Package migrate runs the legacy-to-new-frontend-system conversion of one
// Backstage plugin package: it plans the generated documents from the legacy
// plugin source, writes them, and merges the package manifest.
package migrate

import (
	"strings"

	"github.com/teranos/plugmig/extract"
	"github.com/teranos/plugmig/generate"
)

// Skip is a candidate declaration that was found but not extracted.
type Skip struct {
	Kind   extract.Kind
	Shape  string
	Offset int // byte offset of the candidate in the source
	Line   int
	Reason string
}

// Plan is everything one run would produce, computed in memory from a
// single snapshot of the legacy source.
type Plan struct {
	PluginID string
	Exports  generate.Exports

	// Documents in write order: Api, Card, Content, Plugin, Index, Entry.
	// Per-kind documents are absent when their kind had no declarations.
	Documents []generate.Document

	Skipped    []Skip
	Duplicates map[extract.Kind][]string

	// LegacyImportReplaced reports whether the source carries the legacy
	// createPlugin import that the plugin document supersedes.
	LegacyImportReplaced bool
}

// NewPlan extracts declarations from src and renders every document.
func NewPlan(src string, layout generate.Layout) *Plan {
	apiMatches := extract.ApiFactories(src)
	cardMatches := extract.ComponentExtensions(src)
	contentMatches := extract.RoutableExtensions(src)

	apis := generate.Apis(layout, extract.Records(apiMatches), carriedImports(src))
	cards := generate.Cards(layout, extract.Records(cardMatches))
	content := generate.Content(layout, extract.Records(contentMatches))

	p := &Plan{
		PluginID: extract.PluginID(src),
		Exports: generate.Exports{
			Api:     apis.Exports,
			Card:    cards.Exports,
			Content: content.Exports,
		},
		Duplicates: make(map[extract.Kind][]string),
	}
	_, p.LegacyImportReplaced = extract.RewriteLegacyImport(src)

	for _, out := range []generate.Output{apis, cards, content} {
		if out.Document != nil {
			p.Documents = append(p.Documents, *out.Document)
		}
	}
	p.Documents = append(p.Documents, *generate.Plugin(layout, p.Exports, p.PluginID))
	p.Documents = append(p.Documents, generate.Scaffold(layout)...)

	p.Skipped = append(p.Skipped, skips(src, extract.KindApi, extract.ApiFactory.Name, apiMatches)...)
	p.Skipped = append(p.Skipped, skips(src, extract.KindCard, extract.ComponentExtension.Name, cardMatches)...)
	p.Skipped = append(p.Skipped, skips(src, extract.KindContent, extract.RoutableExtension.Name, contentMatches)...)

	for kind, names := range map[extract.Kind][]string{
		extract.KindApi:     p.Exports.Api,
		extract.KindCard:    p.Exports.Card,
		extract.KindContent: p.Exports.Content,
	} {
		if dups := generate.Duplicates(names); len(dups) > 0 {
			p.Duplicates[kind] = dups
		}
	}

	return p
}

// Document returns the planned document at path.
func (p *Plan) Document(path string) (generate.Document, bool) {
	for _, d := range p.Documents {
		if d.Path == path {
			return d, true
		}
	}
	return generate.Document{}, false
}

// carriedImports are the legacy imports the API document keeps. The legacy
// createPlugin import is dropped; nothing generated uses it.
func carriedImports(src string) []string {
	var imports []string
	for _, stmt := range extract.Imports(src) {
		if _, legacy := extract.RewriteLegacyImport(stmt); legacy {
			continue
		}
		imports = append(imports, stmt)
	}
	return imports
}

func skips[R any](src string, kind extract.Kind, shape string, matches []extract.Match[R]) []Skip {
	var out []Skip
	for _, m := range extract.Skips(matches) {
		out = append(out, Skip{
			Kind:   kind,
			Shape:  shape,
			Offset: m.Offset,
			Line:   strings.Count(src[:m.Offset], "\n") + 1,
			Reason: m.Reason,
		})
	}
	return out
}
