package generate

import (
	"fmt"
	"path"
	"strings"

	"github.com/teranos/plugmig/extract"
)

// Exports are the export names produced by the per-kind generators.
type Exports struct {
	Api     []string
	Card    []string
	Content []string
}

// All lists every export in kind order: Api, Card, Content.
func (e Exports) All() []string {
	all := make([]string, 0, len(e.Api)+len(e.Card)+len(e.Content))
	all = append(all, e.Api...)
	all = append(all, e.Card...)
	return append(all, e.Content...)
}

// Plugin renders the registration document. It imports every export from the
// document of its kind and lists all of them as the plugin's extensions.
// The document is produced even when there are no exports.
func Plugin(l Layout, exports Exports, pluginID string) *Document {
	var sb strings.Builder
	sb.WriteString(extract.FrontendPluginImport + "\n")

	groups := []struct {
		names []string
		doc   string
	}{
		{exports.Api, l.Apis()},
		{exports.Card, l.Cards()},
		{exports.Content, l.Content()},
	}
	for _, g := range groups {
		from := specifier(l.AlphaDir, g.doc)
		for _, name := range g.names {
			fmt.Fprintf(&sb, "import { %s } from '%s';\n", name, from)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(alphaTag)
	sb.WriteString("export default createFrontendPlugin({\n")
	fmt.Fprintf(&sb, "  id: '%s',\n", pluginID)
	fmt.Fprintf(&sb, "  extensions: [%s],\n", strings.Join(exports.All(), ", "))
	sb.WriteString("});\n")

	return &Document{Path: l.Plugin(), Content: sb.String()}
}

// Scaffold renders the two re-export documents: the alpha index re-exporting
// the plugin document, and the package entry re-exporting the index.
func Scaffold(l Layout) []Document {
	return []Document{
		reexport(l.Index(), l.Plugin()),
		reexport(l.Entry(), l.Index()),
	}
}

func reexport(docPath, target string) Document {
	return Document{
		Path:    docPath,
		Content: fmt.Sprintf("export { default } from '%s';\n", specifier(path.Dir(docPath), target)),
	}
}
