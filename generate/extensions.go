package generate

import (
	"fmt"
	"strings"

	"github.com/teranos/plugmig/extract"
)

const (
	reactImport            = `import React from 'react';`
	cardBlueprintImport    = `import { EntityCardBlueprint } from '@backstage/plugin-catalog-react/alpha';`
	contentBlueprintImport = `import { EntityContentBlueprint } from '@backstage/plugin-catalog-react/alpha';`

	alphaTag = "/**\n * @alpha\n */\n"

	// Entity filter applied to every generated card and content extension.
	componentFilter = "kind:component"
)

// Cards renders one EntityCardBlueprint export per record.
func Cards(l Layout, records []extract.ExtensionRecord) Output {
	return extensions(l.Cards(), cardBlueprintImport, records, writeCard)
}

// Content renders one EntityContentBlueprint export per record. The route
// path is the lower-cased display name and the tab title is the display name.
func Content(l Layout, records []extract.ExtensionRecord) Output {
	return extensions(l.Content(), contentBlueprintImport, records, writeContent)
}

func extensions(docPath, blueprintImport string, records []extract.ExtensionRecord, write func(*strings.Builder, extract.ExtensionRecord)) Output {
	if len(records) == 0 {
		return Output{Exports: []string{}}
	}

	var sb strings.Builder
	sb.WriteString(reactImport + "\n")
	sb.WriteString(blueprintImport + "\n")
	sb.WriteString("\n")
	sb.WriteString(alphaTag)

	exports := make([]string, 0, len(records))
	for i, r := range records {
		if i > 0 {
			sb.WriteString("\n")
		}
		write(&sb, r)
		exports = append(exports, r.ConstName)
	}

	return Output{
		Document: &Document{Path: docPath, Content: sb.String()},
		Exports:  exports,
	}
}

func writeCard(sb *strings.Builder, r extract.ExtensionRecord) {
	fmt.Fprintf(sb, "export const %s = EntityCardBlueprint.make({\n", r.ConstName)
	fmt.Fprintf(sb, "  name: '%s',\n", r.DisplayName)
	sb.WriteString("  params: {\n")
	fmt.Fprintf(sb, "    filter: '%s',\n", componentFilter)
	writeLoader(sb, r)
	sb.WriteString("  },\n")
	sb.WriteString("});\n")
}

func writeContent(sb *strings.Builder, r extract.ExtensionRecord) {
	fmt.Fprintf(sb, "export const %s = EntityContentBlueprint.make({\n", r.ConstName)
	fmt.Fprintf(sb, "  name: '%s',\n", r.DisplayName)
	sb.WriteString("  params: {\n")
	fmt.Fprintf(sb, "    defaultPath: '%s',\n", strings.ToLower(r.DisplayName))
	fmt.Fprintf(sb, "    defaultTitle: '%s',\n", r.DisplayName)
	fmt.Fprintf(sb, "    filter: '%s',\n", componentFilter)
	writeLoader(sb, r)
	sb.WriteString("  },\n")
	sb.WriteString("});\n")
}

func writeLoader(sb *strings.Builder, r extract.ExtensionRecord) {
	sb.WriteString("    loader: () =>\n")
	fmt.Fprintf(sb, "      import('%s').then(m => (\n", r.ImportPath)
	fmt.Fprintf(sb, "        <m.%s />\n", r.Member)
	sb.WriteString("      )),\n")
}
