package generate

import (
	"fmt"
	"strings"

	"github.com/teranos/plugmig/extract"
)

const apiBlueprintImport = `import { ApiBlueprint } from '@backstage/plugin-catalog-react/alpha';`

// Apis renders one ApiBlueprint export per record. imports are the legacy
// file's import statements, carried over because the factory expressions
// reference them.
func Apis(l Layout, records []extract.ApiRecord, imports []string) Output {
	if len(records) == 0 {
		return Output{Exports: []string{}}
	}

	var sb strings.Builder
	sb.WriteString(apiBlueprintImport + "\n")
	if len(imports) > 0 {
		sb.WriteString("\n")
		for _, stmt := range imports {
			sb.WriteString(stmt + "\n")
		}
	}

	exports := make([]string, 0, len(records))
	for _, r := range records {
		sb.WriteString("\n")
		writeApi(&sb, r)
		exports = append(exports, r.BoundName)
	}

	return Output{
		Document: &Document{Path: l.Apis(), Content: sb.String()},
		Exports:  exports,
	}
}

func writeApi(sb *strings.Builder, r extract.ApiRecord) {
	fmt.Fprintf(sb, "export const %s = ApiBlueprint.make({\n", r.BoundName)
	sb.WriteString("  params: {\n")
	fmt.Fprintf(sb, "    factory: %s,\n", r.Factory)
	sb.WriteString("  },\n")
	sb.WriteString("});\n")
}
