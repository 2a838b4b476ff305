package extract

import "regexp"

// FallbackPluginID is used when the source declares no plugin id.
const FallbackPluginID = "plugin-id"

// FrontendPluginImport replaces the legacy createPlugin import.
const FrontendPluginImport = `import { createFrontendPlugin } from '@backstage/frontend-plugin-api';`

var (
	pluginIDPattern     = regexp.MustCompile(`createPlugin\(\s*\{\s*id:\s*['"]([^'"]+)['"]`)
	importPattern       = regexp.MustCompile(`(?m)^import\s[^;'"]*?['"][^'"\n]+['"][ \t]*;?`)
	legacyImportPattern = regexp.MustCompile(`import\s*\{\s*createPlugin\s*,?\s*\}\s*from\s*['"]@backstage/core-plugin-api['"]\s*;?`)
)

// PluginID returns the id of the first `createPlugin({ id: '...' })` in src,
// or FallbackPluginID.
func PluginID(src string) string {
	if m := pluginIDPattern.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	return FallbackPluginID
}

// Imports returns the top-level import statements of src in order.
// Statements may span several lines and end at their module specifier, so a
// missing semicolon does not pull in the code that follows.
func Imports(src string) []string {
	return importPattern.FindAllString(src, -1)
}

// RewriteLegacyImport swaps the first `import { createPlugin } from
// '@backstage/core-plugin-api'` statement for FrontendPluginImport. When the
// statement is absent src is returned unchanged and replaced is false.
func RewriteLegacyImport(src string) (rewritten string, replaced bool) {
	loc := legacyImportPattern.FindStringIndex(src)
	if loc == nil {
		return src, false
	}
	return src[:loc[0]] + FrontendPluginImport + src[loc[1]:], true
}
