package extract

import (
	"regexp"
	"strings"
)

// FallbackApiName is the export name used for an API factory that does not
// reference an `<name>Ref` API ref. Several such factories in one file all get
// this name; duplicates are reported, not renamed.
const FallbackApiName = "api"

// ApiRecord is one API factory declaration.
type ApiRecord struct {
	// BoundName is the export name: <name> from `api: <name>Ref`, else FallbackApiName.
	BoundName string
	// Factory is the full `createApiFactory(...)` call text.
	Factory string
}

// ExtensionRecord is one card or content extension declaration.
type ExtensionRecord struct {
	ConstName   string // exported const
	DisplayName string // `name:` of the extension
	ImportPath  string // module the component is lazily imported from
	Member      string // member of that module rendered as the component
	MountPoint  string // route ref; content extensions only
}

// Fragments shared by the shape expressions.
const (
	ident   = `[A-Za-z_$][A-Za-z0-9_$]*`
	display = `[A-Za-z0-9_-]+`
	quoted  = `['"]`

	// import('<path>').then(m => m.<member>) with optional parens around m and
	// an optional trailing comma inside then(...).
	lazyImport = `import\(\s*` + quoted + `(?P<path>[^'"]+)` + quoted + `\s*\)\s*` +
		`\.then\(\s*\(?\s*m\s*\)?\s*=>\s*m\.(?P<member>` + ident + `)\s*,?\s*\)`

	// import('<path>').then(m => (<m.<member> />)) as rendered by the blueprint generators.
	jsxImport = `import\(\s*` + quoted + `(?P<path>[^'"]+)` + quoted + `\s*\)\s*` +
		`\.then\(\s*\(?\s*m\s*\)?\s*=>\s*\(?\s*<m\.(?P<member>` + ident + `)\s*/>\s*\)?\s*,?\s*\)`

	// closes `.provide(createXExtension({ ... }))` with optional trailing commas
	provideClose = `\}\s*\)\s*,?\s*\)\s*;?`
)

var apiRefPattern = regexp.MustCompile(`\bapi:\s*([A-Za-z0-9_$]+)Ref\b`)

// ApiFactory matches `createApiFactory(...)` anywhere in the source.
var ApiFactory = Shape[ApiRecord]{
	Name:   "api factory",
	Kind:   KindApi,
	Anchor: regexp.MustCompile(`\bcreateApiFactory\s*\(`),
	Call:   true,
	Build: func(c Captures) (ApiRecord, error) {
		if err := c.require("args"); err != nil {
			return ApiRecord{}, err
		}
		return ApiRecord{
			BoundName: apiName(c["args"]),
			Factory:   c["call"],
		}, nil
	},
}

// ComponentExtension matches
//
//	export const X = plugin.provide(createComponentExtension({
//	  name: 'Display',
//	  component: { lazy: () => import('./path').then(m => m.Member) },
//	}));
var ComponentExtension = Shape[ExtensionRecord]{
	Name: "component extension",
	Kind: KindCard,
	Anchor: regexp.MustCompile(`export\s+const\s+` + ident + `\s*=\s*` + ident +
		`\.provide\(\s*createComponentExtension\(`),
	Pattern: anchored(`export\s+const\s+(?P<const>` + ident + `)\s*=\s*` + ident + `\.provide\(\s*` +
		`createComponentExtension\(\s*\{\s*` +
		`name:\s*` + quoted + `(?P<name>` + display + `)` + quoted + `\s*,\s*` +
		`component:\s*\{\s*lazy:\s*\(\s*\)\s*=>\s*` + lazyImport + `\s*,?\s*\}\s*,?\s*` +
		provideClose),
	Build: buildExtension(false),
}

// RoutableExtension matches
//
//	export const X = plugin.provide(createRoutableExtension({
//	  name: 'Display',
//	  component: () => import('./path').then(m => m.Member),
//	  mountPoint: rootRouteRef,
//	}));
//
// The `component: { lazy: ... }` form of ComponentExtension is accepted too.
var RoutableExtension = Shape[ExtensionRecord]{
	Name: "routable extension",
	Kind: KindContent,
	Anchor: regexp.MustCompile(`export\s+const\s+` + ident + `\s*=\s*` + ident +
		`\.provide\(\s*createRoutableExtension\(`),
	Pattern: anchored(`export\s+const\s+(?P<const>` + ident + `)\s*=\s*` + ident + `\.provide\(\s*` +
		`createRoutableExtension\(\s*\{\s*` +
		`name:\s*` + quoted + `(?P<name>` + display + `)` + quoted + `\s*,\s*` +
		`component:\s*(?:\{\s*lazy:\s*)?\(\s*\)\s*=>\s*` + lazyImport + `\s*,?\s*(?:\}\s*,?\s*)?` +
		`mountPoint:\s*(?P<mount>` + ident + `)\s*,?\s*` +
		provideClose),
	Build: buildExtension(true),
}

// ApiBlueprint matches `export const X = ApiBlueprint.make(...)` as written by
// the API generator.
var ApiBlueprint = Shape[ApiRecord]{
	Name:   "api blueprint",
	Kind:   KindApi,
	Anchor: regexp.MustCompile(`export\s+const\s+(?P<const>` + ident + `)\s*=\s*ApiBlueprint\.make\(`),
	Call:   true,
	Build: func(c Captures) (ApiRecord, error) {
		if err := c.require("const"); err != nil {
			return ApiRecord{}, err
		}
		record := ApiRecord{BoundName: c["const"]}
		if factories := Records(Scan(c["args"], ApiFactory)); len(factories) > 0 {
			record.Factory = factories[0].Factory
		}
		return record, nil
	},
}

// CardBlueprint matches `export const X = EntityCardBlueprint.make(...)`.
var CardBlueprint = blueprintShape("card blueprint", KindCard, "EntityCardBlueprint")

// ContentBlueprint matches `export const X = EntityContentBlueprint.make(...)`.
var ContentBlueprint = blueprintShape("content blueprint", KindContent, "EntityContentBlueprint")

func blueprintShape(name string, kind Kind, blueprint string) Shape[ExtensionRecord] {
	return Shape[ExtensionRecord]{
		Name:   name,
		Kind:   kind,
		Anchor: regexp.MustCompile(`export\s+const\s+` + ident + `\s*=\s*` + blueprint + `\.make\(`),
		Pattern: anchored(`export\s+const\s+(?P<const>` + ident + `)\s*=\s*` + blueprint + `\.make\(\s*\{\s*` +
			`name:\s*` + quoted + `(?P<name>` + display + `)` + quoted + `\s*,\s*` +
			`params:\s*\{[^{}]*?loader:\s*(?:async\s*)?\(\s*\)\s*=>\s*` + jsxImport),
		Build: buildExtension(false),
	}
}

func buildExtension(routable bool) func(Captures) (ExtensionRecord, error) {
	required := []string{"const", "name", "path", "member"}
	if routable {
		required = append(required, "mount")
	}
	return func(c Captures) (ExtensionRecord, error) {
		if err := c.require(required...); err != nil {
			return ExtensionRecord{}, err
		}
		return ExtensionRecord{
			ConstName:   c["const"],
			DisplayName: c["name"],
			ImportPath:  strings.TrimSpace(c["path"]),
			Member:      c["member"],
			MountPoint:  c["mount"],
		}, nil
	}
}

func apiName(args string) string {
	if m := apiRefPattern.FindStringSubmatch(args); m != nil && m[1] != "" {
		return m[1]
	}
	return FallbackApiName
}

// ApiFactories extracts every API factory declaration.
func ApiFactories(src string) []Match[ApiRecord] {
	return Scan(src, ApiFactory)
}

// ComponentExtensions extracts every card-style extension declaration.
func ComponentExtensions(src string) []Match[ExtensionRecord] {
	return Scan(src, ComponentExtension)
}

// RoutableExtensions extracts every content-style extension declaration.
func RoutableExtensions(src string) []Match[ExtensionRecord] {
	return Scan(src, RoutableExtension)
}
