package migrate

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/teranos/plugmig/extract"
	"github.com/teranos/plugmig/generate"
)

const goldenSource = "src/plugin.ts"

// TestPlanGolden plans the legacy source of each testdata archive and
// compares every planned document with the archive's expected files.
func TestPlanGolden(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, archives)

	for _, file := range archives {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".txtar"), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			require.NoError(t, err)

			var src string
			want := make(map[string]string)
			for _, f := range ar.Files {
				if f.Name == goldenSource {
					src = string(f.Data)
					continue
				}
				want[f.Name] = string(f.Data)
			}
			require.NotEmpty(t, src, "archive has no %s", goldenSource)

			plan := NewPlan(src, generate.DefaultLayout)

			var got []string
			for _, doc := range plan.Documents {
				got = append(got, doc.Path)
			}
			var wantPaths []string
			for p := range want {
				wantPaths = append(wantPaths, p)
			}
			sort.Strings(got)
			sort.Strings(wantPaths)
			assert.Equal(t, wantPaths, got)

			for p, content := range want {
				doc, ok := plan.Document(p)
				if assert.True(t, ok, p) {
					assert.Equal(t, content, doc.Content, p)
				}
			}
		})
	}
}

func TestPlanDocumentOrder(t *testing.T) {
	src := `
createPlugin({ id: 'x' });
createApiFactory({ api: xRef, factory: () => new X() });
export const C = p.provide(createComponentExtension({
  name: 'C',
  component: { lazy: () => import('./C').then(m => m.C) },
}));
export const R = p.provide(createRoutableExtension({
  name: 'R',
  component: () => import('./R').then(m => m.R),
  mountPoint: rootRouteRef,
}));
`
	plan := NewPlan(src, generate.DefaultLayout)

	var paths []string
	for _, d := range plan.Documents {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{
		"src/alpha/apis.ts",
		"src/alpha/entityCard.tsx",
		"src/alpha/entityContent.tsx",
		"src/alpha/plugin.ts",
		"src/alpha/index.ts",
		"src/alpha.ts",
	}, paths)
	assert.Equal(t, []string{"x", "C", "R"}, plan.Exports.All())
}

func TestPlanApiAndCardScenario(t *testing.T) {
	src := `import { createPlugin } from '@backstage/core-plugin-api';

export const myPlugin = createPlugin({
  id: "my-plugin",
  apis: [createApiFactory({ api: fooRef, factory: () => new Foo() })],
});

export const WidgetCard = myPlugin.provide(
  createComponentExtension({
    name: 'widget',
    component: { lazy: () => import('./components/Widget').then(m => m.Widget) },
  }),
);
`
	plan := NewPlan(src, generate.DefaultLayout)

	assert.Equal(t, "my-plugin", plan.PluginID)
	assert.Equal(t, []string{"foo"}, plan.Exports.Api)
	assert.Equal(t, []string{"WidgetCard"}, plan.Exports.Card)
	assert.Empty(t, plan.Exports.Content)
	assert.True(t, plan.LegacyImportReplaced)

	apis, ok := plan.Document("src/alpha/apis.ts")
	require.True(t, ok)
	assert.Contains(t, apis.Content, "export const foo = ApiBlueprint.make({")
	assert.NotContains(t, apis.Content, "createPlugin }", "legacy import is not carried")

	plugin, ok := plan.Document("src/alpha/plugin.ts")
	require.True(t, ok)
	assert.Contains(t, plugin.Content, "import { foo } from './apis';\n")
	assert.Contains(t, plugin.Content, "import { WidgetCard } from './entityCard';\n")
	assert.Contains(t, plugin.Content, "  id: 'my-plugin',\n")
	assert.Contains(t, plugin.Content, "  extensions: [foo, WidgetCard],\n")

	_, ok = plan.Document("src/alpha/entityContent.tsx")
	assert.False(t, ok)
}

func TestPlanEmptySource(t *testing.T) {
	plan := NewPlan("", generate.DefaultLayout)

	assert.Equal(t, extract.FallbackPluginID, plan.PluginID)
	assert.Empty(t, plan.Exports.All())
	assert.Empty(t, plan.Skipped)
	assert.Empty(t, plan.Duplicates)
	assert.False(t, plan.LegacyImportReplaced)
	require.Len(t, plan.Documents, 3)

	plugin, ok := plan.Document("src/alpha/plugin.ts")
	require.True(t, ok)
	assert.Contains(t, plugin.Content, "  extensions: [],\n")
}

func TestPlanDuplicateFallbackNames(t *testing.T) {
	src := "createApiFactory(aRef, new A());\ncreateApiFactory(bRef, new B());\n"

	plan := NewPlan(src, generate.DefaultLayout)

	assert.Equal(t, []string{"api", "api"}, plan.Exports.Api)
	assert.Equal(t, map[extract.Kind][]string{extract.KindApi: {"api"}}, plan.Duplicates)

	plugin, ok := plan.Document("src/alpha/plugin.ts")
	require.True(t, ok)
	assert.Contains(t, plugin.Content, "  extensions: [api, api],\n")
}

func TestPlanSkipsCarryLines(t *testing.T) {
	src := `// header
export const Broken = p.provide(createComponentExtension({
  name: 'Broken',
  component: () => import('./Broken').then(m => m.Broken),
}));

createApiFactory({ api: fooRef,
`
	plan := NewPlan(src, generate.DefaultLayout)

	require.Len(t, plan.Skipped, 2)

	assert.Equal(t, extract.KindApi, plan.Skipped[0].Kind)
	assert.Equal(t, extract.ApiFactory.Name, plan.Skipped[0].Shape)
	assert.Equal(t, 7, plan.Skipped[0].Line)
	assert.Equal(t, strings.Index(src, "createApiFactory("), plan.Skipped[0].Offset)
	assert.Equal(t, "unterminated call", plan.Skipped[0].Reason)

	assert.Equal(t, extract.KindCard, plan.Skipped[1].Kind)
	assert.Equal(t, 2, plan.Skipped[1].Line)
	assert.Contains(t, plan.Skipped[1].Reason, "component extension")
}

func TestPlanCustomLayout(t *testing.T) {
	layout := generate.Layout{AlphaDir: "src/nfs", EntryFile: "src/nfs.ts"}

	plan := NewPlan("createPlugin({ id: 'x' })", layout)

	var paths []string
	for _, d := range plan.Documents {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"src/nfs/plugin.ts", "src/nfs/index.ts", "src/nfs.ts"}, paths)

	entry, ok := plan.Document("src/nfs.ts")
	require.True(t, ok)
	assert.Equal(t, "export { default } from './nfs/index';\n", entry.Content)
}

func TestPlanLegacyImport(t *testing.T) {
	src := "import { createPlugin } from '@backstage/core-plugin-api';\nexport const p = createPlugin({ id: 'p' });\n"

	plan := NewPlan(src, generate.DefaultLayout)
	assert.True(t, plan.LegacyImportReplaced)

	doc, ok := plan.Document(generate.DefaultLayout.Plugin())
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(doc.Content, extract.FrontendPluginImport+"\n"))
	assert.NotContains(t, doc.Content, "createPlugin }")
}
