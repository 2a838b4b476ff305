package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/plugmig/extract"
)

func TestLayoutPaths(t *testing.T) {
	l := DefaultLayout

	assert.Equal(t, "src/alpha/apis.ts", l.Apis())
	assert.Equal(t, "src/alpha/entityCard.tsx", l.Cards())
	assert.Equal(t, "src/alpha/entityContent.tsx", l.Content())
	assert.Equal(t, "src/alpha/plugin.ts", l.Plugin())
	assert.Equal(t, "src/alpha/index.ts", l.Index())
	assert.Equal(t, "src/alpha.ts", l.Entry())
}

func TestLayoutCollision(t *testing.T) {
	source := Target{Role: "source.file", Path: "src/plugin.ts"}
	manifest := Target{Role: "manifest.file", Path: "package.json"}

	tests := []struct {
		name      string
		layout    Layout
		reserved  []Target
		wantPath  string
		wantOther string
	}{
		{"default layout", DefaultLayout, []Target{source, manifest}, "", ""},
		{"plugin document over the source", Layout{AlphaDir: "src", EntryFile: "src/alpha.ts"}, []Target{source, manifest}, "src/plugin.ts", "source.file"},
		{"entry is the index", Layout{AlphaDir: "src/alpha", EntryFile: "src/alpha/index.ts"}, nil, "src/alpha/index.ts", "index document"},
		{"entry is the source", Layout{AlphaDir: "src/alpha", EntryFile: "src/./plugin.ts"}, []Target{source}, "src/plugin.ts", "source.file"},
		{"unclean reserved path", DefaultLayout, []Target{{Role: "manifest.file", Path: "src/alpha/../alpha/apis.ts"}}, "src/alpha/apis.ts", "manifest.file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			written, other, found := tt.layout.Collision(tt.reserved...)
			if tt.wantPath == "" {
				assert.False(t, found)
				return
			}
			require.True(t, found)
			assert.Equal(t, tt.wantPath, written.Path)
			assert.Equal(t, tt.wantOther, other.Role)
		})
	}
}

func TestSpecifier(t *testing.T) {
	tests := []struct {
		dir, target, want string
	}{
		{"src/alpha", "src/alpha/plugin.ts", "./plugin"},
		{"src", "src/alpha/index.ts", "./alpha/index"},
		{"src/alpha", "src/alpha/entityCard.tsx", "./entityCard"},
		{"lib/alpha", "src/alpha/index.ts", "../../src/alpha/index"},
		{".", "alpha/index.ts", "./alpha/index"},
	}

	for _, tt := range tests {
		t.Run(tt.dir+"->"+tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, specifier(tt.dir, tt.target))
		})
	}
}

func TestApisEmpty(t *testing.T) {
	out := Apis(DefaultLayout, nil, []string{"import x from 'y';"})

	assert.Nil(t, out.Document)
	assert.Empty(t, out.Exports)
}

func TestApis(t *testing.T) {
	records := []extract.ApiRecord{
		{BoundName: "foo", Factory: "createApiFactory(fooRef, new Foo())"},
		{BoundName: "bar", Factory: "createApiFactory(barRef, new Bar())"},
	}

	out := Apis(DefaultLayout, records, []string{"import { Foo } from './foo';"})

	require.NotNil(t, out.Document)
	assert.Equal(t, "src/alpha/apis.ts", out.Document.Path)
	assert.Equal(t, []string{"foo", "bar"}, out.Exports)
	assert.Equal(t, `import { ApiBlueprint } from '@backstage/plugin-catalog-react/alpha';

import { Foo } from './foo';

export const foo = ApiBlueprint.make({
  params: {
    factory: createApiFactory(fooRef, new Foo()),
  },
});

export const bar = ApiBlueprint.make({
  params: {
    factory: createApiFactory(barRef, new Bar()),
  },
});
`, out.Document.Content)
}

func TestApisKeepsDuplicateNames(t *testing.T) {
	records := []extract.ApiRecord{
		{BoundName: extract.FallbackApiName, Factory: "createApiFactory(a)"},
		{BoundName: extract.FallbackApiName, Factory: "createApiFactory(b)"},
	}

	out := Apis(DefaultLayout, records, nil)

	require.NotNil(t, out.Document)
	assert.Equal(t, []string{"api", "api"}, out.Exports)
	assert.Equal(t, 2, strings.Count(out.Document.Content, "export const api = "))
	assert.Equal(t, []string{"api"}, Duplicates(out.Exports))
}

func TestCards(t *testing.T) {
	records := []extract.ExtensionRecord{{
		ConstName:   "EntityFooCard",
		DisplayName: "EntityFooCard",
		ImportPath:  "./components/FooCard",
		Member:      "FooCard",
	}}

	out := Cards(DefaultLayout, records)

	require.NotNil(t, out.Document)
	assert.Equal(t, "src/alpha/entityCard.tsx", out.Document.Path)
	assert.Equal(t, []string{"EntityFooCard"}, out.Exports)
	assert.Equal(t, `import React from 'react';
import { EntityCardBlueprint } from '@backstage/plugin-catalog-react/alpha';

/**
 * @alpha
 */
export const EntityFooCard = EntityCardBlueprint.make({
  name: 'EntityFooCard',
  params: {
    filter: 'kind:component',
    loader: () =>
      import('./components/FooCard').then(m => (
        <m.FooCard />
      )),
  },
});
`, out.Document.Content)
}

func TestContent(t *testing.T) {
	records := []extract.ExtensionRecord{{
		ConstName:   "EntityFooContent",
		DisplayName: "FooPage",
		ImportPath:  "./components/FooPage",
		Member:      "FooPage",
		MountPoint:  "rootRouteRef",
	}}

	out := Content(DefaultLayout, records)

	require.NotNil(t, out.Document)
	assert.Equal(t, "src/alpha/entityContent.tsx", out.Document.Path)
	assert.Contains(t, out.Document.Content, "import { EntityContentBlueprint } from '@backstage/plugin-catalog-react/alpha';")
	assert.Contains(t, out.Document.Content, "    defaultPath: 'foopage',\n")
	assert.Contains(t, out.Document.Content, "    defaultTitle: 'FooPage',\n")
	assert.Contains(t, out.Document.Content, "    filter: 'kind:component',\n")
	assert.NotContains(t, out.Document.Content, "rootRouteRef")
}

func TestExtensionsEmpty(t *testing.T) {
	for name, out := range map[string]Output{
		"cards":   Cards(DefaultLayout, nil),
		"content": Content(DefaultLayout, []extract.ExtensionRecord{}),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, out.Document)
			assert.NotNil(t, out.Exports)
			assert.Empty(t, out.Exports)
		})
	}
}

func TestExtensionRoundTrip(t *testing.T) {
	records := []extract.ExtensionRecord{
		{ConstName: "A", DisplayName: "ACard", ImportPath: "./components/A", Member: "A"},
		{ConstName: "B_2", DisplayName: "b-card", ImportPath: "../shared/B", Member: "BView"},
	}

	tests := []struct {
		name   string
		render func(Layout, []extract.ExtensionRecord) Output
		shape  extract.Shape[extract.ExtensionRecord]
	}{
		{"card", Cards, extract.CardBlueprint},
		{"content", Content, extract.ContentBlueprint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render(DefaultLayout, records)
			require.NotNil(t, out.Document)

			got := extract.Records(extract.Scan(out.Document.Content, tt.shape))
			assert.Equal(t, records, got)
		})
	}
}

func TestApiRoundTrip(t *testing.T) {
	records := []extract.ApiRecord{
		{BoundName: "foo", Factory: "createApiFactory({\n  api: fooRef,\n  factory: () => new Foo(),\n})"},
	}

	out := Apis(DefaultLayout, records, nil)
	require.NotNil(t, out.Document)

	assert.Equal(t, records, extract.Records(extract.Scan(out.Document.Content, extract.ApiBlueprint)))
}

func TestPlugin(t *testing.T) {
	doc := Plugin(DefaultLayout, Exports{
		Api:     []string{"foo"},
		Card:    []string{"CardA", "CardB"},
		Content: []string{"PageA"},
	}, "my-plugin")

	require.NotNil(t, doc)
	assert.Equal(t, "src/alpha/plugin.ts", doc.Path)
	assert.Equal(t, `import { createFrontendPlugin } from '@backstage/frontend-plugin-api';
import { foo } from './apis';
import { CardA } from './entityCard';
import { CardB } from './entityCard';
import { PageA } from './entityContent';

/**
 * @alpha
 */
export default createFrontendPlugin({
  id: 'my-plugin',
  extensions: [foo, CardA, CardB, PageA],
});
`, doc.Content)
}

func TestPluginEmpty(t *testing.T) {
	doc := Plugin(DefaultLayout, Exports{}, extract.FallbackPluginID)

	require.NotNil(t, doc)
	assert.Contains(t, doc.Content, "  id: 'plugin-id',\n")
	assert.Contains(t, doc.Content, "  extensions: [],\n")
	assert.NotContains(t, doc.Content, "from './")
}

func TestExportsAllOrder(t *testing.T) {
	e := Exports{Card: []string{"c1", "c2"}, Content: []string{"x"}}

	all := e.All()

	assert.Len(t, all, 3)
	assert.Equal(t, []string{"c1", "c2", "x"}, all)
}

func TestScaffold(t *testing.T) {
	docs := Scaffold(DefaultLayout)

	assert.Equal(t, []Document{
		{Path: "src/alpha/index.ts", Content: "export { default } from './plugin';\n"},
		{Path: "src/alpha.ts", Content: "export { default } from './alpha/index';\n"},
	}, docs)
}

func TestScaffoldCustomLayout(t *testing.T) {
	docs := Scaffold(Layout{AlphaDir: "src/nfs", EntryFile: "src/nfs.ts"})

	require.Len(t, docs, 2)
	assert.Equal(t, "export { default } from './plugin';\n", docs[0].Content)
	assert.Equal(t, "export { default } from './nfs/index';\n", docs[1].Content)
}

func TestDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"none", []string{"a", "b"}, nil},
		{"one pair", []string{"a", "b", "a"}, []string{"a"}},
		{"reported once", []string{"api", "api", "api"}, []string{"api"}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Duplicates(tt.names))
		})
	}
}
