package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/teranos/plugmig/extract"
	"github.com/teranos/plugmig/migrate"
)

// MigrateCmd generates the new frontend system documents for a plugin package
var MigrateCmd = &cobra.Command{
	Use:   "migrate [repo]",
	Short: "Migrate a legacy frontend plugin to the new frontend system",
	Long: `Read the legacy plugin definition (source.file, default src/plugin.ts) and
write the new frontend system registration documents next to it:

  src/alpha/apis.ts           ApiBlueprint per createApiFactory
  src/alpha/entityCard.tsx    EntityCardBlueprint per createComponentExtension
  src/alpha/entityContent.tsx EntityContentBlueprint per createRoutableExtension
  src/alpha/plugin.ts         createFrontendPlugin with every extension
  src/alpha/index.ts          re-export of the plugin
  src/alpha.ts                package entry

package.json gets the ./alpha export, typesVersions and the frontend API
dependencies at their latest registry versions.

Examples:
  plugmig migrate plugins/foo
  plugmig migrate --dry-run          # print the documents, write nothing
  plugmig migrate --skip-manifest    # leave package.json alone`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

var (
	migrateDryRun       bool
	migrateSkipManifest bool
	migrateAllowDirty   bool
)

func init() {
	MigrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Print the planned documents instead of writing them")
	MigrateCmd.Flags().BoolVar(&migrateSkipManifest, "skip-manifest", false, "Do not update package.json")
	MigrateCmd.Flags().BoolVar(&migrateAllowDirty, "allow-dirty", false, "Run even if the git working tree has uncommitted changes")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	root, err := rootArg(args)
	if err != nil {
		return err
	}
	loaded, err := loadConfig(root)
	if err != nil {
		return err
	}

	opts := migrate.OptionsFromConfig(loaded.Config)
	opts.DryRun = migrateDryRun
	if migrateSkipManifest {
		opts.UpdateManifest = false
	}
	if migrateAllowDirty {
		opts.RequireClean = false
	}

	resolver, err := resolverFor(loaded.Config, opts)
	if err != nil {
		return err
	}

	result, err := migrate.New(afero.NewOsFs(), opts, resolver).Run(cmd.Context(), root)
	if err != nil {
		return err
	}

	if result.DryRun {
		return printPlan(cmd.OutOrStdout(), result.Plan)
	}
	return printResult(newPrinters(cmd), result)
}

// printPlan writes every planned document under a path header.
func printPlan(w io.Writer, plan *migrate.Plan) error {
	for i, doc := range plan.Documents {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "// ==> %s <==\n%s", doc.Path, doc.Content); err != nil {
			return err
		}
	}
	return nil
}

func printResult(p printers, result *migrate.Result) error {
	plan := result.Plan

	p.success.Printfln("Migrated plugin %q (%d documents)", plan.PluginID, len(result.Written))
	for _, path := range result.Written {
		rel, err := filepath.Rel(result.Root, path)
		if err != nil {
			rel = path
		}
		fmt.Fprintf(p.out, "  %s\n", filepath.ToSlash(rel))
	}

	for _, kind := range extract.Kinds {
		if dups := plan.Duplicates[kind]; len(dups) > 0 {
			p.warning.Printfln("Duplicate %s exports: %s", kind, strings.Join(dups, ", "))
		}
	}
	if n := len(plan.Skipped); n > 0 {
		p.warning.Printfln("%d candidate declarations did not match a known shape (run with -vv for details)", n)
	}

	if len(result.Manifest) > 0 {
		p.info.Println("package.json dependencies:")
		for _, c := range result.Manifest {
			switch {
			case c.Kept:
				fmt.Fprintf(p.out, "  %s %s (kept)\n", c.Package, c.To)
			case c.From == "":
				fmt.Fprintf(p.out, "  %s %s (added)\n", c.Package, c.To)
			default:
				fmt.Fprintf(p.out, "  %s %s -> %s\n", c.Package, c.From, c.To)
			}
		}
	}
	return nil
}
