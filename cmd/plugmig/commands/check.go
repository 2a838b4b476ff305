package commands

import (
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/teranos/plugmig/errors"
	"github.com/teranos/plugmig/migrate"
)

// CheckCmd reports whether the generated documents match the legacy source
var CheckCmd = &cobra.Command{
	Use:   "check [repo]",
	Short: "Check that generated documents are up to date",
	Long: `Plan the migration without writing anything and compare every planned
document with the file on disk. Exits non-zero when a document is missing,
differs, or is stale, or when an existing document exports other names than
the legacy source declares.

Useful in CI after a plugin has been migrated and the legacy definition is
still being edited.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, err := rootArg(args)
	if err != nil {
		return err
	}
	loaded, err := loadConfig(root)
	if err != nil {
		return err
	}

	opts := migrate.OptionsFromConfig(loaded.Config)
	opts.UpdateManifest = false
	opts.RequireClean = false

	report, err := migrate.New(afero.NewOsFs(), opts, nil).Check(cmd.Context(), root)
	if err != nil {
		return err
	}

	p := newPrinters(cmd)
	rows := [][]string{{"Document", "Status"}}
	for _, f := range report.Files {
		rows = append(rows, []string{f.Path, string(f.Status)})
	}
	if err := p.table(rows); err != nil {
		return err
	}

	for _, k := range report.Kinds {
		if len(k.Missing) > 0 {
			p.warning.Printfln("%s exports missing on disk: %s", k.Kind, strings.Join(k.Missing, ", "))
		}
		if len(k.Extra) > 0 {
			p.warning.Printfln("%s exports not in the legacy source: %s", k.Kind, strings.Join(k.Extra, ", "))
		}
	}

	if !report.UpToDate() {
		return errors.WithHint(
			errors.New("generated documents are out of date"),
			"run 'plugmig migrate' to regenerate them",
		)
	}

	p.success.Println("Generated documents are up to date")
	return nil
}
