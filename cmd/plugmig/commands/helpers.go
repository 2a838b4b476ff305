package commands

import (
	"io"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/plugmig/am"
	"github.com/teranos/plugmig/errors"
	"github.com/teranos/plugmig/migrate"
	"github.com/teranos/plugmig/registry"
)

// rootArg resolves the optional [repo] argument to an absolute path.
func rootArg(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %s", root)
	}
	return abs, nil
}

// loadConfig loads and validates the configuration for a plugin root.
func loadConfig(root string) (*am.Loaded, error) {
	loaded, err := am.Load(root)
	if err != nil {
		return nil, err
	}
	if err := loaded.Config.Validate(); err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "invalid configuration"),
			"fix plugmig.toml or the PLUGMIG_* environment, then run 'plugmig am validate'",
		)
	}
	return loaded, nil
}

// resolverFor builds the registry resolver when the run updates the manifest.
func resolverFor(cfg *am.Config, opts migrate.Options) (registry.Resolver, error) {
	if !opts.UpdateManifest || opts.DryRun {
		return nil, nil
	}
	return registry.New(cfg.Registry)
}

// printers writes pterm output to the command's stdout so it can be captured.
type printers struct {
	out     io.Writer
	info    *pterm.PrefixPrinter
	success *pterm.PrefixPrinter
	warning *pterm.PrefixPrinter
}

func newPrinters(cmd *cobra.Command) printers {
	out := cmd.OutOrStdout()
	return printers{
		out:     out,
		info:    pterm.Info.WithWriter(out),
		success: pterm.Success.WithWriter(out),
		warning: pterm.Warning.WithWriter(out),
	}
}

func (p printers) table(rows [][]string) error {
	return pterm.DefaultTable.WithHasHeader().WithWriter(p.out).WithData(rows).Render()
}
