package commands

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/teranos/plugmig/logger"
	"github.com/teranos/plugmig/migrate"
	"github.com/teranos/plugmig/watch"
)

// WatchCmd regenerates the documents whenever the legacy source changes
var WatchCmd = &cobra.Command{
	Use:   "watch [repo]",
	Short: "Regenerate documents when the legacy plugin source changes",
	Long: `Migrate once, then watch the legacy plugin source and regenerate the
documents after every change (debounced by watch.debounce_ms).

package.json is not touched and the git working tree is not checked, since
every run leaves regenerated files behind. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := rootArg(args)
	if err != nil {
		return err
	}
	loaded, err := loadConfig(root)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	opts := migrate.OptionsFromConfig(cfg)
	opts.UpdateManifest = false
	opts.RequireClean = false
	m := migrate.New(afero.NewOsFs(), opts, nil)
	p := newPrinters(cmd)

	regenerate := func(ctx context.Context) error {
		result, err := m.Run(ctx, root)
		if err != nil {
			return err
		}
		p.success.Printfln("Regenerated %d documents for %q", len(result.Written), result.Plan.PluginID)
		return nil
	}

	if err := regenerate(cmd.Context()); err != nil {
		return err
	}

	source := filepath.Join(root, filepath.FromSlash(cfg.Source.File))
	w, err := watch.New(source, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond)
	if err != nil {
		return err
	}

	p.info.Printfln("Watching %s", source)
	logger.Debugw("Watching legacy plugin source",
		logger.FieldFile, w.File(),
		"debounce_ms", cfg.Watch.DebounceMS)

	return w.Run(cmd.Context(), regenerate)
}
