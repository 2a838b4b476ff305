package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/plugmig/cmd/plugmig/commands"
	"github.com/teranos/plugmig/errors"
	"github.com/teranos/plugmig/logger"
)

var rootCmd = &cobra.Command{
	Use:   "plugmig",
	Short: "plugmig - migrate Backstage frontend plugins to the new frontend system",
	Long: `plugmig - migrate legacy Backstage frontend plugins to the new frontend system.

plugmig reads a plugin's legacy createPlugin definition and generates the
blueprint-based registration documents of the new frontend system, then
wires them into package.json.

Available commands:
  migrate - Generate the new frontend system documents
  check   - Verify generated documents are up to date
  watch   - Regenerate on every change to the legacy definition
  am      - Manage plugmig configuration
  version - Show version information

Examples:
  plugmig migrate plugins/foo
  plugmig migrate --dry-run
  plugmig check plugins/foo
  plugmig am show --sources`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		logger.Debugw("Logger initialized", "verbosity", logger.LevelName(verbosity))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON to stderr")

	rootCmd.AddCommand(commands.MigrateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}
