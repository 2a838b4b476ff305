package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/plugmig/am"
	"github.com/teranos/plugmig/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage plugmig configuration",
	Long: `Display and manage plugmig configuration.

Configuration sources (later overrides earlier):
1. Built-in defaults
2. User config (~/.plugmig/config.toml)
3. Project config (<root>/plugmig.toml)
4. Environment variables (PLUGMIG_* prefix, e.g. PLUGMIG_REGISTRY_MODE=npm)

Examples:
  plugmig am show                      # Effective configuration as TOML
  plugmig am show --format json
  plugmig am show --sources            # Where every setting comes from
  plugmig am validate --root plugins/foo
  plugmig am init                      # Write plugmig.toml with the defaults`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runAmShow,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	Long:  "Validate the effective configuration and report keys in plugmig.toml that plugmig does not recognize.",
	RunE:  runAmValidate,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write plugmig.toml with the effective configuration",
	Long: `Write the effective configuration to <root>/plugmig.toml.
An existing file is rotated into plugmig.toml.back1 (up to .back3).`,
	RunE: runAmInit,
}

var (
	amRoot      string
	amFormat    string
	amSources   bool
	amInitForce bool
)

func init() {
	AmCmd.PersistentFlags().StringVar(&amRoot, "root", ".", "Plugin package root")

	amShowCmd.Flags().StringVar(&amFormat, "format", am.FormatTOML, "Output format: toml, json, yaml")
	amShowCmd.Flags().BoolVar(&amSources, "sources", false, "Show where each setting comes from")
	amInitCmd.Flags().BoolVar(&amInitForce, "force", false, "Overwrite an existing plugmig.toml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	root, err := rootArg([]string{amRoot})
	if err != nil {
		return err
	}
	loaded, err := am.Load(root)
	if err != nil {
		return err
	}

	if !amSources {
		return am.Encode(cmd.OutOrStdout(), loaded.Config, amFormat)
	}

	rows := [][]string{{"Key", "Value", "Source", "From"}}
	for _, s := range loaded.Settings() {
		rows = append(rows, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
	}
	return newPrinters(cmd).table(rows)
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	root, err := rootArg([]string{amRoot})
	if err != nil {
		return err
	}
	loaded, err := am.Load(root)
	if err != nil {
		return err
	}

	if err := loaded.Config.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	p := newPrinters(cmd)
	project := am.ProjectConfigPath(root)
	if _, err := os.Stat(project); err == nil {
		unknown, err := am.UnknownKeys(project)
		if err != nil {
			return err
		}
		if len(unknown) > 0 {
			p.warning.Printfln("Unknown keys in %s: %s", project, strings.Join(unknown, ", "))
		}
	}

	p.success.Println("Configuration is valid")
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	root, err := rootArg([]string{amRoot})
	if err != nil {
		return err
	}

	project := am.ProjectConfigPath(root)
	if _, err := os.Stat(project); err == nil && !amInitForce {
		return errors.WithHint(
			errors.Newf("%s already exists", project),
			"pass --force to overwrite it; the current file is kept as a backup",
		)
	}

	loaded, err := am.Load(root)
	if err != nil {
		return err
	}
	if err := loaded.Config.Validate(); err != nil {
		return errors.Wrap(err, "refusing to write an invalid configuration")
	}

	path, err := am.WriteProjectConfig(root, loaded.Config)
	if err != nil {
		return err
	}
	newPrinters(cmd).success.Printfln("Wrote %s", path)
	return nil
}
