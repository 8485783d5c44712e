package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/khanglvm/strapd/internal/config"
)

// NewConfigCmd creates the 'config' command group.
func NewConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		Long: `strapd reads ~/.strapd.json (or the file given with --config; .yaml and
.yml files are read as YAML). Missing files mean defaults.

Environment overrides:
  ` + config.EnvUsage + `=false      disable usage tracking
  ` + config.EnvLogLevel + `=debug   set the log level`,
	}

	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigInitCmd(app))
	cmd.AddCommand(newConfigPathCmd(app))

	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	var yamlOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if yamlOutput {
				data, err := yaml.Marshal(app.cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(app.cfg)
		},
	}

	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output as YAML")

	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Example: `  strapd config init
  strapd --config ~/.strapd.yaml config init`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.ConfigPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.Save(config.NewConfig(), path, app.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config and usage storage paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			storagePath, err := app.cfg.StoragePath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config:  %s\n", app.ConfigPath)
			fmt.Fprintf(cmd.OutOrStdout(), "storage: %s (%s)\n", storagePath, app.cfg.Storage.Backend)
			return nil
		},
	}
}
