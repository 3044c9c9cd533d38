package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/splittyping/pkg/cli"
	"github.com/haivivi/splittyping/pkg/config"
)

var (
	configOutput string
	configForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the settings file",
	Long: `Show the effective settings or write a settings file with the defaults.

Examples:
  splittyping config show
  splittyping config show -o json
  splittyping config init
  splittyping -c ./splittyping.yaml config init --force`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(configOutput)
		if err != nil {
			return err
		}
		return cli.Output(GetConfig(), cli.OutputOptions{Format: format, Writer: cmd.OutOrStdout()})
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		return nil
	},
}

func init() {
	configShowCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml or json")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
