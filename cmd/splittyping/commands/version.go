package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/splittyping/cmd/splittyping/internal/build"
	"github.com/haivivi/splittyping/pkg/cli"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFormat != "" {
			format, err := cli.ParseOutputFormat(versionFormat)
			if err != nil {
				return err
			}
			return cli.Output(build.Get(), cli.OutputOptions{Format: format, Writer: cmd.OutOrStdout()})
		}
		fmt.Fprintln(cmd.OutOrStdout(), build.String())
		if IsVerbose() {
			fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s\n", build.Get().Go)
			fmt.Fprintf(cmd.OutOrStdout(), "  config: %s\n", GetConfig().Path())
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "", "output format: yaml or json")
	rootCmd.AddCommand(versionCmd)
}
