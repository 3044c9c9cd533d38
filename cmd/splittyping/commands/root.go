package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/splittyping/pkg/cli"
	"github.com/haivivi/splittyping/pkg/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded before any subcommand runs.
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "splittyping",
	Short: "Split chat replies into paced, human-like messages",
	Long: `splittyping - break a generated chat reply into short fragments and
deliver them one at a time with typing delays.

Two segmentation modes are available:
  default  punctuation and bracket aware rules
  simple   split on literal separators (newline by default)

Settings are read from ~/.splittyping/config.yaml unless --config is given.
Use 'splittyping config init' to write a file with the defaults.

Examples:
  # Split a reply and print the fragments
  splittyping split "你好！（兴奋地说）我今天很高兴……"

  # Split every reply in a batch file as JSON
  splittyping split -f replies.yaml -o json

  # Watch a reply being typed out
  echo "真的吗？太好了！" | splittyping preview

  # Run the WebSocket server
  splittyping serve --addr :8080`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "settings file (default ~/.splittyping/config.yaml)")
}

// setup configures logging and loads the settings file.
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	globalConfig = cfg
	slog.Debug("commands: settings loaded", "path", path)
	return nil
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	if p := os.Getenv("SPLITTYPING_CONFIG"); p != "" {
		return p, nil
	}
	paths, err := cli.NewPaths()
	if err != nil {
		return "", fmt.Errorf("resolve settings path: %w", err)
	}
	return paths.ConfigFile(), nil
}

// GetConfig returns the settings loaded for the current command.
func GetConfig() *config.Config {
	if globalConfig == nil {
		return config.Default()
	}
	return globalConfig
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
