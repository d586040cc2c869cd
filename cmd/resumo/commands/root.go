package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roasbeef/resumo/internal/config"
)

var (
	// configPath is an explicit config file.
	configPath string

	// logLevel overrides log.level.
	logLevel string

	// outputFormat controls output format (text, json).
	outputFormat string
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "resumo",
	Short: "Text summarization service",
	Long: `resumo condenses text by selecting its most salient sentences, by
generating a new summary with a language model, or by picking the better of
the two automatically.

Run "resumo serve" for the HTTP API, "resumo mcp" for the MCP tool server,
or "resumo summarize" to summarize a file once.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "",
		"Path to config file (default: ./resumo.yaml or ~/.resumo/resumo.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "",
		"Log level: debug, info, warn, error",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "format", "text",
		"Output format: text, json",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration, letting extra bind flags override
// file and environment values.
func loadConfig(extra func(v *viper.Viper)) (config.Config, error) {
	return config.Load(configPath, func(v *viper.Viper) error {
		if logLevel != "" {
			v.Set("log.level", logLevel)
		}
		if extra != nil {
			extra(v)
		}

		return nil
	})
}
