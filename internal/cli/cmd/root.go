// Package cmd defines the puffctl command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/puffbuddy/backend/internal/cli/config"
	"github.com/puffbuddy/backend/internal/cli/logger"
	"github.com/puffbuddy/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	apiURL     string
)

var rootCmd = &cobra.Command{
	Use:   "puffctl",
	Short: "PuffBuddy CLI",
	Long: `puffctl is a command-line client for PuffBuddy. Log sessions, check
your stats and streaks, and keep up with friends from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}

		logger.Init(verbose)

		if !output.ValidateOutputFormat(outputFmt) {
			return fmt.Errorf("invalid output format %q: use text, json or table", outputFmt)
		}
		config.Set("output.format", outputFmt)
		if apiURL != "" {
			config.Set("api.base_url", apiURL)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/puffbuddy/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides config)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(puffCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(friendsCmd)
	rootCmd.AddCommand(strainsCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(versionCmd)
}
