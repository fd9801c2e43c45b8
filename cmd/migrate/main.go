package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/puffbuddy/backend/internal/database"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/search"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	confirm bool
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PuffBuddy database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		level := os.Getenv("LOG_LEVEL")
		if verbose {
			level = "debug"
		}
		return logger.Initialize(level, "")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = database.Close()
		_ = logger.Close()
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update every table and index",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		if err := database.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		color.Green("All migrations completed successfully")
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Drop every table (destroys all data)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm {
			return fmt.Errorf("refusing to drop tables without --yes")
		}
		if err := connect(); err != nil {
			return err
		}
		if err := database.DropAll(database.DB); err != nil {
			return err
		}
		color.Yellow("All tables dropped")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which tables exist and their row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		statuses, err := database.Status(database.DB)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tSTATE\tROWS")
		pending := 0
		for _, st := range statuses {
			if !st.Exists {
				pending++
				fmt.Fprintf(w, "%s\t%s\t-\n", st.Table, color.RedString("missing"))
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\n", st.Table, color.GreenString("ok"), st.Rows)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if pending > 0 {
			color.Yellow("%d table(s) missing; run `migrate up`", pending)
		}
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the Elasticsearch profile and strain indices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}

		client, err := search.NewClient(os.Getenv("ELASTICSEARCH_URL"))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		if confirm {
			for _, index := range []string{search.IndexProfiles, search.IndexStrains} {
				if err := client.DeleteIndex(ctx, index); err != nil {
					return err
				}
			}
		}
		if err := client.InitializeIndices(ctx); err != nil {
			return err
		}

		stats, err := search.Backfill(ctx, database.DB, client)
		if err != nil {
			return fmt.Errorf("reindex failed: %w", err)
		}
		logger.Log.Info("Reindex complete",
			zap.Int("profiles", stats.Profiles),
			zap.Int("strains", stats.Strains))
		return nil
	},
}

func connect() error {
	opts := database.ResolveOptions(os.Getenv("DATABASE_DRIVER"), os.Getenv("DATABASE_URL"), os.Getenv)
	opts.Verbose = verbose
	if err := database.Initialize(opts); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log SQL statements")
	downCmd.Flags().BoolVar(&confirm, "yes", false, "Confirm dropping all tables")
	reindexCmd.Flags().BoolVar(&confirm, "recreate", false, "Delete the indices before rebuilding")

	rootCmd.AddCommand(upCmd, downCmd, statusCmd, reindexCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
