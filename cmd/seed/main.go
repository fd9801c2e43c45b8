package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/puffbuddy/backend/internal/database"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/search"
	"github.com/puffbuddy/backend/internal/seed"
	"github.com/spf13/cobra"
)

var (
	counts  = seed.DefaultDevCounts
	confirm bool
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Fill the PuffBuddy database with development data",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		if err := logger.Initialize(os.Getenv("LOG_LEVEL"), ""); err != nil {
			return err
		}
		opts := database.ResolveOptions(os.Getenv("DATABASE_DRIVER"), os.Getenv("DATABASE_URL"), os.Getenv)
		if err := database.Initialize(opts); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return database.Migrate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = database.Close()
		_ = logger.Close()
	},
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Seed users, profiles, social graph, posts, puffs and strains",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := seed.NewSeeder(database.DB).SeedDevWith(counts); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		color.Green("Development database seeded successfully")
		fmt.Printf("Log in as any %s account with password %q\n", "@"+seed.SeedEmailDomain, seed.SeedPassword)
		return nil
	},
}

var strainsCmd = &cobra.Command{
	Use:   "strains",
	Short: "Seed the built-in strain catalog only",
	RunE: func(cmd *cobra.Command, args []string) error {
		strains, err := seed.NewSeeder(database.DB).SeedStrains()
		if err != nil {
			return fmt.Errorf("seeding strains failed: %w", err)
		}
		color.Green("Strain catalog ready (%d strains)", len(strains))
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete all rows from every table (use with caution)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm {
			return fmt.Errorf("refusing to delete data without --yes")
		}
		seeder := seed.NewSeeder(database.DB)
		if url := os.Getenv("ELASTICSEARCH_URL"); url != "" {
			client, err := search.NewClient(url)
			if err != nil {
				return err
			}
			seeder.SetSearchIndex(client)
		}
		if err := seeder.Clean(); err != nil {
			return fmt.Errorf("clean failed: %w", err)
		}
		color.Yellow("All data removed")
		return nil
	},
}

func init() {
	devCmd.Flags().IntVar(&counts.Users, "users", counts.Users, "Number of users")
	devCmd.Flags().IntVar(&counts.Posts, "posts", counts.Posts, "Number of posts")
	devCmd.Flags().IntVar(&counts.Comments, "comments", counts.Comments, "Number of comments")
	devCmd.Flags().IntVar(&counts.MaxPuffsEach, "max-puffs", counts.MaxPuffsEach, "Maximum puffs per user")
	devCmd.Flags().IntVar(&counts.Days, "days", counts.Days, "Spread activity over this many past days")
	cleanCmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deleting all data")

	rootCmd.AddCommand(devCmd, strainsCmd, cleanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
