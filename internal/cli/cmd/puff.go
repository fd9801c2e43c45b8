package cmd

import (
	"github.com/puffbuddy/backend/internal/cli/api"
	"github.com/puffbuddy/backend/internal/cli/service"
	"github.com/spf13/cobra"
)

var (
	puffCigarettes int
	puffLocation   string
	puffMood       string
	puffNotes      string
	puffMethod     string
	puffStrain     string
	puffListLimit  int
	puffForce      bool
)

var puffCmd = &cobra.Command{
	Use:     "puff",
	Aliases: []string{"puffs"},
	Short:   "Smoking log commands",
	Long:    "Log sessions and view your history and stats",
}

var puffLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a session",
	Example: `  puffctl puff log
  puffctl puff log -n 2 --strain "Blue Dream" --method joint --mood relaxed`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPuffService().Log(api.LogPuffRequest{
			Cigarettes: puffCigarettes,
			Location:   optional(puffLocation),
			Mood:       optional(puffMood),
			Notes:      optional(puffNotes),
			Method:     optional(puffMethod),
			Strain:     optional(puffStrain),
		})
	},
}

var puffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPuffService().List(puffListLimit)
	},
}

var puffStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals and streaks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPuffService().Stats()
	},
}

var puffDeleteCmd = &cobra.Command{
	Use:   "delete <puff-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPuffService().Delete(args[0], puffForce)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top smokers of the last 7 days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPuffService().Leaderboard()
	},
}

func init() {
	puffLogCmd.Flags().IntVarP(&puffCigarettes, "cigarettes", "n", 1, "Number of cigarettes (1-1000)")
	puffLogCmd.Flags().StringVar(&puffLocation, "location", "", "Where you smoked")
	puffLogCmd.Flags().StringVar(&puffMood, "mood", "", "How you feel")
	puffLogCmd.Flags().StringVar(&puffNotes, "notes", "", "Free-form notes")
	puffLogCmd.Flags().StringVar(&puffMethod, "method", "", "Consumption method (joint, bong, vape, ...)")
	puffLogCmd.Flags().StringVar(&puffStrain, "strain", "", "Strain name")

	puffListCmd.Flags().IntVar(&puffListLimit, "limit", 20, "Maximum number of sessions to show (0 for all)")
	puffDeleteCmd.Flags().BoolVarP(&puffForce, "yes", "y", false, "Skip confirmation")

	puffCmd.AddCommand(puffLogCmd)
	puffCmd.AddCommand(puffListCmd)
	puffCmd.AddCommand(puffStatsCmd)
	puffCmd.AddCommand(puffDeleteCmd)
}

// optional maps an unset flag to an omitted field
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
