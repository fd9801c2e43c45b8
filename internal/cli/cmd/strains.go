package cmd

import (
	"github.com/puffbuddy/backend/internal/cli/api"
	"github.com/puffbuddy/backend/internal/cli/service"
	"github.com/spf13/cobra"
)

var (
	strainListType  string
	strainListLimit int

	strainType        string
	strainDescription string
	strainTHC         float64
	strainCBD         float64
	strainEffects     []string
	strainFlavors     []string

	reviewRating int
	reviewText   string
)

var strainsCmd = &cobra.Command{
	Use:     "strains",
	Aliases: []string{"strain"},
	Short:   "Strain catalog commands",
}

var strainsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List strains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewStrainService().List(strainListType, strainListLimit)
	},
}

var strainsAddCmd = &cobra.Command{
	Use:     "add <name>",
	Short:   "Add a strain to the catalog",
	Example: `  puffctl strains add "Blue Dream" --type hybrid --thc 21 --effects relaxed,happy`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.AddStrainRequest{
			Name:        args[0],
			Type:        strainType,
			Description: optional(strainDescription),
			Effects:     strainEffects,
			Flavors:     strainFlavors,
		}
		if cmd.Flags().Changed("thc") {
			req.THC = &strainTHC
		}
		if cmd.Flags().Changed("cbd") {
			req.CBD = &strainCBD
		}
		return service.NewStrainService().Add(req)
	},
}

var strainsReviewCmd = &cobra.Command{
	Use:   "review <strain-id>",
	Short: "Rate a strain from 1 to 5",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewStrainService().Review(args[0], reviewRating, reviewText)
	},
}

func init() {
	strainsListCmd.Flags().StringVar(&strainListType, "type", "", "Only show indica, sativa or hybrid")
	strainsListCmd.Flags().IntVar(&strainListLimit, "limit", 0, "Maximum number of strains to show (0 for all)")

	strainsAddCmd.Flags().StringVarP(&strainType, "type", "t", "hybrid", "Strain type: indica, sativa, hybrid")
	strainsAddCmd.Flags().StringVar(&strainDescription, "description", "", "Description")
	strainsAddCmd.Flags().Float64Var(&strainTHC, "thc", 0, "THC percentage")
	strainsAddCmd.Flags().Float64Var(&strainCBD, "cbd", 0, "CBD percentage")
	strainsAddCmd.Flags().StringSliceVar(&strainEffects, "effects", nil, "Comma-separated effects")
	strainsAddCmd.Flags().StringSliceVar(&strainFlavors, "flavors", nil, "Comma-separated flavors")

	strainsReviewCmd.Flags().IntVarP(&reviewRating, "rating", "r", 0, "Rating from 1 to 5")
	strainsReviewCmd.Flags().StringVarP(&reviewText, "text", "m", "", "Review text")
	_ = strainsReviewCmd.MarkFlagRequired("rating")

	strainsCmd.AddCommand(strainsListCmd)
	strainsCmd.AddCommand(strainsAddCmd)
	strainsCmd.AddCommand(strainsReviewCmd)
}
