package cmd

import (
	"github.com/puffbuddy/backend/internal/cli/service"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Manage your PuffBuddy session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to PuffBuddy",
	Long:  "Authenticate with email and password, plus a two-factor code when enabled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Login()
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from PuffBuddy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Logout()
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Display the current user",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().WhoAmI()
	},
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
}
