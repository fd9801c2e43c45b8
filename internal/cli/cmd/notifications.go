package cmd

import (
	"github.com/puffbuddy/backend/internal/cli/service"
	"github.com/spf13/cobra"
)

var (
	notifUnread bool
	notifLimit  int
	notifForce  bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notifs"},
	Short:   "Notification commands",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewNotificationService().List(notifUnread, notifLimit)
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark all notifications as read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewNotificationService().ReadAll(notifForce)
	},
}

func init() {
	notificationsListCmd.Flags().BoolVar(&notifUnread, "unread", false, "Only show unread notifications")
	notificationsListCmd.Flags().IntVar(&notifLimit, "limit", 20, "Maximum number of notifications to show (0 for all)")
	notificationsReadAllCmd.Flags().BoolVarP(&notifForce, "yes", "y", false, "Skip confirmation")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
}
