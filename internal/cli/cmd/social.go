package cmd

import (
	"strings"

	"github.com/puffbuddy/backend/internal/cli/service"
	"github.com/spf13/cobra"
)

var feedLimit int

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "View your feed",
	Long:  "Show posts from you and the people you follow, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSocialService().Feed(feedLimit)
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post commands",
}

var postCreateCmd = &cobra.Command{
	Use:   "create <content...>",
	Short: "Publish a text post",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSocialService().CreatePost(strings.Join(args, " "))
	},
}

var postLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like or unlike a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSocialService().LikePost(args[0])
	},
}

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "Friend commands",
}

var friendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your friends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSocialService().ListFriends()
	},
}

var friendsRequestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List pending friend requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSocialService().ListRequests()
	},
}

var friendsAddCmd = &cobra.Command{
	Use:   "add <user-id>",
	Short: "Send a friend request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSocialService().AddFriend(args[0])
	},
}

var friendsAcceptCmd = &cobra.Command{
	Use:   "accept <request-id>",
	Short: "Accept a friend request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSocialService().AcceptRequest(args[0])
	},
}

func init() {
	feedCmd.Flags().IntVar(&feedLimit, "limit", 20, "Maximum number of posts to show (0 for all)")

	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postLikeCmd)

	friendsCmd.AddCommand(friendsListCmd)
	friendsCmd.AddCommand(friendsRequestsCmd)
	friendsCmd.AddCommand(friendsAddCmd)
	friendsCmd.AddCommand(friendsAcceptCmd)
}
