package service

import (
	"fmt"
	"strings"

	"github.com/puffbuddy/backend/internal/cli/api"
	"github.com/puffbuddy/backend/internal/cli/output"
)

// SocialService covers the feed, posts and friends
type SocialService struct{}

// NewSocialService creates a new social service
func NewSocialService() *SocialService {
	return &SocialService{}
}

// Feed prints posts from the caller and the people they follow
func (s *SocialService) Feed(limit int) error {
	if _, err := authenticate(); err != nil {
		return err
	}

	posts, err := api.GetFeed()
	if err != nil {
		return wrap("failed to load feed", err)
	}
	posts = limitSlice(posts, limit)

	if len(posts) == 0 && output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("Your feed is empty. Follow someone or post something!")
		return nil
	}

	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		liked := ""
		if p.IsLiked {
			liked = "♥"
		}
		rows = append(rows, []string{
			p.ID,
			displayName(p.Profile, p.UserID),
			output.Truncate(strings.ReplaceAll(p.Content, "\n", " "), 60),
			fmt.Sprintf("%d%s", p.LikeCount, liked),
			itoa(p.CommentCount),
			formatTime(p.CreatedAt),
		})
	}
	return output.PrintList(posts, []string{"ID", "Author", "Content", "Likes", "Comments", "Posted"}, rows)
}

// CreatePost publishes a text post
func (s *SocialService) CreatePost(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("post content cannot be empty")
	}
	if _, err := authenticate(); err != nil {
		return err
	}

	post, err := api.CreatePost(content)
	if err != nil {
		return wrap("failed to create post", err)
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.PrintJSON(post)
	}
	output.PrintSuccess("Posted (%s)", post.ID)
	return nil
}

// LikePost toggles the caller's like on a post
func (s *SocialService) LikePost(postID string) error {
	if _, err := authenticate(); err != nil {
		return err
	}

	result, err := api.ToggleLike(postID)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("post %s not found", postID)
		}
		return wrap("failed to like post", err)
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.PrintJSON(result)
	}
	if result.Liked {
		output.PrintSuccess("Liked (%d like%s)", result.Likes, pluralize(result.Likes))
	} else {
		output.PrintSuccess("Unliked (%d like%s)", result.Likes, pluralize(result.Likes))
	}
	return nil
}

// ListFriends prints accepted friends
func (s *SocialService) ListFriends() error {
	if _, err := authenticate(); err != nil {
		return err
	}

	friends, err := api.ListFriends()
	if err != nil {
		return wrap("failed to list friends", err)
	}
	if len(friends) == 0 && output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("No friends yet. Send a request with 'puffctl friends add <user-id>'.")
		return nil
	}

	rows := make([][]string, 0, len(friends))
	for _, f := range friends {
		smoking := ""
		if f.FriendProfile != nil && f.FriendProfile.IsSmokingNow {
			smoking = "smoking now"
		}
		rows = append(rows, []string{f.FriendID, displayName(f.FriendProfile, f.FriendID), smoking})
	}
	return output.PrintList(friends, []string{"User ID", "Name", "Status"}, rows)
}

// ListRequests prints pending requests addressed to the caller
func (s *SocialService) ListRequests() error {
	if _, err := authenticate(); err != nil {
		return err
	}

	requests, err := api.ListFriendRequests()
	if err != nil {
		return wrap("failed to list friend requests", err)
	}
	if len(requests) == 0 && output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("No pending friend requests.")
		return nil
	}

	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, []string{r.ID, displayName(r.RequesterProfile, r.RequesterID), formatTime(r.CreatedAt)})
	}
	return output.PrintList(requests, []string{"Request ID", "From", "Sent"}, rows)
}

// AddFriend sends a friend request
func (s *SocialService) AddFriend(userID string) error {
	creds, err := authenticate()
	if err != nil {
		return err
	}
	if userID == creds.UserID {
		return fmt.Errorf("you cannot send a friend request to yourself")
	}

	friendship, err := api.SendFriendRequest(userID)
	if err != nil {
		return wrap("failed to send friend request", err)
	}
	output.PrintSuccess("Friend request sent (%s)", friendship.ID)
	return nil
}

// AcceptRequest accepts a pending friend request
func (s *SocialService) AcceptRequest(requestID string) error {
	if _, err := authenticate(); err != nil {
		return err
	}

	if _, err := api.AcceptFriendRequest(requestID); err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("friend request %s not found", requestID)
		}
		return wrap("failed to accept friend request", err)
	}
	output.PrintSuccess("Friend request accepted.")
	return nil
}
