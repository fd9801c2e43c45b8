package service

import (
	"github.com/puffbuddy/backend/internal/cli/api"
	"github.com/puffbuddy/backend/internal/cli/output"
	"github.com/puffbuddy/backend/internal/cli/prompter"
)

// NotificationService lists and clears notifications
type NotificationService struct{}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// List prints notifications, newest first
func (s *NotificationService) List(unreadOnly bool, limit int) error {
	if _, err := authenticate(); err != nil {
		return err
	}

	notifications, err := api.ListNotifications(0)
	if err != nil {
		return wrap("failed to list notifications", err)
	}
	if unreadOnly {
		unread := notifications[:0]
		for _, n := range notifications {
			if !n.Read {
				unread = append(unread, n)
			}
		}
		notifications = unread
	}
	notifications = limitSlice(notifications, limit)

	if len(notifications) == 0 && output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("No notifications.")
		return nil
	}

	rows := make([][]string, 0, len(notifications))
	for _, n := range notifications {
		marker := ""
		if !n.Read {
			marker = "•"
		}
		rows = append(rows, []string{
			marker,
			n.Type,
			displayName(n.FromUserProfile, n.FromUserID),
			n.Message,
			formatTime(n.CreatedAt),
		})
	}
	return output.PrintList(notifications, []string{"", "Type", "From", "Message", "When"}, rows)
}

// ReadAll marks every notification read after confirmation unless force is set
func (s *NotificationService) ReadAll(force bool) error {
	if _, err := authenticate(); err != nil {
		return err
	}

	if !force {
		confirm, err := prompter.PromptConfirm("Mark all notifications as read?")
		if err != nil {
			return err
		}
		if !confirm {
			output.PrintInfo("Cancelled.")
			return nil
		}
	}

	marked, err := api.MarkAllNotificationsRead()
	if err != nil {
		return wrap("failed to mark notifications read", err)
	}
	output.PrintSuccess("Marked %d notification%s as read.", marked, pluralize(marked))
	return nil
}
