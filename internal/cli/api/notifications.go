package api

import "net/http"

// ListNotifications returns the caller's notifications, newest first
func ListNotifications(limit int) ([]Notification, error) {
	var resp struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := do(http.MethodGet, withLimit("/notifications", limit), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

// MarkAllNotificationsRead marks every notification read and returns how
// many changed
func MarkAllNotificationsRead() (int, error) {
	var resp struct {
		Marked int `json:"marked"`
	}
	if err := do(http.MethodPost, "/notifications/read-all", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Marked, nil
}
