package api

import "net/http"

// ListFriends returns accepted friendships
func ListFriends() ([]Friend, error) {
	var resp struct {
		Friends []Friend `json:"friends"`
	}
	if err := do(http.MethodGet, "/friends", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Friends, nil
}

// ListFriendRequests returns pending requests addressed to the caller
func ListFriendRequests() ([]FriendRequest, error) {
	var resp struct {
		Requests []FriendRequest `json:"requests"`
	}
	if err := do(http.MethodGet, "/friends/requests", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

// SendFriendRequest asks another user to be friends
func SendFriendRequest(receiverID string) (*Friendship, error) {
	var resp struct {
		Friendship Friendship `json:"friendship"`
	}
	body := map[string]string{"receiver_id": receiverID}
	if err := do(http.MethodPost, "/friends/requests", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Friendship, nil
}

// AcceptFriendRequest accepts a pending request addressed to the caller
func AcceptFriendRequest(requestID string) (*Friendship, error) {
	var resp struct {
		Friendship Friendship `json:"friendship"`
	}
	if err := do(http.MethodPost, "/friends/requests/"+escape(requestID)+"/accept", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Friendship, nil
}
