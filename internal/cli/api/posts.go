package api

import "net/http"

// GetFeed returns posts from the caller and the people they follow
func GetFeed() ([]Post, error) {
	var resp struct {
		Posts []Post `json:"posts"`
	}
	if err := do(http.MethodGet, "/feed", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// CreatePost publishes a text post
func CreatePost(content string) (*Post, error) {
	var resp struct {
		Post Post `json:"post"`
	}
	body := map[string]string{"content": content, "type": "text"}
	if err := do(http.MethodPost, "/posts", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Post, nil
}

// ToggleLike likes or unlikes a post
func ToggleLike(postID string) (*LikeResult, error) {
	var result LikeResult
	if err := do(http.MethodPost, "/posts/"+escape(postID)+"/like", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
