package api

import "time"

// User is the authenticated account
type User struct {
	ID               string  `json:"id"`
	Email            *string `json:"email"`
	Name             string  `json:"name"`
	IsAnonymous      bool    `json:"is_anonymous"`
	TwoFactorEnabled bool    `json:"two_factor_enabled"`
}

// AuthResponse is returned by register, login and 2FA login
type AuthResponse struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResult is a token or a pending second factor
type LoginResult struct {
	AuthResponse
	Requires2FA bool   `json:"requires_2fa"`
	UserID      string `json:"user_id"`
}

// Profile is a user's public profile
type Profile struct {
	UserID       string   `json:"user_id"`
	DisplayName  string   `json:"display_name"`
	Bio          *string  `json:"bio"`
	Tags         []string `json:"tags"`
	IsSmokingNow bool     `json:"is_smoking_now"`
}

// Puff is one logged session
type Puff struct {
	ID         string    `json:"id"`
	Cigarettes int       `json:"cigarettes"`
	Location   *string   `json:"location"`
	Mood       *string   `json:"mood"`
	Notes      *string   `json:"notes"`
	Method     *string   `json:"method"`
	Strain     *string   `json:"strain"`
	ImageURL   *string   `json:"image_url"`
	Timestamp  time.Time `json:"timestamp"`
}

// LogPuffRequest is the body of a new puff
type LogPuffRequest struct {
	Cigarettes int     `json:"cigarettes"`
	Location   *string `json:"location,omitempty"`
	Mood       *string `json:"mood,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	Method     *string `json:"method,omitempty"`
	Strain     *string `json:"strain,omitempty"`
}

// Totals counts sessions and quantity in a period
type Totals struct {
	Puffs      int `json:"puffs"`
	Cigarettes int `json:"cigarettes"`
}

// Stats is the caller's consumption summary
type Stats struct {
	Today   Totals `json:"today"`
	Week    Totals `json:"week"`
	Month   Totals `json:"month"`
	Total   Totals `json:"total"`
	Streaks struct {
		Current int `json:"current"`
		Longest int `json:"longest"`
	} `json:"streaks"`
}

// LeaderboardEntry ranks a user by weekly sessions
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Puffs       int    `json:"puffs"`
	Cigarettes  int    `json:"cigarettes"`
}

// Post is a feed entry
type Post struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Content      string    `json:"content"`
	Type         string    `json:"type"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	RetweetCount int       `json:"retweet_count"`
	IsLiked      bool      `json:"is_liked"`
	Profile      *Profile  `json:"profile"`
	ImageURL     *string   `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// LikeResult is the state after toggling a like
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// Friendship is a friend request or friendship
type Friendship struct {
	ID          string `json:"id"`
	RequesterID string `json:"requester_id"`
	ReceiverID  string `json:"receiver_id"`
	Status      string `json:"status"`
}

// Friend is an accepted friendship seen from the caller
type Friend struct {
	Friendship
	FriendID      string   `json:"friend_id"`
	FriendProfile *Profile `json:"friend_profile"`
}

// FriendRequest is a pending request addressed to the caller
type FriendRequest struct {
	Friendship
	RequesterProfile *Profile  `json:"requester_profile"`
	CreatedAt        time.Time `json:"created_at"`
}

// Strain is a catalog entry
type Strain struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	THC         *float64 `json:"thc"`
	CBD         *float64 `json:"cbd"`
	Effects     []string `json:"effects"`
	Flavors     []string `json:"flavors"`
	AvgRating   *float64 `json:"avg_rating"`
	ReviewCount int      `json:"review_count"`
}

// AddStrainRequest is the body of a new strain
type AddStrainRequest struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description *string  `json:"description,omitempty"`
	THC         *float64 `json:"thc,omitempty"`
	CBD         *float64 `json:"cbd,omitempty"`
	Effects     []string `json:"effects,omitempty"`
	Flavors     []string `json:"flavors,omitempty"`
}

// Review is a strain rating
type Review struct {
	ID       string  `json:"id"`
	StrainID string  `json:"strain_id"`
	Rating   int     `json:"rating"`
	Review   *string `json:"review"`
}

// Notification tells the caller about an interaction
type Notification struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Message         string    `json:"message"`
	Read            bool      `json:"read"`
	FromUserID      string    `json:"from_user_id"`
	FromUserProfile *Profile  `json:"from_user_profile"`
	CreatedAt       time.Time `json:"created_at"`
}
