package api

import "net/http"

// LogPuff records a session for the caller
func LogPuff(req LogPuffRequest) (*Puff, error) {
	var resp struct {
		Puff Puff `json:"puff"`
	}
	if err := do(http.MethodPost, "/puffs", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Puff, nil
}

// ListPuffs returns the caller's sessions, newest first. The server caps
// limit; zero asks for its default.
func ListPuffs(limit int) ([]Puff, error) {
	var resp struct {
		Puffs []Puff `json:"puffs"`
	}
	if err := do(http.MethodGet, withLimit("/puffs", limit), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Puffs, nil
}

// GetStats returns the caller's totals and streaks
func GetStats() (*Stats, error) {
	var stats Stats
	if err := do(http.MethodGet, "/puffs/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetLeaderboard returns the top users by cigarettes over the last 7 days
func GetLeaderboard() ([]LeaderboardEntry, error) {
	var resp struct {
		Leaderboard []LeaderboardEntry `json:"leaderboard"`
	}
	if err := do(http.MethodGet, "/puffs/leaderboard", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Leaderboard, nil
}

// DeletePuff removes one of the caller's sessions
func DeletePuff(id string) error {
	return do(http.MethodDelete, "/puffs/"+escape(id), nil, nil)
}
