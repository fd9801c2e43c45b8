package service

import (
	"fmt"

	"github.com/puffbuddy/backend/internal/cli/api"
	"github.com/puffbuddy/backend/internal/cli/logger"
	"github.com/puffbuddy/backend/internal/cli/output"
	"github.com/puffbuddy/backend/internal/cli/prompter"
)

// PuffService logs and reports smoking sessions
type PuffService struct{}

// NewPuffService creates a new puff service
func NewPuffService() *PuffService {
	return &PuffService{}
}

// Log records a session
func (s *PuffService) Log(req api.LogPuffRequest) error {
	if req.Cigarettes < 1 || req.Cigarettes > 1000 {
		return fmt.Errorf("cigarettes must be between 1 and 1000")
	}
	if _, err := authenticate(); err != nil {
		return err
	}

	logger.Debug("Logging puff", "cigarettes", req.Cigarettes)
	puff, err := api.LogPuff(req)
	if err != nil {
		return wrap("failed to log puff", err)
	}

	if output.GetOutputFormat() == output.FormatJSON {
		return output.PrintJSON(puff)
	}
	output.PrintSuccess("Logged %d cigarette%s (%s)", puff.Cigarettes, pluralize(puff.Cigarettes), puff.ID)
	return nil
}

// List prints the caller's sessions, newest first
func (s *PuffService) List(limit int) error {
	if _, err := authenticate(); err != nil {
		return err
	}

	puffs, err := api.ListPuffs(limit)
	if err != nil {
		return wrap("failed to list puffs", err)
	}

	if len(puffs) == 0 && output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("No puffs logged yet.")
		return nil
	}

	rows := make([][]string, 0, len(puffs))
	for _, p := range puffs {
		rows = append(rows, []string{
			p.ID,
			formatTime(p.Timestamp),
			itoa(p.Cigarettes),
			deref(p.Strain),
			deref(p.Method),
			deref(p.Mood),
		})
	}
	return output.PrintList(puffs, []string{"ID", "When", "Cigarettes", "Strain", "Method", "Mood"}, rows)
}

// Stats prints totals and streaks
func (s *PuffService) Stats() error {
	if _, err := authenticate(); err != nil {
		return err
	}

	stats, err := api.GetStats()
	if err != nil {
		return wrap("failed to get stats", err)
	}

	period := func(t api.Totals) string {
		return fmt.Sprintf("%d puff%s, %d cigarette%s", t.Puffs, pluralize(t.Puffs), t.Cigarettes, pluralize(t.Cigarettes))
	}
	return output.PrintRecord(stats, []output.Field{
		{Label: "Today", Value: period(stats.Today)},
		{Label: "This week", Value: period(stats.Week)},
		{Label: "This month", Value: period(stats.Month)},
		{Label: "All time", Value: period(stats.Total)},
		{Label: "Current streak", Value: fmt.Sprintf("%d day%s", stats.Streaks.Current, pluralize(stats.Streaks.Current))},
		{Label: "Longest streak", Value: fmt.Sprintf("%d day%s", stats.Streaks.Longest, pluralize(stats.Streaks.Longest))},
	})
}

// Delete removes a session after confirmation unless force is set
func (s *PuffService) Delete(id string, force bool) error {
	if _, err := authenticate(); err != nil {
		return err
	}

	if !force {
		confirm, err := prompter.PromptConfirm(fmt.Sprintf("Delete puff %s?", id))
		if err != nil {
			return err
		}
		if !confirm {
			output.PrintInfo("Cancelled.")
			return nil
		}
	}

	if err := api.DeletePuff(id); err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("puff %s not found", id)
		}
		return wrap("failed to delete puff", err)
	}
	output.PrintSuccess("Puff deleted.")
	return nil
}

// Leaderboard prints the 7-day ranking
func (s *PuffService) Leaderboard() error {
	creds, err := authenticate()
	if err != nil {
		return err
	}

	entries, err := api.GetLeaderboard()
	if err != nil {
		return wrap("failed to get leaderboard", err)
	}

	if len(entries) == 0 && output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("Nobody has logged a puff this week.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		name := e.DisplayName
		if e.UserID == creds.UserID {
			name += " (you)"
		}
		rows = append(rows, []string{itoa(i + 1), name, itoa(e.Puffs), itoa(e.Cigarettes)})
	}
	return output.PrintList(entries, []string{"Rank", "Name", "Puffs", "Cigarettes"}, rows)
}
