// Package stats computes consumption windows, streaks and the weekly
// leaderboard from logged sessions. It has no database access.
package stats

import (
	"sort"
	"time"
)

// Window lengths
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
)

// LeaderboardSize is the number of entries GetLeaderboard returns
const LeaderboardSize = 10

// Session is the part of a logged puff the calculations need
type Session struct {
	Cigarettes int
	Timestamp  time.Time
}

// Totals counts sessions and the quantity consumed in them
type Totals struct {
	Puffs      int `json:"puffs"`
	Cigarettes int `json:"cigarettes"`
}

func (t *Totals) add(s Session) {
	t.Puffs++
	t.Cigarettes += s.Cigarettes
}

// Streaks are runs of consecutive calendar days with at least one session
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Summary is the result of GetStats
type Summary struct {
	Today   Totals  `json:"today"`
	Week    Totals  `json:"week"`
	Month   Totals  `json:"month"`
	Total   Totals  `json:"total"`
	Streaks Streaks `json:"streaks"`
}

// Summarize buckets sessions into rolling windows ending at now and computes
// streaks over calendar days in loc
func Summarize(sessions []Session, now time.Time, loc *time.Location) Summary {
	var s Summary
	for _, session := range sessions {
		age := now.Sub(session.Timestamp)
		s.Total.add(session)
		if age <= Month {
			s.Month.add(session)
		}
		if age <= Week {
			s.Week.add(session)
		}
		if age <= Day {
			s.Today.add(session)
		}
	}
	s.Streaks = ComputeStreaks(sessions, now, loc)
	return s
}

// ComputeStreaks returns the current and longest streaks. The current streak
// counts back from today and is 0 when today has no session.
func ComputeStreaks(sessions []Session, now time.Time, loc *time.Location) Streaks {
	if loc == nil {
		loc = time.UTC
	}
	days := make(map[int64]struct{}, len(sessions))
	for _, s := range sessions {
		days[dayNumber(s.Timestamp, loc)] = struct{}{}
	}
	if len(days) == 0 {
		return Streaks{}
	}

	sorted := make([]int64, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	for d := dayNumber(now, loc); ; d-- {
		if _, ok := days[d]; !ok {
			break
		}
		current++
	}

	return Streaks{Current: current, Longest: longest}
}

// dayNumber maps t to a sequential calendar-day index in loc
func dayNumber(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	// Noon UTC of the same calendar date avoids DST edges
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Unix() / int64(Day/time.Second)
}

// LeaderboardEntry is one ranked user
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Puffs       int    `json:"puffs"`
	Cigarettes  int    `json:"cigarettes"`
}

// UserSession is a session attributed to a user
type UserSession struct {
	UserID     string
	Cigarettes int
}

// Leaderboard aggregates sessions per user and ranks them by cigarettes
// descending, then puffs descending, then display name. Users missing from
// names (no profile) are skipped.
func Leaderboard(sessions []UserSession, names map[string]string, size int) []LeaderboardEntry {
	byUser := make(map[string]*LeaderboardEntry)
	for _, s := range sessions {
		name, ok := names[s.UserID]
		if !ok {
			continue
		}
		entry, ok := byUser[s.UserID]
		if !ok {
			entry = &LeaderboardEntry{UserID: s.UserID, DisplayName: name}
			byUser[s.UserID] = entry
		}
		entry.Puffs++
		entry.Cigarettes += s.Cigarettes
	}

	entries := make([]LeaderboardEntry, 0, len(byUser))
	for _, e := range byUser {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Cigarettes != b.Cigarettes {
			return a.Cigarettes > b.Cigarettes
		}
		if a.Puffs != b.Puffs {
			return a.Puffs > b.Puffs
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.UserID < b.UserID
	})

	if size > 0 && len(entries) > size {
		entries = entries[:size]
	}
	return entries
}
