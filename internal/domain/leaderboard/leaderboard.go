package leaderboard

import (
	"sort"
	"time"

	"github.com/proup-app/proup-api/internal/domain/activity"
)

const (
	// LookbackDays bounds how far back completion events are loaded.
	LookbackDays = 60
	// WeekWindowDays is the number of days before now counted as the last
	// seven days, today included.
	WeekWindowDays = 6

	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// Row is one user's standing on a project leaderboard.
type Row struct {
	UserID             string `json:"userId"`
	Name               string `json:"name"`
	CompletedToday     int    `json:"completedToday"`
	CompletedLast7Days int    `json:"completedLast7Days"`
	Streak             int    `json:"streak"`
}

// DateKey renders t as its UTC calendar date.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// Since is the earliest timestamp Compute needs for a leaderboard at now.
func Since(now time.Time) time.Time {
	return now.Add(-LookbackDays * day)
}

type tally struct {
	row   Row
	dates map[string]struct{}
}

// Compute ranks users by their completion events. Completions must be in
// the order they should be grouped in; rows with equal scores keep that
// first-seen order. Empty and system actors are ignored. Names are left
// blank.
func Compute(completions []activity.Completion, now time.Time) []Row {
	now = now.UTC()
	today := DateKey(now)
	weekStart := now.Add(-WeekWindowDays * day)

	order := make([]string, 0)
	byUser := make(map[string]*tally)

	for _, c := range completions {
		if c.UserID == "" || c.UserID == activity.SystemUser {
			continue
		}
		t, ok := byUser[c.UserID]
		if !ok {
			t = &tally{row: Row{UserID: c.UserID}, dates: make(map[string]struct{})}
			byUser[c.UserID] = t
			order = append(order, c.UserID)
		}

		key := DateKey(c.Timestamp)
		t.dates[key] = struct{}{}
		if key == today {
			t.row.CompletedToday++
		}
		if !c.Timestamp.Before(weekStart) {
			t.row.CompletedLast7Days++
		}
	}

	rows := make([]Row, 0, len(order))
	for _, userID := range order {
		t := byUser[userID]
		t.row.Streak = streak(t.dates, now)
		rows = append(rows, t.row)
	}

	Sort(rows)
	return rows
}

// streak counts consecutive days with a completion, ending today.
func streak(dates map[string]struct{}, now time.Time) int {
	n := 0
	for d := now; ; d = d.Add(-day) {
		if _, ok := dates[DateKey(d)]; !ok {
			return n
		}
		n++
	}
}

// Sort orders rows by last-7-days count, then streak, then today's count,
// all descending. Ties keep their relative order.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CompletedLast7Days != b.CompletedLast7Days {
			return a.CompletedLast7Days > b.CompletedLast7Days
		}
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		return a.CompletedToday > b.CompletedToday
	})
}
