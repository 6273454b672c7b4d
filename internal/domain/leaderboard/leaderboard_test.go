package leaderboard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)

func completion(user string, daysAgo int) activity.Completion {
	return activity.Completion{
		TaskID:    uuid.New(),
		UserID:    user,
		Timestamp: now.Add(-time.Duration(daysAgo) * day),
	}
}

func TestComputeThreeDayStreak(t *testing.T) {
	rows := Compute([]activity.Completion{
		completion("A", 2),
		completion("A", 1),
		completion("A", 0),
	}, now)

	require.Len(t, rows, 1)
	assert.Equal(t, Row{UserID: "A", CompletedToday: 1, CompletedLast7Days: 3, Streak: 3}, rows[0])
}

func TestComputeStreak(t *testing.T) {
	tests := []struct {
		name    string
		daysAgo []int
		want    int
	}{
		{"no completion today", []int{1, 2, 3}, 0},
		{"only today", []int{0}, 1},
		{"gap stops the walk", []int{0, 1, 3, 4}, 2},
		{"repeated days count once", []int{0, 0, 1, 1}, 2},
		{"beyond the week", []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var completions []activity.Completion
			for _, d := range tt.daysAgo {
				completions = append(completions, completion("A", d))
			}
			rows := Compute(completions, now)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.want, rows[0].Streak)
		})
	}
}

func TestComputeWindows(t *testing.T) {
	weekEdge := activity.Completion{UserID: "A", Timestamp: now.Add(-WeekWindowDays * day)}
	justOutside := activity.Completion{UserID: "A", Timestamp: now.Add(-WeekWindowDays*day - time.Second)}
	earlyToday := activity.Completion{UserID: "A", Timestamp: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
	lateYesterday := activity.Completion{UserID: "A", Timestamp: time.Date(2024, 6, 14, 23, 59, 59, 0, time.UTC)}

	rows := Compute([]activity.Completion{justOutside, weekEdge, lateYesterday, earlyToday}, now)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].CompletedToday)
	assert.Equal(t, 3, rows[0].CompletedLast7Days)
	assert.Equal(t, 2, rows[0].Streak)
	assert.LessOrEqual(t, rows[0].CompletedToday, rows[0].CompletedLast7Days)
}

func TestComputeExcludesSystemActors(t *testing.T) {
	rows := Compute([]activity.Completion{
		completion("", 0),
		completion(activity.SystemUser, 0),
		completion("B", 0),
	}, now)

	require.Len(t, rows, 1)
	assert.Equal(t, "B", rows[0].UserID)
}

func TestComputeEmpty(t *testing.T) {
	rows := Compute(nil, now)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestComputeOrdering(t *testing.T) {
	rows := Compute([]activity.Completion{
		// C: 1 this week, first seen
		completion("C", 3),
		// A: 2 this week, streak 2
		completion("A", 1),
		completion("A", 0),
		// B: 2 this week, streak 0
		completion("B", 2),
		completion("B", 3),
		// D: ties with C entirely, seen later
		completion("D", 4),
		// E: old completions only
		completion("E", 30),
	}, now)

	var order []string
	for _, r := range rows {
		order = append(order, r.UserID)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, order)
}

func TestSortIdempotent(t *testing.T) {
	rows := Compute([]activity.Completion{
		completion("A", 0),
		completion("B", 0),
		completion("B", 1),
		completion("C", 5),
		completion("D", 0),
	}, now)

	again := make([]Row, len(rows))
	copy(again, rows)
	Sort(again)
	assert.Equal(t, rows, again)
}
