package insights

import (
	"testing"

	"github.com/proup-app/proup-api/internal/domain/retrospective"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categories(list []Insight) []Category {
	out := make([]Category, 0, len(list))
	for _, i := range list {
		out = append(out, i.Category)
	}
	return out
}

func TestGenerateEmptySummaryUsesFallbacks(t *testing.T) {
	res := Generate(Input{})

	assert.Equal(t, []Category{CategoryKeepGoing}, categories(res.Positive))
	assert.Equal(t, []Category{CategoryNoIssues}, categories(res.Negative))
	// no focus sessions were logged
	assert.Equal(t, []Category{CategoryScheduleFocus}, categories(res.Action))
}

func TestGenerateStrongPeriod(t *testing.T) {
	res := Generate(Input{
		Summary: retrospective.Summary{
			TotalTasks:         12,
			TasksCreated:       4,
			TasksCompleted:     10,
			CompletionRate:     83,
			AvgCompletedPerDay: 1.4,
			StatusChanges:      14,
			CommentCount:       12,
			ActivityCount:      30,
			BusiestDay:         "2024-03-04",
			BusiestDayCount:    6,
			PriorityBreakdown:  map[string]int{"low": 2, "medium": 4, "high": 4},
		},
		Days:          7,
		Moods:         []MoodEntry{{Score: 4}, {Score: 5}, {Score: 9}},
		FocusSessions: []FocusSession{{Minutes: 200}, {Minutes: 150}},
	})

	assert.Equal(t, []Category{
		CategoryStrongCompletion,
		CategoryHighThroughput,
		CategoryOnSchedule,
		CategorySteadyPace,
		CategoryActiveCollaboration,
		CategoryPriorityFocus,
		CategoryGoodMood,
		CategoryDeepFocus,
	}, categories(res.Positive))
	assert.Equal(t, []Category{CategoryNoIssues}, categories(res.Negative))
	assert.Equal(t, []Category{CategoryMaintainMomentum}, categories(res.Action))
	for _, i := range res.Positive {
		assert.Equal(t, KindPositive, i.Kind)
	}
}

func TestGenerateStrugglingPeriod(t *testing.T) {
	res := Generate(Input{
		Summary: retrospective.Summary{
			TotalTasks:      10,
			TasksCreated:    8,
			TasksCompleted:  2,
			OverdueCount:    4,
			CompletionRate:  20,
			ActivityCount:   10,
			BusiestDay:      "2024-03-02",
			BusiestDayCount: 8,
		},
		Days:          7,
		OverdueTitles: []string{"Deploy", "Docs", "Review", "QA"},
		Moods:         []MoodEntry{{Score: 2}, {Score: 3}},
	})

	assert.Equal(t, []Category{CategoryKeepGoing}, categories(res.Positive))
	assert.Equal(t, []Category{
		CategoryLowCompletion,
		CategoryOverdue,
		CategoryScopeCreep,
		CategoryNoMovement,
		CategoryLowMood,
		CategoryLowCollaboration,
	}, categories(res.Negative))
	assert.Equal(t, []Category{
		CategoryRescheduleOverdue,
		CategoryLimitWIP,
		CategoryBreakDownTasks,
		CategoryScheduleFocus,
		CategoryBalanceWorkload,
		CategoryTakeBreaks,
	}, categories(res.Action))

	overdue := res.Negative[1]
	assert.Contains(t, overdue.Detail, "Deploy, Docs, Review")
	assert.NotContains(t, overdue.Detail, "QA")
}

func TestGenerateRulesAreIndependent(t *testing.T) {
	// 50% completion sits between both completion thresholds.
	res := Generate(Input{Summary: retrospective.Summary{
		TotalTasks:     10,
		TasksCompleted: 5,
		CompletionRate: 50,
		StatusChanges:  5,
		CommentCount:   1,
	}})

	assert.NotContains(t, categories(res.Positive), CategoryStrongCompletion)
	assert.NotContains(t, categories(res.Negative), CategoryLowCompletion)
	assert.Contains(t, categories(res.Action), CategoryBreakDownTasks)
	assert.Contains(t, categories(res.Positive), CategoryOnSchedule)
}

func TestFromRetrospective(t *testing.T) {
	res := &retrospective.Result{
		Period:       retrospective.Period{Days: 7},
		Summary:      retrospective.Summary{OverdueCount: 1},
		OverdueTasks: []retrospective.OverdueTask{{Title: "Ship"}},
	}

	in := FromRetrospective(res, []MoodEntry{{Score: 3}}, nil)
	require.Len(t, in.OverdueTitles, 1)
	assert.Equal(t, "Ship", in.OverdueTitles[0])
	assert.Equal(t, 7, in.Days)
	assert.Len(t, in.Moods, 1)
}
