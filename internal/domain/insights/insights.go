// Package insights turns a retrospective summary into positive, negative
// and action-item findings using a fixed table of threshold rules.
package insights

import (
	"fmt"
	"strings"

	"github.com/proup-app/proup-api/internal/domain/retrospective"
)

type Kind string

const (
	KindPositive Kind = "positive"
	KindNegative Kind = "negative"
	KindAction   Kind = "action"
)

// Category identifies the rule that produced an insight. Presentation
// layers map it to icons and styling.
type Category string

const (
	CategoryStrongCompletion    Category = "strong-completion"
	CategoryHighThroughput      Category = "high-throughput"
	CategoryOnSchedule          Category = "on-schedule"
	CategorySteadyPace          Category = "steady-pace"
	CategoryActiveCollaboration Category = "active-collaboration"
	CategoryPriorityFocus       Category = "priority-focus"
	CategoryGoodMood            Category = "good-mood"
	CategoryDeepFocus           Category = "deep-focus"
	CategoryKeepGoing           Category = "keep-going"

	CategoryLowCompletion    Category = "low-completion"
	CategoryOverdue          Category = "overdue"
	CategoryScopeCreep       Category = "scope-creep"
	CategoryNoMovement       Category = "no-movement"
	CategoryLowMood          Category = "low-mood"
	CategoryLowCollaboration Category = "low-collaboration"
	CategoryNoIssues         Category = "no-issues"

	CategoryRescheduleOverdue Category = "reschedule-overdue"
	CategoryLimitWIP          Category = "limit-wip"
	CategoryBreakDownTasks    Category = "break-down-tasks"
	CategoryScheduleFocus     Category = "schedule-focus"
	CategoryBalanceWorkload   Category = "balance-workload"
	CategoryTakeBreaks        Category = "take-breaks"
	CategoryMaintainMomentum  Category = "maintain-momentum"
)

// Thresholds
const (
	StrongCompletionRate   = 70
	LowCompletionRate      = 40
	HighThroughputTasks    = 10
	SteadyPacePerDay       = 1.0
	ActiveCommentCount     = 10
	PriorityFocusHighTasks = 3
	GoodMoodScore          = 4.0
	LowMoodScore           = 3.0
	DeepFocusMinutes       = 300
	ScopeCreepRatio        = 1.5
	ScopeCreepMinCreated   = 5
	WorkloadSpikeFactor    = 2.0
	MaxOverdueTitles       = 3
)

type Insight struct {
	Kind     Kind     `json:"kind"`
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
}

// MoodEntry is a self-reported mood score from 1 to 5. Scores outside that
// range are ignored.
type MoodEntry struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

type FocusSession struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

type Input struct {
	Summary       retrospective.Summary
	Days          int
	OverdueTitles []string
	Moods         []MoodEntry
	FocusSessions []FocusSession
}

type Result struct {
	Positive []Insight `json:"positive"`
	Negative []Insight `json:"negative"`
	Action   []Insight `json:"action"`
}

// facts are the values every rule reads, derived once per call.
type facts struct {
	retrospective.Summary
	days          int
	overdueTitles []string
	moodCount     int
	avgMood       float64
	focusSessions int
	focusMinutes  int
}

func deriveFacts(in Input) facts {
	f := facts{Summary: in.Summary, days: in.Days, overdueTitles: in.OverdueTitles}
	if f.days < 1 {
		f.days = 1
	}

	total := 0
	for _, m := range in.Moods {
		if m.Score < 1 || m.Score > 5 {
			continue
		}
		f.moodCount++
		total += m.Score
	}
	if f.moodCount > 0 {
		f.avgMood = float64(total) / float64(f.moodCount)
	}

	for _, s := range in.FocusSessions {
		if s.Minutes <= 0 {
			continue
		}
		f.focusSessions++
		f.focusMinutes += s.Minutes
	}
	return f
}

func (f facts) hasTasks() bool { return f.TotalTasks > 0 }

func (f facts) scopeCreep() bool {
	return f.TasksCreated >= ScopeCreepMinCreated &&
		float64(f.TasksCreated) > ScopeCreepRatio*float64(f.TasksCompleted)
}

func (f facts) lowMood() bool { return f.moodCount > 0 && f.avgMood < LowMoodScore }

func (f facts) workloadSpike() bool {
	if f.ActivityCount == 0 || f.days < 2 {
		return false
	}
	avg := float64(f.ActivityCount) / float64(f.days)
	return float64(f.BusiestDayCount) >= WorkloadSpikeFactor*avg
}

type rule struct {
	kind     Kind
	category Category
	when     func(f facts) bool
	build    func(f facts) (title, detail string)
}

// rules are evaluated in order and independently of each other. Order only
// decides display order within a bucket.
var rules = []rule{
	{KindPositive, CategoryStrongCompletion,
		func(f facts) bool { return f.hasTasks() && f.CompletionRate >= StrongCompletionRate },
		func(f facts) (string, string) {
			return "Strong completion rate", fmt.Sprintf("You completed %d%% of your tasks.", f.CompletionRate)
		}},
	{KindPositive, CategoryHighThroughput,
		func(f facts) bool { return f.TasksCompleted >= HighThroughputTasks },
		func(f facts) (string, string) {
			return "High throughput", fmt.Sprintf("%d tasks were completed in this period.", f.TasksCompleted)
		}},
	{KindPositive, CategoryOnSchedule,
		func(f facts) bool { return f.hasTasks() && f.OverdueCount == 0 },
		func(f facts) (string, string) {
			return "Nothing overdue", "Every task due in this period was finished on time."
		}},
	{KindPositive, CategorySteadyPace,
		func(f facts) bool { return f.AvgCompletedPerDay >= SteadyPacePerDay },
		func(f facts) (string, string) {
			return "Steady pace", fmt.Sprintf("You averaged %.1f completed tasks per day.", f.AvgCompletedPerDay)
		}},
	{KindPositive, CategoryActiveCollaboration,
		func(f facts) bool { return f.CommentCount >= ActiveCommentCount },
		func(f facts) (string, string) {
			return "Active collaboration", fmt.Sprintf("%d comments were exchanged on tasks.", f.CommentCount)
		}},
	{KindPositive, CategoryPriorityFocus,
		func(f facts) bool { return f.PriorityBreakdown["high"] >= PriorityFocusHighTasks },
		func(f facts) (string, string) {
			return "Focused on what matters", fmt.Sprintf("%d high-priority tasks were completed.", f.PriorityBreakdown["high"])
		}},
	{KindPositive, CategoryGoodMood,
		func(f facts) bool { return f.moodCount > 0 && f.avgMood >= GoodMoodScore },
		func(f facts) (string, string) {
			return "Good mood", fmt.Sprintf("Your average mood was %.1f out of 5.", f.avgMood)
		}},
	{KindPositive, CategoryDeepFocus,
		func(f facts) bool { return f.focusMinutes >= DeepFocusMinutes },
		func(f facts) (string, string) {
			return "Deep focus", fmt.Sprintf("You logged %d minutes across %d focus sessions.", f.focusMinutes, f.focusSessions)
		}},

	{KindNegative, CategoryLowCompletion,
		func(f facts) bool { return f.hasTasks() && f.CompletionRate < LowCompletionRate },
		func(f facts) (string, string) {
			return "Low completion rate", fmt.Sprintf("Only %d%% of tasks were completed.", f.CompletionRate)
		}},
	{KindNegative, CategoryOverdue,
		func(f facts) bool { return f.OverdueCount > 0 },
		func(f facts) (string, string) {
			detail := fmt.Sprintf("%d tasks are past their due date.", f.OverdueCount)
			if titles := f.overdueTitles; len(titles) > 0 {
				if len(titles) > MaxOverdueTitles {
					titles = titles[:MaxOverdueTitles]
				}
				detail += " Including: " + strings.Join(titles, ", ") + "."
			}
			return "Overdue tasks", detail
		}},
	{KindNegative, CategoryScopeCreep,
		func(f facts) bool { return f.scopeCreep() },
		func(f facts) (string, string) {
			return "Scope creep", fmt.Sprintf("%d tasks were created but only %d completed.", f.TasksCreated, f.TasksCompleted)
		}},
	{KindNegative, CategoryNoMovement,
		func(f facts) bool { return f.hasTasks() && f.StatusChanges == 0 },
		func(f facts) (string, string) {
			return "No task movement", "No task changed status during this period."
		}},
	{KindNegative, CategoryLowMood,
		func(f facts) bool { return f.lowMood() },
		func(f facts) (string, string) {
			return "Low mood", fmt.Sprintf("Your average mood was %.1f out of 5.", f.avgMood)
		}},
	{KindNegative, CategoryLowCollaboration,
		func(f facts) bool { return f.hasTasks() && f.CommentCount == 0 },
		func(f facts) (string, string) {
			return "Little collaboration", "No comments were left on tasks in this period."
		}},

	{KindAction, CategoryRescheduleOverdue,
		func(f facts) bool { return f.OverdueCount > 0 },
		func(f facts) (string, string) {
			return "Reschedule overdue work", "Review overdue tasks and set realistic new due dates."
		}},
	{KindAction, CategoryLimitWIP,
		func(f facts) bool { return f.scopeCreep() },
		func(f facts) (string, string) {
			return "Limit work in progress", "Finish open tasks before taking on new ones."
		}},
	{KindAction, CategoryBreakDownTasks,
		func(f facts) bool { return f.hasTasks() && f.CompletionRate < StrongCompletionRate },
		func(f facts) (string, string) {
			return "Break down large tasks", "Split big tasks into smaller steps that can be finished in a day."
		}},
	{KindAction, CategoryScheduleFocus,
		func(f facts) bool { return f.focusSessions == 0 },
		func(f facts) (string, string) {
			return "Schedule focus time", "Block out uninterrupted time for your most important tasks."
		}},
	{KindAction, CategoryBalanceWorkload,
		func(f facts) bool { return f.workloadSpike() },
		func(f facts) (string, string) {
			return "Balance your workload", fmt.Sprintf("Activity peaked on %s. Spread work more evenly across the week.", f.BusiestDay)
		}},
	{KindAction, CategoryTakeBreaks,
		func(f facts) bool { return f.lowMood() },
		func(f facts) (string, string) {
			return "Take regular breaks", "Short breaks help keep energy and mood up."
		}},
}

var fallbacks = map[Kind]Insight{
	KindPositive: {Kind: KindPositive, Category: CategoryKeepGoing, Title: "Keep going", Detail: "Every step counts. Keep building momentum."},
	KindNegative: {Kind: KindNegative, Category: CategoryNoIssues, Title: "No major issues", Detail: "Nothing stood out as a problem in this period."},
	KindAction:   {Kind: KindAction, Category: CategoryMaintainMomentum, Title: "Maintain momentum", Detail: "Keep your current routine going into the next period."},
}

// Generate evaluates every rule against in. Each bucket holds at least one
// insight. It never fails.
func Generate(in Input) Result {
	f := deriveFacts(in)
	res := Result{
		Positive: []Insight{},
		Negative: []Insight{},
		Action:   []Insight{},
	}

	for _, r := range rules {
		if !r.when(f) {
			continue
		}
		title, detail := r.build(f)
		insight := Insight{Kind: r.kind, Category: r.category, Title: title, Detail: detail}
		switch r.kind {
		case KindPositive:
			res.Positive = append(res.Positive, insight)
		case KindNegative:
			res.Negative = append(res.Negative, insight)
		case KindAction:
			res.Action = append(res.Action, insight)
		}
	}

	if len(res.Positive) == 0 {
		res.Positive = append(res.Positive, fallbacks[KindPositive])
	}
	if len(res.Negative) == 0 {
		res.Negative = append(res.Negative, fallbacks[KindNegative])
	}
	if len(res.Action) == 0 {
		res.Action = append(res.Action, fallbacks[KindAction])
	}
	return res
}

// FromRetrospective builds the engine input from an aggregated result.
func FromRetrospective(res *retrospective.Result, moods []MoodEntry, sessions []FocusSession) Input {
	titles := make([]string, 0, len(res.OverdueTasks))
	for _, t := range res.OverdueTasks {
		titles = append(titles, t.Title)
	}
	return Input{
		Summary:       res.Summary,
		Days:          res.Period.Days,
		OverdueTitles: titles,
		Moods:         moods,
		FocusSessions: sessions,
	}
}
