package retrospective

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/domain/project"
	"github.com/proup-app/proup-api/internal/domain/task"
)

var (
	ErrInvalidDate  = errors.New("dates must be YYYY-MM-DD")
	ErrInvalidRange = errors.New("from must not be after to")
)

const (
	MaxCompletedTitles = 20
	MaxOverdueSamples  = 10

	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// Range is an inclusive UTC date range. To is the last instant of its day.
type Range struct {
	From time.Time
	To   time.Time
}

// ParseRange parses two YYYY-MM-DD dates.
func ParseRange(from, to string) (Range, error) {
	start, err := time.ParseInLocation(dateLayout, from, time.UTC)
	if err != nil {
		return Range{}, ErrInvalidDate
	}
	end, err := time.ParseInLocation(dateLayout, to, time.UTC)
	if err != nil {
		return Range{}, ErrInvalidDate
	}
	if start.After(end) {
		return Range{}, ErrInvalidRange
	}
	return Range{From: start, To: end.Add(day - time.Millisecond)}, nil
}

func (r Range) contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Days is the number of calendar days covered, at least one.
func (r Range) Days() int {
	days := int(math.Ceil(r.To.Sub(r.From).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
}

type Summary struct {
	TotalTasks         int            `json:"totalTasks"`
	TasksCreated       int            `json:"tasksCreated"`
	TasksCompleted     int            `json:"tasksCompleted"`
	OverdueCount       int            `json:"overdueCount"`
	CommentCount       int            `json:"commentCount"`
	StatusChanges      int            `json:"statusChanges"`
	ActivityCount      int            `json:"activityCount"`
	CompletionRate     int            `json:"completionRate"`
	AvgCompletedPerDay float64        `json:"avgCompletedPerDay"`
	BusiestDay         string         `json:"busiestDay"`
	BusiestDayCount    int            `json:"busiestDayCount"`
	PriorityBreakdown  map[string]int `json:"priorityBreakdown"`
}

type ProjectBreakdown struct {
	ProjectID  uuid.UUID `json:"projectId"`
	Name       string    `json:"name"`
	Total      int       `json:"total"`
	Completed  int       `json:"completed"`
	InProgress int       `json:"inProgress"`
	Todo       int       `json:"todo"`
}

type OverdueTask struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	DueDate   string     `json:"dueDate"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority"`
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
}

type Result struct {
	Period              Period             `json:"period"`
	Summary             Summary            `json:"summary"`
	Projects            []ProjectBreakdown `json:"projects"`
	CompletedTaskTitles []string           `json:"completedTaskTitles"`
	OverdueTasks        []OverdueTask      `json:"overdueTasks"`
}

// Dataset is everything Aggregate reads. Tasks are the current rows of the
// in-scope projects; Logs and CommentCount are already limited to the range.
type Dataset struct {
	Projects     []project.Project
	Tasks        []task.Task
	Logs         []activity.Log
	CommentCount int64
}

// Aggregate computes the retrospective for r. Overdue reflects each task's
// current status, not its status at the time it fell due.
func Aggregate(r Range, data Dataset) *Result {
	res := &Result{
		Period: Period{
			From: r.From.Format(dateLayout),
			To:   r.To.Format(dateLayout),
			Days: r.Days(),
		},
		Summary: Summary{
			TotalTasks:   len(data.Tasks),
			CommentCount: int(data.CommentCount),
			PriorityBreakdown: map[string]int{
				string(task.TaskPriorityLow):    0,
				string(task.TaskPriorityMedium): 0,
				string(task.TaskPriorityHigh):   0,
			},
		},
		Projects:            make([]ProjectBreakdown, 0, len(data.Projects)),
		CompletedTaskTitles: make([]string, 0),
		OverdueTasks:        make([]OverdueTask, 0),
	}

	completed := make(map[uuid.UUID]struct{})
	perDay := make(map[string]int)
	for _, l := range data.Logs {
		if !r.contains(l.Timestamp) {
			continue
		}
		res.Summary.ActivityCount++
		perDay[l.Timestamp.UTC().Format(dateLayout)]++
		if l.FieldName == activity.FieldStatus {
			res.Summary.StatusChanges++
		}
		if l.IsCompletion() {
			completed[l.TaskID] = struct{}{}
		}
	}
	res.Summary.BusiestDay, res.Summary.BusiestDayCount = busiestDay(perDay)

	var overdue []task.Task
	for _, t := range data.Tasks {
		if r.contains(t.CreatedAt) {
			res.Summary.TasksCreated++
		}
		if _, ok := completed[t.ID]; ok {
			res.Summary.TasksCompleted++
			res.Summary.PriorityBreakdown[string(t.Priority)]++
			if len(res.CompletedTaskTitles) < MaxCompletedTitles {
				res.CompletedTaskTitles = append(res.CompletedTaskTitles, t.Title)
			}
		}
		if t.DueDate != nil && r.contains(*t.DueDate) && t.Status != task.TaskStatusDone {
			overdue = append(overdue, t)
		}
	}

	res.Summary.OverdueCount = len(overdue)
	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].DueDate.Before(*overdue[j].DueDate)
	})
	for i := 0; i < len(overdue) && i < MaxOverdueSamples; i++ {
		t := overdue[i]
		res.OverdueTasks = append(res.OverdueTasks, OverdueTask{
			ID:        t.ID,
			Title:     t.Title,
			DueDate:   t.DueDateKey(),
			Status:    string(t.Status),
			Priority:  string(t.Priority),
			ProjectID: t.ProjectID,
		})
	}

	if res.Summary.TotalTasks > 0 {
		res.Summary.CompletionRate = int(math.Round(float64(res.Summary.TasksCompleted) / float64(res.Summary.TotalTasks) * 100))
	}
	res.Summary.AvgCompletedPerDay = math.Round(float64(res.Summary.TasksCompleted)/float64(r.Days())*10) / 10

	res.Projects = breakdown(data.Projects, data.Tasks)
	return res
}

// busiestDay picks the date with the most rows, the earliest on a tie.
func busiestDay(perDay map[string]int) (string, int) {
	best, bestCount := "", 0
	for date, count := range perDay {
		if count > bestCount || (count == bestCount && date < best) {
			best, bestCount = date, count
		}
	}
	return best, bestCount
}

func breakdown(projects []project.Project, tasks []task.Task) []ProjectBreakdown {
	out := make([]ProjectBreakdown, 0, len(projects))
	index := make(map[uuid.UUID]int, len(projects))
	for _, p := range projects {
		index[p.ID] = len(out)
		out = append(out, ProjectBreakdown{ProjectID: p.ID, Name: p.Name})
	}

	for _, t := range tasks {
		if t.ProjectID == nil {
			continue
		}
		i, ok := index[*t.ProjectID]
		if !ok {
			continue
		}
		out[i].Total++
		switch t.Status {
		case task.TaskStatusDone:
			out[i].Completed++
		case task.TaskStatusInProgress:
			out[i].InProgress++
		case task.TaskStatusTodo:
			out[i].Todo++
		}
	}
	return out
}
