package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type taskRow struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	ProjectID *uuid.UUID `gorm:"type:uuid"`
	DeletedAt gorm.DeletedAt
}

func (taskRow) TableName() string { return "tasks" }

func setupRepository(t *testing.T) (Repository, *connection.Database) {
	t.Helper()
	db, err := connection.NewSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&taskRow{}, &Log{}))
	return NewRepository(db), db
}

func TestAppendAndListByTask(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	taskID := uuid.New()

	created := NewCreatedRow(taskID, "u1")
	created.Timestamp = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	change := NewFieldChangeRow(taskID, "u1", FieldStatus, "todo", "done")
	change.Timestamp = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, &change, &created))
	assert.NotEqual(t, uuid.Nil, created.ID)

	logs, err := repo.ListByTask(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, ActionCreatedTask, logs[0].ActionType)
	assert.Equal(t, ActionUpdatedTask, logs[1].ActionType)
	assert.True(t, logs[1].IsCompletion())
	assert.False(t, logs[0].IsCompletion())
}

func TestAppendNothing(t *testing.T) {
	repo, _ := setupRepository(t)
	assert.NoError(t, repo.Append(context.Background()))
}

func TestCompletionsForProject(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	projectID := uuid.New()
	otherProject := uuid.New()
	inProject := taskRow{ID: uuid.New(), ProjectID: &projectID}
	elsewhere := taskRow{ID: uuid.New(), ProjectID: &otherProject}
	require.NoError(t, db.Create(&inProject).Error)
	require.NoError(t, db.Create(&elsewhere).Error)

	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []Log{
		NewFieldChangeRow(inProject.ID, "u1", FieldStatus, "todo", "done"),
		NewFieldChangeRow(inProject.ID, "u2", FieldStatus, "done", "todo"),
		NewFieldChangeRow(inProject.ID, "u2", FieldPriority, "low", "done"),
		NewFieldChangeRow(inProject.ID, "u3", FieldStatus, "todo", "done"),
		NewFieldChangeRow(elsewhere.ID, "u1", FieldStatus, "todo", "done"),
		NewFieldChangeRow(inProject.ID, "u4", FieldStatus, "todo", "done"),
	}
	rows[0].Timestamp = since.Add(48 * time.Hour)
	rows[1].Timestamp = since.Add(49 * time.Hour)
	rows[2].Timestamp = since.Add(50 * time.Hour)
	rows[3].Timestamp = since.Add(time.Hour)
	rows[4].Timestamp = since.Add(time.Hour)
	rows[5].Timestamp = since.Add(-time.Hour)
	for i := range rows {
		require.NoError(t, repo.Append(ctx, &rows[i]))
	}

	completions, err := repo.CompletionsForProject(ctx, projectID, since)
	require.NoError(t, err)
	require.Len(t, completions, 2)
	assert.Equal(t, "u3", completions[0].UserID)
	assert.Equal(t, "u1", completions[1].UserID)
	assert.Equal(t, inProject.ID, completions[0].TaskID)
}

func TestCompletionsForProjectSkipsDeletedTasks(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	projectID := uuid.New()
	kept := taskRow{ID: uuid.New(), ProjectID: &projectID}
	removed := taskRow{ID: uuid.New(), ProjectID: &projectID}
	require.NoError(t, db.Create(&kept).Error)
	require.NoError(t, db.Create(&removed).Error)

	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := NewFieldChangeRow(kept.ID, "u1", FieldStatus, "todo", "done")
	b := NewFieldChangeRow(removed.ID, "u2", FieldStatus, "todo", "done")
	a.Timestamp = since.Add(time.Hour)
	b.Timestamp = since.Add(2 * time.Hour)
	require.NoError(t, repo.Append(ctx, &a, &b))

	require.NoError(t, db.Delete(&removed).Error)

	completions, err := repo.CompletionsForProject(ctx, projectID, since)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, kept.ID, completions[0].TaskID)

	logs, err := repo.ListForProjects(ctx, []uuid.UUID{projectID}, since, since.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, kept.ID, logs[0].TaskID)

	// history of the deleted task itself is still readable
	history, err := repo.ListByTask(ctx, removed.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestListForProjectsRange(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	projectID := uuid.New()
	otherProject := uuid.New()
	a := taskRow{ID: uuid.New(), ProjectID: &projectID}
	b := taskRow{ID: uuid.New(), ProjectID: &projectID}
	c := taskRow{ID: uuid.New(), ProjectID: &otherProject}
	for _, row := range []*taskRow{&a, &b, &c} {
		require.NoError(t, db.Create(row).Error)
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 7, 23, 59, 59, int(999*time.Millisecond), time.UTC)

	rows := []Log{
		NewCreatedRow(a.ID, "u1"),
		NewCreatedRow(b.ID, "u1"),
		NewCreatedRow(c.ID, "u1"),
		NewCreatedRow(a.ID, "u1"),
	}
	rows[0].Timestamp = from
	rows[1].Timestamp = to
	rows[2].Timestamp = from.Add(time.Hour)
	rows[3].Timestamp = to.Add(time.Millisecond)
	for i := range rows {
		require.NoError(t, repo.Append(ctx, &rows[i]))
	}

	logs, err := repo.ListForProjects(ctx, []uuid.UUID{projectID}, from, to)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, a.ID, logs[0].TaskID)
	assert.Equal(t, b.ID, logs[1].TaskID)

	logs, err = repo.ListForProjects(ctx, nil, from, to)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
