package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupService(t *testing.T) Service {
	t.Helper()
	db, err := connection.NewSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))
	return NewService(NewRepository(db), zap.NewNop())
}

func TestUpsertProfile(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	id := uuid.New()

	u, err := svc.UpsertProfile(ctx, id, UpsertProfileInput{Name: " Ada ", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)

	u, err = svc.UpsertProfile(ctx, id, UpsertProfileInput{Name: "Ada Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Ada Lovelace", u.Name)

	_, err = svc.UpsertProfile(ctx, id, UpsertProfileInput{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDisplayNames(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	known := uuid.New()
	unknown := uuid.New().String()

	_, err := svc.UpsertProfile(ctx, known, UpsertProfileInput{Name: "Grace"})
	require.NoError(t, err)

	names, err := svc.DisplayNames(ctx, []string{known.String(), unknown, "legacy-user"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		known.String(): "Grace",
		unknown:        unknown,
		"legacy-user":  "legacy-user",
	}, names)
}

func TestGetUserNotFound(t *testing.T) {
	svc := setupService(t)
	_, err := svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
