package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UpsertProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Service interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	UpsertProfile(ctx context.Context, id uuid.UUID, input UpsertProfileInput) (*User, error)
	// DisplayNames maps each id to a user's name, or to the id itself when
	// the id is not a known user.
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpsertProfile(ctx context.Context, id uuid.UUID, input UpsertProfileInput) (*User, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	u := &User{ID: id, Name: name, Email: strings.TrimSpace(input.Email)}
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	lookup := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		names[id] = id
		if parsed, err := uuid.Parse(id); err == nil {
			lookup = append(lookup, parsed)
		}
	}

	users, err := s.repo.FindByIDs(ctx, lookup)
	if err != nil {
		return nil, err
	}
	for i := range users {
		key := users[i].ID.String()
		if _, ok := names[key]; ok {
			names[key] = users[i].DisplayName()
		}
	}
	return names, nil
}
