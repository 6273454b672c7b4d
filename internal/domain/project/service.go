package project

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateProject(ctx context.Context, input CreateProjectInput) (*Project, error)
	GetProject(ctx context.Context, id, userID uuid.UUID) (*Project, error)
	ListProjectsForUser(ctx context.Context, userID uuid.UUID) ([]Project, error)
	ListMembers(ctx context.Context, projectID, userID uuid.UUID) ([]Member, error)
	AddMember(ctx context.Context, projectID, actorID uuid.UUID, input AddMemberInput) (*Member, error)
	RemoveMember(ctx context.Context, projectID, actorID, userID uuid.UUID) error

	// MemberRole resolves the caller's role. It returns ErrProjectNotFound
	// for unknown projects and ErrAccessDenied for non-members.
	MemberRole(ctx context.Context, projectID, userID uuid.UUID) (Role, error)
	// RequireRole fails with ErrAccessDenied unless the caller holds at
	// least min on the project.
	RequireRole(ctx context.Context, projectID, userID uuid.UUID, min Role) error
	AccessibleProjectIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]Project, error)
	AllProjectIDs(ctx context.Context) ([]uuid.UUID, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) CreateProject(ctx context.Context, input CreateProjectInput) (*Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.OwnerID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	project := &Project{
		Name:        name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", project.OwnerID.String()),
	)
	return project, nil
}

func (s *service) GetProject(ctx context.Context, id, userID uuid.UUID) (*Project, error) {
	if _, err := s.MemberRole(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListProjectsForUser(ctx context.Context, userID uuid.UUID) ([]Project, error) {
	return s.repo.FindForUser(ctx, userID)
}

func (s *service) ListMembers(ctx context.Context, projectID, userID uuid.UUID) ([]Member, error) {
	if _, err := s.MemberRole(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, projectID)
}

func (s *service) AddMember(ctx context.Context, projectID, actorID uuid.UUID, input AddMemberInput) (*Member, error) {
	if input.UserID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	if !input.Role.IsValid() || input.Role == RoleOwner {
		return nil, ErrInvalidRole
	}
	if err := s.RequireRole(ctx, projectID, actorID, RoleAdmin); err != nil {
		return nil, err
	}

	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID == input.UserID {
		return nil, ErrOwnerMembership
	}

	member := &Member{ProjectID: projectID, UserID: input.UserID, Role: input.Role}
	if err := s.repo.SaveMember(ctx, member); err != nil {
		return nil, err
	}
	return s.repo.FindMember(ctx, projectID, input.UserID)
}

func (s *service) RemoveMember(ctx context.Context, projectID, actorID, userID uuid.UUID) error {
	if err := s.RequireRole(ctx, projectID, actorID, RoleAdmin); err != nil {
		return err
	}

	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID == userID {
		return ErrCannotRemoveOwner
	}
	return s.repo.RemoveMember(ctx, projectID, userID)
}

func (s *service) MemberRole(ctx context.Context, projectID, userID uuid.UUID) (Role, error) {
	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	if project.OwnerID == userID {
		return RoleOwner, nil
	}

	member, err := s.repo.FindMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return "", ErrAccessDenied
		}
		return "", err
	}
	return member.Role, nil
}

func (s *service) RequireRole(ctx context.Context, projectID, userID uuid.UUID, min Role) error {
	role, err := s.MemberRole(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !role.AtLeast(min) {
		return ErrAccessDenied
	}
	return nil
}

func (s *service) AccessibleProjectIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.AccessibleIDs(ctx, userID)
}

func (s *service) ProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]Project, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *service) AllProjectIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.AllIDs(ctx)
}
