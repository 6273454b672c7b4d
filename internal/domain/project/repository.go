package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for project persistence operations
type Repository interface {
	// Create stores the project and its owner membership together.
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Project, error)
	FindForUser(ctx context.Context, userID uuid.UUID) ([]Project, error)
	AccessibleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	AllIDs(ctx context.Context) ([]uuid.UUID, error)

	FindMember(ctx context.Context, projectID, userID uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]Member, error)
	SaveMember(ctx context.Context, member *Member) error
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		return tx.Create(&Member{
			ProjectID: project.ID,
			UserID:    project.OwnerID,
			Role:      RoleOwner,
		}).Error
	})
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&project)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, result.Error
	}
	return &project, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var projects []Project
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&projects).Error
	return projects, err
}

func (r *repository) memberSubquery(userID uuid.UUID) *gorm.DB {
	return r.db.Model(&Member{}).Select("project_id").Where("user_id = ?", userID)
}

func (r *repository) FindForUser(ctx context.Context, userID uuid.UUID) ([]Project, error) {
	var projects []Project
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR id IN (?)", userID, r.memberSubquery(userID)).
		Order("created_at ASC").
		Find(&projects).Error
	return projects, err
}

func (r *repository) AccessibleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Project{}).
		Where("owner_id = ? OR id IN (?)", userID, r.memberSubquery(userID)).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) AllIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&Project{}).Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) FindMember(ctx context.Context, projectID, userID uuid.UUID) (*Member, error) {
	var member Member
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, result.Error
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]Member, error) {
	var members []Member
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

func (r *repository) SaveMember(ctx context.Context, member *Member) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(member).Error
}

func (r *repository) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&Member{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
