package migrations

import (
	"errors"
	"fmt"
	"time"

	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/domain/comment"
	"github.com/proup-app/proup-api/internal/domain/project"
	"github.com/proup-app/proup-api/internal/domain/task"
	"github.com/proup-app/proup-api/internal/domain/user"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrationRecord tracks the migration history
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null;unique"`
	Version   int       `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for migration records
func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// Models returns the persisted models in migration order. Tables referenced
// by others come first.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&project.Project{},
		&project.Member{},
		&task.Task{},
		&activity.Log{},
		&comment.Comment{},
	}
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *connection.Database, logger *zap.Logger) error {
	logger.Info("Starting automatic database migration...", zap.String("driver", db.Driver()))

	if db.Driver() == connection.DriverPostgres {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			logger.Error("Failed to create UUID extension", zap.Error(err))
			return fmt.Errorf("failed to create UUID extension: %w", err)
		}
	}

	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		logger.Error("Failed to create migrations table", zap.Error(err))
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		txDB := &connection.Database{DB: tx}

		var lastVersion int
		if err := txDB.Model(&MigrationRecord{}).Select("COALESCE(MAX(version), 0)").Scan(&lastVersion).Error; err != nil {
			return fmt.Errorf("failed to get last version: %w", err)
		}

		for _, model := range Models() {
			modelName := fmt.Sprintf("%T", model)

			var record MigrationRecord
			err := txDB.Where("name = ?", modelName).First(&record).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to read migration record for %s: %w", modelName, err)
			}
			isNewMigration := errors.Is(err, gorm.ErrRecordNotFound)

			if err := txDB.AutoMigrate(model); err != nil {
				logger.Error("Failed to migrate model",
					zap.String("model", modelName),
					zap.Error(err),
				)
				return fmt.Errorf("failed to migrate %s: %w", modelName, err)
			}

			if isNewMigration {
				lastVersion++
				record = MigrationRecord{
					Name:      modelName,
					Version:   lastVersion,
					AppliedAt: time.Now().UTC(),
				}
				if err := txDB.Create(&record).Error; err != nil {
					logger.Error("Failed to record migration",
						zap.String("model", modelName),
						zap.Error(err),
					)
					return fmt.Errorf("failed to record migration for %s: %w", modelName, err)
				}
				logger.Info("Applied new migration",
					zap.String("model", modelName),
					zap.Int("version", record.Version),
				)
			}
		}

		if err := createIndexes(tx); err != nil {
			return err
		}

		logger.Info("Database migration completed successfully")
		return nil
	})
}

// createIndexes adds the composite indexes the analytics queries lean on.
func createIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_field_value ON activity_logs (field_name, new_value, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_task_time ON activity_logs (task_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_task_created ON comments (task_id, created_at)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// GetMigrationHistory returns the history of applied migrations
func GetMigrationHistory(db *connection.Database) ([]MigrationRecord, error) {
	var records []MigrationRecord
	err := db.Order("version ASC").Find(&records).Error
	return records, err
}
