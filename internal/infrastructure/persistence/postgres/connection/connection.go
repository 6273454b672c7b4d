package connection

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/proup-app/proup-api/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Database struct {
	*gorm.DB
	driver string
}

// Driver returns the dialect the database was opened with.
func (db *Database) Driver() string {
	return db.driver
}

// Ping checks the underlying pool.
func (db *Database) Ping() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

func gormConfig(logQueries bool) *gorm.Config {
	level := logger.Warn
	if logQueries {
		level = logger.Info
	}
	return &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// PostgresDSN renders the libpq connection string for cfg.
func PostgresDSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		sslMode,
	)
}

// NewDatabase opens the configured driver. Postgres is probed with a plain
// lib/pq connection first so that connectivity errors carry the server code.
func NewDatabase(cfg *config.Config) (*Database, error) {
	switch cfg.Database.Driver {
	case DriverSQLite:
		return NewSQLite(cfg.Database.SQLitePath, cfg.Database.LogQueries)
	case DriverPostgres, "":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	dsn := PostgresDSN(cfg.Database)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create sql.DB: %w", err)
	}
	defer sqlDB.Close()

	sqlDB.SetConnMaxLifetime(10 * time.Second)
	if err := sqlDB.Ping(); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, fmt.Errorf("postgres error: code=%s, message=%s, detail=%s", pqErr.Code, pqErr.Message, pqErr.Detail)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(cfg.Database.LogQueries))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database with GORM: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}

	maxIdleConns := 10
	maxOpenConns := 100
	connMaxLifetime := time.Hour
	if cfg.Database.MaxIdleConns > 0 {
		maxIdleConns = cfg.Database.MaxIdleConns
	}
	if cfg.Database.MaxOpenConns > 0 {
		maxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		connMaxLifetime = cfg.Database.ConnMaxLifetime
	}
	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetConnMaxLifetime(connMaxLifetime)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping connection pool: %w", err)
	}

	return &Database{DB: db, driver: DriverPostgres}, nil
}

// NewSQLite opens a sqlite database at path. ":memory:" gives a private
// in-memory database limited to a single connection.
func NewSQLite(path string, logQueries bool) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(logQueries))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	pool.SetMaxOpenConns(1)

	return &Database{DB: db, driver: DriverSQLite}, nil
}
