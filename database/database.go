package database

import (
	"fmt"
	"log/slog"

	"github.com/St0bbe/remix-of-our-little-pix/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database interface defines the contract for database operations
type Database interface {
	GetDB() *gorm.DB
	Migrate() error
	Close() error
}

// SQLiteDB implements the Database interface for SQLite
type SQLiteDB struct {
	db *gorm.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// GetDB returns the underlying GORM database instance
func (s *SQLiteDB) GetDB() *gorm.DB {
	return s.db
}

// Migrate runs database migrations for all models
func (s *SQLiteDB) Migrate() error {
	err := s.db.AutoMigrate(
		&models.Photo{},
		&models.Album{},
		&models.Comment{},
		&models.SharedLink{},
		&models.ActivityItem{},
		&models.Credential{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("database migration completed")
	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// CreateIndexes creates additional indexes for better performance
func (s *SQLiteDB) CreateIndexes() error {
	// Composite indexes for the hot query paths
	if err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_photos_category_child ON photos(category, child_name)").Error; err != nil {
		return fmt.Errorf("failed to create photos category-child index: %w", err)
	}

	if err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_photos_favorite ON photos(is_favorite) WHERE is_favorite = 1").Error; err != nil {
		return fmt.Errorf("failed to create photos favorite index: %w", err)
	}

	if err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_comments_photo_created ON comments(photo_id, created_at)").Error; err != nil {
		return fmt.Errorf("failed to create comments photo-created index: %w", err)
	}

	slog.Info("database indexes created")
	return nil
}
