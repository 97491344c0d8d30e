package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/streamhub-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return err
	}
	return EnsureSearchIndexes(db)
}

// EnsureSearchIndexes adds the full-text index used by the feed search stage.
// Only Postgres has one; other dialects fall back to LIKE matching.
func EnsureSearchIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}
	stmt := `CREATE INDEX IF NOT EXISTS idx_video_search ON video USING GIN (` + VideoSearchVector + `)`
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("ensure video search index: %w", err)
	}
	return nil
}

// VideoSearchVector must match the expression queried by the video repo so
// the planner can use idx_video_search.
const VideoSearchVector = `to_tsvector('english', coalesce(title, '') || ' ' || coalesce(description, ''))`

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Running migrations")
	return AutoMigrateAll(s.db)
}
