package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WatchHistoryEntry is one append to a principal's watch history. Rows are
// never updated; duplicates of the same video are expected.
type WatchHistoryEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_watch_history_user_time,priority:1" json:"userId"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null;index" json:"videoId"`
	CreatedAt time.Time `gorm:"not null;index:idx_watch_history_user_time,priority:2" json:"watchedAt"`
}

func (WatchHistoryEntry) TableName() string { return "watch_history_entry" }

func (w *WatchHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
