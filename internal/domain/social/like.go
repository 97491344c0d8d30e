package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Like struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LikedByID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_like_subject_target,priority:1" json:"likedBy"`
	TargetKind TargetKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_like_subject_target,priority:2;index:idx_like_target,priority:1" json:"targetKind"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_like_subject_target,priority:3;index:idx_like_target,priority:2" json:"targetId"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"createdAt"`
}

func (Like) TableName() string { return "content_like" }

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *Like) Edge() Edge {
	return Edge{
		ID:        l.ID,
		Kind:      KindLike,
		SubjectID: l.LikedByID,
		Target:    Ref(l.TargetKind, l.TargetID),
		CreatedAt: l.CreatedAt,
	}
}
