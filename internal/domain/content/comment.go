package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comment_video_time,priority:1" json:"video"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null;index:idx_comment_video_time,priority:2" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Comment) TableName() string { return "comment" }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Comment) Ref() social.TargetRef { return social.Ref(social.TargetComment, c.ID) }
func (c *Comment) Owner() uuid.UUID       { return c.OwnerID }
func (c *Comment) Created() time.Time     { return c.CreatedAt }
