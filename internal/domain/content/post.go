package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
)

// Post is a short text post on a channel.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_post_owner_time,priority:1" json:"owner"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null;index:idx_post_owner_time,priority:2" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Post) TableName() string { return "post" }

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Post) Ref() social.TargetRef { return social.Ref(social.TargetPost, p.ID) }
func (p *Post) Owner() uuid.UUID       { return p.OwnerID }
func (p *Post) Created() time.Time     { return p.CreatedAt }
