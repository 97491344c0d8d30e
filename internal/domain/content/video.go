package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
)

type Video struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"_id"`
	OwnerID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	VideoFileURL    string         `gorm:"not null" json:"videoFile"`
	VideoFileKey    string         `gorm:"not null" json:"-"`
	ThumbnailURL    string         `gorm:"not null" json:"thumbnail"`
	ThumbnailKey    string         `gorm:"not null" json:"-"`
	DurationSeconds float64        `gorm:"not null" json:"duration"`
	MediaMeta       datatypes.JSON `json:"mediaMeta,omitempty"`
	Views           int64          `gorm:"not null;default:0" json:"views"`
	IsPublished     bool           `gorm:"not null;index" json:"isPublished"`

	// Populated only by feed queries with a text search stage.
	SearchRank float64 `gorm:"->;-:migration;column:search_rank" json:"-"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Video) TableName() string { return "video" }

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v *Video) Ref() social.TargetRef { return social.Ref(social.TargetVideo, v.ID) }
func (v *Video) Owner() uuid.UUID       { return v.OwnerID }
func (v *Video) Created() time.Time     { return v.CreatedAt }

// VisibleTo reports whether viewer may see the video at all.
func (v *Video) VisibleTo(viewer uuid.UUID) bool {
	return v.IsPublished || v.OwnerID == viewer
}
