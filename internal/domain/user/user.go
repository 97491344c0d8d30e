package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a principal's profile row. Identities are issued by the external
// auth provider; the id here is the token subject.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username      string    `gorm:"not null;uniqueIndex;column:username" json:"username"`
	FullName      string    `gorm:"not null;column:full_name" json:"fullName"`
	AvatarURL     string    `gorm:"column:avatar_url" json:"avatar"`
	CoverImageURL string    `gorm:"column:cover_image_url" json:"coverImage"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
