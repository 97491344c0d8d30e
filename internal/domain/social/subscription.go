package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair,priority:1" json:"subscriber"`
	ChannelID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair,priority:2;index" json:"channel"`
	CreatedAt    time.Time `gorm:"not null;index" json:"createdAt"`
}

func (Subscription) TableName() string { return "subscription" }

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Subscription) Edge() Edge {
	return Edge{
		ID:        s.ID,
		Kind:      KindSubscription,
		SubjectID: s.SubscriberID,
		Target:    Ref(TargetChannel, s.ChannelID),
		CreatedAt: s.CreatedAt,
	}
}
