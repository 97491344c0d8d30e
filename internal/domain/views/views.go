package views

import (
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
)

// ChannelSummary is a principal seen as a channel: profile fields plus the
// subscription counters relative to the viewer.
type ChannelSummary struct {
	ID              uuid.UUID `json:"_id"`
	Username        string    `json:"username"`
	FullName        string    `json:"fullName"`
	AvatarURL       string    `json:"avatar"`
	SubscriberCount int64     `json:"subscribersCount"`
	IsSubscribed    bool      `json:"isSubscribed"`

	// Only filled on the channel profile.
	SubscribedToCount int64 `json:"channelsSubscribedToCount,omitempty"`
}

// AggregateView is a content node with request-scoped counts and viewer flags.
// It is never persisted or cached.
type AggregateView struct {
	Kind         social.TargetKind `json:"kind"`
	Node         content.Node      `json:"node"`
	LikeCount    int64             `json:"likesCount"`
	CommentCount *int64            `json:"commentsCount,omitempty"`
	IsLiked      bool              `json:"isLiked"`
	Owner        *ChannelSummary   `json:"owner,omitempty"`
}

func (v AggregateView) Ref() social.TargetRef { return v.Node.Ref() }

// ChannelStats backs the channel dashboard.
type ChannelStats struct {
	ChannelID        uuid.UUID `json:"channelId"`
	TotalVideos      int64     `json:"totalVideos"`
	TotalViews       int64     `json:"totalViews"`
	TotalLikes       int64     `json:"totalLikes"`
	TotalSubscribers int64     `json:"totalSubscribers"`
}
