package domain

import (
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/user"
)

type (
	User              = user.User
	WatchHistoryEntry = user.WatchHistoryEntry

	Video   = content.Video
	Comment = content.Comment
	Post    = content.Post

	Like         = social.Like
	Subscription = social.Subscription
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&WatchHistoryEntry{},
		&Video{},
		&Comment{},
		&Post{},
		&Like{},
		&Subscription{},
	}
}
