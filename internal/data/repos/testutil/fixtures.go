package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/streamhub-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: username + "_" + uuid.NewString()[:8],
		FullName: username,
	}
	mustf(tb, tx.WithContext(ctx).Create(u).Error, "seed user %s", username)
	return u
}

func SeedVideo(tb testing.TB, ctx context.Context, tx *gorm.DB, owner uuid.UUID, title string, published bool, createdAt time.Time) *types.Video {
	tb.Helper()
	v := &types.Video{
		ID:              uuid.New(),
		OwnerID:         owner,
		Title:           title,
		Description:     title + " description",
		VideoFileURL:    "https://cdn.example/videos/" + title + ".mp4",
		VideoFileKey:    "videos/" + title + ".mp4",
		ThumbnailURL:    "https://cdn.example/thumbs/" + title + ".jpg",
		ThumbnailKey:    "thumbs/" + title + ".jpg",
		DurationSeconds: 60,
		IsPublished:     published,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	mustf(tb, tx.WithContext(ctx).Create(v).Error, "seed video %s", title)
	return v
}

func SeedComment(tb testing.TB, ctx context.Context, tx *gorm.DB, videoID, owner uuid.UUID, text string) *types.Comment {
	tb.Helper()
	c := &types.Comment{ID: uuid.New(), VideoID: videoID, OwnerID: owner, Content: text}
	mustf(tb, tx.WithContext(ctx).Create(c).Error, "seed comment")
	return c
}

func SeedPost(tb testing.TB, ctx context.Context, tx *gorm.DB, owner uuid.UUID, text string) *types.Post {
	tb.Helper()
	p := &types.Post{ID: uuid.New(), OwnerID: owner, Content: text}
	mustf(tb, tx.WithContext(ctx).Create(p).Error, "seed post")
	return p
}
