package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/gcp"
	"github.com/yungbote/streamhub-backend/internal/realtime"
)

func TestPublishVideoStoresMediaAndProbe(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")

	v, err := env.videos.PublishVideo(as(owner), PublishVideoInput{
		Title:       " Intro ",
		Description: "first upload",
		VideoFile:   upload("clip.mp4", "video-bytes"),
		Thumbnail:   upload("thumb.png", "png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Intro", v.Title)
	assert.True(t, v.IsPublished)
	assert.Equal(t, 42.5, v.DurationSeconds)
	assert.Contains(t, v.VideoFileURL, v.VideoFileKey)
	assert.NotEmpty(t, v.MediaMeta)
	assert.Equal(t, 1, env.bucket.Len(gcp.BucketCategoryVideo))
	assert.Equal(t, 1, env.bucket.Len(gcp.BucketCategoryThumbnail))
}

func TestPublishVideoValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")

	_, err := env.videos.PublishVideo(as(owner), PublishVideoInput{Title: "t", VideoFile: upload("a.mp4", "x"), Thumbnail: upload("b.png", "y")})
	assert.True(t, errs.IsCode(err, errs.InvalidArgument))

	_, err = env.videos.PublishVideo(as(owner), PublishVideoInput{Title: "t", Description: "d", VideoFile: upload("a.mp4", "x")})
	assert.True(t, errs.IsCode(err, errs.InvalidArgument))

	_, err = env.videos.PublishVideo(dbctx.Background(), PublishVideoInput{Title: "t", Description: "d"})
	assert.True(t, errs.IsCode(err, errs.Unauthenticated))

	_, err = env.videos.PublishVideo(as(owner), PublishVideoInput{Title: "t", Description: "d", VideoFile: upload("notes.txt", "x"), Thumbnail: upload("b.png", "y")})
	assert.True(t, errs.IsCode(err, errs.InvalidArgument), "unreadable video is rejected, got %v", err)
	assert.Equal(t, 0, env.bucket.Len(gcp.BucketCategoryVideo))
}

func TestPublishVideoCompensatesOnThumbnailFailure(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	env.bucket.failUploads(gcp.BucketCategoryThumbnail)

	_, err := env.videos.PublishVideo(as(owner), PublishVideoInput{
		Title:       "t",
		Description: "d",
		VideoFile:   upload("clip.mp4", "video-bytes"),
		Thumbnail:   upload("thumb.png", "png-bytes"),
	})
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.DependencyFailure))
	assert.Equal(t, 0, env.bucket.Len(gcp.BucketCategoryVideo), "uploaded video blob must be released")
	assert.Len(t, env.bucket.deleted, 1)

	pg, err := env.feed.ListFeed(dbctx.Background(), FeedRequest{Filter: FeedFilter{OwnerID: owner}})
	require.NoError(t, err)
	assert.Empty(t, pg.Docs)
}

func TestGetVideoConcurrentViewsAndHistory(t *testing.T) {
	env := newTestEnv(t)
	a := env.principal(t, "alice")
	b := env.principal(t, "bob")
	v := env.seedVideo(t, a, "popular", true, time.Now())

	const n = 10
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.videos.GetVideo(as(b), v.ID)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	got, err := env.h.Videos.GetByID(dbctx.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.Views)

	count, err := env.h.History.CountByUser(dbctx.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)

	hist, err := env.users.WatchHistory(as(b), views.PageRequest{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(n), hist.TotalDocs)
	require.Len(t, hist.Docs, 3)
	require.NotNil(t, hist.Docs[0].Video)
	assert.Equal(t, v.ID, hist.Docs[0].Video.Ref().ID)
}

func TestGetVideoDetail(t *testing.T) {
	env := newTestEnv(t)
	a := env.principal(t, "alice")
	b := env.principal(t, "bob")
	v := env.seedVideo(t, a, "detail", true, time.Now())
	c, err := env.comments.AddComment(as(b), v.ID, "nice")
	require.NoError(t, err)
	_, err = env.likes.ToggleLike(as(b), c.Ref())
	require.NoError(t, err)

	d, err := env.videos.GetVideo(as(b), v.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Video.Owner)
	assert.Equal(t, a, d.Video.Owner.ID)
	assert.Equal(t, int64(1), d.Video.Node.(*content.Video).Views)
	require.NotNil(t, d.Video.CommentCount)
	assert.Equal(t, int64(1), *d.Video.CommentCount)
	require.Len(t, d.Comments.Docs, 1)
	assert.Equal(t, int64(1), d.Comments.Docs[0].LikeCount)
	assert.True(t, d.Comments.Docs[0].IsLiked)
}

func TestUnpublishedVideoHiddenFromOthers(t *testing.T) {
	env := newTestEnv(t)
	a := env.principal(t, "alice")
	b := env.principal(t, "bob")
	v := env.seedVideo(t, a, "draft", false, time.Now())

	_, err := env.videos.GetVideo(as(b), v.ID)
	assert.True(t, errs.IsCode(err, errs.NotFound))
	_, err = env.likes.ToggleLike(as(b), v.Ref())
	assert.True(t, errs.IsCode(err, errs.NotFound))
	_, err = env.comments.AddComment(as(b), v.ID, "hi")
	assert.True(t, errs.IsCode(err, errs.NotFound))

	d, err := env.videos.GetVideo(as(a), v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, d.Video.Ref().ID)
}

func TestOwnershipGate(t *testing.T) {
	env := newTestEnv(t)
	a := env.principal(t, "alice")
	v := env.seedVideo(t, a, "mine", true, time.Now())
	post, err := env.posts.CreatePost(as(a), "fresh post")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		other := uuid.New()
		_, err := env.guard.Authorize(dbctx.Background(), v.Ref(), other)
		assert.True(t, errs.IsCode(err, errs.Forbidden))
		_, err = env.guard.Authorize(dbctx.Background(), post.Ref(), other)
		assert.True(t, errs.IsCode(err, errs.Forbidden), "just-created nodes are gated too")
	}
	node, err := env.guard.Authorize(dbctx.Background(), post.Ref(), a)
	require.NoError(t, err)
	assert.Equal(t, post.ID, node.Ref().ID)

	_, err = env.guard.Authorize(dbctx.Background(), social.Ref(social.TargetVideo, uuid.New()), a)
	assert.True(t, errs.IsCode(err, errs.NotFound))

	title := "stolen"
	_, err = env.videos.UpdateVideo(as(uuid.New()), v.ID, UpdateVideoInput{Title: &title})
	assert.True(t, errs.IsCode(err, errs.Forbidden))
	_, err = env.videos.DeleteVideo(as(uuid.New()), v.ID)
	assert.True(t, errs.IsCode(err, errs.Forbidden))
	_, err = env.posts.UpdatePost(as(uuid.New()), post.ID, "nope")
	assert.True(t, errs.IsCode(err, errs.Forbidden))
}

func TestUpdateVideoReplacesThumbnail(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	v, err := env.videos.PublishVideo(as(owner), PublishVideoInput{
		Title:       "t",
		Description: "d",
		VideoFile:   upload("clip.mp4", "v"),
		Thumbnail:   upload("old.png", "old"),
	})
	require.NoError(t, err)

	_, err = env.videos.UpdateVideo(as(owner), v.ID, UpdateVideoInput{})
	assert.True(t, errs.IsCode(err, errs.InvalidArgument))

	title := "renamed"
	updated, err := env.videos.UpdateVideo(as(owner), v.ID, UpdateVideoInput{Title: &title, Thumbnail: upload("new.png", "new")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.NotEqual(t, v.ThumbnailKey, updated.ThumbnailKey)
	assert.Equal(t, 1, env.bucket.Len(gcp.BucketCategoryThumbnail))
	_, err = env.bucket.GetObjectAttrs(context.Background(), gcp.BucketCategoryThumbnail, v.ThumbnailKey)
	assert.ErrorIs(t, err, gcp.ErrObjectNotFound)
}

func TestDeleteVideoReleasesMediaAndAnnounces(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	v, err := env.videos.PublishVideo(as(owner), PublishVideoInput{
		Title:       "t",
		Description: "d",
		VideoFile:   upload("clip.mp4", "v"),
		Thumbnail:   upload("thumb.png", "t"),
	})
	require.NoError(t, err)

	deleted, err := env.videos.DeleteVideo(as(owner), v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, deleted.ID)
	assert.Equal(t, 0, env.bucket.Len(gcp.BucketCategoryVideo))
	assert.Equal(t, 0, env.bucket.Len(gcp.BucketCategoryThumbnail))

	evs := env.events.ofType(realtime.EventContentDeleted)
	require.Len(t, evs, 1)
	assert.Equal(t, v.Ref(), evs[0].Target)

	_, err = env.videos.GetVideo(as(owner), v.ID)
	assert.True(t, errs.IsCode(err, errs.NotFound))
}

func TestDeleteSurvivesMediaFailure(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	v := env.seedVideo(t, owner, "ghost", true, time.Now())
	env.bucket.failDeletes()

	_, err := env.videos.DeleteVideo(as(owner), v.ID)
	require.NoError(t, err)
	_, err = env.h.Videos.GetByID(dbctx.Background(), v.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
