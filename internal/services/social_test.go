package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

func TestToggleLikeRequiresExistingTarget(t *testing.T) {
	env := newTestEnv(t)
	b := env.principal(t, "bob")

	_, err := env.likes.ToggleLike(as(b), social.Ref(social.TargetComment, uuid.New()))
	assert.True(t, errs.IsCode(err, errs.NotFound), "got %v", err)
	_, err = env.likes.ToggleLike(as(b), social.Ref(social.TargetChannel, uuid.New()))
	assert.True(t, errs.IsCode(err, errs.InvalidArgument))
	_, err = env.likes.ToggleLike(dbctx.Background(), social.Ref(social.TargetPost, uuid.New()))
	assert.True(t, errs.IsCode(err, errs.Unauthenticated))
}

func TestListLikedVideosNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	b := env.principal(t, "bob")
	v1 := env.seedVideo(t, owner, "first", true, time.Now())
	v2 := env.seedVideo(t, owner, "second", true, time.Now())
	v3 := env.seedVideo(t, owner, "third", true, time.Now())

	for _, v := range []uuid.UUID{v1.ID, v2.ID, v3.ID} {
		_, err := env.likes.ToggleLike(as(b), social.Ref(social.TargetVideo, v))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := env.videos.TogglePublish(as(owner), v2.ID)
	require.NoError(t, err)

	pg, err := env.likes.ListLikedVideos(as(b), views.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), pg.TotalDocs)
	require.Len(t, pg.Docs, 2, "hidden videos drop out")
	assert.Equal(t, v3.ID, pg.Docs[0].Ref().ID)
	assert.Equal(t, v1.ID, pg.Docs[1].Ref().ID)
	for _, d := range pg.Docs {
		assert.True(t, d.IsLiked)
		assert.Equal(t, int64(1), d.LikeCount)
	}
}

func TestSubscriptionToggleAndListings(t *testing.T) {
	env := newTestEnv(t)
	ch := env.principal(t, "channel")
	s1 := env.principal(t, "sub1")
	s2 := env.principal(t, "sub2")

	_, err := env.subscriptions.ToggleSubscription(as(ch), ch)
	assert.True(t, errs.IsCode(err, errs.InvalidArgument), "self-subscribe rejected")
	_, err = env.subscriptions.ToggleSubscription(as(s1), uuid.New())
	assert.True(t, errs.IsCode(err, errs.NotFound))

	res, err := env.subscriptions.ToggleSubscription(as(s1), ch)
	require.NoError(t, err)
	assert.Equal(t, social.StatePresent, res.State)
	time.Sleep(2 * time.Millisecond)
	_, err = env.subscriptions.ToggleSubscription(as(s2), ch)
	require.NoError(t, err)
	_, err = env.subscriptions.ToggleSubscription(as(s1), s2)
	require.NoError(t, err)

	subs, err := env.subscriptions.ListSubscribers(as(s2), ch, views.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), subs.TotalDocs)
	require.Len(t, subs.Docs, 2)
	assert.Equal(t, s2, subs.Docs[0].ID, "newest subscriber first")
	assert.Equal(t, s1, subs.Docs[1].ID)
	assert.Equal(t, int64(1), subs.Docs[0].SubscriberCount, "s2 has one subscriber")
	assert.False(t, subs.Docs[1].IsSubscribed, "viewer s2 does not follow s1")

	following, err := env.subscriptions.ListSubscribedChannels(as(s1), s1, views.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), following.TotalDocs)
	for _, c := range following.Docs {
		assert.True(t, c.IsSubscribed)
	}

	res, err = env.subscriptions.ToggleSubscription(as(s1), ch)
	require.NoError(t, err)
	assert.Equal(t, social.StateAbsent, res.State)
	assert.Nil(t, res.Edge)
}

func TestChannelStatsAndVideos(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	fan := env.principal(t, "fan")
	v1 := env.seedVideo(t, owner, "a", true, time.Now())
	env.seedVideo(t, owner, "b", false, time.Now())

	_, err := env.videos.GetVideo(as(fan), v1.ID)
	require.NoError(t, err)
	_, err = env.likes.ToggleLike(as(fan), v1.Ref())
	require.NoError(t, err)
	_, err = env.subscriptions.ToggleSubscription(as(fan), owner)
	require.NoError(t, err)

	stats, err := env.dashboard.ChannelStats(as(owner), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, owner, stats.ChannelID)
	assert.Equal(t, int64(2), stats.TotalVideos)
	assert.Equal(t, int64(1), stats.TotalViews)
	assert.Equal(t, int64(1), stats.TotalLikes)
	assert.Equal(t, int64(1), stats.TotalSubscribers)

	byID, err := env.dashboard.ChannelStats(as(fan), owner)
	require.NoError(t, err)
	assert.Equal(t, stats, byID)

	_, err = env.dashboard.ChannelStats(as(fan), uuid.New())
	assert.True(t, errs.IsCode(err, errs.NotFound))

	mine, err := env.dashboard.ChannelVideos(as(owner), FeedRequest{})
	require.NoError(t, err)
	assert.Len(t, mine.Docs, 2, "unpublished videos included for the owner")
}

func TestCommentsAndPosts(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	other := env.principal(t, "other")
	v := env.seedVideo(t, owner, "talk", true, time.Now())

	_, err := env.comments.AddComment(as(other), v.ID, "   ")
	assert.True(t, errs.IsCode(err, errs.InvalidArgument))
	c, err := env.comments.AddComment(as(other), v.ID, "great")
	require.NoError(t, err)

	_, err = env.comments.UpdateComment(as(owner), c.ID, "edited")
	assert.True(t, errs.IsCode(err, errs.Forbidden))
	edited, err := env.comments.UpdateComment(as(other), c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	list, err := env.comments.ListComments(as(owner), v.ID, views.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Docs, 1)
	require.NotNil(t, list.Docs[0].Owner)
	assert.Equal(t, other, list.Docs[0].Owner.ID)

	_, err = env.comments.ListComments(as(owner), uuid.New(), views.PageRequest{})
	assert.True(t, errs.IsCode(err, errs.NotFound))

	_, err = env.comments.DeleteComment(as(other), c.ID)
	require.NoError(t, err)

	p, err := env.posts.CreatePost(as(owner), "short update")
	require.NoError(t, err)
	_, err = env.likes.ToggleLike(as(other), p.Ref())
	require.NoError(t, err)
	posts, err := env.posts.ListPostsByOwner(as(other), owner, views.PageRequest{})
	require.NoError(t, err)
	require.Len(t, posts.Docs, 1)
	assert.True(t, posts.Docs[0].IsLiked)
	assert.Nil(t, posts.Docs[0].CommentCount)

	_, err = env.posts.ListPostsByOwner(as(other), uuid.New(), views.PageRequest{})
	assert.True(t, errs.IsCode(err, errs.NotFound))

	updated, err := env.posts.UpdatePost(as(owner), p.ID, "changed")
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Content)
	_, err = env.posts.DeletePost(as(owner), p.ID)
	require.NoError(t, err)
}
