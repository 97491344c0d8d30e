package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

func TestLikeScenarioCountsAndViewerFlags(t *testing.T) {
	env := newTestEnv(t)
	a := env.principal(t, "alice")
	b := env.principal(t, "bob")
	c := env.principal(t, "carol")
	v := env.seedVideo(t, a, "intro", true, time.Now())
	ref := social.Ref(social.TargetVideo, v.ID)

	res, err := env.likes.ToggleLike(as(b), ref)
	require.NoError(t, err)
	require.Equal(t, social.StatePresent, res.State)

	forB, err := env.planner.Videos(dbctx.Background(), b, []uuid.UUID{v.ID})
	require.NoError(t, err)
	require.Len(t, forB, 1)
	assert.Equal(t, int64(1), forB[0].LikeCount)
	assert.True(t, forB[0].IsLiked)

	forC, err := env.planner.Videos(dbctx.Background(), c, []uuid.UUID{v.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), forC[0].LikeCount)
	assert.False(t, forC[0].IsLiked)

	res, err = env.likes.ToggleLike(as(b), ref)
	require.NoError(t, err)
	require.Equal(t, social.StateAbsent, res.State)

	forB, err = env.planner.Videos(dbctx.Background(), b, []uuid.UUID{v.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), forB[0].LikeCount)
	assert.False(t, forB[0].IsLiked)
}

func TestLikeCountIsInsertsMinusRemovals(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	v := env.seedVideo(t, owner, "counted", true, time.Now())
	ref := social.Ref(social.TargetVideo, v.ID)

	likers := make([]uuid.UUID, 5)
	for i := range likers {
		likers[i] = uuid.New()
		_, err := env.toggles.Toggle(dbctx.Background(), social.LikeKey(likers[i], ref))
		require.NoError(t, err)
	}
	for _, l := range likers[:2] {
		_, err := env.toggles.Toggle(dbctx.Background(), social.LikeKey(l, ref))
		require.NoError(t, err)
	}
	out, err := env.planner.Videos(dbctx.Background(), uuid.Nil, []uuid.UUID{v.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out[0].LikeCount)
}

func TestPlannerKeepsInputOrderAndOmitsUnknown(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	viewer := env.principal(t, "viewer")
	now := time.Now()
	v1 := env.seedVideo(t, owner, "one", true, now.Add(-2*time.Minute))
	v2 := env.seedVideo(t, owner, "two", true, now.Add(-time.Minute))

	_, err := env.subscriptions.ToggleSubscription(as(viewer), owner)
	require.NoError(t, err)
	_, err = env.comments.AddComment(as(viewer), v2.ID, "first!")
	require.NoError(t, err)

	out, err := env.planner.Videos(dbctx.Background(), viewer, []uuid.UUID{v2.ID, uuid.New(), v1.ID})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, v2.ID, out[0].Ref().ID)
	assert.Equal(t, v1.ID, out[1].Ref().ID)

	require.NotNil(t, out[0].CommentCount)
	assert.Equal(t, int64(1), *out[0].CommentCount)
	require.NotNil(t, out[1].CommentCount)
	assert.Equal(t, int64(0), *out[1].CommentCount)

	for _, a := range out {
		require.NotNil(t, a.Owner)
		assert.Equal(t, owner, a.Owner.ID)
		assert.Equal(t, int64(1), a.Owner.SubscriberCount)
		assert.True(t, a.Owner.IsSubscribed)
	}
}

func TestPlannerMixedNodesAndTransaction(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	v := env.seedVideo(t, owner, "mixed", true, time.Now())
	post, err := env.posts.CreatePost(as(owner), "hello")
	require.NoError(t, err)
	_, err = env.likes.ToggleLike(as(owner), post.Ref())
	require.NoError(t, err)

	err = env.h.Tx.InTx(dbctx.Background().Context(), func(dbc dbctx.Context) error {
		out, err := env.planner.Nodes(dbc, owner, []content.Node{post, v})
		if err != nil {
			return err
		}
		require.Len(t, out, 2)
		assert.Equal(t, social.TargetPost, out[0].Kind)
		assert.Nil(t, out[0].CommentCount)
		assert.Equal(t, int64(1), out[0].LikeCount)
		assert.True(t, out[0].IsLiked)
		assert.Equal(t, int64(0), out[1].LikeCount)
		return nil
	})
	require.NoError(t, err)
}

func TestPlannerChannelsOmitsUnknownAndDuplicates(t *testing.T) {
	env := newTestEnv(t)
	a := env.principal(t, "a")
	b := env.principal(t, "b")
	out, err := env.planner.Channels(dbctx.Background(), uuid.Nil, []uuid.UUID{b, uuid.New(), a, b})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, b, out[0].ID)
	assert.Equal(t, a, out[1].ID)
	assert.False(t, out[0].IsSubscribed)

	empty, err := env.planner.Channels(dbctx.Background(), a, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
