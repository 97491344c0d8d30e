package social

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/streamhub-backend/internal/data/repos/testutil"
	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

func TestEdgeRepoLikeLifecycle(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewEdgeRepo(db, testutil.Logger(t))

	viewer := uuid.New()
	video := social.Ref(social.TargetVideo, uuid.New())
	key := social.LikeKey(viewer, video)

	ok, err := repo.Exists(dbc, key)
	require.NoError(t, err)
	assert.False(t, ok, "edge should start absent")

	edge, err := repo.TryInsert(dbc, key)
	require.NoError(t, err)
	assert.Equal(t, key, edge.Key())
	assert.NotEqual(t, uuid.Nil, edge.ID)

	_, err = repo.TryInsert(dbc, key)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	ok, err = repo.Exists(dbc, key)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same target id under another kind is a distinct edge.
	commentKey := social.LikeKey(viewer, social.Ref(social.TargetComment, video.ID))
	_, err = repo.TryInsert(dbc, commentKey)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(dbc, key))
	assert.ErrorIs(t, repo.Remove(dbc, key), store.ErrNotFound)

	n, err := repo.CountByTarget(dbc, social.KindLike, video)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	n, err = repo.CountByTarget(dbc, social.KindLike, commentKey.Target)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEdgeRepoRejectsInvalidKey(t *testing.T) {
	db := testutil.DB(t)
	repo := NewEdgeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := repo.TryInsert(dbc, social.EdgeKey{
		Kind:      social.KindLike,
		SubjectID: uuid.New(),
		Target:    social.Ref(social.TargetChannel, uuid.New()),
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrAlreadyExists))
}

func TestEdgeRepoConcurrentInsertSingleWinner(t *testing.T) {
	db := testutil.DB(t)
	repo := NewEdgeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	key := social.LikeKey(uuid.New(), social.Ref(social.TargetPost, uuid.New()))
	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		dupes   int
		unknown []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.TryInsert(dbc, key)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, store.ErrAlreadyExists):
				dupes++
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, unknown)
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, dupes)

	count, err := repo.CountByTarget(dbc, social.KindLike, key.Target)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestEdgeRepoBatchedReads(t *testing.T) {
	db := testutil.DB(t)
	repo := NewEdgeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	viewer := uuid.New()
	v1 := social.Ref(social.TargetVideo, uuid.New())
	v2 := social.Ref(social.TargetVideo, uuid.New())
	c1 := social.Ref(social.TargetComment, uuid.New())
	none := social.Ref(social.TargetVideo, uuid.New())

	for i := 0; i < 3; i++ {
		_, err := repo.TryInsert(dbc, social.LikeKey(uuid.New(), v1))
		require.NoError(t, err)
	}
	_, err := repo.TryInsert(dbc, social.LikeKey(viewer, v2))
	require.NoError(t, err)
	_, err = repo.TryInsert(dbc, social.LikeKey(viewer, c1))
	require.NoError(t, err)

	targets := []social.TargetRef{v1, v2, c1, none, v1}
	counts, err := repo.CountByTargets(dbc, social.KindLike, targets)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[v1])
	assert.Equal(t, int64(1), counts[v2])
	assert.Equal(t, int64(1), counts[c1])
	assert.Equal(t, int64(0), counts[none])

	liked, err := repo.ListTargets(dbc, social.KindLike, viewer, targets)
	require.NoError(t, err)
	assert.True(t, liked[v2])
	assert.True(t, liked[c1])
	assert.False(t, liked[v1])
	assert.False(t, liked[none])

	n, err := repo.CountBySubject(dbc, social.KindLike, viewer, social.TargetVideo)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	edges, err := repo.ListBySubject(dbc, social.KindLike, viewer, social.TargetVideo, views.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, v2, edges[0].Target)
}

func TestEdgeRepoSubscriptions(t *testing.T) {
	db := testutil.DB(t)
	repo := NewEdgeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	channel := uuid.New()
	subs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, s := range subs {
		_, err := repo.TryInsert(dbc, social.SubscriptionKey(s, channel))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	ref := social.Ref(social.TargetChannel, channel)
	n, err := repo.CountByTarget(dbc, social.KindSubscription, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	page, err := repo.ListByTarget(dbc, social.KindSubscription, ref, views.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, subs[2], page[0].SubjectID, "newest subscriber first")

	following, err := repo.CountBySubject(dbc, social.KindSubscription, subs[0], social.TargetChannel)
	require.NoError(t, err)
	assert.Equal(t, int64(1), following)
}

func TestEdgeRepoSweepSupport(t *testing.T) {
	db := testutil.DB(t)
	repo := NewEdgeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	gone := social.Ref(social.TargetVideo, uuid.New())
	kept := social.Ref(social.TargetVideo, uuid.New())
	for i := 0; i < 2; i++ {
		_, err := repo.TryInsert(dbc, social.LikeKey(uuid.New(), gone))
		require.NoError(t, err)
	}
	_, err := repo.TryInsert(dbc, social.LikeKey(uuid.New(), kept))
	require.NoError(t, err)

	ids, err := repo.ScanTargetIDs(dbc, social.KindLike, social.TargetVideo, uuid.Nil, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{gone.ID, kept.ID}, ids)

	removed, err := repo.RemoveByTarget(dbc, social.KindLike, gone)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	ids, err = repo.ScanTargetIDs(dbc, social.KindLike, social.TargetVideo, uuid.Nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{kept.ID}, ids)
}
