package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

func TestBuildStagesFixedOrder(t *testing.T) {
	owner := uuid.New()
	sort := store.SortSpec{Field: store.SortViews}

	all := BuildStages(FeedFilter{OwnerID: owner, PublishedOnly: true, Text: " gopher "}, sort, 50)
	kinds := make([]store.StageKind, 0, len(all))
	for _, st := range all {
		kinds = append(kinds, st.Kind)
	}
	assert.Equal(t, []store.StageKind{store.StageSearch, store.StageOwner, store.StagePublished, store.StageSort}, kinds)
	assert.Equal(t, "gopher", all[0].Text)
	assert.Equal(t, 50, all[0].CandidateLimit)
	assert.Equal(t, owner, all[1].OwnerID)

	bare := BuildStages(FeedFilter{}, sort, 50)
	require.Len(t, bare, 1)
	assert.Equal(t, store.StageSort, bare[0].Kind)
	assert.Equal(t, sort, bare[0].Sort)
}

func TestParseSort(t *testing.T) {
	spec, err := ParseSort("", "")
	require.NoError(t, err)
	assert.Equal(t, store.SortSpec{Field: store.SortCreatedAt, Desc: true}, spec)

	spec, err = ParseSort("views", "asc")
	require.NoError(t, err)
	assert.Equal(t, store.SortSpec{Field: store.SortViews, Desc: false}, spec)

	spec, err = ParseSort("duration", "")
	require.NoError(t, err)
	assert.Equal(t, store.SortSpec{Field: store.SortDuration, Desc: true}, spec)

	_, err = ParseSort("owner", "asc")
	assert.True(t, errs.IsCode(err, errs.InvalidArgument))
	_, err = ParseSort("views", "sideways")
	assert.True(t, errs.IsCode(err, errs.InvalidArgument))
}

func TestPublishToggleHidesVideoFromFeed(t *testing.T) {
	env := newTestEnv(t)
	a := env.principal(t, "alice")
	v := env.seedVideo(t, a, "launch", true, time.Now())

	inFeed := func() bool {
		pg, err := env.feed.ListFeed(dbctx.Background(), FeedRequest{Filter: FeedFilter{PublishedOnly: true, OwnerID: a}})
		require.NoError(t, err)
		for _, d := range pg.Docs {
			if d.ID == v.ID {
				return true
			}
		}
		return false
	}
	require.True(t, inFeed())

	updated, err := env.videos.TogglePublish(as(a), v.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)
	assert.False(t, inFeed())

	_, err = env.videos.TogglePublish(as(a), v.ID)
	require.NoError(t, err)
	assert.True(t, inFeed())
}

func TestFeedPagination(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		env.seedVideo(t, owner, "clip"+string(rune('a'+i)), true, base.Add(time.Duration(i)*time.Minute))
	}
	req := FeedRequest{Filter: FeedFilter{OwnerID: owner, PublishedOnly: true}, Page: views.PageRequest{Page: 1, Limit: 2}}

	var seen []uuid.UUID
	for p := 1; p <= 4; p++ {
		req.Page.Page = p
		pg, err := env.feed.ListFeed(dbctx.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(5), pg.TotalDocs)
		assert.Equal(t, 3, pg.TotalPages)
		for _, d := range pg.Docs {
			seen = append(seen, d.ID)
		}
		if p >= 4 {
			assert.Empty(t, pg.Docs, "past the last page is empty, not an error")
		}
	}
	require.Len(t, seen, 5)

	first, err := env.feed.ListFeed(dbctx.Background(), FeedRequest{Filter: req.Filter, Page: views.PageRequest{Page: 1, Limit: 10}})
	require.NoError(t, err)
	for i, d := range first.Docs {
		assert.Equal(t, d.ID, seen[i])
	}
	assert.Equal(t, "clipe", first.Docs[0].Title, "newest first by default")

	_, err = env.feed.ListFeed(dbctx.Background(), FeedRequest{Page: views.PageRequest{Page: -1, Limit: 2}})
	assert.True(t, errs.IsCode(err, errs.InvalidArgument))
}

func TestListVideosAggregatedForViewer(t *testing.T) {
	env := newTestEnv(t)
	owner := env.principal(t, "owner")
	viewer := env.principal(t, "viewer")
	v := env.seedVideo(t, owner, "gopher basics", true, time.Now())
	env.seedVideo(t, owner, "gopher internals", false, time.Now())
	_, err := env.likes.ToggleLike(as(viewer), v.Ref())
	require.NoError(t, err)

	pg, err := env.videos.ListVideos(as(viewer), FeedRequest{Filter: FeedFilter{Text: "gopher", OwnerID: owner}})
	require.NoError(t, err)
	require.Len(t, pg.Docs, 1)
	assert.Equal(t, v.ID, pg.Docs[0].Ref().ID)
	assert.True(t, pg.Docs[0].IsLiked)
	assert.Equal(t, int64(1), pg.Docs[0].LikeCount)
}
