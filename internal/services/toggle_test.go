package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/realtime"
)

func TestToggleAlternatesStrictly(t *testing.T) {
	env := newTestEnv(t)
	subject := uuid.New()
	key := social.LikeKey(subject, social.Ref(social.TargetPost, uuid.New()))
	dbc := dbctx.Background()

	for i := 1; i <= 6; i++ {
		res, err := env.toggles.Toggle(dbc, key)
		require.NoError(t, err)
		want := social.StatePresent
		if i%2 == 0 {
			want = social.StateAbsent
		}
		require.Equal(t, want, res.State, "call %d", i)
		if want == social.StatePresent {
			require.NotNil(t, res.Edge)
			assert.Equal(t, key, res.Edge.Key())
		} else {
			assert.Nil(t, res.Edge)
		}
	}
	exists, err := env.h.Edges.Exists(dbc, key)
	require.NoError(t, err)
	assert.False(t, exists, "even number of toggles ends absent")

	toggled := env.events.ofType(realtime.EventEdgeToggled)
	require.Len(t, toggled, 6)
	assert.Equal(t, social.StatePresent, toggled[0].EdgeState)
	assert.Equal(t, social.StateAbsent, toggled[5].EdgeState)
}

func TestToggleRejectsInvalidKey(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.toggles.Toggle(dbctx.Background(), social.LikeKey(uuid.New(), social.Ref(social.TargetChannel, uuid.New())))
	assert.True(t, errs.IsCode(err, errs.InvalidArgument), "got %v", err)
}

func TestToggleDistinctSubjectsConcurrently(t *testing.T) {
	env := newTestEnv(t)
	target := social.Ref(social.TargetVideo, uuid.New())
	const n = 8

	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.toggles.Toggle(dbctx.Background(), social.LikeKey(uuid.New(), target))
			if err == nil && res.State != social.StatePresent {
				err = fmt.Errorf("want present, got %s", res.State)
			}
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}
	count, err := env.h.Edges.CountByTarget(dbctx.Background(), social.KindLike, target)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}

func TestToggleSameSubjectConcurrentlyKeepsCountConsistent(t *testing.T) {
	env := newTestEnv(t)
	key := social.LikeKey(uuid.New(), social.Ref(social.TargetComment, uuid.New()))
	const n = 9

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		present  int
		absent   int
		conflict int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.toggles.Toggle(dbctx.Background(), key)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errs.IsCode(err, errs.Conflict):
				conflict++
			case err != nil:
				t.Errorf("unexpected error: %v", err)
			case res.State == social.StatePresent:
				present++
			default:
				absent++
			}
		}()
	}
	wg.Wait()

	count, err := env.h.Edges.CountByTarget(dbctx.Background(), social.KindLike, key.Target)
	require.NoError(t, err)
	assert.LessOrEqual(t, count, int64(1), "at most one stored edge per pair")
	assert.Equal(t, int64(present-absent), count, "present=%d absent=%d conflict=%d", present, absent, conflict)
}

// racingEdges simulates another caller flipping the edge between Exists and
// the write.
type racingEdges struct {
	store.EdgeStore
	exists    bool
	insertErr error
	removeErr error
	inserts   int
	removes   int
}

func (r *racingEdges) Exists(dbctx.Context, social.EdgeKey) (bool, error) { return r.exists, nil }

func (r *racingEdges) TryInsert(_ dbctx.Context, key social.EdgeKey) (*social.Edge, error) {
	r.inserts++
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	return &social.Edge{ID: uuid.New(), Kind: key.Kind, SubjectID: key.SubjectID, Target: key.Target}, nil
}

func (r *racingEdges) Remove(dbctx.Context, social.EdgeKey) error {
	r.removes++
	return r.removeErr
}

func TestToggleRetriesOppositeBranchOnce(t *testing.T) {
	key := social.LikeKey(uuid.New(), social.Ref(social.TargetVideo, uuid.New()))

	lostInsert := &racingEdges{insertErr: store.ErrAlreadyExists}
	res, err := NewToggleEngine(lostInsert, logger.Nop(), nil, nil, nil).Toggle(dbctx.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, social.StateAbsent, res.State)
	assert.Equal(t, 1, lostInsert.inserts)
	assert.Equal(t, 1, lostInsert.removes)

	lostRemove := &racingEdges{exists: true, removeErr: store.ErrNotFound}
	res, err = NewToggleEngine(lostRemove, logger.Nop(), nil, nil, nil).Toggle(dbctx.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, social.StatePresent, res.State)

	lostBoth := &racingEdges{insertErr: store.ErrAlreadyExists, removeErr: store.ErrNotFound}
	_, err = NewToggleEngine(lostBoth, logger.Nop(), nil, nil, nil).Toggle(dbctx.Background(), key)
	assert.True(t, errs.IsCode(err, errs.Conflict), "got %v", err)
	assert.Equal(t, 1, lostBoth.inserts)
	assert.Equal(t, 1, lostBoth.removes)
}
