package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/streamhub-backend/internal/data/repos"
	"github.com/yungbote/streamhub-backend/internal/data/repos/testutil"
	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/gcp"
	"github.com/yungbote/streamhub-backend/internal/platform/localmedia"
	"github.com/yungbote/streamhub-backend/internal/realtime"
)

type testEnv struct {
	h       *store.Handle
	bucket  *flakyBucket
	events  *recordingPublisher
	metrics *observability.Metrics

	planner       AggregationPlanner
	toggles       ToggleEngine
	feed          FeedComposer
	guard         MutationGuard
	media         MediaStore
	users         UserService
	videos        VideoService
	comments      CommentService
	posts         PostService
	likes         LikeService
	subscriptions SubscriptionService
	dashboard     DashboardService
	sweeper       OrphanSweeper
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testutil.Logger(t)
	h := repos.NewSQLHandle(testutil.DB(t), log)
	env := &testEnv{
		h:       h,
		bucket:  &flakyBucket{MemoryBucketService: gcp.NewMemoryBucketService(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeMemory})},
		events:  &recordingPublisher{},
		metrics: observability.NewMetrics(),
	}
	env.planner = NewAggregationPlanner(h, log, env.metrics)
	env.toggles = NewToggleEngine(h.Edges, log, env.events, nil, env.metrics)
	env.feed = NewFeedComposer(h.Videos, env.planner, log, env.metrics, 0)
	env.media = NewMediaStore(env.bucket, &fakeTools{dir: t.TempDir(), duration: 42.5}, log)
	env.guard = NewMutationGuard(h, env.media, log, env.events, nil, env.metrics)
	env.users = NewUserService(h, log, env.planner)
	env.comments = NewCommentService(h, log, env.guard, env.planner)
	env.videos = NewVideoService(h, log, env.media, env.guard, env.feed, env.planner, env.comments, env.metrics)
	env.posts = NewPostService(h, log, env.guard, env.planner)
	env.likes = NewLikeService(h, log, env.toggles, env.planner)
	env.subscriptions = NewSubscriptionService(h, log, env.toggles, env.planner)
	env.dashboard = NewDashboardService(h, log, env.feed)
	env.sweeper = NewOrphanSweeper(h, log, env.metrics)
	return env
}

// as returns a context acting as principal id.
func as(id uuid.UUID) dbctx.Context {
	return dbctx.Context{Ctx: ctxutil.WithPrincipal(context.Background(), &ctxutil.Principal{ID: id})}
}

func (e *testEnv) principal(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	u, err := e.users.EnsurePrincipal(dbctx.Background(), &ctxutil.Principal{ID: id, Username: name + "_" + id.String()[:6], FullName: name})
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) seedVideo(t *testing.T, owner uuid.UUID, title string, published bool, createdAt time.Time) *content.Video {
	t.Helper()
	v := &content.Video{
		OwnerID:         owner,
		Title:           title,
		Description:     title + " description",
		VideoFileURL:    "memory://local/videos/" + title,
		VideoFileKey:    "videos/" + title,
		ThumbnailURL:    "memory://local/thumbnails/" + title,
		ThumbnailKey:    "thumbnails/" + title,
		DurationSeconds: 10,
		IsPublished:     published,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	require.NoError(t, e.h.Videos.Create(dbctx.Background(), v))
	return v
}

func upload(name, body string) *MediaUpload {
	return &MediaUpload{Filename: name, Body: strings.NewReader(body)}
}

// flakyBucket fails uploads for the categories listed in failUpload.
type flakyBucket struct {
	*gcp.MemoryBucketService
	mu         sync.Mutex
	failUpload map[gcp.BucketCategory]bool
	failDelete bool
	deleted    []string
}

func (b *flakyBucket) failDeletes() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failDelete = true
}

func (b *flakyBucket) failUploads(cat gcp.BucketCategory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failUpload == nil {
		b.failUpload = map[gcp.BucketCategory]bool{}
	}
	b.failUpload[cat] = true
}

func (b *flakyBucket) UploadFile(dbc dbctx.Context, cat gcp.BucketCategory, key string, r io.Reader) error {
	b.mu.Lock()
	fail := b.failUpload[cat]
	b.mu.Unlock()
	if fail {
		return fmt.Errorf("upload %s: bucket unavailable", key)
	}
	return b.MemoryBucketService.UploadFile(dbc, cat, key, r)
}

func (b *flakyBucket) DeleteFile(dbc dbctx.Context, cat gcp.BucketCategory, key string) error {
	b.mu.Lock()
	b.deleted = append(b.deleted, key)
	fail := b.failDelete
	b.mu.Unlock()
	if fail {
		return fmt.Errorf("delete %s: bucket unavailable", key)
	}
	return b.MemoryBucketService.DeleteFile(dbc, cat, key)
}

type fakeTools struct {
	dir      string
	duration float64
}

func (f *fakeTools) AssertReady(context.Context) error { return nil }

func (f *fakeTools) Spool(ctx context.Context, r io.Reader, suffix string) (string, int64, func(), error) {
	fh, err := os.CreateTemp(f.dir, "spool-*"+suffix)
	if err != nil {
		return "", 0, func() {}, err
	}
	n, err := io.Copy(fh, r)
	_ = fh.Close()
	return fh.Name(), n, func() { _ = os.Remove(fh.Name()) }, err
}

func (f *fakeTools) Probe(ctx context.Context, path string) (*localmedia.ProbeResult, error) {
	if filepath.Ext(path) == ".txt" {
		return nil, fmt.Errorf("no video stream found")
	}
	return &localmedia.ProbeResult{DurationSeconds: f.duration, FormatName: "mp4", VideoCodec: "h264"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) ofType(t realtime.EventType) []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []realtime.Event
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
