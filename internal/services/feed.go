package services

import (
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

const DefaultSearchCandidateLimit = 1000

type FeedFilter struct {
	OwnerID       uuid.UUID // uuid.Nil means any owner
	PublishedOnly bool
	Text          string
}

type FeedRequest struct {
	Filter FeedFilter
	// SortBy and SortType carry the raw query parameters; empty SortBy means
	// newest first.
	SortBy   string
	SortType string
	Page     views.PageRequest
}

type FeedComposer interface {
	ListFeed(dbc dbctx.Context, req FeedRequest) (views.Page[*content.Video], error)
	ListFeedAggregated(dbc dbctx.Context, viewer uuid.UUID, req FeedRequest) (views.Page[views.AggregateView], error)
}

type feedComposer struct {
	videos         store.VideoStore
	planner        AggregationPlanner
	log            *logger.Logger
	metrics        *observability.Metrics
	candidateLimit int
}

func NewFeedComposer(videos store.VideoStore, planner AggregationPlanner, log *logger.Logger, metrics *observability.Metrics, candidateLimit int) FeedComposer {
	if candidateLimit <= 0 {
		candidateLimit = DefaultSearchCandidateLimit
	}
	return &feedComposer{
		videos:         videos,
		planner:        planner,
		log:            log.With("service", "FeedComposer"),
		metrics:        metrics,
		candidateLimit: candidateLimit,
	}
}

// ParseSort resolves the sortBy/sortType query pair. sortType defaults to
// descending.
func ParseSort(sortBy, sortType string) (store.SortSpec, error) {
	const op = "FeedComposer.ParseSort"
	spec := store.SortSpec{Field: store.SortCreatedAt, Desc: true}
	if strings.TrimSpace(sortBy) != "" {
		f, ok := store.ParseSortField(sortBy)
		if !ok {
			return spec, errs.Newf(errs.InvalidArgument, op, "unsupported sortBy %q", sortBy)
		}
		spec.Field = f
	}
	switch strings.ToLower(strings.TrimSpace(sortType)) {
	case "", "desc":
		spec.Desc = true
	case "asc":
		spec.Desc = false
	default:
		return spec, errs.Newf(errs.InvalidArgument, op, "sortType must be asc or desc, got %q", sortType)
	}
	return spec, nil
}

// BuildStages composes the fixed stage order: text search, owner filter,
// publish filter, sort. Absent options drop their stage; the order of the
// rest never changes.
func BuildStages(f FeedFilter, sort store.SortSpec, candidateLimit int) []store.VideoStage {
	stages := make([]store.VideoStage, 0, 4)
	if text := strings.TrimSpace(f.Text); text != "" {
		stages = append(stages, store.SearchStage(text, candidateLimit))
	}
	if f.OwnerID != uuid.Nil {
		stages = append(stages, store.OwnerStage(f.OwnerID))
	}
	if f.PublishedOnly {
		stages = append(stages, store.PublishedStage())
	}
	return append(stages, store.SortStage(sort))
}

func (f *feedComposer) ListFeed(dbc dbctx.Context, req FeedRequest) (views.Page[*content.Video], error) {
	const op = "FeedComposer.ListFeed"
	page := req.Page.Normalize()
	if err := page.Validate(); err != nil {
		return views.Page[*content.Video]{}, err
	}
	sort, err := ParseSort(req.SortBy, req.SortType)
	if err != nil {
		return views.Page[*content.Video]{}, err
	}
	stages := BuildStages(req.Filter, sort, f.candidateLimit)

	ctx, span := tracer.Start(dbc.Context(), op)
	defer span.End()
	span.SetAttributes(
		attribute.Int("stages", len(stages)),
		attribute.Int("page", page.Page),
		attribute.Int("limit", page.Limit),
	)
	f.metrics.IncFeedQuery(strings.TrimSpace(req.Filter.Text) != "")

	rows, total, err := f.videos.Find(dbctx.Context{Ctx: ctx, Tx: dbc.Tx}, store.VideoQuery{Stages: stages, Page: page})
	if err != nil {
		return views.Page[*content.Video]{}, storeErr(op, "video", err)
	}
	return views.NewPage(rows, page, total), nil
}

func (f *feedComposer) ListFeedAggregated(dbc dbctx.Context, viewer uuid.UUID, req FeedRequest) (views.Page[views.AggregateView], error) {
	pg, err := f.ListFeed(dbc, req)
	if err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	nodes := make([]content.Node, 0, len(pg.Docs))
	for _, v := range pg.Docs {
		nodes = append(nodes, v)
	}
	agg, err := f.planner.Nodes(dbc, viewer, nodes)
	if err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	return views.MapPage(pg, agg), nil
}
