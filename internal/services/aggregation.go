package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/streamhub-backend/internal/services")

// AggregationPlanner builds AggregateViews with a fixed number of batched
// store calls per relation kind, independent of how many nodes are asked for.
// Unknown ids are omitted; output follows input order. A zero viewer leaves
// every viewer flag false.
type AggregationPlanner interface {
	Videos(dbc dbctx.Context, viewer uuid.UUID, ids []uuid.UUID) ([]views.AggregateView, error)
	Comments(dbc dbctx.Context, viewer uuid.UUID, ids []uuid.UUID) ([]views.AggregateView, error)
	Posts(dbc dbctx.Context, viewer uuid.UUID, ids []uuid.UUID) ([]views.AggregateView, error)
	// Nodes aggregates nodes the caller already loaded.
	Nodes(dbc dbctx.Context, viewer uuid.UUID, nodes []content.Node) ([]views.AggregateView, error)
	Channels(dbc dbctx.Context, viewer uuid.UUID, channelIDs []uuid.UUID) ([]views.ChannelSummary, error)
}

type aggregationPlanner struct {
	h       *store.Handle
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewAggregationPlanner(h *store.Handle, log *logger.Logger, metrics *observability.Metrics) AggregationPlanner {
	return &aggregationPlanner{h: h, log: log.With("service", "AggregationPlanner"), metrics: metrics}
}

func (p *aggregationPlanner) Videos(dbc dbctx.Context, viewer uuid.UUID, ids []uuid.UUID) ([]views.AggregateView, error) {
	rows, err := p.h.Videos.GetByIDs(dbc, ids)
	if err != nil {
		return nil, storeErr("AggregationPlanner.Videos", "video", err)
	}
	return p.Nodes(dbc, viewer, inInputOrder(ids, rows))
}

func (p *aggregationPlanner) Comments(dbc dbctx.Context, viewer uuid.UUID, ids []uuid.UUID) ([]views.AggregateView, error) {
	rows, err := p.h.Comments.GetByIDs(dbc, ids)
	if err != nil {
		return nil, storeErr("AggregationPlanner.Comments", "comment", err)
	}
	return p.Nodes(dbc, viewer, inInputOrder(ids, rows))
}

func (p *aggregationPlanner) Posts(dbc dbctx.Context, viewer uuid.UUID, ids []uuid.UUID) ([]views.AggregateView, error) {
	rows, err := p.h.Posts.GetByIDs(dbc, ids)
	if err != nil {
		return nil, storeErr("AggregationPlanner.Posts", "post", err)
	}
	return p.Nodes(dbc, viewer, inInputOrder(ids, rows))
}

func inInputOrder[N content.Node](ids []uuid.UUID, rows []N) []content.Node {
	byID := make(map[uuid.UUID]N, len(rows))
	for _, r := range rows {
		byID[r.Ref().ID] = r
	}
	out := make([]content.Node, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (p *aggregationPlanner) Nodes(dbc dbctx.Context, viewer uuid.UUID, nodes []content.Node) ([]views.AggregateView, error) {
	const op = "AggregationPlanner.Nodes"
	out := make([]views.AggregateView, 0, len(nodes))
	if len(nodes) == 0 {
		return out, nil
	}
	ctx, span := tracer.Start(dbc.Context(), op)
	defer span.End()
	span.SetAttributes(attribute.Int("nodes", len(nodes)), attribute.Bool("viewer", viewer != uuid.Nil))
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}
	p.metrics.ObservePlannerItems(len(nodes))

	refs := make([]social.TargetRef, 0, len(nodes))
	var videoIDs []uuid.UUID
	for _, n := range nodes {
		ref := n.Ref()
		refs = append(refs, ref)
		if ref.Kind == social.TargetVideo {
			videoIDs = append(videoIDs, ref.ID)
		}
	}

	var (
		likeCounts    map[social.TargetRef]int64
		likedByViewer map[social.TargetRef]bool
		commentCounts map[uuid.UUID]int64
		owners        map[uuid.UUID]*views.ChannelSummary
	)
	passes := []plannerPass{
		{name: "like_counts", run: func(dbc dbctx.Context) (err error) {
			likeCounts, err = p.h.Edges.CountByTargets(dbc, social.KindLike, refs)
			return err
		}},
		{name: "owners", run: func(dbc dbctx.Context) error {
			summaries, err := p.Channels(dbc, viewer, content.OwnerIDs(nodes))
			if err != nil {
				return err
			}
			owners = make(map[uuid.UUID]*views.ChannelSummary, len(summaries))
			for i := range summaries {
				owners[summaries[i].ID] = &summaries[i]
			}
			return nil
		}},
	}
	if viewer != uuid.Nil {
		passes = append(passes, plannerPass{name: "viewer_likes", run: func(dbc dbctx.Context) (err error) {
			likedByViewer, err = p.h.Edges.ListTargets(dbc, social.KindLike, viewer, refs)
			return err
		}})
	}
	if len(videoIDs) > 0 {
		passes = append(passes, plannerPass{name: "comment_counts", run: func(dbc dbctx.Context) (err error) {
			commentCounts, err = p.h.Comments.CountByVideos(dbc, videoIDs)
			return err
		}})
	}
	if err := p.runPasses(dbc, passes); err != nil {
		return nil, storeErr(op, "aggregate", err)
	}

	for i, n := range nodes {
		ref := refs[i]
		v := views.AggregateView{
			Kind:      ref.Kind,
			Node:      n,
			LikeCount: likeCounts[ref],
			IsLiked:   likedByViewer[ref],
			Owner:     owners[n.Owner()],
		}
		if ref.Kind == social.TargetVideo {
			c := commentCounts[ref.ID]
			v.CommentCount = &c
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *aggregationPlanner) Channels(dbc dbctx.Context, viewer uuid.UUID, channelIDs []uuid.UUID) ([]views.ChannelSummary, error) {
	const op = "AggregationPlanner.Channels"
	out := make([]views.ChannelSummary, 0, len(channelIDs))
	if len(channelIDs) == 0 {
		return out, nil
	}
	refs := make([]social.TargetRef, 0, len(channelIDs))
	for _, id := range channelIDs {
		refs = append(refs, social.Ref(social.TargetChannel, id))
	}

	var (
		users       map[uuid.UUID]int
		rows        []views.ChannelSummary
		subscribers map[social.TargetRef]int64
		subscribed  map[social.TargetRef]bool
	)
	passes := []plannerPass{
		{name: "channel_profiles", run: func(dbc dbctx.Context) error {
			found, err := p.h.Users.GetByIDs(dbc, channelIDs)
			if err != nil {
				return err
			}
			users = make(map[uuid.UUID]int, len(found))
			rows = make([]views.ChannelSummary, 0, len(found))
			for _, u := range found {
				users[u.ID] = len(rows)
				rows = append(rows, views.ChannelSummary{
					ID:        u.ID,
					Username:  u.Username,
					FullName:  u.FullName,
					AvatarURL: u.AvatarURL,
				})
			}
			return nil
		}},
		{name: "subscriber_counts", run: func(dbc dbctx.Context) (err error) {
			subscribers, err = p.h.Edges.CountByTargets(dbc, social.KindSubscription, refs)
			return err
		}},
	}
	if viewer != uuid.Nil {
		passes = append(passes, plannerPass{name: "viewer_subscriptions", run: func(dbc dbctx.Context) (err error) {
			subscribed, err = p.h.Edges.ListTargets(dbc, social.KindSubscription, viewer, refs)
			return err
		}})
	}
	if err := p.runPasses(dbc, passes); err != nil {
		return nil, storeErr(op, "channel", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(channelIDs))
	for i, id := range channelIDs {
		idx, ok := users[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		s := rows[idx]
		s.SubscriberCount = subscribers[refs[i]]
		s.IsSubscribed = subscribed[refs[i]]
		out = append(out, s)
	}
	return out, nil
}

type plannerPass struct {
	name string
	run  func(dbc dbctx.Context) error
}

// runPasses runs independent passes concurrently. Inside a transaction the
// passes share one connection, so they run in order instead.
func (p *aggregationPlanner) runPasses(dbc dbctx.Context, passes []plannerPass) error {
	timed := func(ctx context.Context, ps plannerPass) error {
		start := time.Now()
		err := ps.run(dbctx.Context{Ctx: ctx, Tx: dbc.Tx})
		p.metrics.ObservePlannerPass(ps.name, time.Since(start))
		if err != nil {
			p.log.Warn("planner pass failed", "pass", ps.name, "error", err)
		}
		return err
	}
	if dbc.Tx != nil || len(passes) == 1 {
		for _, ps := range passes {
			if err := timed(dbc.Context(), ps); err != nil {
				return err
			}
		}
		return nil
	}
	g, gctx := errgroup.WithContext(dbc.Context())
	for _, ps := range passes {
		ps := ps
		g.Go(func() error { return timed(gctx, ps) })
	}
	return g.Wait()
}
