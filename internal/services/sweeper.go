package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/realtime"
)

const DefaultSweepBatch = 500

// EventSource is satisfied by bus.Bus.
type EventSource interface {
	StartForwarder(ctx context.Context, onEvent func(ev realtime.Event)) error
}

type SweepReport struct {
	LikesRemoved    map[social.TargetKind]int64 `json:"likesRemoved"`
	CommentsRemoved int64                       `json:"commentsRemoved"`
}

func (r *SweepReport) add(o SweepReport) {
	for k, n := range o.LikesRemoved {
		r.LikesRemoved[k] += n
	}
	r.CommentsRemoved += o.CommentsRemoved
}

func newSweepReport() SweepReport {
	return SweepReport{LikesRemoved: map[social.TargetKind]int64{}}
}

// OrphanSweeper removes edges and comments left behind by deleted content.
// The delete path never waits on it; readers already tolerate orphans.
type OrphanSweeper interface {
	// Start consumes ContentDeleted events until ctx ends.
	Start(ctx context.Context, src EventSource) error
	HandleEvent(ctx context.Context, ev realtime.Event)
	// SweepTarget cleans up after one deleted node. A target that still
	// resolves is left alone, so replayed events are harmless.
	SweepTarget(dbc dbctx.Context, target social.TargetRef) (SweepReport, error)
	// SweepOrphans scans every liked target in batches and removes likes on
	// targets that no longer resolve.
	SweepOrphans(dbc dbctx.Context, batch int) (SweepReport, error)
}

type orphanSweeper struct {
	h       *store.Handle
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewOrphanSweeper(h *store.Handle, log *logger.Logger, metrics *observability.Metrics) OrphanSweeper {
	return &orphanSweeper{h: h, log: log.With("service", "OrphanSweeper"), metrics: metrics}
}

func (s *orphanSweeper) Start(ctx context.Context, src EventSource) error {
	return src.StartForwarder(ctx, func(ev realtime.Event) { s.HandleEvent(ctx, ev) })
}

func (s *orphanSweeper) HandleEvent(ctx context.Context, ev realtime.Event) {
	if ev.Type != realtime.EventContentDeleted || !ev.Target.IsContent() {
		return
	}
	rep, err := s.SweepTarget(dbctx.Context{Ctx: ctx}, ev.Target)
	if err != nil {
		s.log.Warn("sweep after delete failed", "target", ev.Target.String(), "error", err)
		return
	}
	s.log.Debug("swept deleted content", "target", ev.Target.String(), "likes", rep.LikesRemoved, "comments", rep.CommentsRemoved)
}

func (s *orphanSweeper) SweepTarget(dbc dbctx.Context, target social.TargetRef) (SweepReport, error) {
	const op = "OrphanSweeper.SweepTarget"
	rep := newSweepReport()
	if !target.IsContent() {
		return rep, errs.Newf(errs.InvalidArgument, op, "%q is not a content kind", target.Kind)
	}
	live, err := s.existing(dbc, target.Kind, []uuid.UUID{target.ID})
	if err != nil {
		return rep, storeErr(op, string(target.Kind), err)
	}
	if live[target.ID] {
		return rep, nil
	}

	if target.Kind == social.TargetVideo {
		commentIDs, err := s.h.Comments.ListIDsByVideo(dbc, target.ID)
		if err != nil {
			return rep, storeErr(op, "comment", err)
		}
		for _, id := range commentIDs {
			n, err := s.h.Edges.RemoveByTarget(dbc, social.KindLike, social.Ref(social.TargetComment, id))
			if err != nil {
				return rep, storeErr(op, "like", err)
			}
			rep.LikesRemoved[social.TargetComment] += n
		}
		n, err := s.h.Comments.DeleteByVideo(dbc, target.ID)
		if err != nil {
			return rep, storeErr(op, "comment", err)
		}
		rep.CommentsRemoved = n
	}

	n, err := s.h.Edges.RemoveByTarget(dbc, social.KindLike, target)
	if err != nil {
		return rep, storeErr(op, "like", err)
	}
	rep.LikesRemoved[target.Kind] += n
	s.record(rep)
	return rep, nil
}

func (s *orphanSweeper) SweepOrphans(dbc dbctx.Context, batch int) (SweepReport, error) {
	if batch <= 0 {
		batch = DefaultSweepBatch
	}
	var (
		mu    sync.Mutex
		total = newSweepReport()
	)
	kinds := []social.TargetKind{social.TargetVideo, social.TargetComment, social.TargetPost}
	run := func(ctx context.Context, kind social.TargetKind) error {
		n, err := s.sweepKind(dbctx.Context{Ctx: ctx, Tx: dbc.Tx}, kind, batch)
		mu.Lock()
		total.LikesRemoved[kind] += n
		mu.Unlock()
		return err
	}
	if dbc.Tx != nil {
		for _, k := range kinds {
			if err := run(dbc.Context(), k); err != nil {
				return total, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(dbc.Context())
		for _, k := range kinds {
			k := k
			g.Go(func() error { return run(gctx, k) })
		}
		if err := g.Wait(); err != nil {
			return total, err
		}
	}
	s.record(total)
	s.log.Info("orphan sweep finished", "likes", total.LikesRemoved)
	return total, nil
}

func (s *orphanSweeper) sweepKind(dbc dbctx.Context, kind social.TargetKind, batch int) (int64, error) {
	const op = "OrphanSweeper.sweepKind"
	var (
		removed int64
		after   uuid.UUID
	)
	for {
		if err := dbc.Context().Err(); err != nil {
			return removed, err
		}
		ids, err := s.h.Edges.ScanTargetIDs(dbc, social.KindLike, kind, after, batch)
		if err != nil {
			return removed, storeErr(op, "like", err)
		}
		if len(ids) == 0 {
			return removed, nil
		}
		live, err := s.existing(dbc, kind, ids)
		if err != nil {
			return removed, storeErr(op, string(kind), err)
		}
		for _, id := range ids {
			if live[id] {
				continue
			}
			n, err := s.h.Edges.RemoveByTarget(dbc, social.KindLike, social.Ref(kind, id))
			if err != nil {
				return removed, storeErr(op, "like", err)
			}
			removed += n
		}
		after = ids[len(ids)-1]
		if len(ids) < batch {
			return removed, nil
		}
	}
}

func (s *orphanSweeper) existing(dbc dbctx.Context, kind social.TargetKind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(ids))
	switch kind {
	case social.TargetVideo:
		rows, err := s.h.Videos.GetByIDs(dbc, ids)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out[r.ID] = true
		}
	case social.TargetComment:
		rows, err := s.h.Comments.GetByIDs(dbc, ids)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out[r.ID] = true
		}
	case social.TargetPost:
		rows, err := s.h.Posts.GetByIDs(dbc, ids)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out[r.ID] = true
		}
	}
	return out, nil
}

func (s *orphanSweeper) record(rep SweepReport) {
	for k, n := range rep.LikesRemoved {
		s.metrics.AddSweepRemoved("like_"+string(k), n)
	}
	s.metrics.AddSweepRemoved("comment", rep.CommentsRemoved)
}
