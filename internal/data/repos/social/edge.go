package social

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	types "github.com/yungbote/streamhub-backend/internal/domain"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

// edgeRepo stores Like edges in content_like and Subscription edges in
// subscription. Both tables carry a unique index over the full edge key, so
// the database arbitrates concurrent inserts.
type edgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEdgeRepo(db *gorm.DB, baseLog *logger.Logger) store.EdgeStore {
	return &edgeRepo{db: db, log: baseLog.With("repo", "EdgeRepo")}
}

type edgeTable struct {
	model         func() any
	subjectCol    string
	targetCol     string
	targetKindCol string
}

var (
	likeTable = edgeTable{
		model:         func() any { return &types.Like{} },
		subjectCol:    "liked_by_id",
		targetCol:     "target_id",
		targetKindCol: "target_kind",
	}
	subscriptionTable = edgeTable{
		model:      func() any { return &types.Subscription{} },
		subjectCol: "subscriber_id",
		targetCol:  "channel_id",
	}
)

func tableFor(kind social.EdgeKind) (edgeTable, error) {
	switch kind {
	case social.KindLike:
		return likeTable, nil
	case social.KindSubscription:
		return subscriptionTable, nil
	}
	return edgeTable{}, fmt.Errorf("unknown edge kind %q", kind)
}

func (et edgeTable) scopeTargetKind(q *gorm.DB, tk social.TargetKind) *gorm.DB {
	if et.targetKindCol == "" {
		return q
	}
	return q.Where(et.targetKindCol+" = ?", tk)
}

func (et edgeTable) scopeKey(q *gorm.DB, key social.EdgeKey) *gorm.DB {
	q = q.Where(et.subjectCol+" = ?", key.SubjectID).Where(et.targetCol+" = ?", key.Target.ID)
	return et.scopeTargetKind(q, key.Target.Kind)
}

func conn(db *gorm.DB, dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = db
	}
	return t.WithContext(dbc.Context())
}

func (r *edgeRepo) TryInsert(dbc dbctx.Context, key social.EdgeKey) (*social.Edge, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	t := conn(r.db, dbc)
	switch key.Kind {
	case social.KindLike:
		row := &types.Like{LikedByID: key.SubjectID, TargetKind: key.Target.Kind, TargetID: key.Target.ID}
		if err := t.Create(row).Error; err != nil {
			return nil, store.MapError("EdgeRepo.TryInsert", err)
		}
		e := row.Edge()
		return &e, nil
	default:
		row := &types.Subscription{SubscriberID: key.SubjectID, ChannelID: key.Target.ID}
		if err := t.Create(row).Error; err != nil {
			return nil, store.MapError("EdgeRepo.TryInsert", err)
		}
		e := row.Edge()
		return &e, nil
	}
}

func (r *edgeRepo) Remove(dbc dbctx.Context, key social.EdgeKey) error {
	et, err := tableFor(key.Kind)
	if err != nil {
		return err
	}
	res := et.scopeKey(conn(r.db, dbc), key).Delete(et.model())
	if res.Error != nil {
		return store.MapError("EdgeRepo.Remove", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("EdgeRepo.Remove: %w", store.ErrNotFound)
	}
	return nil
}

func (r *edgeRepo) Exists(dbc dbctx.Context, key social.EdgeKey) (bool, error) {
	et, err := tableFor(key.Kind)
	if err != nil {
		return false, err
	}
	var n int64
	if err := et.scopeKey(conn(r.db, dbc).Model(et.model()), key).Count(&n).Error; err != nil {
		return false, store.MapError("EdgeRepo.Exists", err)
	}
	return n > 0, nil
}

func (r *edgeRepo) CountByTarget(dbc dbctx.Context, kind social.EdgeKind, target social.TargetRef) (int64, error) {
	et, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	q := conn(r.db, dbc).Model(et.model()).Where(et.targetCol+" = ?", target.ID)
	if err := et.scopeTargetKind(q, target.Kind).Count(&n).Error; err != nil {
		return 0, store.MapError("EdgeRepo.CountByTarget", err)
	}
	return n, nil
}

// CountByTargets issues one grouped query per distinct target kind in the
// input, independent of how many targets there are.
func (r *edgeRepo) CountByTargets(dbc dbctx.Context, kind social.EdgeKind, targets []social.TargetRef) (map[social.TargetRef]int64, error) {
	et, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[social.TargetRef]int64, len(targets))
	for tk, ids := range groupByKind(targets) {
		for _, id := range ids {
			out[social.Ref(tk, id)] = 0
		}
		var rows []struct {
			TargetID uuid.UUID
			N        int64
		}
		q := conn(r.db, dbc).Model(et.model()).
			Select(et.targetCol+" AS target_id, count(*) AS n").
			Where(et.targetCol+" IN ?", ids)
		err := et.scopeTargetKind(q, tk).Group(et.targetCol).Scan(&rows).Error
		if err != nil {
			return nil, store.MapError("EdgeRepo.CountByTargets", err)
		}
		for _, row := range rows {
			out[social.Ref(tk, row.TargetID)] = row.N
		}
	}
	return out, nil
}

func (r *edgeRepo) CountBySubject(dbc dbctx.Context, kind social.EdgeKind, subject uuid.UUID, targetKind social.TargetKind) (int64, error) {
	et, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	q := conn(r.db, dbc).Model(et.model()).Where(et.subjectCol+" = ?", subject)
	if err := et.scopeTargetKind(q, targetKind).Count(&n).Error; err != nil {
		return 0, store.MapError("EdgeRepo.CountBySubject", err)
	}
	return n, nil
}

func (r *edgeRepo) ListTargets(dbc dbctx.Context, kind social.EdgeKind, subject uuid.UUID, targets []social.TargetRef) (map[social.TargetRef]bool, error) {
	et, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[social.TargetRef]bool)
	for tk, ids := range groupByKind(targets) {
		var present []uuid.UUID
		q := conn(r.db, dbc).Model(et.model()).
			Where(et.subjectCol+" = ?", subject).
			Where(et.targetCol+" IN ?", ids)
		if err := et.scopeTargetKind(q, tk).Pluck(et.targetCol, &present).Error; err != nil {
			return nil, store.MapError("EdgeRepo.ListTargets", err)
		}
		for _, id := range present {
			out[social.Ref(tk, id)] = true
		}
	}
	return out, nil
}

func (r *edgeRepo) ListBySubject(dbc dbctx.Context, kind social.EdgeKind, subject uuid.UUID, targetKind social.TargetKind, page views.PageRequest) ([]social.Edge, error) {
	et, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	q := et.scopeTargetKind(conn(r.db, dbc).Where(et.subjectCol+" = ?", subject), targetKind)
	return r.listEdges(kind, q, page)
}

func (r *edgeRepo) ListByTarget(dbc dbctx.Context, kind social.EdgeKind, target social.TargetRef, page views.PageRequest) ([]social.Edge, error) {
	et, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	q := et.scopeTargetKind(conn(r.db, dbc).Where(et.targetCol+" = ?", target.ID), target.Kind)
	return r.listEdges(kind, q, page)
}

func (r *edgeRepo) listEdges(kind social.EdgeKind, q *gorm.DB, page views.PageRequest) ([]social.Edge, error) {
	q = q.Order("created_at DESC").Order("id DESC").Offset(page.Offset()).Limit(page.Limit)
	switch kind {
	case social.KindLike:
		var rows []*types.Like
		if err := q.Find(&rows).Error; err != nil {
			return nil, store.MapError("EdgeRepo.list", err)
		}
		out := make([]social.Edge, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.Edge())
		}
		return out, nil
	default:
		var rows []*types.Subscription
		if err := q.Find(&rows).Error; err != nil {
			return nil, store.MapError("EdgeRepo.list", err)
		}
		out := make([]social.Edge, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.Edge())
		}
		return out, nil
	}
}

func (r *edgeRepo) RemoveByTarget(dbc dbctx.Context, kind social.EdgeKind, target social.TargetRef) (int64, error) {
	et, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	q := et.scopeTargetKind(conn(r.db, dbc).Where(et.targetCol+" = ?", target.ID), target.Kind)
	res := q.Delete(et.model())
	if res.Error != nil {
		return 0, store.MapError("EdgeRepo.RemoveByTarget", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *edgeRepo) ScanTargetIDs(dbc dbctx.Context, kind social.EdgeKind, targetKind social.TargetKind, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	et, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	q := conn(r.db, dbc).Model(et.model()).
		Distinct().
		Where(et.targetCol+" > ?", after)
	err = et.scopeTargetKind(q, targetKind).
		Order(et.targetCol).
		Limit(limit).
		Pluck(et.targetCol, &ids).Error
	if err != nil {
		return nil, store.MapError("EdgeRepo.ScanTargetIDs", err)
	}
	return ids, nil
}

func groupByKind(targets []social.TargetRef) map[social.TargetKind][]uuid.UUID {
	out := make(map[social.TargetKind][]uuid.UUID)
	seen := make(map[social.TargetRef]struct{}, len(targets))
	for _, t := range targets {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out[t.Kind] = append(out[t.Kind], t.ID)
	}
	return out
}
