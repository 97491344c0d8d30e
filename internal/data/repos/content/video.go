package content

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/streamhub-backend/internal/data/db"
	"github.com/yungbote/streamhub-backend/internal/data/store"
	types "github.com/yungbote/streamhub-backend/internal/domain"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) store.VideoStore {
	return &videoRepo{db: db, log: baseLog.With("repo", "VideoRepo")}
}

func (r *videoRepo) Create(dbc dbctx.Context, v *types.Video) error {
	t := conn(r.db, dbc)
	if err := t.Create(v).Error; err != nil {
		return store.MapError("VideoRepo.Create", err)
	}
	return nil
}

func (r *videoRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Video, error) {
	t := conn(r.db, dbc)
	var v types.Video
	if err := t.Where("id = ?", id).First(&v).Error; err != nil {
		return nil, store.MapError("VideoRepo.GetByID", err)
	}
	return &v, nil
}

func (r *videoRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Video, error) {
	t := conn(r.db, dbc)
	var out []*types.Video
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, store.MapError("VideoRepo.GetByIDs", err)
	}
	return out, nil
}

func (r *videoRepo) Find(dbc dbctx.Context, q store.VideoQuery) ([]*types.Video, int64, error) {
	t := conn(r.db, dbc)
	rel := t.Model(&types.Video{})
	sortSpec := store.SortSpec{Field: store.SortCreatedAt, Desc: true}

	for _, st := range q.Stages {
		switch st.Kind {
		case store.StageSearch:
			if strings.TrimSpace(st.Text) == "" {
				continue
			}
			rel = r.searchStage(t, rel, st)
		case store.StageOwner:
			rel = rel.Where("owner_id = ?", st.OwnerID)
		case store.StagePublished:
			rel = rel.Where("is_published = ?", true)
		case store.StageSort:
			sortSpec = st.Sort
		default:
			return nil, 0, fmt.Errorf("VideoRepo.Find: unknown stage %q", st.Kind)
		}
	}
	base := rel.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, store.MapError("VideoRepo.Find.count", err)
	}
	if int64(q.Page.Offset()) >= total {
		return []*types.Video{}, total, nil
	}

	dir := "ASC"
	if sortSpec.Desc {
		dir = "DESC"
	}
	var out []*types.Video
	err := base.
		Order(sortSpec.Field.Column() + " " + dir).
		Order("id " + dir).
		Offset(q.Page.Offset()).
		Limit(q.Page.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, store.MapError("VideoRepo.Find", err)
	}
	return out, total, nil
}

// searchStage wraps the current candidate relation in a ranked, capped
// subquery aliased back to "video" so later stages keep their column names.
func (r *videoRepo) searchStage(t *gorm.DB, rel *gorm.DB, st store.VideoStage) *gorm.DB {
	var sub *gorm.DB
	if t.Dialector.Name() == db.DriverPostgres {
		rank := "ts_rank(" + db.VideoSearchVector + ", plainto_tsquery('english', ?))"
		sub = rel.
			Select("video.*, "+rank+" AS search_rank", st.Text).
			Where(db.VideoSearchVector+" @@ plainto_tsquery('english', ?)", st.Text)
	} else {
		expr, args := likeRankExpr(st.Text)
		sub = rel.
			Select("video.*, "+expr+" AS search_rank", args...).
			Where(expr+" > 0", args...)
	}
	sub = sub.Order("search_rank DESC").Order("created_at DESC").Order("id DESC")
	if st.CandidateLimit > 0 {
		sub = sub.Limit(st.CandidateLimit)
	}
	return t.Table("(?) AS video", sub)
}

// likeRankExpr scores 2 per term found in the title and 1 per term found in
// the description.
func likeRankExpr(text string) (string, []any) {
	terms := strings.Fields(strings.ToLower(text))
	parts := make([]string, 0, len(terms)*2)
	args := make([]any, 0, len(terms)*2)
	for _, term := range terms {
		pat := "%" + escapeLike(term) + "%"
		parts = append(parts,
			`(CASE WHEN lower(title) LIKE ? ESCAPE '\' THEN 2 ELSE 0 END)`,
			`(CASE WHEN lower(description) LIKE ? ESCAPE '\' THEN 1 ELSE 0 END)`,
		)
		args = append(args, pat, pat)
	}
	return "(" + strings.Join(parts, " + ") + ")", args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *videoRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (*types.Video, error) {
	t := conn(r.db, dbc)
	if len(fields) == 0 {
		return r.GetByID(dbc, id)
	}
	res := t.Model(&types.Video{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, store.MapError("VideoRepo.UpdateFields", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("VideoRepo.UpdateFields: %w", store.ErrNotFound)
	}
	return r.GetByID(dbc, id)
}

func (r *videoRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := conn(r.db, dbc)
	res := t.Where("id = ?", id).Delete(&types.Video{})
	if res.Error != nil {
		return store.MapError("VideoRepo.Delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("VideoRepo.Delete: %w", store.ErrNotFound)
	}
	return nil
}

func (r *videoRepo) IncrementViews(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	t := conn(r.db, dbc)
	var v types.Video
	res := t.Model(&v).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "views"}}}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return 0, store.MapError("VideoRepo.IncrementViews", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("VideoRepo.IncrementViews: %w", store.ErrNotFound)
	}
	if v.Views > 0 {
		return v.Views, nil
	}
	// Dialect without RETURNING: the increment already happened atomically,
	// this read only reports a value at least as new as ours.
	var views int64
	if err := t.Model(&types.Video{}).Where("id = ?", id).Pluck("views", &views).Error; err != nil {
		return 0, store.MapError("VideoRepo.IncrementViews.read", err)
	}
	return views, nil
}

// TogglePublished flips is_published in one statement so concurrent toggles
// never collapse into a single flip.
func (r *videoRepo) TogglePublished(dbc dbctx.Context, id uuid.UUID) (*types.Video, error) {
	t := conn(r.db, dbc)
	var v types.Video
	res := t.Model(&v).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_published": gorm.Expr("NOT is_published")})
	if res.Error != nil {
		return nil, store.MapError("VideoRepo.TogglePublished", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("VideoRepo.TogglePublished: %w", store.ErrNotFound)
	}
	if v.ID != uuid.Nil {
		return &v, nil
	}
	return r.GetByID(dbc, id)
}

func (r *videoRepo) ListIDsByOwner(dbc dbctx.Context, owner uuid.UUID, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	q := conn(r.db, dbc).Model(&types.Video{}).Where("owner_id = ?", owner)
	if after != uuid.Nil {
		q = q.Where("id > ?", after)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var ids []uuid.UUID
	if err := q.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, store.MapError("VideoRepo.ListIDsByOwner", err)
	}
	return ids, nil
}

func (r *videoRepo) OwnerTotals(dbc dbctx.Context, owner uuid.UUID) (int64, int64, error) {
	t := conn(r.db, dbc)
	var row struct {
		Videos int64
		Views  int64
	}
	err := t.Model(&types.Video{}).
		Select("count(*) AS videos, coalesce(sum(views), 0) AS views").
		Where("owner_id = ?", owner).
		Scan(&row).Error
	if err != nil {
		return 0, 0, store.MapError("VideoRepo.OwnerTotals", err)
	}
	return row.Videos, row.Views, nil
}
