package content

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	types "github.com/yungbote/streamhub-backend/internal/domain"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) store.PostStore {
	return &postRepo{db: db, log: baseLog.With("repo", "PostRepo")}
}

func (r *postRepo) Create(dbc dbctx.Context, p *types.Post) error {
	if err := conn(r.db, dbc).Create(p).Error; err != nil {
		return store.MapError("PostRepo.Create", err)
	}
	return nil
}

func (r *postRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Post, error) {
	var p types.Post
	if err := conn(r.db, dbc).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, store.MapError("PostRepo.GetByID", err)
	}
	return &p, nil
}

func (r *postRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Post, error) {
	var out []*types.Post
	if len(ids) == 0 {
		return out, nil
	}
	if err := conn(r.db, dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, store.MapError("PostRepo.GetByIDs", err)
	}
	return out, nil
}

func (r *postRepo) ListByOwner(dbc dbctx.Context, owner uuid.UUID, page views.PageRequest) ([]*types.Post, int64, error) {
	t := conn(r.db, dbc)
	var total int64
	if err := t.Model(&types.Post{}).Where("owner_id = ?", owner).Count(&total).Error; err != nil {
		return nil, 0, store.MapError("PostRepo.ListByOwner.count", err)
	}
	if int64(page.Offset()) >= total {
		return []*types.Post{}, total, nil
	}
	var out []*types.Post
	err := t.Where("owner_id = ?", owner).
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, store.MapError("PostRepo.ListByOwner", err)
	}
	return out, total, nil
}

func (r *postRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (*types.Post, error) {
	if len(fields) > 0 {
		res := conn(r.db, dbc).Model(&types.Post{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, store.MapError("PostRepo.UpdateFields", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("PostRepo.UpdateFields: %w", store.ErrNotFound)
		}
	}
	return r.GetByID(dbc, id)
}

func (r *postRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	res := conn(r.db, dbc).Where("id = ?", id).Delete(&types.Post{})
	if res.Error != nil {
		return store.MapError("PostRepo.Delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("PostRepo.Delete: %w", store.ErrNotFound)
	}
	return nil
}
