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

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) store.CommentStore {
	return &commentRepo{db: db, log: baseLog.With("repo", "CommentRepo")}
}

func (r *commentRepo) Create(dbc dbctx.Context, c *types.Comment) error {
	if err := conn(r.db, dbc).Create(c).Error; err != nil {
		return store.MapError("CommentRepo.Create", err)
	}
	return nil
}

func (r *commentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Comment, error) {
	var c types.Comment
	if err := conn(r.db, dbc).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, store.MapError("CommentRepo.GetByID", err)
	}
	return &c, nil
}

func (r *commentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Comment, error) {
	var out []*types.Comment
	if len(ids) == 0 {
		return out, nil
	}
	if err := conn(r.db, dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, store.MapError("CommentRepo.GetByIDs", err)
	}
	return out, nil
}

func (r *commentRepo) ListByVideo(dbc dbctx.Context, videoID uuid.UUID, page views.PageRequest) ([]*types.Comment, int64, error) {
	t := conn(r.db, dbc)
	var total int64
	if err := t.Model(&types.Comment{}).Where("video_id = ?", videoID).Count(&total).Error; err != nil {
		return nil, 0, store.MapError("CommentRepo.ListByVideo.count", err)
	}
	if int64(page.Offset()) >= total {
		return []*types.Comment{}, total, nil
	}
	var out []*types.Comment
	err := t.Where("video_id = ?", videoID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, store.MapError("CommentRepo.ListByVideo", err)
	}
	return out, total, nil
}

func (r *commentRepo) CountByVideos(dbc dbctx.Context, videoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(videoIDs))
	if len(videoIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		VideoID uuid.UUID
		N       int64
	}
	err := conn(r.db, dbc).Model(&types.Comment{}).
		Select("video_id, count(*) AS n").
		Where("video_id IN ?", videoIDs).
		Group("video_id").
		Scan(&rows).Error
	if err != nil {
		return nil, store.MapError("CommentRepo.CountByVideos", err)
	}
	for _, row := range rows {
		out[row.VideoID] = row.N
	}
	return out, nil
}

func (r *commentRepo) ListIDsByVideo(dbc dbctx.Context, videoID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := conn(r.db, dbc).Model(&types.Comment{}).Where("video_id = ?", videoID).Pluck("id", &ids).Error; err != nil {
		return nil, store.MapError("CommentRepo.ListIDsByVideo", err)
	}
	return ids, nil
}

func (r *commentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (*types.Comment, error) {
	if len(fields) > 0 {
		res := conn(r.db, dbc).Model(&types.Comment{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, store.MapError("CommentRepo.UpdateFields", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("CommentRepo.UpdateFields: %w", store.ErrNotFound)
		}
	}
	return r.GetByID(dbc, id)
}

func (r *commentRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	res := conn(r.db, dbc).Where("id = ?", id).Delete(&types.Comment{})
	if res.Error != nil {
		return store.MapError("CommentRepo.Delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("CommentRepo.Delete: %w", store.ErrNotFound)
	}
	return nil
}

func (r *commentRepo) DeleteByVideo(dbc dbctx.Context, videoID uuid.UUID) (int64, error) {
	res := conn(r.db, dbc).Where("video_id = ?", videoID).Delete(&types.Comment{})
	if res.Error != nil {
		return 0, store.MapError("CommentRepo.DeleteByVideo", res.Error)
	}
	return res.RowsAffected, nil
}
