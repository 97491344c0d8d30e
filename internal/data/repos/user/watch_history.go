package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	types "github.com/yungbote/streamhub-backend/internal/domain"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

// Watch history is an append-only table rather than an array column so that
// concurrent appends are independent inserts.
type watchHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWatchHistoryRepo(db *gorm.DB, baseLog *logger.Logger) store.WatchHistoryStore {
	return &watchHistoryRepo{db: db, log: baseLog.With("repo", "WatchHistoryRepo")}
}

func (r *watchHistoryRepo) Append(dbc dbctx.Context, userID, videoID uuid.UUID) (*types.WatchHistoryEntry, error) {
	e := &types.WatchHistoryEntry{UserID: userID, VideoID: videoID}
	if err := conn(r.db, dbc).Create(e).Error; err != nil {
		return nil, store.MapError("WatchHistoryRepo.Append", err)
	}
	return e, nil
}

func (r *watchHistoryRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, page views.PageRequest) ([]*types.WatchHistoryEntry, int64, error) {
	t := conn(r.db, dbc)
	var total int64
	if err := t.Model(&types.WatchHistoryEntry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, store.MapError("WatchHistoryRepo.ListByUser.count", err)
	}
	if int64(page.Offset()) >= total {
		return []*types.WatchHistoryEntry{}, total, nil
	}
	var out []*types.WatchHistoryEntry
	err := t.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, store.MapError("WatchHistoryRepo.ListByUser", err)
	}
	return out, total, nil
}

func (r *watchHistoryRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := conn(r.db, dbc).Model(&types.WatchHistoryEntry{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, store.MapError("WatchHistoryRepo.CountByUser", err)
	}
	return n, nil
}
