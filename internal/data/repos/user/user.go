package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	types "github.com/yungbote/streamhub-backend/internal/domain"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) store.UserStore {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func conn(db *gorm.DB, dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = db
	}
	return t.WithContext(dbc.Context())
}

func (r *userRepo) Upsert(dbc dbctx.Context, u *types.User) (*types.User, error) {
	t := conn(r.db, dbc)
	u.UpdatedAt = time.Now().UTC()
	err := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "full_name", "avatar_url", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return nil, store.MapError("UserRepo.Upsert", err)
	}
	return r.GetByID(dbc, u.ID)
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	var u types.User
	if err := conn(r.db, dbc).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, store.MapError("UserRepo.GetByID", err)
	}
	return &u, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	if len(ids) == 0 {
		return out, nil
	}
	if err := conn(r.db, dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, store.MapError("UserRepo.GetByIDs", err)
	}
	return out, nil
}
