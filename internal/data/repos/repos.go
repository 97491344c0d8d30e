package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/data/repos/content"
	"github.com/yungbote/streamhub-backend/internal/data/repos/social"
	"github.com/yungbote/streamhub-backend/internal/data/repos/user"
	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

var (
	NewVideoRepo        = content.NewVideoRepo
	NewCommentRepo      = content.NewCommentRepo
	NewPostRepo         = content.NewPostRepo
	NewEdgeRepo         = social.NewEdgeRepo
	NewUserRepo         = user.NewUserRepo
	NewWatchHistoryRepo = user.NewWatchHistoryRepo
)

// NewSQLHandle wires every store against one gorm connection.
func NewSQLHandle(db *gorm.DB, log *logger.Logger) *store.Handle {
	return &store.Handle{
		DB:       db,
		Tx:       store.NewTxRunner(db),
		Edges:    NewEdgeRepo(db, log),
		Videos:   NewVideoRepo(db, log),
		Comments: NewCommentRepo(db, log),
		Posts:    NewPostRepo(db, log),
		Users:    NewUserRepo(db, log),
		History:  NewWatchHistoryRepo(db, log),
	}
}
