package app

import (
	"github.com/dgraph-io/badger/v4"
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/data/kv"
	"github.com/yungbote/streamhub-backend/internal/data/repos"
	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

// wireHandle builds the store handle every service receives. Content always
// lives in SQL; edges move to badger when it is open.
func wireHandle(db *gorm.DB, edgesKV *badger.DB, log *logger.Logger) *store.Handle {
	log.Info("Wiring repos...")
	h := repos.NewSQLHandle(db, log)
	if edgesKV != nil {
		log.Info("Edge store backed by badger")
		h.Edges = kv.NewEdgeStore(edgesKV, log)
	}
	return h
}
