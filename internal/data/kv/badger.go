package kv

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type Config struct {
	// Path is the badger directory. Empty runs fully in memory.
	Path string
	// SyncWrites fsyncs every commit.
	SyncWrites bool
}

// Open opens a badger database with badger's own logging routed through ours.
func Open(log *logger.Logger, cfg Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(badgerLogger{log: log.With("component", "badger")}).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", cfg.Path, err)
	}
	return db, nil
}

type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(f string, args ...interface{})   { l.log.Error(strings.TrimSpace(fmt.Sprintf(f, args...))) }
func (l badgerLogger) Warningf(f string, args ...interface{}) { l.log.Warn(strings.TrimSpace(fmt.Sprintf(f, args...))) }
func (l badgerLogger) Infof(f string, args ...interface{})    { l.log.Info(strings.TrimSpace(fmt.Sprintf(f, args...))) }
func (l badgerLogger) Debugf(f string, args ...interface{})   { l.log.Debug(strings.TrimSpace(fmt.Sprintf(f, args...))) }
