package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/yungbote/streamhub-backend/internal/data/db"
	"github.com/yungbote/streamhub-backend/internal/data/kv"
	"github.com/yungbote/streamhub-backend/internal/platform/gcp"
	"github.com/yungbote/streamhub-backend/internal/platform/localmedia"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/platform/neo4jdb"
	"github.com/yungbote/streamhub-backend/internal/realtime/bus"
)

type Clients struct {
	DB     *db.Service
	Badger *badger.DB
	Bus    bus.Bus
	Neo4j  *neo4jdb.Client
	Bucket gcp.BucketService
	Media  localmedia.Tools
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (c Clients, err error) {
	log.Info("Wiring clients...")
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	// SQL
	c.DB, err = db.Open(log, cfg.DB())
	if err != nil {
		return c, fmt.Errorf("init database: %w", err)
	}

	// Badger edge store
	if cfg.Edges.Backend == EdgeStoreBadger {
		c.Badger, err = kv.Open(log, kv.Config{Path: cfg.Edges.BadgerDir, SyncWrites: cfg.Edges.SyncWrites})
		if err != nil {
			return c, fmt.Errorf("init badger: %w", err)
		}
	}

	// Event bus
	if strings.TrimSpace(cfg.Events.RedisAddr) != "" {
		c.Bus, err = bus.NewRedisBus(log, cfg.Events.RedisAddr, cfg.Events.RedisChannel)
		if err != nil {
			return c, fmt.Errorf("init redis event bus: %w", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set; events stay in process")
		c.Bus = bus.NewMemoryBus(log)
	}

	// Neo4j
	c.Neo4j, err = neo4jdb.New(log, neo4jdb.Config{
		URI:      cfg.Neo4j.URI,
		User:     cfg.Neo4j.User,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	})
	if err != nil {
		return c, fmt.Errorf("init neo4j: %w", err)
	}

	// Object storage
	c.Bucket, err = resolveBucketService(log, cfg.Storage)
	if err != nil {
		return c, err
	}

	// ffprobe
	if cfg.Media.ProbeEnabled {
		tools := localmedia.New(log, localmedia.Config{
			FFProbePath: cfg.Media.FFProbePath,
			WorkRoot:    cfg.Media.WorkRoot,
			Timeout:     cfg.Media.ProbeTimeout,
		})
		if err := tools.AssertReady(ctx); err != nil {
			log.Warn("Media probing disabled", "error", err)
		} else {
			c.Media = tools
		}
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Neo4j != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = c.Neo4j.Close(ctx)
		cancel()
	}
	if c.Badger != nil {
		_ = c.Badger.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
