package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/platform/neo4jdb"
)

// SocialGraph mirrors Like and Subscription edges into Neo4j as
// (:Principal)-[:LIKES]->(:Content) and (:Principal)-[:SUBSCRIBES]->(:Principal).
// The relational/KV edge store stays the source of truth.
type SocialGraph struct {
	client     *neo4jdb.Client
	log        *logger.Logger
	schemaOnce sync.Once
}

func NewSocialGraph(client *neo4jdb.Client, log *logger.Logger) *SocialGraph {
	if log == nil {
		log = logger.Nop()
	}
	return &SocialGraph{client: client, log: log.With("graph", "SocialGraph")}
}

func (g *SocialGraph) Enabled() bool {
	return g != nil && g.client != nil && g.client.Driver != nil
}

func (g *SocialGraph) session(ctx context.Context) neo4j.SessionWithContext {
	return g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.client.Database,
	})
}

func (g *SocialGraph) ensureSchema(ctx context.Context, session neo4j.SessionWithContext) {
	g.schemaOnce.Do(func() {
		for _, stmt := range []string{
			`CREATE CONSTRAINT principal_id_unique IF NOT EXISTS FOR (p:Principal) REQUIRE p.id IS UNIQUE`,
			`CREATE CONSTRAINT content_id_unique IF NOT EXISTS FOR (c:Content) REQUIRE c.id IS UNIQUE`,
		} {
			res, err := session.Run(ctx, stmt, nil)
			if err != nil {
				g.log.Warn("neo4j schema init failed (continuing)", "error", err)
				continue
			}
			_, _ = res.Consume(ctx)
		}
	})
}

// ProjectEdge writes or removes the relationship matching the toggled edge.
func (g *SocialGraph) ProjectEdge(ctx context.Context, key social.EdgeKey, state social.EdgeState) error {
	if !g.Enabled() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	query, err := edgeCypher(key.Kind, state)
	if err != nil {
		return err
	}

	session := g.session(ctx)
	defer session.Close(ctx)
	g.ensureSchema(ctx, session)

	params := map[string]any{
		"subject_id":  key.SubjectID.String(),
		"target_id":   key.Target.ID.String(),
		"target_kind": string(key.Target.Kind),
		"synced_at":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

// DropContent detaches and deletes a content node after its record is gone.
func (g *SocialGraph) DropContent(ctx context.Context, target social.TargetRef) error {
	if !g.Enabled() || !target.IsContent() {
		return nil
	}
	session := g.session(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (c:Content {id: $id}) DETACH DELETE c`, map[string]any{"id": target.ID.String()})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func edgeCypher(kind social.EdgeKind, state social.EdgeState) (string, error) {
	switch {
	case kind == social.KindLike && state == social.StatePresent:
		return `
MERGE (p:Principal {id: $subject_id})
MERGE (c:Content {id: $target_id})
SET c.kind = $target_kind
MERGE (p)-[r:LIKES]->(c)
SET r.synced_at = $synced_at
`, nil
	case kind == social.KindLike && state == social.StateAbsent:
		return `
MATCH (:Principal {id: $subject_id})-[r:LIKES]->(:Content {id: $target_id})
DELETE r
`, nil
	case kind == social.KindSubscription && state == social.StatePresent:
		return `
MERGE (p:Principal {id: $subject_id})
MERGE (ch:Principal {id: $target_id})
MERGE (p)-[r:SUBSCRIBES]->(ch)
SET r.synced_at = $synced_at
`, nil
	case kind == social.KindSubscription && state == social.StateAbsent:
		return `
MATCH (:Principal {id: $subject_id})-[r:SUBSCRIBES]->(:Principal {id: $target_id})
DELETE r
`, nil
	}
	return "", fmt.Errorf("graph: unsupported edge projection %s/%s", kind, state)
}
