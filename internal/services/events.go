package services

import (
	"context"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/realtime"
)

// EventPublisher is satisfied by bus.Bus.
type EventPublisher interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

// GraphProjector is satisfied by graph.SocialGraph.
type GraphProjector interface {
	ProjectEdge(ctx context.Context, key social.EdgeKey, state social.EdgeState) error
	DropContent(ctx context.Context, target social.TargetRef) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, realtime.Event) error { return nil }

type nopProjector struct{}

func (nopProjector) ProjectEdge(context.Context, social.EdgeKey, social.EdgeState) error { return nil }
func (nopProjector) DropContent(context.Context, social.TargetRef) error               { return nil }

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func projectorOrNop(g GraphProjector) GraphProjector {
	if g == nil {
		return nopProjector{}
	}
	return g
}
