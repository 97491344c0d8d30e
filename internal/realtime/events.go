package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
)

type EventType string

const (
	EventEdgeToggled    EventType = "edge_toggled"
	EventContentDeleted EventType = "content_deleted"
)

// Event is the payload carried on the bus. Consumers must tolerate duplicates
// and out-of-order delivery.
type Event struct {
	Type       EventType        `json:"type"`
	ActorID    uuid.UUID        `json:"actorId"`
	Target     social.TargetRef `json:"target"`
	EdgeKind   social.EdgeKind  `json:"edgeKind,omitempty"`
	EdgeState  social.EdgeState `json:"edgeState,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

func EdgeToggled(actor uuid.UUID, kind social.EdgeKind, target social.TargetRef, state social.EdgeState) Event {
	return Event{
		Type:       EventEdgeToggled,
		ActorID:    actor,
		Target:     target,
		EdgeKind:   kind,
		EdgeState:  state,
		OccurredAt: time.Now().UTC(),
	}
}

func ContentDeleted(actor uuid.UUID, target social.TargetRef) Event {
	return Event{
		Type:       EventContentDeleted,
		ActorID:    actor,
		Target:     target,
		OccurredAt: time.Now().UTC(),
	}
}
