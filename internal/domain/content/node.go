package content

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
)

// Node is the surface shared by Video, Comment and Post that the guard,
// planner and feed work against.
type Node interface {
	Ref() social.TargetRef
	Owner() uuid.UUID
	Created() time.Time
}

func OwnerIDs[N Node](nodes []N) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(nodes))
	out := make([]uuid.UUID, 0, len(nodes))
	for _, n := range nodes {
		id := n.Owner()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
