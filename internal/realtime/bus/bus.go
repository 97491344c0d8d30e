package bus

import (
	"context"

	"github.com/yungbote/streamhub-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, ev realtime.Event) error
	// StartForwarder delivers every event published after it returns to onEvent,
	// until ctx is cancelled or the bus is closed.
	StartForwarder(ctx context.Context, onEvent func(ev realtime.Event)) error
	Close() error
}
