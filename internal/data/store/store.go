package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/user"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

// EdgeStore persists Like and Subscription edges. Uniqueness per
// (kind, subject, target) is enforced by the implementation, never the caller:
// concurrent TryInsert calls for one key yield one success and ErrAlreadyExists
// for the rest.
type EdgeStore interface {
	TryInsert(dbc dbctx.Context, key social.EdgeKey) (*social.Edge, error)
	Remove(dbc dbctx.Context, key social.EdgeKey) error
	Exists(dbc dbctx.Context, key social.EdgeKey) (bool, error)

	CountByTarget(dbc dbctx.Context, kind social.EdgeKind, target social.TargetRef) (int64, error)
	// CountByTargets is the batched form; targets without edges map to 0.
	CountByTargets(dbc dbctx.Context, kind social.EdgeKind, targets []social.TargetRef) (map[social.TargetRef]int64, error)
	CountBySubject(dbc dbctx.Context, kind social.EdgeKind, subject uuid.UUID, targetKind social.TargetKind) (int64, error)
	// ListTargets returns the subset of targets the subject has an edge to.
	ListTargets(dbc dbctx.Context, kind social.EdgeKind, subject uuid.UUID, targets []social.TargetRef) (map[social.TargetRef]bool, error)

	// Newest first.
	ListBySubject(dbc dbctx.Context, kind social.EdgeKind, subject uuid.UUID, targetKind social.TargetKind, page views.PageRequest) ([]social.Edge, error)
	ListByTarget(dbc dbctx.Context, kind social.EdgeKind, target social.TargetRef, page views.PageRequest) ([]social.Edge, error)

	// Sweep support.
	RemoveByTarget(dbc dbctx.Context, kind social.EdgeKind, target social.TargetRef) (int64, error)
	ScanTargetIDs(dbc dbctx.Context, kind social.EdgeKind, targetKind social.TargetKind, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

type VideoStore interface {
	Create(dbc dbctx.Context, v *content.Video) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*content.Video, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*content.Video, error)
	// Find runs the staged feed query and returns the page plus the total
	// size of the staged candidate set.
	Find(dbc dbctx.Context, q VideoQuery) ([]*content.Video, int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (*content.Video, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// IncrementViews is a single atomic update and returns the new counter.
	IncrementViews(dbc dbctx.Context, id uuid.UUID) (int64, error)
	// TogglePublished flips the publish flag atomically and returns the row.
	TogglePublished(dbc dbctx.Context, id uuid.UUID) (*content.Video, error)
	// ListIDsByOwner pages ids in ascending order after the given id;
	// uuid.Nil starts at the beginning.
	ListIDsByOwner(dbc dbctx.Context, owner uuid.UUID, after uuid.UUID, limit int) ([]uuid.UUID, error)
	OwnerTotals(dbc dbctx.Context, owner uuid.UUID) (videos int64, views int64, err error)
}

type CommentStore interface {
	Create(dbc dbctx.Context, c *content.Comment) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*content.Comment, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*content.Comment, error)
	ListByVideo(dbc dbctx.Context, videoID uuid.UUID, page views.PageRequest) ([]*content.Comment, int64, error)
	CountByVideos(dbc dbctx.Context, videoIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ListIDsByVideo(dbc dbctx.Context, videoID uuid.UUID) ([]uuid.UUID, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (*content.Comment, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteByVideo(dbc dbctx.Context, videoID uuid.UUID) (int64, error)
}

type PostStore interface {
	Create(dbc dbctx.Context, p *content.Post) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*content.Post, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*content.Post, error)
	ListByOwner(dbc dbctx.Context, owner uuid.UUID, page views.PageRequest) ([]*content.Post, int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (*content.Post, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type UserStore interface {
	// Upsert inserts the profile or refreshes its profile fields.
	Upsert(dbc dbctx.Context, u *user.User) (*user.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*user.User, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*user.User, error)
}

type WatchHistoryStore interface {
	// Append is a single insert; concurrent appends never overwrite each other.
	Append(dbc dbctx.Context, userID, videoID uuid.UUID) (*user.WatchHistoryEntry, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, page views.PageRequest) ([]*user.WatchHistoryEntry, int64, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

// Handle is built once at process start and passed to every component.
type Handle struct {
	DB       *gorm.DB
	Tx       TxRunner
	Edges    EdgeStore
	Videos   VideoStore
	Comments CommentStore
	Posts    PostStore
	Users    UserStore
	History  WatchHistoryStore
}
