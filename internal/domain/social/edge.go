package social

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
)

type EdgeKind string

const (
	KindLike         EdgeKind = "like"
	KindSubscription EdgeKind = "subscription"
)

type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetPost    TargetKind = "post"
	TargetChannel TargetKind = "channel"
)

// TargetRef is the tagged target of an edge. Like edges point at one of the
// three content kinds; Subscription edges always point at a channel.
type TargetRef struct {
	Kind TargetKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

func Ref(kind TargetKind, id uuid.UUID) TargetRef { return TargetRef{Kind: kind, ID: id} }

func (r TargetRef) String() string { return string(r.Kind) + ":" + r.ID.String() }

func (r TargetRef) IsContent() bool {
	switch r.Kind {
	case TargetVideo, TargetComment, TargetPost:
		return true
	}
	return false
}

// EdgeKey identifies the single edge allowed per (kind, subject, target).
type EdgeKey struct {
	Kind      EdgeKind
	SubjectID uuid.UUID
	Target    TargetRef
}

func LikeKey(subject uuid.UUID, target TargetRef) EdgeKey {
	return EdgeKey{Kind: KindLike, SubjectID: subject, Target: target}
}

func SubscriptionKey(subscriber, channel uuid.UUID) EdgeKey {
	return EdgeKey{Kind: KindSubscription, SubjectID: subscriber, Target: Ref(TargetChannel, channel)}
}

// ValidTarget reports whether kind may point at target kind tk.
func ValidTarget(kind EdgeKind, tk TargetKind) bool {
	switch kind {
	case KindLike:
		return Ref(tk, uuid.Nil).IsContent()
	case KindSubscription:
		return tk == TargetChannel
	}
	return false
}

func (k EdgeKey) Validate() error {
	const op = "EdgeKey.Validate"
	if k.Kind != KindLike && k.Kind != KindSubscription {
		return errs.Newf(errs.InvalidArgument, op, "unknown edge kind %q", k.Kind)
	}
	if k.SubjectID == uuid.Nil {
		return errs.New(errs.InvalidArgument, op, "subject id is required")
	}
	if k.Target.ID == uuid.Nil {
		return errs.New(errs.InvalidArgument, op, "target id is required")
	}
	if !ValidTarget(k.Kind, k.Target.Kind) {
		return errs.Newf(errs.InvalidArgument, op, "%s edge cannot target %q", k.Kind, k.Target.Kind)
	}
	return nil
}

// Edge is the store-independent view of a persisted Like or Subscription.
type Edge struct {
	ID        uuid.UUID `json:"_id"`
	Kind      EdgeKind  `json:"kind"`
	SubjectID uuid.UUID `json:"subjectId"`
	Target    TargetRef `json:"target"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e Edge) Key() EdgeKey {
	return EdgeKey{Kind: e.Kind, SubjectID: e.SubjectID, Target: e.Target}
}

// EdgeState is the outcome of a toggle.
type EdgeState string

const (
	StateAbsent  EdgeState = "absent"
	StatePresent EdgeState = "present"
)
