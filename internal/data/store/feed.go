package store

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/domain/views"
)

// StageKind names one step of a feed query. Stages run in the order they
// appear in VideoQuery.Stages; each narrows or reorders the candidate set
// produced by the previous one.
type StageKind string

const (
	StageSearch    StageKind = "search"
	StageOwner     StageKind = "owner"
	StagePublished StageKind = "published"
	StageSort      StageKind = "sort"
)

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortViews     SortField = "views"
	SortTitle     SortField = "title"
	SortDuration  SortField = "duration"
)

// ParseSortField accepts the camelCase API names and their column spellings.
func ParseSortField(raw string) (SortField, bool) {
	switch strings.TrimSpace(raw) {
	case "createdAt", "created_at":
		return SortCreatedAt, true
	case "updatedAt", "updated_at":
		return SortUpdatedAt, true
	case "views":
		return SortViews, true
	case "title":
		return SortTitle, true
	case "duration", "duration_seconds":
		return SortDuration, true
	}
	return "", false
}

func (f SortField) Column() string {
	switch f {
	case SortUpdatedAt:
		return "updated_at"
	case SortViews:
		return "views"
	case SortTitle:
		return "title"
	case SortDuration:
		return "duration_seconds"
	default:
		return "created_at"
	}
}

type SortSpec struct {
	Field SortField
	Desc  bool
}

type VideoStage struct {
	Kind StageKind

	Text           string // StageSearch
	CandidateLimit int    // StageSearch; <=0 means unbounded
	OwnerID        uuid.UUID
	Sort           SortSpec
}

type VideoQuery struct {
	Stages []VideoStage
	Page   views.PageRequest
}

func SearchStage(text string, candidateLimit int) VideoStage {
	return VideoStage{Kind: StageSearch, Text: strings.TrimSpace(text), CandidateLimit: candidateLimit}
}
func OwnerStage(owner uuid.UUID) VideoStage { return VideoStage{Kind: StageOwner, OwnerID: owner} }
func PublishedStage() VideoStage            { return VideoStage{Kind: StagePublished} }
func SortStage(spec SortSpec) VideoStage    { return VideoStage{Kind: StageSort, Sort: spec} }
