package views

import (
	"math"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is 1-indexed.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return errs.New(errs.InvalidArgument, "PageRequest", "page must be >= 1")
	}
	if p.Limit < 1 {
		return errs.New(errs.InvalidArgument, "PageRequest", "limit must be >= 1")
	}
	return nil
}

// Normalize fills defaults for zero values and caps the page size.
func (p PageRequest) Normalize() PageRequest {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset saturates at math.MaxInt so a page far past the end stays past the
// end instead of wrapping around.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Page mirrors the paginate envelope clients already consume.
type Page[T any] struct {
	Docs        []T   `json:"docs"`
	TotalDocs   int64 `json:"totalDocs"`
	Limit       int   `json:"limit"`
	Page        int   `json:"page"`
	TotalPages  int   `json:"totalPages"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
	PrevPage    *int  `json:"prevPage"`
	NextPage    *int  `json:"nextPage"`
}

func NewPage[T any](docs []T, req PageRequest, total int64) Page[T] {
	if docs == nil {
		docs = []T{}
	}
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	p := Page[T]{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       req.Limit,
		Page:        req.Page,
		TotalPages:  totalPages,
		HasPrevPage: req.Page > 1,
		HasNextPage: req.Page < totalPages,
	}
	if p.HasPrevPage {
		prev := req.Page - 1
		p.PrevPage = &prev
	}
	if p.HasNextPage {
		next := req.Page + 1
		p.NextPage = &next
	}
	return p
}

// MapPage converts the docs of a page while keeping its counters.
func MapPage[T, U any](in Page[T], docs []U) Page[U] {
	if docs == nil {
		docs = []U{}
	}
	return Page[U]{
		Docs:        docs,
		TotalDocs:   in.TotalDocs,
		Limit:       in.Limit,
		Page:        in.Page,
		TotalPages:  in.TotalPages,
		HasPrevPage: in.HasPrevPage,
		HasNextPage: in.HasNextPage,
		PrevPage:    in.PrevPage,
		NextPage:    in.NextPage,
	}
}
