package views

import (
	"math"
	"testing"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
)

func TestNewPageCounters(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, PageRequest{Page: 2, Limit: 3}, 10)
	if p.TotalPages != 4 {
		t.Fatalf("TotalPages: want=4 got=%d", p.TotalPages)
	}
	if !p.HasPrevPage || !p.HasNextPage {
		t.Fatalf("expected prev and next: %+v", p)
	}
	if *p.PrevPage != 1 || *p.NextPage != 3 {
		t.Fatalf("prev/next: got=%d/%d", *p.PrevPage, *p.NextPage)
	}
}

func TestNewPagePastEndIsEmptyNotError(t *testing.T) {
	p := NewPage[int](nil, PageRequest{Page: 9, Limit: 5}, 12)
	if p.Docs == nil || len(p.Docs) != 0 {
		t.Fatalf("docs should be an empty slice, got %#v", p.Docs)
	}
	if p.HasNextPage {
		t.Fatalf("no next page past the end")
	}
	if p.TotalPages != 3 {
		t.Fatalf("TotalPages: want=3 got=%d", p.TotalPages)
	}
}

func TestPageRequestValidation(t *testing.T) {
	if err := (PageRequest{Page: 0, Limit: 10}).Validate(); !errs.IsCode(err, errs.InvalidArgument) {
		t.Fatalf("page 0 must be invalid, got %v", err)
	}
	if err := (PageRequest{Page: 1, Limit: 0}).Validate(); !errs.IsCode(err, errs.InvalidArgument) {
		t.Fatalf("limit 0 must be invalid, got %v", err)
	}
	n := PageRequest{Limit: 500}.Normalize()
	if n.Page != 1 || n.Limit != MaxPageSize {
		t.Fatalf("Normalize: got %+v", n)
	}
	if n.Offset() != 0 {
		t.Fatalf("Offset: got %d", n.Offset())
	}
}

func TestOffsetSaturates(t *testing.T) {
	cases := []struct {
		req  PageRequest
		want int
	}{
		{PageRequest{Page: 1, Limit: 10}, 0},
		{PageRequest{Page: 3, Limit: 10}, 20},
		{PageRequest{Page: 1 << 62, Limit: 4}, math.MaxInt},
		{PageRequest{Page: 1<<62 + 1, Limit: 4}, math.MaxInt},
		{PageRequest{Page: math.MaxInt, Limit: MaxPageSize}, math.MaxInt},
	}
	for _, tc := range cases {
		if got := tc.req.Offset(); got != tc.want {
			t.Fatalf("Offset(%+v): want=%d got=%d", tc.req, tc.want, got)
		}
	}
}
