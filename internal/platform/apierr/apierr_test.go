package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
)

func TestFromMapsDomainCodes(t *testing.T) {
	cases := []struct {
		code errs.Code
		want int
	}{
		{errs.InvalidArgument, http.StatusBadRequest},
		{errs.NotFound, http.StatusNotFound},
		{errs.Forbidden, http.StatusForbidden},
		{errs.Conflict, http.StatusConflict},
		{errs.DependencyFailure, http.StatusBadGateway},
		{errs.Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := fmt.Errorf("handler: %w", errs.New(tc.code, "op", "boom"))
		got := From(err)
		if got.Status != tc.want {
			t.Fatalf("%s: want=%d got=%d", tc.code, tc.want, got.Status)
		}
		if got.Code != string(tc.code) {
			t.Fatalf("%s: code got=%s", tc.code, got.Code)
		}
	}
}

func TestFromPlainErrorIsInternal(t *testing.T) {
	got := From(errors.New("disk on fire"))
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("want 500 got=%d", got.Status)
	}
}

func TestFromKeepsExistingAPIError(t *testing.T) {
	orig := New(http.StatusTeapot, "teapot", errors.New("short and stout"))
	if got := From(fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Fatalf("expected the wrapped *Error to be returned as-is")
	}
}
