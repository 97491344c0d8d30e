package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"gorm duplicated", gorm.ErrDuplicatedKey, ErrAlreadyExists},
		{"pg unique", &pgconn.PgError{Code: "23505"}, ErrAlreadyExists},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, ErrConflict},
		{"sqlite unique", errors.New("UNIQUE constraint failed: content_like.liked_by_id"), ErrAlreadyExists},
		{"sqlite busy", errors.New("database is locked"), ErrConflict},
	}
	for _, tc := range cases {
		got := MapError("op", tc.in)
		if !errors.Is(got, tc.want) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	if MapError("op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	other := errors.New("connection refused")
	got := MapError("op", other)
	if !errors.Is(got, other) {
		t.Fatalf("unknown errors must stay in the chain")
	}
	if errors.Is(got, ErrNotFound) || errors.Is(got, ErrAlreadyExists) {
		t.Fatalf("unknown error classified: %v", got)
	}
}
