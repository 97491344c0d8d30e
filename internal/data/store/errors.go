package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict is a transient write conflict (serialization failure,
	// optimistic transaction abort). Safe to retry.
	ErrConflict = errors.New("store: write conflict")
)

// MapError folds driver errors into the store sentinels. The original error
// stays in the chain.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrConflict) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", op, ErrAlreadyExists, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w: %w", op, ErrAlreadyExists, err)
		case "40001", "40P01":
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "duplicate key value"):
		return fmt.Errorf("%s: %w: %w", op, ErrAlreadyExists, err)
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "could not serialize access"):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
