package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

// TxRunner provides the transaction boundary for multi-write operations.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewTxRunner returns a runner backed by gorm transactions. A nil db yields a
// runner that calls fn without a transaction, for stores that are not SQL.
func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return fn(dbctx.Context{Ctx: ctx})
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
