package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

// storeErr turns store sentinels into coded errors. what names the missing
// thing in the caller-facing message ("video", "comment", ...).
func storeErr(op, what string, err error) error {
	if err == nil {
		return nil
	}
	var coded *errs.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &errs.Error{Code: errs.NotFound, Op: op, Message: what + " not found", Cause: err}
	case errors.Is(err, store.ErrAlreadyExists):
		return &errs.Error{Code: errs.Conflict, Op: op, Message: what + " already exists", Cause: err}
	case errors.Is(err, store.ErrConflict):
		return &errs.Error{Code: errs.Conflict, Op: op, Message: "concurrent update, retry the request", Cause: err}
	}
	return errs.Wrap(errs.Internal, op, err)
}

func requirePrincipal(dbc dbctx.Context, op string) (uuid.UUID, error) {
	id := ctxutil.PrincipalID(dbc.Context())
	if id == uuid.Nil {
		return uuid.Nil, errs.New(errs.Unauthenticated, op, "unauthorized request")
	}
	return id, nil
}

func requireID(op, what string, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Newf(errs.InvalidArgument, op, "invalid %s id", what)
	}
	return nil
}
