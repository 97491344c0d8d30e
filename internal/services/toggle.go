package services

import (
	"errors"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/realtime"
)

type ToggleResult struct {
	State social.EdgeState
	// Edge is set only when State is Present.
	Edge *social.Edge
}

// ToggleEngine flips the presence of one edge per call. It is the only writer
// of Like and Subscription edges.
type ToggleEngine interface {
	Toggle(dbc dbctx.Context, key social.EdgeKey) (*ToggleResult, error)
}

type toggleEngine struct {
	edges   store.EdgeStore
	log     *logger.Logger
	events  EventPublisher
	graph   GraphProjector
	metrics *observability.Metrics
}

func NewToggleEngine(edges store.EdgeStore, log *logger.Logger, events EventPublisher, graph GraphProjector, metrics *observability.Metrics) ToggleEngine {
	return &toggleEngine{
		edges:   edges,
		log:     log.With("service", "ToggleEngine"),
		events:  publisherOrNop(events),
		graph:   projectorOrNop(graph),
		metrics: metrics,
	}
}

// Toggle reads the current state and applies the opposite action. When the
// action loses a race (insert hits AlreadyExists, remove hits NotFound) it
// retries once on the other branch; losing twice surfaces Conflict.
func (t *toggleEngine) Toggle(dbc dbctx.Context, key social.EdgeKey) (*ToggleResult, error) {
	const op = "ToggleEngine.Toggle"
	if err := key.Validate(); err != nil {
		return nil, err
	}
	kind := string(key.Kind)

	present, err := t.edges.Exists(dbc, key)
	if err != nil {
		t.metrics.IncToggle(kind, "error")
		return nil, storeErr(op, "edge", err)
	}

	res, err := t.apply(dbc, key, present)
	if lostRace(err) {
		t.metrics.IncToggleRetry(kind)
		t.log.Debug("toggle lost race, switching branch", "kind", key.Kind, "target", key.Target.String())
		res, err = t.apply(dbc, key, !present)
		if lostRace(err) {
			t.metrics.IncToggle(kind, "conflict")
			return nil, &errs.Error{Code: errs.Conflict, Op: op, Message: "edge changed concurrently, retry the request", Cause: err}
		}
	}
	if err != nil {
		t.metrics.IncToggle(kind, "error")
		return nil, storeErr(op, "edge", err)
	}
	t.metrics.IncToggle(kind, string(res.State))
	t.afterToggle(dbc, key, res.State)
	return res, nil
}

func (t *toggleEngine) apply(dbc dbctx.Context, key social.EdgeKey, present bool) (*ToggleResult, error) {
	if present {
		if err := t.edges.Remove(dbc, key); err != nil {
			return nil, err
		}
		return &ToggleResult{State: social.StateAbsent}, nil
	}
	edge, err := t.edges.TryInsert(dbc, key)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{State: social.StatePresent, Edge: edge}, nil
}

func lostRace(err error) bool {
	return errors.Is(err, store.ErrAlreadyExists) || errors.Is(err, store.ErrNotFound)
}

func (t *toggleEngine) afterToggle(dbc dbctx.Context, key social.EdgeKey, state social.EdgeState) {
	ctx := dbc.Context()
	if err := t.events.Publish(ctx, realtime.EdgeToggled(key.SubjectID, key.Kind, key.Target, state)); err != nil {
		t.metrics.IncBestEffortFailure("publish_edge_toggled")
		t.log.Warn("publish edge toggled failed", "error", err, "target", key.Target.String())
	}
	if err := t.graph.ProjectEdge(ctx, key, state); err != nil {
		t.metrics.IncBestEffortFailure("graph_project_edge")
		t.log.Warn("graph projection failed", "error", err, "target", key.Target.String())
	}
}
