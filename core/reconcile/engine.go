package reconcile

import (
	"context"
	"fmt"
	"strings"

	"azuread-connector/core/graph"

	"go.uber.org/zap"
)

// Upstream is the slice of the Graph client the engine needs.
type Upstream interface {
	Post(ctx context.Context, path string, payload graph.Record) (*graph.Result, error)
	Patch(ctx context.Context, path string, payload graph.Record) (*graph.Result, error)
}

// Engine reconciles pipeline entities against an upstream resource
// collection using the upsert-by-conflict pattern: create first, fall back
// to update only when the API reports a duplicate object.
type Engine struct {
	upstream Upstream
	logger   *zap.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(upstream Upstream, logger *zap.Logger) *Engine {
	return &Engine{upstream: upstream, logger: logger}
}

// Sync reconciles the batch against the given resource collection (e.g.
// "/users"), strictly in input order and one entity at a time. Entity
// failures are isolated: the batch continues past them and the returned
// error aggregates what failed. Entities already committed upstream stay
// committed — batches are not transactions.
func (e *Engine) Sync(ctx context.Context, resource string, batch []graph.Record) ([]Result, error) {
	resource = strings.TrimRight(resource, "/")

	results := make([]Result, 0, len(batch))
	var firstErr error

	for i, entity := range batch {
		res := e.syncOne(ctx, resource, i, entity)
		if res.Err != nil {
			e.logger.Error("entity reconciliation failed",
				zap.Int("index", i),
				zap.String("identity", res.Identity),
				zap.Error(res.Err),
			)
			if firstErr == nil {
				firstErr = res.Err
			}
		}
		results = append(results, res)
	}

	s := summarize(results)
	e.logger.Info("batch reconciled",
		zap.String("resource", resource),
		zap.Int("total", s.Total),
		zap.Int("created", s.Created),
		zap.Int("updated", s.Updated),
		zap.Int("disabled", s.Disabled),
		zap.Int("failed", s.Failed),
	)

	if firstErr != nil {
		return results, fmt.Errorf("%d of %d entities failed: %w", s.Failed, s.Total, firstErr)
	}
	return results, nil
}

// syncOne drives a single entity to its terminal state.
func (e *Engine) syncOne(ctx context.Context, resource string, idx int, entity graph.Record) Result {
	identity := resolveIdentity(entity)

	if entity.Deleted() {
		return e.disable(ctx, resource, idx, identity)
	}

	payload := stripMetadata(entity)

	e.logger.Info("creating entity", zap.String("identity", identity), zap.String("resource", resource))
	res, err := e.upstream.Post(ctx, resource+"/", payload)
	if err != nil {
		return Result{Index: idx, Identity: identity, State: StateFailed, Err: err}
	}
	if !res.Conflict() {
		e.logger.Info("entity created", zap.String("identity", identity))
		return Result{Index: idx, Identity: identity, State: StateCreated}
	}

	// Already exists upstream: update instead.
	return e.update(ctx, resource, idx, identity, payload)
}

// update patches an existing entity after a create conflict. The
// passwordProfile sub-object is dropped first: writing it needs a
// delegated permission the app-only credential never holds, so sending
// it would fail the whole update.
func (e *Engine) update(ctx context.Context, resource string, idx int, identity string, payload graph.Record) Result {
	if identity == "" {
		return Result{Index: idx, State: StateFailed, Err: &MissingIdentityError{Index: idx}}
	}

	delete(payload, "passwordProfile")

	e.logger.Info("entity exists, updating", zap.String("identity", identity))
	res, err := e.upstream.Patch(ctx, resource+"/"+identity, payload)
	if err != nil {
		return Result{Index: idx, Identity: identity, State: StateFailed, Err: err}
	}
	if res.Conflict() {
		return Result{Index: idx, Identity: identity, State: StateFailed,
			Err: fmt.Errorf("unexpected conflict updating %s/%s", resource, identity)}
	}

	e.logger.Info("entity updated", zap.String("identity", identity))
	return Result{Index: idx, Identity: identity, State: StateUpdated}
}

// disable deactivates a soft-deleted entity instead of deleting it.
func (e *Engine) disable(ctx context.Context, resource string, idx int, identity string) Result {
	if identity == "" {
		return Result{Index: idx, State: StateFailed, Err: &MissingIdentityError{Index: idx}}
	}

	e.logger.Info("disabling entity", zap.String("identity", identity))
	res, err := e.upstream.Patch(ctx, resource+"/"+identity, graph.Record{"accountEnabled": false})
	if err != nil {
		return Result{Index: idx, Identity: identity, State: StateFailed, Err: err}
	}
	if res.Conflict() {
		return Result{Index: idx, Identity: identity, State: StateFailed,
			Err: fmt.Errorf("unexpected conflict disabling %s/%s", resource, identity)}
	}

	e.logger.Info("entity disabled", zap.String("identity", identity))
	return Result{Index: idx, Identity: identity, State: StateDisabled}
}

// resolveIdentity picks the upstream identity for an entity: the primary
// key when present, the principal name otherwise.
func resolveIdentity(entity graph.Record) string {
	if id := entity.ID(); id != "" {
		return id
	}
	if upn, ok := entity["userPrincipalName"].(string); ok {
		return upn
	}
	return ""
}

// stripMetadata returns a copy of the entity without any connector-owned
// field, so round-tripped records never leak pipeline metadata upstream.
// The input is left untouched.
func stripMetadata(entity graph.Record) graph.Record {
	out := make(graph.Record, len(entity))
	for k, v := range entity {
		if strings.HasPrefix(k, graph.MetadataPrefix) {
			continue
		}
		out[k] = v
	}
	return out
}
