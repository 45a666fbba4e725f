package auditlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/publink/publink-logs/internal/db/models"
	"github.com/publink/publink-logs/internal/telemetry"
)

// AggregateStore computes correlation group statistics in one grouped read
type AggregateStore interface {
	GetAggregatesByCorrelationIDs(ctx context.Context, correlationIDs []uuid.UUID) (map[uuid.UUID]models.ChangeAggregate, error)
}

// AggregateResolver looks up change aggregates for a set of correlation ids
type AggregateResolver struct {
	store AggregateStore
}

// NewAggregateResolver creates an AggregateResolver backed by store
func NewAggregateResolver(store AggregateStore) *AggregateResolver {
	return &AggregateResolver{store: store}
}

// Resolve returns one aggregate per input id that has at least one audit row.
// Duplicates and uuid.Nil are dropped; an empty id set returns an empty map
// without touching the store.
func (r *AggregateResolver) Resolve(ctx context.Context, correlationIDs []uuid.UUID) (map[uuid.UUID]models.ChangeAggregate, error) {
	ids := distinctIDs(correlationIDs)
	if len(ids) == 0 {
		return map[uuid.UUID]models.ChangeAggregate{}, nil
	}

	aggregates, err := r.store.GetAggregatesByCorrelationIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	telemetry.AggregateGroupsResolved.Observe(float64(len(aggregates)))
	return aggregates, nil
}

// distinctIDs keeps the first occurrence of every non-nil id, preserving order
func distinctIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
