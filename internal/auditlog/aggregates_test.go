package auditlog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_EmptyInputSkipsStore(t *testing.T) {
	store := &memoryStore{}
	resolver := NewAggregateResolver(store)

	for _, ids := range [][]uuid.UUID{nil, {}, {uuid.Nil, uuid.Nil}} {
		got, err := resolver.Resolve(context.Background(), ids)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Empty(t, store.aggregateCalls)
}

func TestResolve_DeduplicatesIDs(t *testing.T) {
	store := scenarioStore()
	other := uuid.New()

	got, err := NewAggregateResolver(store).Resolve(context.Background(),
		[]uuid.UUID{correlation, other, correlation, uuid.Nil, other})
	require.NoError(t, err)

	require.Len(t, store.aggregateCalls, 1)
	assert.Equal(t, []uuid.UUID{correlation, other}, store.aggregateCalls[0])

	require.Len(t, got, 1, "ids without records are absent")
	assert.Equal(t, 2, got[correlation].Count)
	_, found := got[other]
	assert.False(t, found)
}

func TestResolve_StoreError(t *testing.T) {
	store := scenarioStore()
	store.aggErr = errors.New("boom")

	_, err := NewAggregateResolver(store).Resolve(context.Background(), []uuid.UUID{correlation})
	assert.EqualError(t, err, "boom")
}
