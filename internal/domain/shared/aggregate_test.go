package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type penFilled struct {
	BaseDomainEvent
}

func TestBaseAggregateRoot_BumpAndEvents(t *testing.T) {
	root := NewBaseAggregateRoot()
	require.Equal(t, 1, root.Version)
	created := root.UpdatedAt

	root.Bump()
	assert.Equal(t, 2, root.Version)
	assert.False(t, root.UpdatedAt.Before(created))

	root.Raise(&penFilled{NewBaseDomainEvent("PenFilled", AggregatePen, root.ID)})
	root.Raise(&penFilled{NewBaseDomainEvent("PenFilled", AggregatePen, root.ID)})
	assert.Len(t, root.Events(), 2)

	pulled := root.PullEvents()
	require.Len(t, pulled, 2)
	assert.Equal(t, AggregatePen, pulled[0].AggregateType())
	assert.Equal(t, root.ID, pulled[0].AggregateID())
	assert.NotEqual(t, pulled[0].EventID(), pulled[1].EventID())
	assert.Empty(t, root.Events())

	root.Raise(&penFilled{NewBaseDomainEvent("PenFilled", AggregatePen, uuid.New())})
	root.ClearEvents()
	assert.Empty(t, root.PullEvents())
}

func TestBaseAggregateRoot_StoredVersion(t *testing.T) {
	fresh := NewBaseAggregateRoot()
	assert.Zero(t, fresh.StoredVersion())

	root := RestoreAggregateRoot(NewBaseEntity(), 3)
	assert.Equal(t, 3, root.StoredVersion())
	root.Bump()
	root.Bump()
	assert.Equal(t, 5, root.Version)
	assert.Equal(t, 3, root.StoredVersion(), "bumps do not move the stored version")

	root.MarkStored()
	assert.Equal(t, 5, root.StoredVersion())
}
