package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/events"
	"github.com/hbkwon/voucherd/internal/storage/kv/memorydb"
)

var (
	root     = types.AccountID{1}
	operator = types.AccountID{2}
	outsider = types.AccountID{3}
)

func newTestView(t *testing.T) *state.ApplyTable {
	t.Helper()
	store := state.NewStore(memorydb.New())
	t.Cleanup(func() { store.Close() })
	return state.NewApplyTable(store.Reader(context.Background()))
}

func TestAddOperatorRootOnly(t *testing.T) {
	c := NewController(root)
	v := newTestView(t)

	_, err := c.AddOperator(v, outsider, operator)
	require.ErrorIs(t, err, ErrUnauthorized)

	ev, err := c.AddOperator(v, root, operator)
	require.NoError(t, err)
	assert.Equal(t, events.OperatorAdded{Operator: operator}, ev)

	ok, err := c.IsOperator(v, operator)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddOperatorIdempotent(t *testing.T) {
	c := NewController(root)
	v := newTestView(t)

	_, err := c.AddOperator(v, root, operator)
	require.NoError(t, err)
	_, err = c.AddOperator(v, root, operator)
	require.NoError(t, err)

	ok, err := c.IsOperator(v, operator)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveOperator(t *testing.T) {
	c := NewController(root)
	v := newTestView(t)

	_, err := c.AddOperator(v, root, operator)
	require.NoError(t, err)

	_, err = c.RemoveOperator(v, outsider, operator)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.RemoveOperator(v, root, operator)
	require.NoError(t, err)

	ok, err := c.IsOperator(v, operator)
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing again is a no-op.
	_, err = c.RemoveOperator(v, root, operator)
	require.NoError(t, err)
}

func TestRequireOperator(t *testing.T) {
	c := NewController(root)
	v := newTestView(t)

	// Root is implicitly privileged without membership.
	require.NoError(t, c.RequireOperator(v, root))

	ok, err := c.IsOperator(v, root)
	require.NoError(t, err)
	assert.False(t, ok, "root should not be enumerated in the operator set")

	require.ErrorIs(t, c.RequireOperator(v, outsider), ErrUnauthorized)

	_, err = c.AddOperator(v, root, operator)
	require.NoError(t, err)
	require.NoError(t, c.RequireOperator(v, operator))
}
