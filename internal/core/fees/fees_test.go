package fees

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbkwon/voucherd/internal/core/access"
	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/storage/kv/memorydb"
)

var (
	rootAccount = types.AccountID{1}
	recipient   = types.AccountID{2}
	outsider    = types.AccountID{3}
)

func newTestView(t *testing.T) *state.ApplyTable {
	t.Helper()
	store := state.NewStore(memorydb.New())
	t.Cleanup(func() { store.Close() })
	return state.NewApplyTable(store.Reader(context.Background()))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		gross   uint64
		rateBps uint32
		want    uint64
	}{
		{"zero gross", 0, 100, 0},
		{"zero rate", 1000, 0, 0},
		{"one percent", 1000, 100, 10},
		{"ten percent", 200, 1000, 20},
		{"rounds down", 10, 100, 0},
		{"rounds down odd", 1999, 100, 19},
		{"full cap", 12345, 1000, 1234},
		{"large gross no overflow", 1 << 62, 1000, (1 << 62) / 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.gross, tt.rateBps))
		})
	}
}

func TestSplitExactness(t *testing.T) {
	// fee+net == gross must hold for every input.
	grosses := []uint64{0, 1, 9, 10000, 10001, 99999, 1<<40 + 7, 1<<63 + 12345}
	rates := []uint32{0, 1, 99, 100, 999, 1000}

	for _, gross := range grosses {
		for _, rate := range rates {
			fee := Split(gross, rate)
			net := gross - fee
			require.Equal(t, gross, fee+net)
			require.LessOrEqual(t, fee, gross)
		}
	}
}

func TestGenesisValidates(t *testing.T) {
	m := NewManager(access.NewController(rootAccount))
	v := newTestView(t)

	require.ErrorIs(t, m.Genesis(v, recipient, MaxRateBps+1), ErrInvalidFeeRate)
	require.ErrorIs(t, m.Genesis(v, types.AccountID{}, 100), ErrInvalidFeeRecipient)
	require.NoError(t, m.Genesis(v, recipient, 100))

	cfg, err := m.Current(v)
	require.NoError(t, err)
	assert.Equal(t, recipient, cfg.Recipient)
	assert.Equal(t, uint32(100), cfg.RateBps)
}

func TestSetFeeRequiresOperator(t *testing.T) {
	m := NewManager(access.NewController(rootAccount))
	v := newTestView(t)
	require.NoError(t, m.Genesis(v, recipient, 100))

	_, err := m.SetFee(v, outsider, 200, recipient)
	require.ErrorIs(t, err, access.ErrUnauthorized)

	// Root is implicitly privileged.
	_, err = m.SetFee(v, rootAccount, 200, recipient)
	require.NoError(t, err)

	cfg, err := m.Current(v)
	require.NoError(t, err)
	assert.Equal(t, uint32(200), cfg.RateBps)
}

func TestSetFeeRejectsExcessiveRate(t *testing.T) {
	m := NewManager(access.NewController(rootAccount))
	v := newTestView(t)
	require.NoError(t, m.Genesis(v, recipient, 100))

	_, err := m.SetFee(v, rootAccount, MaxRateBps+1, recipient)
	require.ErrorIs(t, err, ErrInvalidFeeRate)

	// Cap itself is accepted.
	_, err = m.SetFee(v, rootAccount, MaxRateBps, recipient)
	require.NoError(t, err)
}

func TestComputeFee(t *testing.T) {
	m := NewManager(access.NewController(rootAccount))
	v := newTestView(t)
	require.NoError(t, m.Genesis(v, recipient, 1000))

	fee, net, err := m.ComputeFee(v, 200)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), fee)
	assert.Equal(t, uint64(180), net)
}

func TestCurrentUninitialized(t *testing.T) {
	m := NewManager(access.NewController(rootAccount))
	v := newTestView(t)

	_, err := m.Current(v)
	require.Error(t, err)
}
