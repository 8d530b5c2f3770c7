package auditdb

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/events"
)

func sqliteConfig(t *testing.T, threshold int) Config {
	t.Helper()
	return Config{
		Driver:               DriverSQLite,
		Path:                 filepath.Join(t.TempDir(), "audit.db"),
		CompressionThreshold: threshold,
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Driver: "sqlite3", Path: "x.db"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverSQLite, cfg.Driver)

	cfg = Config{Driver: DriverSQLite}
	require.Error(t, cfg.Validate(), "sqlite needs a path")

	cfg = Config{Driver: DriverPostgres, Host: "db.internal", Database: "voucherd"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5432, cfg.Port)
	assert.Contains(t, cfg.DSN(), "host=db.internal")

	cfg = Config{Driver: DriverPostgres}
	require.Error(t, cfg.Validate(), "postgres needs host and database")

	cfg = Config{Driver: "mongodb", Path: "x"}
	require.Error(t, cfg.Validate())
}

func TestSchemaBlobColumn(t *testing.T) {
	assert.Contains(t, schemaFor(DriverSQLite), "BLOB")
	assert.Contains(t, schemaFor(DriverPostgres), "BYTEA")
}

func TestJournalRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t, 0)

	journal, err := Open(ctx, cfg)
	require.NoError(t, err)

	operator := types.AccountID{0x01}
	journal.Publish(events.NewEnvelope(1, events.OperatorAdded{Operator: operator}))
	journal.Publish(events.NewEnvelope(2, events.MintedByOperator{
		Caller:  operator,
		To:      types.AccountID{0x02},
		TokenID: 7,
		Amount:  500,
	}))

	// Close drains the write queue, so the reopened journal sees both
	// events.
	require.NoError(t, journal.Close())

	journal, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer journal.Close()

	entries, err := journal.Recent(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, uint64(1), entries[0].Seq)
	assert.Equal(t, events.KindOperatorAdded, entries[0].Kind)
	assert.NotEmpty(t, entries[0].ID)

	assert.Equal(t, uint64(2), entries[1].Seq)
	assert.Equal(t, events.KindMintedByOperator, entries[1].Kind)

	var minted events.MintedByOperator
	require.NoError(t, json.Unmarshal(entries[1].Payload, &minted))
	assert.Equal(t, uint64(500), minted.Amount)
	assert.Equal(t, types.TokenID(7), minted.TokenID)

	// Principals are stored in hex, so journal rows audit readably.
	assert.Contains(t, string(entries[0].Payload), operator.String())

	// Cursor pagination: afterSeq filters already-seen events.
	entries, err = journal.Recent(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(2), entries[0].Seq)
}

func TestJournalCompressesLargePayloads(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t, 64)

	journal, err := Open(ctx, cfg)
	require.NoError(t, err)

	// Metadata well past the threshold, and repetitive enough that lz4
	// actually shrinks it.
	metadata := strings.Repeat("carbon-credit-batch-2026 ", 40)
	journal.Publish(events.NewEnvelope(1, events.MintedByOperator{
		To:       types.AccountID{0x03},
		TokenID:  1,
		Amount:   1,
		Metadata: metadata,
	}))
	require.NoError(t, journal.Close())

	journal, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer journal.Close()

	entries, err := journal.Recent(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Recent transparently decompresses; the payload round-trips intact.
	var minted events.MintedByOperator
	require.NoError(t, json.Unmarshal(entries[0].Payload, &minted))
	assert.Equal(t, metadata, minted.Metadata)
}

func TestJournalCloseIsIdempotent(t *testing.T) {
	journal, err := Open(context.Background(), sqliteConfig(t, 0))
	require.NoError(t, err)
	require.NoError(t, journal.Close())
	// A second close must not panic on the drained channel.
	journal.Close()
}
