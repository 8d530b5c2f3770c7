package auditdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/hbkwon/voucherd/internal/events"
	"github.com/hbkwon/voucherd/internal/storage/compression"
)

// schemaFor returns the journal schema in the dialect of the driver (the
// only divergence is the blob column type).
func schemaFor(driver string) string {
	blobType := "BLOB"
	if driver == DriverPostgres {
		blobType = "BYTEA"
	}
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS audit_events (
	id           TEXT PRIMARY KEY,
	seq          BIGINT NOT NULL,
	kind         TEXT NOT NULL,
	payload      %s NOT NULL,
	payload_size INTEGER NOT NULL,
	compression  TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_seq ON audit_events(seq);
CREATE INDEX IF NOT EXISTS idx_audit_events_kind ON audit_events(kind);
`, blobType)
}

// journalBuffer bounds the async write queue; Publish blocks when full so
// events are never dropped.
const journalBuffer = 1024

// Journal subscribes to the event publisher and persists every envelope.
type Journal struct {
	db        *sql.DB
	lz4       compression.Compressor
	threshold int

	ch     chan events.Envelope
	done   chan struct{}
	closed sync.Once
}

// Open connects to the configured database, applies the schema and starts
// the background writer.
func Open(ctx context.Context, cfg Config) (*Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("audit: failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: database unreachable: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaFor(cfg.Driver)); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: failed to apply schema: %w", err)
	}

	j := &Journal{
		db:        db,
		lz4:       &compression.LZ4Compressor{},
		threshold: cfg.CompressionThreshold,
		ch:        make(chan events.Envelope, journalBuffer),
		done:      make(chan struct{}),
	}
	go j.writeLoop()
	return j, nil
}

// Publish implements events.Subscriber.
func (j *Journal) Publish(env events.Envelope) {
	select {
	case j.ch <- env:
	case <-j.done:
	}
}

// Close drains pending events and closes the database.
func (j *Journal) Close() error {
	j.closed.Do(func() {
		close(j.ch)
		<-j.done
	})
	return j.db.Close()
}

func (j *Journal) writeLoop() {
	defer close(j.done)
	for env := range j.ch {
		if err := j.insert(env); err != nil {
			// The journal is an audit sink, not part of the atomic unit;
			// a write failure must not take the engine down with it.
			log.Printf("audit: failed to journal event %s (%s): %v", env.ID, env.Kind, err)
		}
	}
}

func (j *Journal) insert(env events.Envelope) error {
	payload, err := json.Marshal(env.Event)
	if err != nil {
		return err
	}

	stored := payload
	comp := "none"
	if j.threshold > 0 && len(payload) > j.threshold {
		if compressed, err := j.lz4.Compress(payload); err == nil && len(compressed) < len(payload) {
			stored = compressed
			comp = j.lz4.Name()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, seq, kind, payload, payload_size, compression, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		env.ID, env.Sequence, env.Kind, stored, len(payload), comp, env.Time,
	)
	return err
}

// Entry is a journaled audit event as returned by queries.
type Entry struct {
	ID      string
	Seq     uint64
	Kind    string
	Payload json.RawMessage
	Time    time.Time
}

// Recent returns up to limit journaled events with seq > afterSeq, in
// sequence order.
func (j *Journal) Recent(ctx context.Context, afterSeq uint64, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, seq, kind, payload, payload_size, compression, created_at
		 FROM audit_events WHERE seq > $1 ORDER BY seq ASC LIMIT $2`,
		afterSeq, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry       Entry
			payload     []byte
			payloadSize int
			comp        string
		)
		if err := rows.Scan(&entry.ID, &entry.Seq, &entry.Kind, &payload, &payloadSize, &comp, &entry.Time); err != nil {
			return nil, err
		}
		if comp == "lz4" {
			payload, err = j.lz4.Decompress(payload, payloadSize)
			if err != nil {
				return nil, err
			}
		}
		entry.Payload = payload
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
