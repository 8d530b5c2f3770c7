// Package engine is the front door to the state machines. It serializes
// every write operation under one lock, runs it against a buffered apply
// table, and commits the buffer as a single batch — so each operation is
// one indivisible unit and a failure leaves no partial state behind.
package engine

import (
	"context"
	"sync"

	"github.com/hbkwon/voucherd/internal/core/access"
	"github.com/hbkwon/voucherd/internal/core/fees"
	"github.com/hbkwon/voucherd/internal/core/ledger"
	"github.com/hbkwon/voucherd/internal/core/market"
	"github.com/hbkwon/voucherd/internal/core/stable"
	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/core/whitelist"
	"github.com/hbkwon/voucherd/internal/events"
	"github.com/hbkwon/voucherd/internal/metrics"
)

// Config carries the engine's genesis parameters.
type Config struct {
	// LedgerID is this instance's identity, mixed into signed payloads.
	LedgerID types.LedgerID

	// RootOwner holds the operator registry.
	RootOwner types.AccountID

	// FeeRecipient and FeeRateBps seed the fee configuration on an empty
	// store.
	FeeRecipient types.AccountID
	FeeRateBps   uint32
}

// Engine wires the components over one state store.
type Engine struct {
	mu    sync.Mutex
	store *state.Store

	access    *access.Controller
	fees      *fees.Manager
	whitelist *whitelist.Manager
	ledger    *ledger.Ledger
	market    *market.Market
	payment   *stable.Ledger

	publisher *events.Publisher
	metrics   *metrics.Set
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithMetrics attaches a metrics set.
func WithMetrics(set *metrics.Set) Option {
	return func(e *Engine) { e.metrics = set }
}

// New assembles an engine over the store and, if the store is empty, writes
// the genesis fee configuration.
func New(ctx context.Context, store *state.Store, cfg Config, opts ...Option) (*Engine, error) {
	ac := access.NewController(cfg.RootOwner)
	fm := fees.NewManager(ac)
	wl := whitelist.NewManager(ac)
	lg := ledger.New(ac, fm, cfg.LedgerID)
	pay := stable.NewLedger()
	mk := market.New(ac, wl, fm, lg, pay)

	e := &Engine{
		store:     store,
		access:    ac,
		fees:      fm,
		whitelist: wl,
		ledger:    lg,
		market:    mk,
		payment:   pay,
		publisher: events.NewPublisher(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.ensureGenesis(ctx, cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Publisher returns the audit event publisher for subscriber registration.
func (e *Engine) Publisher() *events.Publisher {
	return e.publisher
}

// Market returns the marketplace, exposed for its custody identity.
func (e *Engine) Market() *market.Market {
	return e.market
}

func (e *Engine) ensureGenesis(ctx context.Context, cfg Config) error {
	reader := e.store.Reader(ctx)
	exists, err := reader.Has(state.FeeConfigKey())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	table := state.NewApplyTable(reader)
	if err := e.fees.Genesis(table, cfg.FeeRecipient, cfg.FeeRateBps); err != nil {
		return err
	}
	return e.store.Commit(ctx, table)
}

// apply runs one write operation as an atomic unit: build the buffer, run
// the mutation, commit, then publish. Any error discards the buffer.
func (e *Engine) apply(ctx context.Context, op string, fn func(v state.View) (events.Event, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	table := state.NewApplyTable(e.store.Reader(ctx))
	ev, err := fn(table)
	if err != nil {
		if e.metrics != nil {
			e.metrics.OperationsFailed.WithLabelValues(op).Inc()
		}
		return err
	}
	if err := e.store.Commit(ctx, table); err != nil {
		if e.metrics != nil {
			e.metrics.OperationsFailed.WithLabelValues(op).Inc()
		}
		return err
	}

	if e.metrics != nil {
		e.metrics.OperationsApplied.WithLabelValues(op).Inc()
		e.observe(ev)
	}
	if ev != nil {
		e.publisher.Publish(ev)
		if e.metrics != nil {
			e.metrics.EventsPublished.Inc()
		}
	}
	return nil
}

func (e *Engine) observe(ev events.Event) {
	switch typed := ev.(type) {
	case events.MintedByOperator:
		e.metrics.TokensMinted.Add(float64(typed.Amount))
	case events.MintedBySignature:
		e.metrics.TokensMinted.Add(float64(typed.Amount))
	case events.ListingPurchased:
		e.metrics.SettlementVolume.Add(float64(typed.TotalPrice))
	}
}
