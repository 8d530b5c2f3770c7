// Package fees implements the fee configuration and the fee split used by
// signature-authorized minting and marketplace settlement.
package fees

import (
	"errors"
	"fmt"

	"github.com/hbkwon/voucherd/internal/core/access"
	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/events"
)

const (
	// RateDenominator converts basis points to a proportion (10000 = 100%).
	RateDenominator = 10000

	// MaxRateBps caps the fee rate at 10%.
	MaxRateBps = 1000
)

var (
	// ErrInvalidFeeRate is returned when a rate exceeds MaxRateBps.
	ErrInvalidFeeRate = errors.New("invalid fee rate")

	// ErrInvalidFeeRecipient is returned when the recipient is the zero
	// account.
	ErrInvalidFeeRecipient = errors.New("invalid fee recipient")
)

// Config is the persisted fee configuration.
type Config struct {
	Recipient types.AccountID `codec:"r"`
	RateBps   uint32          `codec:"b"`
}

// Manager reads and writes the fee configuration. Writes are gated by the
// access controller.
type Manager struct {
	access *access.Controller
}

// NewManager creates a fee manager over the given access controller.
func NewManager(ac *access.Controller) *Manager {
	return &Manager{access: ac}
}

// Genesis writes the initial fee configuration, bypassing operator gating.
// Used once when bootstrapping an empty state store.
func (m *Manager) Genesis(v state.View, recipient types.AccountID, rateBps uint32) error {
	if err := validate(recipient, rateBps); err != nil {
		return err
	}
	return putConfig(v, Config{Recipient: recipient, RateBps: rateBps})
}

// SetFee updates the fee configuration. Operator-only.
func (m *Manager) SetFee(v state.View, caller types.AccountID, rateBps uint32, recipient types.AccountID) (events.Event, error) {
	if err := m.access.RequireOperator(v, caller); err != nil {
		return nil, fmt.Errorf("set fee: %w", err)
	}
	if err := validate(recipient, rateBps); err != nil {
		return nil, err
	}
	if err := putConfig(v, Config{Recipient: recipient, RateBps: rateBps}); err != nil {
		return nil, err
	}
	return events.FeeChanged{Caller: caller, Recipient: recipient, RateBps: rateBps}, nil
}

// Current returns the current fee configuration.
func (m *Manager) Current(r state.Reader) (Config, error) {
	data, err := r.Get(state.FeeConfigKey())
	if err != nil {
		return Config{}, err
	}
	if data == nil {
		return Config{}, errors.New("fee configuration not initialized")
	}
	var cfg Config
	if err := state.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ComputeFee splits a gross amount into (fee, net). The fee rounds down, so
// the protocol never over-collects relative to the true proportional split,
// and fee+net == gross holds for every input.
func (m *Manager) ComputeFee(r state.Reader, gross uint64) (fee, net uint64, err error) {
	cfg, err := m.Current(r)
	if err != nil {
		return 0, 0, err
	}
	fee = Split(gross, cfg.RateBps)
	return fee, gross - fee, nil
}

// Split computes the fee portion of gross at rateBps, rounding down.
// The intermediate product cannot overflow: gross*rate is computed as
// (gross/10000)*rate + (gross%10000)*rate/10000, each term bounded.
func Split(gross uint64, rateBps uint32) uint64 {
	rate := uint64(rateBps)
	return (gross/RateDenominator)*rate + (gross%RateDenominator)*rate/RateDenominator
}

func validate(recipient types.AccountID, rateBps uint32) error {
	if rateBps > MaxRateBps {
		return fmt.Errorf("%w: %d exceeds cap %d", ErrInvalidFeeRate, rateBps, MaxRateBps)
	}
	if recipient.IsZero() {
		return ErrInvalidFeeRecipient
	}
	return nil
}

func putConfig(v state.View, cfg Config) error {
	data, err := state.Marshal(cfg)
	if err != nil {
		return err
	}
	return v.Put(state.FeeConfigKey(), data)
}
