// Package whitelist implements per-(asset, token id) trading eligibility.
// Gating is scoped to a specific issued instrument rather than the holder's
// identity alone, since eligibility is tied to the instrument's regulatory
// scope.
package whitelist

import (
	"fmt"

	"github.com/hbkwon/voucherd/internal/core/access"
	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/events"
)

// Manager owns the whitelist sets. Writes are gated by the access
// controller.
type Manager struct {
	access *access.Controller
}

// NewManager creates a whitelist manager over the given access controller.
func NewManager(ac *access.Controller) *Manager {
	return &Manager{access: ac}
}

// Add whitelists an account for (asset, tokenID). Operator-only.
func (m *Manager) Add(v state.View, caller, asset types.AccountID, tokenID types.TokenID, account types.AccountID) (events.Event, error) {
	if err := m.access.RequireOperator(v, caller); err != nil {
		return nil, fmt.Errorf("add whitelist: %w", err)
	}
	if err := state.PutMarker(v, state.WhitelistKey(asset, tokenID, account)); err != nil {
		return nil, err
	}
	return events.WhitelistAdded{Caller: caller, Asset: asset, TokenID: tokenID, Account: account}, nil
}

// Remove drops an account from the whitelist for (asset, tokenID).
// Operator-only.
func (m *Manager) Remove(v state.View, caller, asset types.AccountID, tokenID types.TokenID, account types.AccountID) (events.Event, error) {
	if err := m.access.RequireOperator(v, caller); err != nil {
		return nil, fmt.Errorf("remove whitelist: %w", err)
	}
	if err := v.Delete(state.WhitelistKey(asset, tokenID, account)); err != nil {
		return nil, err
	}
	return events.WhitelistRemoved{Caller: caller, Asset: asset, TokenID: tokenID, Account: account}, nil
}

// IsWhitelisted reports eligibility of account for (asset, tokenID).
func (m *Manager) IsWhitelisted(r state.Reader, asset types.AccountID, tokenID types.TokenID, account types.AccountID) (bool, error) {
	return r.Has(state.WhitelistKey(asset, tokenID, account))
}
