// Package stable defines the payment rail the marketplace settles against:
// the standard balance/transfer/allowance surface of a stable-value asset.
// The shipped implementation is an in-process ledger persisted alongside
// the voucher state, so settlement stays atomic; external rails plug in
// behind the same interface.
package stable

import (
	"errors"
	"fmt"

	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the
	// payer's balance.
	ErrInsufficientBalance = errors.New("insufficient payment balance")

	// ErrInsufficientAllowance is returned when a delegated transfer
	// exceeds the spender's allowance.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrBalanceOverflow is returned when a credit would wrap a balance
	// past the uint64 range.
	ErrBalanceOverflow = errors.New("payment balance overflow")
)

// Asset is the payment-asset surface consumed by the marketplace. Methods
// take the operation's state view so an in-process implementation joins the
// caller's atomic unit; external adapters may ignore it.
type Asset interface {
	BalanceOf(r state.Reader, account types.AccountID) (uint64, error)
	Allowance(r state.Reader, owner, spender types.AccountID) (uint64, error)
	Approve(v state.View, owner, spender types.AccountID, amount uint64) error
	Transfer(v state.View, from, to types.AccountID, amount uint64) error

	// TransferFrom moves funds from `from` to `to` on behalf of `spender`,
	// consuming allowance.
	TransferFrom(v state.View, spender, from, to types.AccountID, amount uint64) error
}

// Ledger is the in-process payment ledger (the deployment analog of a
// testnet USDT contract). Minting is unrestricted by design: the rail's
// trust model lives outside this system, which only consumes its
// balance/transfer/allowance surface.
type Ledger struct{}

// NewLedger creates the in-process payment ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Mint credits `to` out of thin air. Standalone deployments and tests use
// this to fund buyers.
func (s *Ledger) Mint(v state.View, to types.AccountID, amount uint64) error {
	balance, err := getUint64(v, state.StableBalanceKey(to))
	if err != nil {
		return err
	}
	if balance+amount < balance {
		return fmt.Errorf("%w: balance %d, credit %d", ErrBalanceOverflow, balance, amount)
	}
	return putUint64(v, state.StableBalanceKey(to), balance+amount)
}

func (s *Ledger) BalanceOf(r state.Reader, account types.AccountID) (uint64, error) {
	return getUint64(r, state.StableBalanceKey(account))
}

func (s *Ledger) Allowance(r state.Reader, owner, spender types.AccountID) (uint64, error) {
	return getUint64(r, state.StableAllowanceKey(owner, spender))
}

func (s *Ledger) Approve(v state.View, owner, spender types.AccountID, amount uint64) error {
	return putUint64(v, state.StableAllowanceKey(owner, spender), amount)
}

func (s *Ledger) Transfer(v state.View, from, to types.AccountID, amount uint64) error {
	return s.move(v, from, to, amount)
}

func (s *Ledger) TransferFrom(v state.View, spender, from, to types.AccountID, amount uint64) error {
	allowance, err := s.Allowance(v, from, spender)
	if err != nil {
		return err
	}
	if allowance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientAllowance, allowance, amount)
	}
	if err := s.move(v, from, to, amount); err != nil {
		return err
	}
	return putUint64(v, state.StableAllowanceKey(from, spender), allowance-amount)
}

func (s *Ledger) move(v state.View, from, to types.AccountID, amount uint64) error {
	fromBalance, err := getUint64(v, state.StableBalanceKey(from))
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, fromBalance, amount)
	}
	if from == to {
		return nil
	}
	toBalance, err := getUint64(v, state.StableBalanceKey(to))
	if err != nil {
		return err
	}
	if toBalance+amount < toBalance {
		return fmt.Errorf("%w: balance %d, credit %d", ErrBalanceOverflow, toBalance, amount)
	}
	if err := putUint64(v, state.StableBalanceKey(from), fromBalance-amount); err != nil {
		return err
	}
	return putUint64(v, state.StableBalanceKey(to), toBalance+amount)
}

type amountRecord struct {
	Value uint64 `codec:"v"`
}

func getUint64(r state.Reader, key []byte) (uint64, error) {
	data, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	var rec amountRecord
	if err := state.Unmarshal(data, &rec); err != nil {
		return 0, err
	}
	return rec.Value, nil
}

func putUint64(v state.View, key []byte, value uint64) error {
	if value == 0 {
		return v.Delete(key)
	}
	data, err := state.Marshal(amountRecord{Value: value})
	if err != nil {
		return err
	}
	return v.Put(key, data)
}
