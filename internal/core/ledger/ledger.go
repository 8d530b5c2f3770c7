// Package ledger implements the multi-identifier voucher token ledger:
// balances keyed by (token id, principal), the nonce-consumption set that
// makes signed instructions single-use, custody approvals and total supply
// accounting.
//
// Balances can be mutated on two paths. The trusted-issuance path
// (MintByOperator) is gated by the operator set. The signature paths
// (MintBySignature, TransferBySignature) accept instructions authorized by
// an off-line-held key: the submitter and the authorizer may be different
// principals, but authorization always traces to a signature the ledger
// verifies itself.
package ledger

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hbkwon/voucherd/internal/core/access"
	"github.com/hbkwon/voucherd/internal/core/fees"
	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/crypto"
	"github.com/hbkwon/voucherd/internal/events"
)

var (
	// ErrInvalidSignature is returned when an instruction's signature is
	// malformed or was not produced by the authorizing principal.
	ErrInvalidSignature = crypto.ErrInvalidSignature

	// ErrNonceReused is returned when a (signer, nonce) pair has already
	// been consumed.
	ErrNonceReused = errors.New("nonce already used")

	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned for zero amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrBalanceOverflow is returned when a credit would wrap a balance or
	// the total supply past the uint64 range.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// sigCacheSize bounds the verified-signature cache.
const sigCacheSize = 4096

type sigCacheKey struct {
	digest [32]byte
	sig    [crypto.SignatureSize]byte
}

// Ledger owns balances, nonces and custody approvals.
type Ledger struct {
	access *access.Controller
	fees   *fees.Manager
	id     types.LedgerID

	// sigCache memoizes signature recovery, which dominates the cost of
	// the signature paths. Recovery is a pure function of (digest, sig) so
	// cached results never go stale.
	sigCache *lru.Cache[sigCacheKey, types.AccountID]
}

// New creates a ledger with the given instance identity.
func New(ac *access.Controller, fm *fees.Manager, id types.LedgerID) *Ledger {
	cache, _ := lru.New[sigCacheKey, types.AccountID](sigCacheSize)
	return &Ledger{access: ac, fees: fm, id: id, sigCache: cache}
}

// ID returns the ledger instance identity included in signed payloads.
func (l *Ledger) ID() types.LedgerID {
	return l.id
}

// MintByOperator credits `to` unconditionally. Operator-only; no whitelist
// check on this trusted-issuance path and no fee.
func (l *Ledger) MintByOperator(v state.View, caller, to types.AccountID, amount uint64, tokenID types.TokenID, metadata string) (events.Event, error) {
	if err := l.access.RequireOperator(v, caller); err != nil {
		return nil, fmt.Errorf("mint by operator: %w", err)
	}
	if amount == 0 {
		return nil, fmt.Errorf("mint by operator: %w", ErrInvalidAmount)
	}
	if err := l.credit(v, tokenID, to, amount); err != nil {
		return nil, err
	}
	if err := l.addSupply(v, tokenID, amount); err != nil {
		return nil, err
	}
	return events.MintedByOperator{Caller: caller, To: to, TokenID: tokenID, Amount: amount, Metadata: metadata}, nil
}

// MintBySignature mints `amount` under an instruction signed by `to`. The
// nonce is consumed and the fee split applied within the same atomic unit:
// `to` receives the net amount and the fee recipient the fee, so the total
// minted still equals `amount`. The reference price is recorded in the
// audit event only.
func (l *Ledger) MintBySignature(v state.View, to types.AccountID, amount uint64, tokenID types.TokenID, nonce uint64, metadata string, signature []byte, referencePrice uint64) (events.Event, error) {
	if amount == 0 {
		return nil, fmt.Errorf("mint by signature: %w", ErrInvalidAmount)
	}
	digest := crypto.MintDigest(to, tokenID, amount, nonce, l.id)
	if err := l.verifySigner(digest, signature, to); err != nil {
		return nil, fmt.Errorf("mint by signature: %w", err)
	}
	if err := l.consumeNonce(v, to, nonce); err != nil {
		return nil, fmt.Errorf("mint by signature: %w", err)
	}

	fee, net, err := l.fees.ComputeFee(v, amount)
	if err != nil {
		return nil, err
	}
	if err := l.credit(v, tokenID, to, net); err != nil {
		return nil, err
	}
	if fee > 0 {
		cfg, err := l.fees.Current(v)
		if err != nil {
			return nil, err
		}
		if err := l.credit(v, tokenID, cfg.Recipient, fee); err != nil {
			return nil, err
		}
	}
	if err := l.addSupply(v, tokenID, amount); err != nil {
		return nil, err
	}

	return events.MintedBySignature{
		To:             to,
		TokenID:        tokenID,
		Amount:         amount,
		Fee:            fee,
		Net:            net,
		Nonce:          nonce,
		Metadata:       metadata,
		ReferencePrice: referencePrice,
	}, nil
}

// TransferBySignature moves `amount` from `from` to `to` under an
// instruction signed by `from`. No fee is taken on peer transfers. Nonce
// consumption and the balance check commit in the same atomic unit as the
// move itself.
func (l *Ledger) TransferBySignature(v state.View, from, to types.AccountID, tokenID types.TokenID, amount, nonce uint64, signature []byte) (events.Event, error) {
	if amount == 0 {
		return nil, fmt.Errorf("transfer by signature: %w", ErrInvalidAmount)
	}
	digest := crypto.TransferDigest(from, to, tokenID, amount, nonce, l.id)
	if err := l.verifySigner(digest, signature, from); err != nil {
		return nil, fmt.Errorf("transfer by signature: %w", err)
	}
	if err := l.consumeNonce(v, from, nonce); err != nil {
		return nil, fmt.Errorf("transfer by signature: %w", err)
	}
	if err := l.Move(v, from, to, tokenID, amount); err != nil {
		return nil, fmt.Errorf("transfer by signature: %w", err)
	}
	return events.Transferred{From: from, To: to, TokenID: tokenID, Amount: amount, Nonce: nonce}, nil
}

// Move debits `from` and credits `to` by exactly `amount`. It carries no
// authorization of its own; callers gate it (the marketplace uses it for
// custody moves after checking approvals).
func (l *Ledger) Move(v state.View, from, to types.AccountID, tokenID types.TokenID, amount uint64) error {
	balance, err := l.balance(v, tokenID, from)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, balance, amount)
	}
	if from == to {
		return nil
	}
	if err := putBalance(v, tokenID, from, balance-amount); err != nil {
		return err
	}
	return l.credit(v, tokenID, to, amount)
}

// SetApprovalForAll grants or revokes custody approval from holder to
// operator, covering every token id. The marketplace requires this grant
// before it takes escrow custody at placement.
func (l *Ledger) SetApprovalForAll(v state.View, holder, operator types.AccountID, approved bool) (events.Event, error) {
	key := state.ApprovalKey(holder, operator)
	if approved {
		if err := state.PutMarker(v, key); err != nil {
			return nil, err
		}
	} else {
		if err := v.Delete(key); err != nil {
			return nil, err
		}
	}
	return events.ApprovalChanged{Holder: holder, Operator: operator, Approved: approved}, nil
}

// IsApprovedForAll reports whether holder granted custody approval to
// operator.
func (l *Ledger) IsApprovedForAll(r state.Reader, holder, operator types.AccountID) (bool, error) {
	return r.Has(state.ApprovalKey(holder, operator))
}

// BalanceOf returns the balance of account for tokenID.
func (l *Ledger) BalanceOf(r state.Reader, account types.AccountID, tokenID types.TokenID) (uint64, error) {
	return l.balance(r, tokenID, account)
}

// TotalSupply returns the total minted supply of tokenID.
func (l *Ledger) TotalSupply(r state.Reader, tokenID types.TokenID) (uint64, error) {
	return getUint64(r, state.SupplyKey(tokenID))
}

// NonceConsumed reports whether (signer, nonce) has been used.
func (l *Ledger) NonceConsumed(r state.Reader, signer types.AccountID, nonce uint64) (bool, error) {
	return r.Has(state.NonceKey(signer, nonce))
}

// verifySigner checks the signature through the recovery cache.
func (l *Ledger) verifySigner(digest [32]byte, signature []byte, expected types.AccountID) error {
	if len(signature) != crypto.SignatureSize {
		return ErrInvalidSignature
	}
	key := sigCacheKey{digest: digest}
	copy(key.sig[:], signature)

	signer, ok := l.sigCache.Get(key)
	if !ok {
		var err error
		signer, err = crypto.RecoverSigner(digest, signature)
		if err != nil {
			return err
		}
		l.sigCache.Add(key, signer)
	}
	if signer != expected {
		return ErrInvalidSignature
	}
	return nil
}

// consumeNonce atomically checks and inserts (signer, nonce). The insert
// lands in the same apply table as the balance mutation it authorizes, so
// two concurrent uses of one nonce cannot both commit.
func (l *Ledger) consumeNonce(v state.View, signer types.AccountID, nonce uint64) error {
	key := state.NonceKey(signer, nonce)
	used, err := v.Has(key)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: signer %s nonce %d", ErrNonceReused, signer, nonce)
	}
	return state.PutMarker(v, key)
}

func (l *Ledger) credit(v state.View, tokenID types.TokenID, account types.AccountID, amount uint64) error {
	balance, err := l.balance(v, tokenID, account)
	if err != nil {
		return err
	}
	if balance+amount < balance {
		return fmt.Errorf("%w: balance %d, credit %d", ErrBalanceOverflow, balance, amount)
	}
	return putBalance(v, tokenID, account, balance+amount)
}

func (l *Ledger) balance(r state.Reader, tokenID types.TokenID, account types.AccountID) (uint64, error) {
	return getUint64(r, state.BalanceKey(tokenID, account))
}

func (l *Ledger) addSupply(v state.View, tokenID types.TokenID, amount uint64) error {
	supply, err := getUint64(v, state.SupplyKey(tokenID))
	if err != nil {
		return err
	}
	if supply+amount < supply {
		return fmt.Errorf("%w: supply %d, mint %d", ErrBalanceOverflow, supply, amount)
	}
	return putUint64(v, state.SupplyKey(tokenID), supply+amount)
}
