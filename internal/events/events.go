// Package events defines the audit events emitted by every state-changing
// operation and the publisher that fans them out to subscribers (log,
// journal, metrics).
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbkwon/voucherd/internal/core/types"
)

// Event kinds.
const (
	KindOperatorAdded     = "operator_added"
	KindOperatorRemoved   = "operator_removed"
	KindFeeChanged        = "fee_changed"
	KindWhitelistAdded    = "whitelist_added"
	KindWhitelistRemoved  = "whitelist_removed"
	KindMintedByOperator  = "minted_by_operator"
	KindMintedBySignature = "minted_by_signature"
	KindTransferred       = "transferred"
	KindApprovalChanged   = "approval_changed"
	KindAssetVerified     = "asset_verified"
	KindListingPlaced     = "listing_placed"
	KindListingUnplaced   = "listing_unplaced"
	KindListingPurchased  = "listing_purchased"
)

// Event is implemented by every audit event.
type Event interface {
	Kind() string
}

// Envelope wraps an event with its journal identity: a unique id, a
// monotonic sequence within this process and the emission time.
type Envelope struct {
	ID       string    `json:"id"`
	Sequence uint64    `json:"sequence"`
	Time     time.Time `json:"time"`
	Kind     string    `json:"kind"`
	Event    Event     `json:"event"`
}

// NewEnvelope stamps an event.
func NewEnvelope(seq uint64, ev Event) Envelope {
	return Envelope{
		ID:       uuid.NewString(),
		Sequence: seq,
		Time:     time.Now().UTC(),
		Kind:     ev.Kind(),
		Event:    ev,
	}
}

// OperatorAdded is emitted when the root owner adds an operator.
type OperatorAdded struct {
	Operator types.AccountID `json:"operator"`
}

func (OperatorAdded) Kind() string { return KindOperatorAdded }

// OperatorRemoved is emitted when the root owner removes an operator.
type OperatorRemoved struct {
	Operator types.AccountID `json:"operator"`
}

func (OperatorRemoved) Kind() string { return KindOperatorRemoved }

// FeeChanged is emitted when an operator updates the fee configuration.
type FeeChanged struct {
	Caller    types.AccountID `json:"caller"`
	Recipient types.AccountID `json:"recipient"`
	RateBps   uint32          `json:"rate_bps"`
}

func (FeeChanged) Kind() string { return KindFeeChanged }

// WhitelistAdded is emitted when an operator whitelists an account for an
// (asset, token id) pair.
type WhitelistAdded struct {
	Caller  types.AccountID `json:"caller"`
	Asset   types.AccountID `json:"asset"`
	TokenID types.TokenID   `json:"token_id"`
	Account types.AccountID `json:"account"`
}

func (WhitelistAdded) Kind() string { return KindWhitelistAdded }

// WhitelistRemoved is emitted when an operator removes a whitelist entry.
type WhitelistRemoved struct {
	Caller  types.AccountID `json:"caller"`
	Asset   types.AccountID `json:"asset"`
	TokenID types.TokenID   `json:"token_id"`
	Account types.AccountID `json:"account"`
}

func (WhitelistRemoved) Kind() string { return KindWhitelistRemoved }

// MintedByOperator is emitted for trusted-issuance mints.
type MintedByOperator struct {
	Caller   types.AccountID `json:"caller"`
	To       types.AccountID `json:"to"`
	TokenID  types.TokenID   `json:"token_id"`
	Amount   uint64          `json:"amount"`
	Metadata string          `json:"metadata,omitempty"`
}

func (MintedByOperator) Kind() string { return KindMintedByOperator }

// MintedBySignature is emitted for signature-authorized mints. The
// reference price is recorded for audit and valuation only; it never enters
// balance arithmetic.
type MintedBySignature struct {
	To             types.AccountID `json:"to"`
	TokenID        types.TokenID   `json:"token_id"`
	Amount         uint64          `json:"amount"`
	Fee            uint64          `json:"fee"`
	Net            uint64          `json:"net"`
	Nonce          uint64          `json:"nonce"`
	Metadata       string          `json:"metadata,omitempty"`
	ReferencePrice uint64          `json:"reference_price,omitempty"`
}

func (MintedBySignature) Kind() string { return KindMintedBySignature }

// Transferred is emitted for signature-authorized transfers and for market
// custody moves.
type Transferred struct {
	From    types.AccountID `json:"from"`
	To      types.AccountID `json:"to"`
	TokenID types.TokenID   `json:"token_id"`
	Amount  uint64          `json:"amount"`
	Nonce   uint64          `json:"nonce,omitempty"`
}

func (Transferred) Kind() string { return KindTransferred }

// ApprovalChanged is emitted when a holder grants or revokes custody
// approval.
type ApprovalChanged struct {
	Holder   types.AccountID `json:"holder"`
	Operator types.AccountID `json:"operator"`
	Approved bool            `json:"approved"`
}

func (ApprovalChanged) Kind() string { return KindApprovalChanged }

// AssetVerified is emitted when an operator verifies a voucher contract.
type AssetVerified struct {
	Caller types.AccountID `json:"caller"`
	Asset  types.AccountID `json:"asset"`
}

func (AssetVerified) Kind() string { return KindAssetVerified }

// ListingPlaced is emitted when a seller places tokens for sale.
type ListingPlaced struct {
	ListingID uint64          `json:"listing_id"`
	Seller    types.AccountID `json:"seller"`
	Asset     types.AccountID `json:"asset"`
	TokenID   types.TokenID   `json:"token_id"`
	Amount    uint64          `json:"amount"`
	UnitPrice uint64          `json:"unit_price"`
}

func (ListingPlaced) Kind() string { return KindListingPlaced }

// ListingUnplaced is emitted when a seller withdraws escrowed tokens.
type ListingUnplaced struct {
	ListingID uint64          `json:"listing_id"`
	Seller    types.AccountID `json:"seller"`
	Amount    uint64          `json:"amount"`
	Remaining uint64          `json:"remaining"`
}

func (ListingUnplaced) Kind() string { return KindListingUnplaced }

// ListingPurchased is emitted on settlement.
type ListingPurchased struct {
	ListingID  uint64          `json:"listing_id"`
	Buyer      types.AccountID `json:"buyer"`
	Seller     types.AccountID `json:"seller"`
	Asset      types.AccountID `json:"asset"`
	TokenID    types.TokenID   `json:"token_id"`
	Amount     uint64          `json:"amount"`
	TotalPrice uint64          `json:"total_price"`
	Fee        uint64          `json:"fee"`
	Net        uint64          `json:"net"`
	Remaining  uint64          `json:"remaining"`
}

func (ListingPurchased) Kind() string { return KindListingPurchased }
