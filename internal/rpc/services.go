package rpc

import (
	"context"

	"github.com/hbkwon/voucherd/internal/core/fees"
	"github.com/hbkwon/voucherd/internal/core/market"
	"github.com/hbkwon/voucherd/internal/core/types"
)

// EngineService is the slice of the engine the RPC handlers need.
type EngineService interface {
	// Administration
	AddOperator(ctx context.Context, caller, operator types.AccountID) error
	RemoveOperator(ctx context.Context, caller, operator types.AccountID) error
	SetFee(ctx context.Context, caller types.AccountID, rateBps uint32, recipient types.AccountID) error
	AddWhitelist(ctx context.Context, caller, asset types.AccountID, tokenID types.TokenID, account types.AccountID) error
	RemoveWhitelist(ctx context.Context, caller, asset types.AccountID, tokenID types.TokenID, account types.AccountID) error
	VerifyVoucherContract(ctx context.Context, caller, asset types.AccountID) error

	// Token ledger
	MintByOperator(ctx context.Context, caller, to types.AccountID, amount uint64, tokenID types.TokenID, metadata string) error
	MintBySignature(ctx context.Context, to types.AccountID, amount uint64, tokenID types.TokenID, nonce uint64, metadata string, signature []byte, referencePrice uint64) error
	TransferBySignature(ctx context.Context, from, to types.AccountID, tokenID types.TokenID, amount, nonce uint64, signature []byte) error
	SetApprovalForAll(ctx context.Context, holder, operator types.AccountID, approved bool) error

	// Marketplace
	Place(ctx context.Context, seller types.AccountID, tokenID types.TokenID, amount uint64, asset types.AccountID, unitPrice uint64) error
	UnPlace(ctx context.Context, caller types.AccountID, listingID, amount uint64) error
	PurchaseInUSDT(ctx context.Context, buyer types.AccountID, listingID, amount uint64) error

	// Payment rail
	FundPayment(ctx context.Context, to types.AccountID, amount uint64) error
	ApprovePayment(ctx context.Context, owner, spender types.AccountID, amount uint64) error

	// Queries
	IsOperator(ctx context.Context, account types.AccountID) (bool, error)
	IsWhitelisted(ctx context.Context, asset types.AccountID, tokenID types.TokenID, account types.AccountID) (bool, error)
	FeeConfig(ctx context.Context) (fees.Config, error)
	BalanceOf(ctx context.Context, account types.AccountID, tokenID types.TokenID) (uint64, error)
	TotalSupply(ctx context.Context, tokenID types.TokenID) (uint64, error)
	NonceConsumed(ctx context.Context, signer types.AccountID, nonce uint64) (bool, error)
	IsApprovedForAll(ctx context.Context, holder, operator types.AccountID) (bool, error)
	GetListing(ctx context.Context, listingID uint64) (market.Listing, error)
	VoucherContractVerified(ctx context.Context, asset types.AccountID) (bool, error)
	PaymentBalanceOf(ctx context.Context, account types.AccountID) (uint64, error)
	PaymentAllowance(ctx context.Context, owner, spender types.AccountID) (uint64, error)
}
