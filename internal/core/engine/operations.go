package engine

import (
	"context"

	"github.com/hbkwon/voucherd/internal/core/fees"
	"github.com/hbkwon/voucherd/internal/core/market"
	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/events"
)

// Access control.

func (e *Engine) AddOperator(ctx context.Context, caller, operator types.AccountID) error {
	return e.apply(ctx, "add_operator", func(v state.View) (events.Event, error) {
		return e.access.AddOperator(v, caller, operator)
	})
}

func (e *Engine) RemoveOperator(ctx context.Context, caller, operator types.AccountID) error {
	return e.apply(ctx, "remove_operator", func(v state.View) (events.Event, error) {
		return e.access.RemoveOperator(v, caller, operator)
	})
}

// Fee configuration.

func (e *Engine) SetFee(ctx context.Context, caller types.AccountID, rateBps uint32, recipient types.AccountID) error {
	return e.apply(ctx, "set_fee", func(v state.View) (events.Event, error) {
		return e.fees.SetFee(v, caller, rateBps, recipient)
	})
}

// Whitelist.

func (e *Engine) AddWhitelist(ctx context.Context, caller, asset types.AccountID, tokenID types.TokenID, account types.AccountID) error {
	return e.apply(ctx, "add_whitelist", func(v state.View) (events.Event, error) {
		return e.whitelist.Add(v, caller, asset, tokenID, account)
	})
}

func (e *Engine) RemoveWhitelist(ctx context.Context, caller, asset types.AccountID, tokenID types.TokenID, account types.AccountID) error {
	return e.apply(ctx, "remove_whitelist", func(v state.View) (events.Event, error) {
		return e.whitelist.Remove(v, caller, asset, tokenID, account)
	})
}

// Token ledger.

func (e *Engine) MintByOperator(ctx context.Context, caller, to types.AccountID, amount uint64, tokenID types.TokenID, metadata string) error {
	return e.apply(ctx, "mint_by_operator", func(v state.View) (events.Event, error) {
		return e.ledger.MintByOperator(v, caller, to, amount, tokenID, metadata)
	})
}

func (e *Engine) MintBySignature(ctx context.Context, to types.AccountID, amount uint64, tokenID types.TokenID, nonce uint64, metadata string, signature []byte, referencePrice uint64) error {
	return e.apply(ctx, "mint_by_signature", func(v state.View) (events.Event, error) {
		return e.ledger.MintBySignature(v, to, amount, tokenID, nonce, metadata, signature, referencePrice)
	})
}

func (e *Engine) TransferBySignature(ctx context.Context, from, to types.AccountID, tokenID types.TokenID, amount, nonce uint64, signature []byte) error {
	return e.apply(ctx, "transfer_by_signature", func(v state.View) (events.Event, error) {
		return e.ledger.TransferBySignature(v, from, to, tokenID, amount, nonce, signature)
	})
}

func (e *Engine) SetApprovalForAll(ctx context.Context, holder, operator types.AccountID, approved bool) error {
	return e.apply(ctx, "set_approval_for_all", func(v state.View) (events.Event, error) {
		return e.ledger.SetApprovalForAll(v, holder, operator, approved)
	})
}

// Marketplace.

func (e *Engine) VerifyVoucherContract(ctx context.Context, caller, asset types.AccountID) error {
	return e.apply(ctx, "verify_voucher_contract", func(v state.View) (events.Event, error) {
		return e.market.VerifyVoucherContract(v, caller, asset)
	})
}

func (e *Engine) Place(ctx context.Context, seller types.AccountID, tokenID types.TokenID, amount uint64, asset types.AccountID, unitPrice uint64) error {
	return e.apply(ctx, "place", func(v state.View) (events.Event, error) {
		return e.market.Place(v, seller, tokenID, amount, asset, unitPrice)
	})
}

func (e *Engine) UnPlace(ctx context.Context, caller types.AccountID, listingID, amount uint64) error {
	return e.apply(ctx, "unplace", func(v state.View) (events.Event, error) {
		return e.market.UnPlace(v, caller, listingID, amount)
	})
}

func (e *Engine) PurchaseInUSDT(ctx context.Context, buyer types.AccountID, listingID, amount uint64) error {
	return e.apply(ctx, "purchase_in_usdt", func(v state.View) (events.Event, error) {
		return e.market.PurchaseInUSDT(v, buyer, listingID, amount)
	})
}

// Payment rail (standalone deployments fund and approve through the
// engine; external rails manage these outside).

func (e *Engine) FundPayment(ctx context.Context, to types.AccountID, amount uint64) error {
	return e.apply(ctx, "fund_payment", func(v state.View) (events.Event, error) {
		return nil, e.payment.Mint(v, to, amount)
	})
}

func (e *Engine) ApprovePayment(ctx context.Context, owner, spender types.AccountID, amount uint64) error {
	return e.apply(ctx, "approve_payment", func(v state.View) (events.Event, error) {
		return nil, e.payment.Approve(v, owner, spender, amount)
	})
}

// Queries. Reads go straight to committed state; backends apply commit
// batches atomically so a reader never observes a half-applied operation.

func (e *Engine) IsOperator(ctx context.Context, account types.AccountID) (bool, error) {
	return e.access.IsOperator(e.store.Reader(ctx), account)
}

func (e *Engine) IsWhitelisted(ctx context.Context, asset types.AccountID, tokenID types.TokenID, account types.AccountID) (bool, error) {
	return e.whitelist.IsWhitelisted(e.store.Reader(ctx), asset, tokenID, account)
}

func (e *Engine) FeeConfig(ctx context.Context) (fees.Config, error) {
	return e.fees.Current(e.store.Reader(ctx))
}

func (e *Engine) BalanceOf(ctx context.Context, account types.AccountID, tokenID types.TokenID) (uint64, error) {
	return e.ledger.BalanceOf(e.store.Reader(ctx), account, tokenID)
}

func (e *Engine) TotalSupply(ctx context.Context, tokenID types.TokenID) (uint64, error) {
	return e.ledger.TotalSupply(e.store.Reader(ctx), tokenID)
}

func (e *Engine) NonceConsumed(ctx context.Context, signer types.AccountID, nonce uint64) (bool, error) {
	return e.ledger.NonceConsumed(e.store.Reader(ctx), signer, nonce)
}

func (e *Engine) IsApprovedForAll(ctx context.Context, holder, operator types.AccountID) (bool, error) {
	return e.ledger.IsApprovedForAll(e.store.Reader(ctx), holder, operator)
}

func (e *Engine) GetListing(ctx context.Context, listingID uint64) (market.Listing, error) {
	return e.market.GetListing(e.store.Reader(ctx), listingID)
}

func (e *Engine) VoucherContractVerified(ctx context.Context, asset types.AccountID) (bool, error) {
	return e.market.VoucherContractVerified(e.store.Reader(ctx), asset)
}

func (e *Engine) PaymentBalanceOf(ctx context.Context, account types.AccountID) (uint64, error) {
	return e.payment.BalanceOf(e.store.Reader(ctx), account)
}

func (e *Engine) PaymentAllowance(ctx context.Context, owner, spender types.AccountID) (uint64, error) {
	return e.payment.Allowance(e.store.Reader(ctx), owner, spender)
}
