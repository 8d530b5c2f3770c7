// Package market implements the listing/escrow/settlement engine. Escrow is
// a custody transfer: placed tokens move from the seller's balance to the
// market custody account inside the same balance table, so per-token-id
// conservation holds uniformly across free and escrowed funds.
package market

import (
	"errors"
	"fmt"
	"math"

	"github.com/hbkwon/voucherd/internal/core/access"
	"github.com/hbkwon/voucherd/internal/core/fees"
	"github.com/hbkwon/voucherd/internal/core/ledger"
	"github.com/hbkwon/voucherd/internal/core/stable"
	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/crypto"
	"github.com/hbkwon/voucherd/internal/events"
)

var (
	// ErrAssetNotVerified is returned when placing an unverified asset.
	ErrAssetNotVerified = errors.New("asset not verified")

	// ErrNotWhitelisted is returned when a purchase party lacks whitelist
	// membership for the listing's (asset, token id).
	ErrNotWhitelisted = errors.New("not whitelisted")

	// ErrNotSeller is returned when an unplace caller isn't the seller.
	ErrNotSeller = errors.New("caller is not the seller")

	// ErrInsufficientListedQuantity is returned when an amount exceeds the
	// listing's remaining quantity.
	ErrInsufficientListedQuantity = errors.New("insufficient listed quantity")

	// ErrListingNotFound is returned for an unknown listing id.
	ErrListingNotFound = errors.New("listing not found")

	// ErrCustodyNotApproved is returned when the seller has not granted
	// the market custody approval.
	ErrCustodyNotApproved = errors.New("market custody not approved")

	// ErrInvalidAmount is returned for zero amounts or prices.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrPriceOverflow is returned when unitPrice*amount overflows.
	ErrPriceOverflow = errors.New("total price overflows")
)

// CustodyAccount is the account holding escrowed tokens. It is a fixed
// identity with no known private key.
var CustodyAccount = crypto.CalcAccountID([]byte("voucherd/market-custody/v1"))

// Listing is a persisted market listing. Quantity 0 is the terminal state;
// records are never physically deleted.
type Listing struct {
	ID        uint64          `codec:"i" json:"id"`
	Asset     types.AccountID `codec:"c" json:"asset"`
	TokenID   types.TokenID   `codec:"t" json:"token_id"`
	Quantity  uint64          `codec:"q" json:"quantity"`
	UnitPrice uint64          `codec:"p" json:"unit_price"`
	Seller    types.AccountID `codec:"s" json:"seller"`
}

// WhitelistChecker is the eligibility surface the market consults.
type WhitelistChecker interface {
	IsWhitelisted(r state.Reader, asset types.AccountID, tokenID types.TokenID, account types.AccountID) (bool, error)
}

// Market is the listing/escrow/settlement engine.
type Market struct {
	access    *access.Controller
	whitelist WhitelistChecker
	fees      *fees.Manager
	ledger    *ledger.Ledger
	payment   stable.Asset

	// self is the market's own identity on the payment rail, used as the
	// allowance spender for purchases.
	self types.AccountID
}

// New creates a market over the given collaborators.
func New(ac *access.Controller, wl WhitelistChecker, fm *fees.Manager, lg *ledger.Ledger, payment stable.Asset) *Market {
	return &Market{
		access:    ac,
		whitelist: wl,
		fees:      fm,
		ledger:    lg,
		payment:   payment,
		self:      CustodyAccount,
	}
}

// Self returns the market identity buyers must approve on the payment rail.
func (m *Market) Self() types.AccountID {
	return m.self
}

// VerifyVoucherContract marks an asset contract as eligible for listing.
// Operator-only.
func (m *Market) VerifyVoucherContract(v state.View, caller, asset types.AccountID) (events.Event, error) {
	if err := m.access.RequireOperator(v, caller); err != nil {
		return nil, fmt.Errorf("verify voucher contract: %w", err)
	}
	if err := state.PutMarker(v, state.VerifiedAssetKey(asset)); err != nil {
		return nil, err
	}
	return events.AssetVerified{Caller: caller, Asset: asset}, nil
}

// VoucherContractVerified reports whether an asset has been verified.
func (m *Market) VoucherContractVerified(r state.Reader, asset types.AccountID) (bool, error) {
	return r.Has(state.VerifiedAssetKey(asset))
}

// Place creates a listing: the listed amount leaves the seller's freely
// transferable balance into market custody, and a fresh monotonically
// increasing listing id records seller, price and quantity.
func (m *Market) Place(v state.View, seller types.AccountID, tokenID types.TokenID, amount uint64, asset types.AccountID, unitPrice uint64) (events.Event, error) {
	if amount == 0 || unitPrice == 0 {
		return nil, fmt.Errorf("place: %w", ErrInvalidAmount)
	}

	verified, err := m.VoucherContractVerified(v, asset)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, fmt.Errorf("place: %w: %s", ErrAssetNotVerified, asset)
	}

	approved, err := m.ledger.IsApprovedForAll(v, seller, m.self)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, fmt.Errorf("place: %w", ErrCustodyNotApproved)
	}

	// Escrow by custody transfer. Move fails with ErrInsufficientBalance
	// when the seller holds less than amount.
	if err := m.ledger.Move(v, seller, CustodyAccount, tokenID, amount); err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}

	id, err := m.nextListingID(v)
	if err != nil {
		return nil, err
	}
	listing := Listing{
		ID:        id,
		Asset:     asset,
		TokenID:   tokenID,
		Quantity:  amount,
		UnitPrice: unitPrice,
		Seller:    seller,
	}
	if err := putListing(v, listing); err != nil {
		return nil, err
	}

	return events.ListingPlaced{
		ListingID: id,
		Seller:    seller,
		Asset:     asset,
		TokenID:   tokenID,
		Amount:    amount,
		UnitPrice: unitPrice,
	}, nil
}

// UnPlace returns `amount` of escrowed tokens to the seller and decrements
// the listing. Seller-only.
func (m *Market) UnPlace(v state.View, caller types.AccountID, listingID, amount uint64) (events.Event, error) {
	if amount == 0 {
		return nil, fmt.Errorf("unplace: %w", ErrInvalidAmount)
	}
	listing, err := m.getListing(v, listingID)
	if err != nil {
		return nil, fmt.Errorf("unplace: %w", err)
	}
	if listing.Seller != caller {
		return nil, fmt.Errorf("unplace: %w", ErrNotSeller)
	}
	if amount > listing.Quantity {
		return nil, fmt.Errorf("unplace: %w: listed %d, requested %d", ErrInsufficientListedQuantity, listing.Quantity, amount)
	}

	if err := m.ledger.Move(v, CustodyAccount, listing.Seller, listing.TokenID, amount); err != nil {
		return nil, fmt.Errorf("unplace: %w", err)
	}
	listing.Quantity -= amount
	if err := putListing(v, listing); err != nil {
		return nil, err
	}

	return events.ListingUnplaced{
		ListingID: listingID,
		Seller:    listing.Seller,
		Amount:    amount,
		Remaining: listing.Quantity,
	}, nil
}

// PurchaseInUSDT settles `amount` units of a listing against the payment
// rail. Four effects commit together or not at all: the buyer pays the
// total price, the seller receives the net, the fee recipient receives the
// fee, and the tokens move from custody to the buyer. Every precondition is
// validated before the first effect, so the rail calls below cannot fail
// midway.
func (m *Market) PurchaseInUSDT(v state.View, buyer types.AccountID, listingID, amount uint64) (events.Event, error) {
	if amount == 0 {
		return nil, fmt.Errorf("purchase: %w", ErrInvalidAmount)
	}
	listing, err := m.getListing(v, listingID)
	if err != nil {
		return nil, fmt.Errorf("purchase: %w", err)
	}
	if amount > listing.Quantity {
		return nil, fmt.Errorf("purchase: %w: listed %d, requested %d", ErrInsufficientListedQuantity, listing.Quantity, amount)
	}

	// Both parties must be whitelisted for the instrument at purchase
	// time. The seller was implicitly eligible at listing time, but
	// membership can be revoked while a listing is open.
	for _, account := range []types.AccountID{listing.Seller, buyer} {
		ok, err := m.whitelist.IsWhitelisted(v, listing.Asset, listing.TokenID, account)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("purchase: %w: %s", ErrNotWhitelisted, account)
		}
	}

	if listing.UnitPrice > 0 && amount > math.MaxUint64/listing.UnitPrice {
		return nil, fmt.Errorf("purchase: %w", ErrPriceOverflow)
	}
	totalPrice := listing.UnitPrice * amount

	fee, net, err := m.fees.ComputeFee(v, totalPrice)
	if err != nil {
		return nil, err
	}
	cfg, err := m.fees.Current(v)
	if err != nil {
		return nil, err
	}

	allowance, err := m.payment.Allowance(v, buyer, m.self)
	if err != nil {
		return nil, err
	}
	if allowance < totalPrice {
		return nil, fmt.Errorf("purchase: %w: have %d, need %d", stable.ErrInsufficientAllowance, allowance, totalPrice)
	}
	balance, err := m.payment.BalanceOf(v, buyer)
	if err != nil {
		return nil, err
	}
	if balance < totalPrice {
		return nil, fmt.Errorf("purchase: %w: have %d, need %d", stable.ErrInsufficientBalance, balance, totalPrice)
	}

	if err := m.payment.TransferFrom(v, m.self, buyer, listing.Seller, net); err != nil {
		return nil, fmt.Errorf("purchase: settle seller payout: %w", err)
	}
	if fee > 0 {
		if err := m.payment.TransferFrom(v, m.self, buyer, cfg.Recipient, fee); err != nil {
			return nil, fmt.Errorf("purchase: settle fee: %w", err)
		}
	}
	if err := m.ledger.Move(v, CustodyAccount, buyer, listing.TokenID, amount); err != nil {
		return nil, fmt.Errorf("purchase: release escrow: %w", err)
	}

	listing.Quantity -= amount
	if err := putListing(v, listing); err != nil {
		return nil, err
	}

	return events.ListingPurchased{
		ListingID:  listingID,
		Buyer:      buyer,
		Seller:     listing.Seller,
		Asset:      listing.Asset,
		TokenID:    listing.TokenID,
		Amount:     amount,
		TotalPrice: totalPrice,
		Fee:        fee,
		Net:        net,
		Remaining:  listing.Quantity,
	}, nil
}

// GetListing returns a listing by id.
func (m *Market) GetListing(r state.Reader, listingID uint64) (Listing, error) {
	return m.getListing(r, listingID)
}

func (m *Market) getListing(r state.Reader, listingID uint64) (Listing, error) {
	data, err := r.Get(state.ListingKey(listingID))
	if err != nil {
		return Listing{}, err
	}
	if data == nil {
		return Listing{}, fmt.Errorf("%w: id %d", ErrListingNotFound, listingID)
	}
	var listing Listing
	if err := state.Unmarshal(data, &listing); err != nil {
		return Listing{}, err
	}
	return listing, nil
}

// nextListingID allocates the next id. Ids start at 1.
func (m *Market) nextListingID(v state.View) (uint64, error) {
	key := state.NextListingIDKey()
	data, err := v.Get(key)
	if err != nil {
		return 0, err
	}
	var next uint64 = 1
	if data != nil {
		var rec counterRecord
		if err := state.Unmarshal(data, &rec); err != nil {
			return 0, err
		}
		next = rec.Next
	}
	out, err := state.Marshal(counterRecord{Next: next + 1})
	if err != nil {
		return 0, err
	}
	if err := v.Put(key, out); err != nil {
		return 0, err
	}
	return next, nil
}

type counterRecord struct {
	Next uint64 `codec:"n"`
}

func putListing(v state.View, listing Listing) error {
	data, err := state.Marshal(listing)
	if err != nil {
		return err
	}
	return v.Put(state.ListingKey(listing.ID), data)
}
