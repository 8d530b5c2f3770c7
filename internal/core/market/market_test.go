package market_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbkwon/voucherd/internal/core/access"
	"github.com/hbkwon/voucherd/internal/core/ledger"
	"github.com/hbkwon/voucherd/internal/core/market"
	"github.com/hbkwon/voucherd/internal/core/stable"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/crypto"
	testenv "github.com/hbkwon/voucherd/internal/testing"
)

// marketEnv bundles the accounts most market tests need: a verified asset,
// a whitelisted seller holding tokens with custody approval granted, and a
// whitelisted, funded buyer.
type marketEnv struct {
	*testenv.TestEnv
	asset  *testenv.Account
	seller *testenv.Account
	buyer  *testenv.Account

	// lastID tracks listing ids, which are allocated sequentially from 1.
	lastID uint64
}

func newMarketEnv(t *testing.T, opts ...testenv.Option) *marketEnv {
	env := testenv.NewTestEnv(t, opts...)
	m := &marketEnv{
		TestEnv: env,
		asset:   env.Account("asset"),
		seller:  env.Account("seller"),
		buyer:   env.Account("buyer"),
	}

	op := env.Account("operator")
	env.AddOperator(op)

	require.NoError(t, env.Engine.VerifyVoucherContract(env.Ctx(), op.ID(), m.asset.ID()))
	require.NoError(t, env.Engine.AddWhitelist(env.Ctx(), op.ID(), m.asset.ID(), 1, m.seller.ID()))
	require.NoError(t, env.Engine.AddWhitelist(env.Ctx(), op.ID(), m.asset.ID(), 1, m.buyer.ID()))

	env.Mint(op, m.seller, 1, 100)
	require.NoError(t, env.Engine.SetApprovalForAll(env.Ctx(), m.seller.ID(), market.CustodyAccount, true))

	env.FundPayment(m.buyer, 10_000)
	require.NoError(t, env.Engine.ApprovePayment(env.Ctx(), m.buyer.ID(), market.CustodyAccount, 10_000))

	return m
}

func (m *marketEnv) place(t *testing.T, amount, unitPrice uint64) uint64 {
	t.Helper()
	require.NoError(t, m.Engine.Place(m.Ctx(), m.seller.ID(), 1, amount, m.asset.ID(), unitPrice))
	m.lastID++
	return m.lastID
}

func TestVerifyVoucherContract(t *testing.T) {
	env := testenv.NewTestEnv(t)
	asset := env.Account("asset")
	outsider := env.Account("outsider")

	err := env.Engine.VerifyVoucherContract(env.Ctx(), outsider.ID(), asset.ID())
	require.ErrorIs(t, err, access.ErrUnauthorized)

	ok, err := env.Engine.VoucherContractVerified(env.Ctx(), asset.ID())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, env.Engine.VerifyVoucherContract(env.Ctx(), env.Root.ID(), asset.ID()))
	ok, err = env.Engine.VoucherContractVerified(env.Ctx(), asset.ID())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlaceMovesTokensIntoCustody(t *testing.T) {
	m := newMarketEnv(t)

	id := m.place(t, 40, 10)
	assert.Equal(t, uint64(1), id)

	// Escrow is a custody transfer inside the same balance table.
	assert.Equal(t, uint64(60), m.Balance(m.seller, 1))
	custody, err := m.Engine.BalanceOf(m.Ctx(), market.CustodyAccount, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), custody)

	listing, err := m.Engine.GetListing(m.Ctx(), id)
	require.NoError(t, err)
	assert.Equal(t, m.seller.ID(), listing.Seller)
	assert.Equal(t, uint64(40), listing.Quantity)
	assert.Equal(t, uint64(10), listing.UnitPrice)
	assert.Equal(t, m.asset.ID(), listing.Asset)
}

func TestPlaceRejections(t *testing.T) {
	m := newMarketEnv(t)

	// Zero amount and zero price.
	err := m.Engine.Place(m.Ctx(), m.seller.ID(), 1, 0, m.asset.ID(), 10)
	require.ErrorIs(t, err, market.ErrInvalidAmount)
	err = m.Engine.Place(m.Ctx(), m.seller.ID(), 1, 10, m.asset.ID(), 0)
	require.ErrorIs(t, err, market.ErrInvalidAmount)

	// Unverified asset.
	stranger := m.Account("stranger-asset")
	err = m.Engine.Place(m.Ctx(), m.seller.ID(), 1, 10, stranger.ID(), 10)
	require.ErrorIs(t, err, market.ErrAssetNotVerified)

	// Missing custody approval.
	other := m.Account("other-seller")
	err = m.Engine.Place(m.Ctx(), other.ID(), 1, 10, m.asset.ID(), 10)
	require.ErrorIs(t, err, market.ErrCustodyNotApproved)

	// Balance smaller than the listed amount.
	err = m.Engine.Place(m.Ctx(), m.seller.ID(), 1, 101, m.asset.ID(), 10)
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestListingIDsAreSequential(t *testing.T) {
	m := newMarketEnv(t)

	assert.Equal(t, uint64(1), m.place(t, 10, 5))
	assert.Equal(t, uint64(2), m.place(t, 10, 5))
	assert.Equal(t, uint64(3), m.place(t, 10, 5))
}

func TestUnPlace(t *testing.T) {
	m := newMarketEnv(t)
	id := m.place(t, 40, 10)

	// Only the seller may unplace.
	err := m.Engine.UnPlace(m.Ctx(), m.buyer.ID(), id, 10)
	require.ErrorIs(t, err, market.ErrNotSeller)

	// Cannot exceed the remaining quantity.
	err = m.Engine.UnPlace(m.Ctx(), m.seller.ID(), id, 41)
	require.ErrorIs(t, err, market.ErrInsufficientListedQuantity)

	require.NoError(t, m.Engine.UnPlace(m.Ctx(), m.seller.ID(), id, 15))
	assert.Equal(t, uint64(75), m.Balance(m.seller, 1))

	listing, err := m.Engine.GetListing(m.Ctx(), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), listing.Quantity)

	// Draining the listing leaves a terminal zero-quantity record.
	require.NoError(t, m.Engine.UnPlace(m.Ctx(), m.seller.ID(), id, 25))
	listing, err = m.Engine.GetListing(m.Ctx(), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), listing.Quantity)
	assert.Equal(t, uint64(100), m.Balance(m.seller, 1))
}

func TestUnPlaceUnknownListing(t *testing.T) {
	m := newMarketEnv(t)
	err := m.Engine.UnPlace(m.Ctx(), m.seller.ID(), 99, 1)
	require.ErrorIs(t, err, market.ErrListingNotFound)
}

func TestPurchaseSettlement(t *testing.T) {
	// 1% fee. Buy 10 units at unit price 10: total 100, fee 1, net 99.
	m := newMarketEnv(t, testenv.WithFeeRate(100))
	id := m.place(t, 50, 10)

	require.NoError(t, m.Engine.PurchaseInUSDT(m.Ctx(), m.buyer.ID(), id, 10))

	assert.Equal(t, uint64(99), m.PaymentBalance(m.seller))
	assert.Equal(t, uint64(1), m.PaymentBalance(m.FeeRecipient))
	assert.Equal(t, uint64(10_000-100), m.PaymentBalance(m.buyer))

	assert.Equal(t, uint64(10), m.Balance(m.buyer, 1))
	custody, err := m.Engine.BalanceOf(m.Ctx(), market.CustodyAccount, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), custody)

	listing, err := m.Engine.GetListing(m.Ctx(), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), listing.Quantity)

	// The buyer's allowance shrank by the amount spent.
	allowance, err := m.Engine.PaymentAllowance(m.Ctx(), m.buyer.ID(), market.CustodyAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000-100), allowance)
}

func TestPurchaseRequiresWhitelist(t *testing.T) {
	m := newMarketEnv(t)
	id := m.place(t, 50, 10)

	// Revoking the seller after listing blocks settlement.
	require.NoError(t, m.Engine.RemoveWhitelist(m.Ctx(), m.Root.ID(), m.asset.ID(), 1, m.seller.ID()))
	err := m.Engine.PurchaseInUSDT(m.Ctx(), m.buyer.ID(), id, 1)
	require.ErrorIs(t, err, market.ErrNotWhitelisted)

	require.NoError(t, m.Engine.AddWhitelist(m.Ctx(), m.Root.ID(), m.asset.ID(), 1, m.seller.ID()))

	// A buyer off the whitelist is rejected too.
	outsider := m.Account("outsider")
	err = m.Engine.PurchaseInUSDT(m.Ctx(), outsider.ID(), id, 1)
	require.ErrorIs(t, err, market.ErrNotWhitelisted)
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	m := newMarketEnv(t)
	id := m.place(t, 50, 1000)

	poor := m.Account("poor")
	require.NoError(t, m.Engine.AddWhitelist(m.Ctx(), m.Root.ID(), m.asset.ID(), 1, poor.ID()))

	// No allowance at all.
	err := m.Engine.PurchaseInUSDT(m.Ctx(), poor.ID(), id, 1)
	require.ErrorIs(t, err, stable.ErrInsufficientAllowance)

	// Allowance but no balance.
	require.NoError(t, m.Engine.ApprovePayment(m.Ctx(), poor.ID(), market.CustodyAccount, 5000))
	err = m.Engine.PurchaseInUSDT(m.Ctx(), poor.ID(), id, 1)
	require.ErrorIs(t, err, stable.ErrInsufficientBalance)

	// A failed purchase must leave every balance untouched.
	assert.Equal(t, uint64(0), m.Balance(poor, 1))
	assert.Equal(t, uint64(0), m.PaymentBalance(m.seller))
	custody, cerr := m.Engine.BalanceOf(m.Ctx(), market.CustodyAccount, 1)
	require.NoError(t, cerr)
	assert.Equal(t, uint64(50), custody)
}

func TestPurchaseQuantityExceeded(t *testing.T) {
	m := newMarketEnv(t)
	id := m.place(t, 5, 10)

	err := m.Engine.PurchaseInUSDT(m.Ctx(), m.buyer.ID(), id, 6)
	require.ErrorIs(t, err, market.ErrInsufficientListedQuantity)
}

func TestPurchaseDrainsListing(t *testing.T) {
	m := newMarketEnv(t)
	id := m.place(t, 5, 10)

	require.NoError(t, m.Engine.PurchaseInUSDT(m.Ctx(), m.buyer.ID(), id, 5))

	listing, err := m.Engine.GetListing(m.Ctx(), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), listing.Quantity)

	// A drained listing rejects further purchases but stays queryable.
	err = m.Engine.PurchaseInUSDT(m.Ctx(), m.buyer.ID(), id, 1)
	require.ErrorIs(t, err, market.ErrInsufficientListedQuantity)
}

// TestIssuanceToSettlementFlow walks a full lifecycle: signed issuance with
// a 10% fee, listing, then a settled purchase at the same rate.
func TestIssuanceToSettlementFlow(t *testing.T) {
	env := testenv.NewTestEnv(t, testenv.WithFeeRate(1000))
	asset := env.Account("asset")
	alice := env.Account("alice")
	bob := env.Account("bob")

	// Signed issuance of 200 units of token id 2: 180 to alice, 20 fee.
	sig := env.SignMint(alice, alice, 2, 200, 1)
	require.NoError(t, env.Engine.MintBySignature(env.Ctx(), alice.ID(), 200, 2, 1, "batch-2026", sig, 0))
	require.Equal(t, uint64(180), env.Balance(alice, 2))
	require.Equal(t, uint64(20), env.Balance(env.FeeRecipient, 2))

	require.NoError(t, env.Engine.VerifyVoucherContract(env.Ctx(), env.Root.ID(), asset.ID()))
	require.NoError(t, env.Engine.AddWhitelist(env.Ctx(), env.Root.ID(), asset.ID(), 2, alice.ID()))
	require.NoError(t, env.Engine.AddWhitelist(env.Ctx(), env.Root.ID(), asset.ID(), 2, bob.ID()))
	require.NoError(t, env.Engine.SetApprovalForAll(env.Ctx(), alice.ID(), market.CustodyAccount, true))

	// Alice lists 50 units at unit price 10.
	require.NoError(t, env.Engine.Place(env.Ctx(), alice.ID(), 2, 50, asset.ID(), 10))
	require.Equal(t, uint64(130), env.Balance(alice, 2))

	env.FundPayment(bob, 100)
	require.NoError(t, env.Engine.ApprovePayment(env.Ctx(), bob.ID(), market.CustodyAccount, 100))

	// Bob buys 1 unit for 10: alice nets 9, the fee recipient gets 1.
	require.NoError(t, env.Engine.PurchaseInUSDT(env.Ctx(), bob.ID(), 1, 1))

	assert.Equal(t, uint64(9), env.PaymentBalance(alice))
	assert.Equal(t, uint64(1), env.PaymentBalance(env.FeeRecipient))
	assert.Equal(t, uint64(90), env.PaymentBalance(bob))
	assert.Equal(t, uint64(1), env.Balance(bob, 2))

	listing, err := env.Engine.GetListing(env.Ctx(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(49), listing.Quantity)

	// Conservation across the whole flow: 200 minted, split between
	// holders and custody.
	supply, err := env.Engine.TotalSupply(env.Ctx(), 2)
	require.NoError(t, err)
	custody, err := env.Engine.BalanceOf(env.Ctx(), market.CustodyAccount, 2)
	require.NoError(t, err)
	assert.Equal(t, supply, env.Balance(alice, 2)+env.Balance(bob, 2)+env.Balance(env.FeeRecipient, 2)+custody)
}

func TestCustodyAccountIsStable(t *testing.T) {
	// The custody identity is derived from a fixed tag. Escrowed balances
	// persist across restarts, so the derivation must never change.
	assert.NotEqual(t, types.AccountID{}, market.CustodyAccount)
	assert.Equal(t, crypto.CalcAccountID([]byte("voucherd/market-custody/v1")), market.CustodyAccount)
}
