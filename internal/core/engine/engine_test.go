package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbkwon/voucherd/internal/core/access"
	"github.com/hbkwon/voucherd/internal/core/fees"
	"github.com/hbkwon/voucherd/internal/core/ledger"
	"github.com/hbkwon/voucherd/internal/core/stable"
	"github.com/hbkwon/voucherd/internal/events"
	testenv "github.com/hbkwon/voucherd/internal/testing"
)

func TestGenesisFeeConfig(t *testing.T) {
	env := testenv.NewTestEnv(t, testenv.WithFeeRate(250))

	cfg, err := env.Engine.FeeConfig(env.Ctx())
	require.NoError(t, err)
	assert.Equal(t, uint32(250), cfg.RateBps)
	assert.Equal(t, env.FeeRecipient.ID(), cfg.Recipient)
}

func TestOperatorManagement(t *testing.T) {
	env := testenv.NewTestEnv(t)
	op := env.Account("operator")
	outsider := env.Account("outsider")

	// Only root can grant.
	err := env.Engine.AddOperator(env.Ctx(), outsider.ID(), op.ID())
	require.ErrorIs(t, err, access.ErrUnauthorized)

	require.NoError(t, env.Engine.AddOperator(env.Ctx(), env.Root.ID(), op.ID()))
	ok, err := env.Engine.IsOperator(env.Ctx(), op.ID())
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, env.Engine.RemoveOperator(env.Ctx(), env.Root.ID(), op.ID()))
	ok, err = env.Engine.IsOperator(env.Ctx(), op.ID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMintByOperator(t *testing.T) {
	env := testenv.NewTestEnv(t)
	op := env.Account("operator")
	holder := env.Account("holder")
	env.AddOperator(op)

	// Unauthorized minter is rejected.
	err := env.Engine.MintByOperator(env.Ctx(), holder.ID(), holder.ID(), 100, 1, "")
	require.ErrorIs(t, err, access.ErrUnauthorized)

	// No fee on the trusted path.
	require.NoError(t, env.Engine.MintByOperator(env.Ctx(), op.ID(), holder.ID(), 100, 1, "batch-a"))
	assert.Equal(t, uint64(100), env.Balance(holder, 1))
	assert.Equal(t, uint64(0), env.Balance(env.FeeRecipient, 1))

	supply, err := env.Engine.TotalSupply(env.Ctx(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), supply)

	// Zero amounts are rejected.
	err = env.Engine.MintByOperator(env.Ctx(), op.ID(), holder.ID(), 0, 1, "")
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestMintBySignatureFeeSplit(t *testing.T) {
	// 10% rate: minting 200 credits 180 to the recipient of the
	// instruction and 20 to the fee recipient.
	env := testenv.NewTestEnv(t, testenv.WithFeeRate(1000))
	holder := env.Account("holder")

	sig := env.SignMint(holder, holder, 7, 200, 1)
	require.NoError(t, env.Engine.MintBySignature(env.Ctx(), holder.ID(), 200, 7, 1, "", sig, 0))

	assert.Equal(t, uint64(180), env.Balance(holder, 7))
	assert.Equal(t, uint64(20), env.Balance(env.FeeRecipient, 7))

	supply, err := env.Engine.TotalSupply(env.Ctx(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), supply)
}

func TestMintBySignatureNonceReplay(t *testing.T) {
	env := testenv.NewTestEnv(t)
	holder := env.Account("holder")

	sig := env.SignMint(holder, holder, 1, 50, 9)
	require.NoError(t, env.Engine.MintBySignature(env.Ctx(), holder.ID(), 50, 1, 9, "", sig, 0))

	consumed, err := env.Engine.NonceConsumed(env.Ctx(), holder.ID(), 9)
	require.NoError(t, err)
	assert.True(t, consumed)

	// Replaying the identical instruction fails and changes nothing.
	before := env.Balance(holder, 1)
	err = env.Engine.MintBySignature(env.Ctx(), holder.ID(), 50, 1, 9, "", sig, 0)
	require.ErrorIs(t, err, ledger.ErrNonceReused)
	assert.Equal(t, before, env.Balance(holder, 1))
}

func TestMintBySignatureRejectsWrongSigner(t *testing.T) {
	env := testenv.NewTestEnv(t)
	holder := env.Account("holder")
	imposter := env.Account("imposter")

	// Signed by a key other than the recipient's.
	sig := env.SignMint(imposter, holder, 1, 50, 1)
	err := env.Engine.MintBySignature(env.Ctx(), holder.ID(), 50, 1, 1, "", sig, 0)
	require.ErrorIs(t, err, ledger.ErrInvalidSignature)

	// Tampered parameters break the signature too.
	sig = env.SignMint(holder, holder, 1, 50, 2)
	err = env.Engine.MintBySignature(env.Ctx(), holder.ID(), 51, 1, 2, "", sig, 0)
	require.ErrorIs(t, err, ledger.ErrInvalidSignature)
}

func TestTransferBySignature(t *testing.T) {
	env := testenv.NewTestEnv(t)
	op := env.Account("operator")
	alice := env.Account("alice")
	bob := env.Account("bob")
	env.AddOperator(op)
	env.Mint(op, alice, 3, 100)

	sig := env.SignTransfer(alice, bob, 3, 40, 1)
	require.NoError(t, env.Engine.TransferBySignature(env.Ctx(), alice.ID(), bob.ID(), 3, 40, 1, sig))

	// No fee on peer transfers, supply unchanged.
	assert.Equal(t, uint64(60), env.Balance(alice, 3))
	assert.Equal(t, uint64(40), env.Balance(bob, 3))
	supply, err := env.Engine.TotalSupply(env.Ctx(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), supply)
}

func TestTransferBySignatureInsufficientBalance(t *testing.T) {
	env := testenv.NewTestEnv(t)
	op := env.Account("operator")
	alice := env.Account("alice")
	bob := env.Account("bob")
	env.AddOperator(op)
	env.Mint(op, alice, 3, 10)

	sig := env.SignTransfer(alice, bob, 3, 11, 1)
	err := env.Engine.TransferBySignature(env.Ctx(), alice.ID(), bob.ID(), 3, 11, 1, sig)
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// The failed operation must not consume the nonce.
	consumed, err := env.Engine.NonceConsumed(env.Ctx(), alice.ID(), 1)
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestSetFee(t *testing.T) {
	env := testenv.NewTestEnv(t)
	op := env.Account("operator")
	outsider := env.Account("outsider")
	env.AddOperator(op)

	err := env.Engine.SetFee(env.Ctx(), outsider.ID(), 300, env.FeeRecipient.ID())
	require.ErrorIs(t, err, access.ErrUnauthorized)

	err = env.Engine.SetFee(env.Ctx(), op.ID(), fees.MaxRateBps+1, env.FeeRecipient.ID())
	require.ErrorIs(t, err, fees.ErrInvalidFeeRate)

	require.NoError(t, env.Engine.SetFee(env.Ctx(), op.ID(), 300, env.FeeRecipient.ID()))
	cfg, err := env.Engine.FeeConfig(env.Ctx())
	require.NoError(t, err)
	assert.Equal(t, uint32(300), cfg.RateBps)
}

func TestWhitelist(t *testing.T) {
	env := testenv.NewTestEnv(t)
	asset := env.Account("asset")
	member := env.Account("member")

	ok, err := env.Engine.IsWhitelisted(env.Ctx(), asset.ID(), 1, member.ID())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, env.Engine.AddWhitelist(env.Ctx(), env.Root.ID(), asset.ID(), 1, member.ID()))
	ok, err = env.Engine.IsWhitelisted(env.Ctx(), asset.ID(), 1, member.ID())
	require.NoError(t, err)
	assert.True(t, ok)

	// Membership is scoped per token id.
	ok, err = env.Engine.IsWhitelisted(env.Ctx(), asset.ID(), 2, member.ID())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, env.Engine.RemoveWhitelist(env.Ctx(), env.Root.ID(), asset.ID(), 1, member.ID()))
	ok, err = env.Engine.IsWhitelisted(env.Ctx(), asset.ID(), 1, member.ID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApprovalForAll(t *testing.T) {
	env := testenv.NewTestEnv(t)
	holder := env.Account("holder")
	custodian := env.Account("custodian")

	ok, err := env.Engine.IsApprovedForAll(env.Ctx(), holder.ID(), custodian.ID())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, env.Engine.SetApprovalForAll(env.Ctx(), holder.ID(), custodian.ID(), true))
	ok, err = env.Engine.IsApprovedForAll(env.Ctx(), holder.ID(), custodian.ID())
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, env.Engine.SetApprovalForAll(env.Ctx(), holder.ID(), custodian.ID(), false))
	ok, err = env.Engine.IsApprovedForAll(env.Ctx(), holder.ID(), custodian.ID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	env := testenv.NewTestEnv(t)
	op := env.Account("operator")
	holder := env.Account("holder")

	var envelopes []events.Envelope
	env.Engine.Publisher().Subscribe(events.SubscriberFunc(func(e events.Envelope) {
		envelopes = append(envelopes, e)
	}))

	env.AddOperator(op)
	env.Mint(op, holder, 1, 10)

	// A failed operation publishes nothing.
	err := env.Engine.MintByOperator(env.Ctx(), holder.ID(), holder.ID(), 10, 1, "")
	require.ErrorIs(t, err, access.ErrUnauthorized)

	require.Len(t, envelopes, 2)
	assert.Equal(t, events.KindOperatorAdded, envelopes[0].Kind)
	assert.Equal(t, events.KindMintedByOperator, envelopes[1].Kind)
	assert.Less(t, envelopes[0].Sequence, envelopes[1].Sequence)

	minted, ok := envelopes[1].Event.(events.MintedByOperator)
	require.True(t, ok)
	assert.Equal(t, holder.ID(), minted.To)
	assert.Equal(t, uint64(10), minted.Amount)
}

func TestPaymentRail(t *testing.T) {
	env := testenv.NewTestEnv(t)
	buyer := env.Account("buyer")
	spender := env.Account("spender")

	env.FundPayment(buyer, 500)
	assert.Equal(t, uint64(500), env.PaymentBalance(buyer))

	require.NoError(t, env.Engine.ApprovePayment(env.Ctx(), buyer.ID(), spender.ID(), 200))
	allowance, err := env.Engine.PaymentAllowance(env.Ctx(), buyer.ID(), spender.ID())
	require.NoError(t, err)
	assert.Equal(t, uint64(200), allowance)
}

func TestBalancesOfUnknownAccountsAreZero(t *testing.T) {
	env := testenv.NewTestEnv(t)
	ghost := env.Account("ghost")

	assert.Equal(t, uint64(0), env.Balance(ghost, 42))
	assert.Equal(t, uint64(0), env.PaymentBalance(ghost))
}

func TestMintOverflowRejected(t *testing.T) {
	env := testenv.NewTestEnv(t)
	op := env.Account("operator")
	env.AddOperator(op)
	holder := env.Account("holder")

	require.NoError(t, env.Engine.MintByOperator(env.Ctx(), op.ID(), holder.ID(), math.MaxUint64, 1, ""))

	// A further mint would wrap the balance; it must fail, leaving the
	// balance and supply at their pre-operation values.
	err := env.Engine.MintByOperator(env.Ctx(), op.ID(), holder.ID(), 2, 1, "")
	require.ErrorIs(t, err, ledger.ErrBalanceOverflow)
	assert.Equal(t, uint64(math.MaxUint64), env.Balance(holder, 1))

	supply, err := env.Engine.TotalSupply(env.Ctx(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), supply)

	// Supply wraps even when the credit lands on a fresh account.
	other := env.Account("other")
	err = env.Engine.MintByOperator(env.Ctx(), op.ID(), other.ID(), 1, 1, "")
	require.ErrorIs(t, err, ledger.ErrBalanceOverflow)
	assert.Equal(t, uint64(0), env.Balance(other, 1))
}

func TestPaymentFundOverflowRejected(t *testing.T) {
	env := testenv.NewTestEnv(t)
	buyer := env.Account("buyer")

	env.FundPayment(buyer, math.MaxUint64)
	err := env.Engine.FundPayment(env.Ctx(), buyer.ID(), 1)
	require.ErrorIs(t, err, stable.ErrBalanceOverflow)
	assert.Equal(t, uint64(math.MaxUint64), env.PaymentBalance(buyer))
}
