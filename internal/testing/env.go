// Package testing provides a test environment for exercising the engine
// end to end against an in-memory store.
package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hbkwon/voucherd/internal/core/engine"
	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/crypto"
	"github.com/hbkwon/voucherd/internal/storage/kv/memorydb"
)

// TestEnv manages an engine over an in-memory store, with named accounts.
type TestEnv struct {
	t   *testing.T
	ctx context.Context

	Engine *engine.Engine
	Store  *state.Store

	// LedgerID is the instance identity signed payloads bind to.
	LedgerID types.LedgerID

	// Root holds the permanent administrative role.
	Root *Account

	// FeeRecipient receives issuance and settlement fees.
	FeeRecipient *Account

	accounts map[string]*Account
}

// Account is a named test account with its signing keypair.
type Account struct {
	Name    string
	Keypair *crypto.Keypair
}

// ID returns the account id derived from the keypair.
func (a *Account) ID() types.AccountID {
	return a.Keypair.Account()
}

// Option tweaks the environment before the engine starts.
type Option func(*envConfig)

type envConfig struct {
	feeRateBps uint32
}

// WithFeeRate sets the genesis fee rate in basis points.
func WithFeeRate(rateBps uint32) Option {
	return func(c *envConfig) { c.feeRateBps = rateBps }
}

// NewTestEnv builds an engine over a fresh in-memory store. The genesis
// fee rate defaults to 100 basis points.
func NewTestEnv(t *testing.T, opts ...Option) *TestEnv {
	t.Helper()

	cfg := envConfig{feeRateBps: 100}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()
	store := state.NewStore(memorydb.New())
	t.Cleanup(func() { store.Close() })

	env := &TestEnv{
		t:        t,
		ctx:      ctx,
		Store:    store,
		LedgerID: types.LedgerID{0x7e, 0x01},
		accounts: make(map[string]*Account),
	}
	env.Root = env.Account("root")
	env.FeeRecipient = env.Account("fee-recipient")

	eng, err := engine.New(ctx, store, engine.Config{
		LedgerID:     env.LedgerID,
		RootOwner:    env.Root.ID(),
		FeeRecipient: env.FeeRecipient.ID(),
		FeeRateBps:   cfg.feeRateBps,
	})
	require.NoError(t, err)
	env.Engine = eng

	return env
}

// Ctx returns the environment context.
func (env *TestEnv) Ctx() context.Context {
	return env.ctx
}

// Account returns the named account, creating it with a fresh keypair on
// first use.
func (env *TestEnv) Account(name string) *Account {
	if account, ok := env.accounts[name]; ok {
		return account
	}
	keypair, err := crypto.NewKeypair()
	require.NoError(env.t, err)

	account := &Account{Name: name, Keypair: keypair}
	env.accounts[name] = account
	return account
}

// AddOperator grants the operator role as root.
func (env *TestEnv) AddOperator(operator *Account) {
	env.t.Helper()
	require.NoError(env.t, env.Engine.AddOperator(env.ctx, env.Root.ID(), operator.ID()))
}

// Mint issues tokens through an operator, bypassing fees.
func (env *TestEnv) Mint(operator, to *Account, tokenID types.TokenID, amount uint64) {
	env.t.Helper()
	require.NoError(env.t, env.Engine.MintByOperator(env.ctx, operator.ID(), to.ID(), amount, tokenID, ""))
}

// SignMint produces a mint authorization signature from the signer.
func (env *TestEnv) SignMint(signer *Account, to *Account, tokenID types.TokenID, amount, nonce uint64) []byte {
	env.t.Helper()
	digest := crypto.MintDigest(to.ID(), tokenID, amount, nonce, env.LedgerID)
	return signer.Keypair.SignDigest(digest)
}

// SignTransfer produces a transfer authorization signature from the
// sender.
func (env *TestEnv) SignTransfer(from, to *Account, tokenID types.TokenID, amount, nonce uint64) []byte {
	env.t.Helper()
	digest := crypto.TransferDigest(from.ID(), to.ID(), tokenID, amount, nonce, env.LedgerID)
	return from.Keypair.SignDigest(digest)
}

// Balance fetches a token balance, failing the test on error.
func (env *TestEnv) Balance(account *Account, tokenID types.TokenID) uint64 {
	env.t.Helper()
	balance, err := env.Engine.BalanceOf(env.ctx, account.ID(), tokenID)
	require.NoError(env.t, err)
	return balance
}

// PaymentBalance fetches a stable-asset balance, failing the test on
// error.
func (env *TestEnv) PaymentBalance(account *Account) uint64 {
	env.t.Helper()
	balance, err := env.Engine.PaymentBalanceOf(env.ctx, account.ID())
	require.NoError(env.t, err)
	return balance
}

// FundPayment credits stable-asset units.
func (env *TestEnv) FundPayment(account *Account, amount uint64) {
	env.t.Helper()
	require.NoError(env.t, env.Engine.FundPayment(env.ctx, account.ID(), amount))
}
