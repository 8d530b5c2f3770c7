package state

import (
	"encoding/binary"

	"github.com/hbkwon/voucherd/internal/core/types"
)

// Key namespaces. Every component owns one prefix; keys under a prefix are
// fixed-width so range scans stay well-formed.
var (
	PrefixOperator     = []byte("o/")
	PrefixFeeConfig    = []byte("f/")
	PrefixWhitelist    = []byte("w/")
	PrefixBalance      = []byte("b/")
	PrefixSupply       = []byte("t/")
	PrefixNonce        = []byte("n/")
	PrefixApproval     = []byte("a/")
	PrefixVerified     = []byte("v/")
	PrefixListing      = []byte("l/")
	PrefixMeta         = []byte("m/")
	PrefixStableLedger = []byte("s/")
)

// OperatorKey marks membership of the operator set.
func OperatorKey(account types.AccountID) []byte {
	return append(append([]byte{}, PrefixOperator...), account[:]...)
}

// FeeConfigKey holds the fee configuration record.
func FeeConfigKey() []byte {
	return append(append([]byte{}, PrefixFeeConfig...), []byte("config")...)
}

// WhitelistKey marks eligibility of an account for (asset, tokenID).
func WhitelistKey(asset types.AccountID, tokenID types.TokenID, account types.AccountID) []byte {
	key := append(append([]byte{}, PrefixWhitelist...), asset[:]...)
	key = binary.BigEndian.AppendUint64(key, uint64(tokenID))
	return append(key, account[:]...)
}

// BalanceKey holds the balance of account for tokenID.
func BalanceKey(tokenID types.TokenID, account types.AccountID) []byte {
	key := append([]byte{}, PrefixBalance...)
	key = binary.BigEndian.AppendUint64(key, uint64(tokenID))
	return append(key, account[:]...)
}

// BalancePrefix bounds a scan over every balance of tokenID.
func BalancePrefix(tokenID types.TokenID) []byte {
	key := append([]byte{}, PrefixBalance...)
	return binary.BigEndian.AppendUint64(key, uint64(tokenID))
}

// SupplyKey holds the total minted supply of tokenID.
func SupplyKey(tokenID types.TokenID) []byte {
	key := append([]byte{}, PrefixSupply...)
	return binary.BigEndian.AppendUint64(key, uint64(tokenID))
}

// NonceKey marks consumption of (signer, nonce).
func NonceKey(signer types.AccountID, nonce uint64) []byte {
	key := append(append([]byte{}, PrefixNonce...), signer[:]...)
	return binary.BigEndian.AppendUint64(key, nonce)
}

// ApprovalKey marks a custody approval granted by holder to operator.
func ApprovalKey(holder, operator types.AccountID) []byte {
	key := append(append([]byte{}, PrefixApproval...), holder[:]...)
	return append(key, operator[:]...)
}

// VerifiedAssetKey marks a verified voucher asset contract.
func VerifiedAssetKey(asset types.AccountID) []byte {
	return append(append([]byte{}, PrefixVerified...), asset[:]...)
}

// ListingKey holds the listing record for a listing id.
func ListingKey(id uint64) []byte {
	key := append([]byte{}, PrefixListing...)
	return binary.BigEndian.AppendUint64(key, id)
}

// NextListingIDKey holds the monotonic listing id counter.
func NextListingIDKey() []byte {
	return append(append([]byte{}, PrefixMeta...), []byte("next_listing_id")...)
}

// StableBalanceKey holds the in-process payment ledger balance of account.
func StableBalanceKey(account types.AccountID) []byte {
	key := append(append([]byte{}, PrefixStableLedger...), 'b')
	return append(key, account[:]...)
}

// StableAllowanceKey holds the allowance granted by owner to spender on the
// in-process payment ledger.
func StableAllowanceKey(owner, spender types.AccountID) []byte {
	key := append(append([]byte{}, PrefixStableLedger...), 'a')
	key = append(key, owner[:]...)
	return append(key, spender[:]...)
}
