// Package types holds the primitive identifier types shared by every
// component of the voucher ledger: account IDs, token IDs and the ledger
// instance identity.
package types

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AccountIDSize is the size of an account identifier in bytes.
const AccountIDSize = 20

// AccountID is a 160-bit principal identifier, derived from a secp256k1
// public key as RIPEMD160(SHA256(pubkey)).
type AccountID [AccountIDSize]byte

// LedgerID identifies a specific ledger instance. It is mixed into every
// signed payload so a signature cannot be replayed against another instance.
type LedgerID [AccountIDSize]byte

// TokenID identifies a voucher token class within the ledger.
type TokenID uint64

// ZeroAccount is the all-zero account ID. It is not a valid principal.
var ZeroAccount AccountID

var (
	// ErrInvalidAccountID is returned when parsing a malformed account ID.
	ErrInvalidAccountID = errors.New("invalid account ID")

	// ErrInvalidLedgerID is returned when parsing a malformed ledger ID.
	ErrInvalidLedgerID = errors.New("invalid ledger ID")
)

// IsZero reports whether the account ID is the zero value.
func (a AccountID) IsZero() bool {
	return a == ZeroAccount
}

// String returns the hex encoding of the account ID.
func (a AccountID) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalJSON encodes the account ID as its hex form, so principals in
// audit payloads stay readable.
func (a AccountID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a hex-encoded account ID.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := ParseAccountID(s)
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// ParseAccountID decodes a hex-encoded account ID. A leading "0x" is
// accepted for convenience since operators tend to paste EVM-style strings.
func ParseAccountID(s string) (AccountID, error) {
	var id AccountID
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidAccountID, err)
	}
	if len(raw) != AccountIDSize {
		return id, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAccountID, len(raw), AccountIDSize)
	}
	copy(id[:], raw)
	return id, nil
}

// String returns the hex encoding of the ledger ID.
func (l LedgerID) String() string {
	return hex.EncodeToString(l[:])
}

// MarshalJSON encodes the ledger ID as its hex form.
func (l LedgerID) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a hex-encoded ledger ID.
func (l *LedgerID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := ParseLedgerID(s)
	if err != nil {
		return err
	}
	*l = id
	return nil
}

// ParseLedgerID decodes a hex-encoded ledger instance identifier.
func ParseLedgerID(s string) (LedgerID, error) {
	var id LedgerID
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidLedgerID, err)
	}
	if len(raw) != AccountIDSize {
		return id, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLedgerID, len(raw), AccountIDSize)
	}
	copy(id[:], raw)
	return id, nil
}
