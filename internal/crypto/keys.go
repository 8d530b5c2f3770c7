// Package crypto implements the signature scheme used to authorize ledger
// instructions: secp256k1 keypairs, 20-byte account derivation and
// domain-separated compact signatures with public key recovery.
package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/hbkwon/voucherd/internal/core/types"
)

var (
	// ErrInvalidPrivateKey is returned when the private key is invalid.
	ErrInvalidPrivateKey = errors.New("invalid private key")
)

// Keypair wraps a secp256k1 keypair together with the account ID derived
// from its compressed public key.
type Keypair struct {
	privateKey *btcec.PrivateKey
	publicKey  *btcec.PublicKey
	account    types.AccountID
}

// NewKeypair generates a new random keypair.
func NewKeypair() (*Keypair, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return fromPrivate(privateKey), nil
}

// KeypairFromHex restores a keypair from a hex-encoded 32-byte private key.
func KeypairFromHex(privKeyHex string) (*Keypair, error) {
	if len(privKeyHex) != 64 {
		return nil, ErrInvalidPrivateKey
	}
	raw, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	privateKey, _ := btcec.PrivKeyFromBytes(raw)
	if privateKey == nil {
		return nil, ErrInvalidPrivateKey
	}
	return fromPrivate(privateKey), nil
}

func fromPrivate(privateKey *btcec.PrivateKey) *Keypair {
	publicKey := privateKey.PubKey()
	return &Keypair{
		privateKey: privateKey,
		publicKey:  publicKey,
		account:    CalcAccountID(publicKey.SerializeCompressed()),
	}
}

// Account returns the account ID derived from the public key.
func (k *Keypair) Account() types.AccountID {
	return k.account
}

// PublicKey returns the compressed public key bytes.
func (k *Keypair) PublicKey() []byte {
	return k.publicKey.SerializeCompressed()
}

// PrivateKeyHex returns the hex encoding of the private key.
func (k *Keypair) PrivateKeyHex() string {
	return hex.EncodeToString(k.privateKey.Serialize())
}
