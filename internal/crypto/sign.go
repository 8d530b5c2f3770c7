package crypto

import (
	"encoding/binary"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/hbkwon/voucherd/internal/core/types"
)

// Domain separation prefixes. Every signed payload starts with a 4-byte
// prefix naming the instruction kind and the scheme version, so a mint
// authorization can never be replayed as a transfer and future payload
// changes can bump the version byte.
var (
	// MintPrefix prefixes signature-authorized mint payloads ("VMN" + v1).
	MintPrefix = [4]byte{'V', 'M', 'N', 0x01}

	// TransferPrefix prefixes signature-authorized transfer payloads ("VTR" + v1).
	TransferPrefix = [4]byte{'V', 'T', 'R', 0x01}
)

// SignatureSize is the size of a compact recoverable signature.
const SignatureSize = 65

var (
	// ErrInvalidSignature is returned when a signature is malformed or was
	// not produced by the expected signer.
	ErrInvalidSignature = errors.New("invalid signature")
)

// MintDigest returns the digest signed to authorize a mint: SHA-512Half
// over the domain prefix and the canonical big-endian encoding of
// (recipient, tokenID, amount, nonce, ledgerID).
func MintDigest(to types.AccountID, tokenID types.TokenID, amount, nonce uint64, ledger types.LedgerID) [32]byte {
	payload := make([]byte, 0, 4+types.AccountIDSize+8*3+types.AccountIDSize)
	payload = append(payload, MintPrefix[:]...)
	payload = append(payload, to[:]...)
	payload = binary.BigEndian.AppendUint64(payload, uint64(tokenID))
	payload = binary.BigEndian.AppendUint64(payload, amount)
	payload = binary.BigEndian.AppendUint64(payload, nonce)
	payload = append(payload, ledger[:]...)
	return Sha512Half(payload)
}

// TransferDigest returns the digest signed to authorize a transfer:
// SHA-512Half over the domain prefix and the canonical big-endian encoding
// of (sender, recipient, tokenID, amount, nonce, ledgerID).
func TransferDigest(from, to types.AccountID, tokenID types.TokenID, amount, nonce uint64, ledger types.LedgerID) [32]byte {
	payload := make([]byte, 0, 4+types.AccountIDSize*2+8*3+types.AccountIDSize)
	payload = append(payload, TransferPrefix[:]...)
	payload = append(payload, from[:]...)
	payload = append(payload, to[:]...)
	payload = binary.BigEndian.AppendUint64(payload, uint64(tokenID))
	payload = binary.BigEndian.AppendUint64(payload, amount)
	payload = binary.BigEndian.AppendUint64(payload, nonce)
	payload = append(payload, ledger[:]...)
	return Sha512Half(payload)
}

// SignDigest produces a 65-byte compact recoverable signature over the digest.
func (k *Keypair) SignDigest(digest [32]byte) []byte {
	return ecdsa.SignCompact(k.privateKey, digest[:], true)
}

// RecoverSigner recovers the account ID that produced a compact signature
// over the digest. The submitter of an instruction and its authorizer may
// be different principals; authorization always traces to the recovered key.
func RecoverSigner(digest [32]byte, signature []byte) (types.AccountID, error) {
	if len(signature) != SignatureSize {
		return types.ZeroAccount, ErrInvalidSignature
	}
	publicKey, compressed, err := ecdsa.RecoverCompact(signature, digest[:])
	if err != nil {
		return types.ZeroAccount, ErrInvalidSignature
	}
	if compressed {
		return CalcAccountID(publicKey.SerializeCompressed()), nil
	}
	return CalcAccountID(publicKey.SerializeUncompressed()), nil
}

// VerifySigner checks that the signature over the digest was produced by
// the expected account.
func VerifySigner(digest [32]byte, signature []byte, expected types.AccountID) error {
	signer, err := RecoverSigner(digest, signature)
	if err != nil {
		return err
	}
	if signer != expected {
		return ErrInvalidSignature
	}
	return nil
}
