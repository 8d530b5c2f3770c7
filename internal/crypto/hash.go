package crypto

import (
	"crypto/sha256"
	"crypto/sha512"

	"github.com/decred/dcrd/crypto/ripemd160"

	"github.com/hbkwon/voucherd/internal/core/types"
)

// Sha512Half returns the first 32 bytes of a SHA-512 hash of the message.
func Sha512Half(msg []byte) [32]byte {
	h := sha512.Sum512(msg)
	var result [32]byte
	copy(result[:], h[:32])
	return result
}

// CalcAccountID computes the account ID for a public key as
// RIPEMD160(SHA256(publicKey)). Using two different hashes avoids length
// extension attacks, and RIPEMD160 is the only hash generally considered
// safe at 160 bits.
func CalcAccountID(publicKey []byte) types.AccountID {
	sha256Hash := sha256.Sum256(publicKey)

	ripemd160Hasher := ripemd160.New()
	ripemd160Hasher.Write(sha256Hash[:])
	ripemd160Hash := ripemd160Hasher.Sum(nil)

	var result types.AccountID
	copy(result[:], ripemd160Hash)
	return result
}
