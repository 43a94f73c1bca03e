package crypto

import (
	"crypto/sha256"

	"github.com/decred/dcrd/crypto/ripemd160"
)

// AccountIDSize is the size of an account identifier in bytes.
const AccountIDSize = 20

// CalcAccountID computes RIPEMD160(SHA256(data)).
func CalcAccountID(data []byte) [AccountIDSize]byte {
	sha256Hash := sha256.Sum256(data)

	ripemd160Hasher := ripemd160.New()
	ripemd160Hasher.Write(sha256Hash[:])
	ripemd160Hash := ripemd160Hasher.Sum(nil)

	var result [AccountIDSize]byte
	copy(result[:], ripemd160Hash)
	return result
}

// DeriveAccountID hashes the concatenation of parts into an account ID.
// Used for engine-held pseudo accounts such as pool vaults.
func DeriveAccountID(parts ...[]byte) [AccountIDSize]byte {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return CalcAccountID(buf)
}

// AccountIDFromBytes creates an account ID from a byte slice.
// Returns a zero account ID if the slice is not exactly 20 bytes.
func AccountIDFromBytes(b []byte) [AccountIDSize]byte {
	var result [AccountIDSize]byte
	if len(b) == AccountIDSize {
		copy(result[:], b)
	}
	return result
}

// IsZeroAccountID returns true if the account ID is all zeros.
func IsZeroAccountID(id [AccountIDSize]byte) bool {
	for _, b := range id {
		if b != 0 {
			return false
		}
	}
	return true
}
