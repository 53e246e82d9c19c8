// Package hash implements the hash primitives Neo N3 uses to derive
// script hashes (Hash160) and transaction/block identities (Hash256).
package hash

import (
	"crypto/sha256"

	"github.com/cityofzion/neow3j-go/pkg/util"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ripemd160 is required by the Neo protocol, not a choice of this module.
)

// Sha256 returns the SHA-256 digest of b.
func Sha256(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

// DoubleSha256 returns SHA-256(SHA-256(b)), used by Base58Check and the NEF
// checksum.
func DoubleSha256(b []byte) []byte {
	return Sha256(Sha256(b))
}

// RipeMD160 returns the RIPEMD-160 digest of b.
func RipeMD160(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}

// Hash160 computes RIPEMD160(SHA256(b)) and returns it as a Uint160 script
// hash, as specified for deriving an account identity from its
// verification script.
func Hash160(b []byte) util.Uint160 {
	u, _ := util.Uint160DecodeBytesLE(RipeMD160(Sha256(b)))
	return u
}

// Hash256 computes SHA256(SHA256(b)) and returns it as a Uint256, the form
// used for transaction and block hashes.
func Hash256(b []byte) util.Uint256 {
	u, _ := util.Uint256DecodeBytesLE(DoubleSha256(b))
	return u
}

// Checksum returns the first 4 bytes of DoubleSha256(b), the Base58Check /
// NEF checksum.
func Checksum(b []byte) []byte {
	return DoubleSha256(b)[:4]
}
