// Package keys implements Neo's EC key pairs: private keys on secp256r1,
// SEC1-compressed public keys, deterministic ECDSA signing (RFC 6979) and
// WIF/address derivation.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/big"

	chash "github.com/cityofzion/neow3j-go/pkg/crypto/hash"
	"github.com/nspcc-dev/rfc6979"
)

// PrivateKeySize is the byte length of a raw private key scalar.
const PrivateKeySize = 32

// SignatureLen is the byte length of a deterministic ECDSA signature:
// two concatenated 32-byte big-endian scalars (r, s).
const SignatureLen = 64

// PrivateKey is a 32-byte big-endian scalar on secp256r1.
type PrivateKey struct {
	ecdsa.PrivateKey
}

// NewPrivateKey generates a fresh random private key.
func NewPrivateKey() (*PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keys: failed to generate private key: %w", err)
	}
	return &PrivateKey{PrivateKey: *priv}, nil
}

// NewPrivateKeyFromBytes builds a private key from its raw 32-byte
// big-endian scalar.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("keys: invalid private key length: %d", len(b))
	}
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(b)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, errors.New("keys: private key scalar out of range")
	}
	x, y := curve.ScalarBaseMult(b)
	return &PrivateKey{
		PrivateKey: ecdsa.PrivateKey{
			PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
			D:         d,
		},
	}, nil
}

// NewPrivateKeyFromHex builds a private key from its hex-encoded scalar.
func NewPrivateKeyFromHex(s string) (*PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	return NewPrivateKeyFromBytes(b)
}

// NewPrivateKeyFromWIF recovers a private key from its WIF encoding.
func NewPrivateKeyFromWIF(wif string) (*PrivateKey, error) {
	w, err := WIFDecode(wif, WIFVersion)
	if err != nil {
		return nil, err
	}
	return w.PrivateKey, nil
}

// Bytes returns the raw 32-byte big-endian scalar, left-padded with zeros.
func (p *PrivateKey) Bytes() []byte {
	b := make([]byte, PrivateKeySize)
	d := p.D.Bytes()
	copy(b[PrivateKeySize-len(d):], d)
	return b
}

// String returns the hex-encoded scalar.
func (p *PrivateKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// PublicKey returns the corresponding compressed public key.
func (p *PrivateKey) PublicKey() *PublicKey {
	pk := PublicKey(p.PrivateKey.PublicKey)
	return &pk
}

// WIF returns the WIF encoding of p:
// Base58Check(0x80 || priv:32 || 0x01).
func (p *PrivateKey) WIF() string {
	s, _ := WIFEncode(p.Bytes(), WIFVersion, true)
	return s
}

// Address returns the Base58Check N3 address derived from p's public key.
func (p *PrivateKey) Address() string {
	addr, _ := p.PublicKey().Address()
	return addr
}

// SignHash produces a deterministic ECDSA signature (RFC 6979, SHA-256)
// over an already-hashed 32-byte digest, returning the 64-byte
// concatenation of the two big-endian scalars r||s.
func (p *PrivateKey) SignHash(digest []byte) []byte {
	r, s := signDeterministic(&p.PrivateKey, digest)
	return packSignature(&p.PrivateKey, r, s)
}

// Sign hashes data with SHA-256 and signs the resulting digest.
func (p *PrivateKey) Sign(data []byte) []byte {
	h := sha256.Sum256(data)
	return p.SignHash(h[:])
}

// Destroy zeroes the private scalar in place, a best-effort mitigation
// against the key lingering in memory after use.
func (p *PrivateKey) Destroy() {
	if p.D != nil {
		p.D.SetInt64(0)
	}
}

// signDeterministic computes (r, s) via RFC 6979 deterministic k
// generation, matching the protocol's requirement for reproducible
// signatures.
func signDeterministic(priv *ecdsa.PrivateKey, digest []byte) (*big.Int, *big.Int) {
	curve := priv.Curve
	n := curve.Params().N
	var r, s *big.Int
	k := new(big.Int)
	rfc6979.GenerateSecret(n, priv.D, sha256Factory(), digest, func(candidate *big.Int) bool {
		if candidate.Sign() == 0 {
			return false
		}
		k = candidate
		x, _ := curve.ScalarBaseMult(k.Bytes())
		r = new(big.Int).Mod(x, n)
		return r.Sign() != 0
	})

	e := hashToInt(digest, n)
	kInv := new(big.Int).ModInverse(k, n)
	s = new(big.Int).Mul(priv.D, r)
	s.Add(s, e)
	s.Mul(s, kInv)
	s.Mod(s, n)

	// Canonicalize to the low-S form, as the reference client's signer
	// does, to avoid signature malleability.
	halfN := new(big.Int).Rsh(n, 1)
	if s.Cmp(halfN) > 0 {
		s.Sub(n, s)
	}
	return r, s
}

func sha256Factory() func() hash.Hash {
	return sha256.New
}

func hashToInt(hashBytes []byte, n *big.Int) *big.Int {
	bitLen := n.BitLen()
	e := new(big.Int).SetBytes(hashBytes)
	if excess := len(hashBytes)*8 - bitLen; excess > 0 {
		e.Rsh(e, uint(excess))
	}
	return e
}

func packSignature(priv *ecdsa.PrivateKey, r, s *big.Int) []byte {
	byteLen := (priv.Curve.Params().BitSize + 7) / 8
	buf := make([]byte, 2*byteLen)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(buf[byteLen-len(rBytes):byteLen], rBytes)
	copy(buf[2*byteLen-len(sBytes):], sBytes)
	return buf
}

// sighash hashes a transaction's unsigned preimage the way the Transaction
// Builder does when assembling a witness: sha256(network_magic_le ||
// sha256(tx_without_witnesses)).
func sighash(networkMagic uint32, txWithoutWitnesses []byte) []byte {
	inner := chash.Sha256(txWithoutWitnesses)
	buf := make([]byte, 4+len(inner))
	buf[0] = byte(networkMagic)
	buf[1] = byte(networkMagic >> 8)
	buf[2] = byte(networkMagic >> 16)
	buf[3] = byte(networkMagic >> 24)
	copy(buf[4:], inner)
	return chash.Sha256(buf)
}

// SignTransaction signs the sighash of a serialized, witness-less
// transaction preimage under the N3 network magic.
func (p *PrivateKey) SignTransaction(networkMagic uint32, txWithoutWitnesses []byte) []byte {
	return p.SignHash(sighash(networkMagic, txWithoutWitnesses))
}
