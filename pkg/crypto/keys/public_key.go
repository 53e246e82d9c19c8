package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/cityofzion/neow3j-go/pkg/crypto/base58"
	"github.com/cityofzion/neow3j-go/pkg/crypto/hash"
	gio "github.com/cityofzion/neow3j-go/pkg/io"
)

// PublicKeySize is the length, in bytes, of a SEC1-compressed public key.
const PublicKeySize = 33

// AddressVersion is N3's address version byte.
const AddressVersion = 0x35

// PublicKey is an EC point on secp256r1, always serialized in SEC1
// compressed form. The on-chain codec rejects uncompressed encodings.
type PublicKey ecdsa.PublicKey

// NewPublicKeyFromBytes decodes a SEC1-compressed (33-byte) public key.
// Any other length, including the 65-byte uncompressed form, is rejected.
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	pub := &PublicKey{}
	r := gio.NewBinReaderFromBuf(b)
	pub.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return pub, nil
}

// NewPublicKeyFromString decodes a hex-encoded compressed public key.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	return NewPublicKeyFromBytes(b)
}

// Bytes returns the SEC1-compressed 33-byte encoding of p.
func (p *PublicKey) Bytes() []byte {
	if p.X == nil || p.Y == nil {
		return []byte{0x00}
	}
	buf := make([]byte, PublicKeySize)
	if p.Y.Bit(0) == 0 {
		buf[0] = 0x02
	} else {
		buf[0] = 0x03
	}
	x := p.X.Bytes()
	copy(buf[1+(32-len(x)):], x)
	return buf
}

// EncodeBinary implements io.Serializable.
func (p *PublicKey) EncodeBinary(w *gio.BinWriter) {
	w.WriteBytes(p.Bytes())
}

// DecodeBinary implements io.Serializable. It rejects any prefix byte
// other than 0x02/0x03 (compressed) or 0x00 (point at infinity), per the
// codec invariant that uncompressed keys never appear on-chain.
func (p *PublicKey) DecodeBinary(r *gio.BinReader) {
	prefix := r.ReadB()
	if r.Err != nil {
		return
	}
	if prefix == 0x00 {
		p.Curve = elliptic.P256()
		p.X, p.Y = nil, nil
		return
	}
	if prefix != 0x02 && prefix != 0x03 {
		r.Err = gio.NewDeserializationError("public key prefix", 0, fmt.Errorf("unsupported EC point encoding 0x%02x", prefix))
		return
	}
	xBytes := make([]byte, 32)
	r.ReadBytesInto(xBytes)
	if r.Err != nil {
		return
	}
	curve := elliptic.P256()
	x := new(big.Int).SetBytes(xBytes)
	y, err := decompressY(curve, x, prefix == 0x03)
	if err != nil {
		r.Err = gio.NewDeserializationError("public key point", 0, err)
		return
	}
	p.Curve = curve
	p.X, p.Y = x, y
}

func decompressY(curve elliptic.Curve, x *big.Int, odd bool) (*big.Int, error) {
	params := curve.Params()
	// y^2 = x^3 - 3x + b (mod p)
	x3 := new(big.Int).Mul(x, x)
	x3.Mul(x3, x)
	threeX := new(big.Int).Lsh(x, 1)
	threeX.Add(threeX, x)
	x3.Sub(x3, threeX)
	x3.Add(x3, params.B)
	x3.Mod(x3, params.P)

	y := new(big.Int).ModSqrt(x3, params.P)
	if y == nil {
		return nil, errors.New("keys: point is not on the curve")
	}
	if y.Bit(0) != boolToUint(odd) {
		y.Sub(params.P, y)
	}
	if !curve.IsOnCurve(x, y) {
		return nil, errors.New("keys: point is not on the curve")
	}
	return y, nil
}

func boolToUint(b bool) uint {
	if b {
		return 1
	}
	return 0
}

// Verify checks sig (the 64-byte r||s concatenation) against hashedData
// under p. It never panics on malformed input, returning false instead.
func (p *PublicKey) Verify(sig, hashedData []byte) bool {
	if p.X == nil || p.Y == nil || len(sig) != 64 {
		return false
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	pub := ecdsa.PublicKey(*p)
	return ecdsa.Verify(&pub, hashedData, r, s)
}

// checkSigSyscallHash is the first 4 bytes of SHA256("System.Crypto.CheckSig"),
// the interop identifier the single-sig verification script invokes. Kept
// local to this package (rather than importing vm/emit) to avoid a
// keys<->vm/emit import cycle: vm/emit's contract-call helpers need
// PublicKey, so PublicKey cannot depend back on vm/emit.
var checkSigSyscallHash = hash.Sha256([]byte("System.Crypto.CheckSig"))[:4]

// verificationScriptBytes builds the canonical single-sig verification
// script `PUSHDATA1 33 <pubkey> SYSCALL CheckSig`.
func verificationScriptBytes(p *PublicKey) []byte {
	b := p.Bytes()
	buf := make([]byte, 0, 2+len(b)+1+4)
	buf = append(buf, 0x0c, byte(len(b))) // PUSHDATA1, length
	buf = append(buf, b...)
	buf = append(buf, 0x41) // SYSCALL
	buf = append(buf, checkSigSyscallHash...)
	return buf
}

// ScriptHash returns the Hash160 of this key's single-sig verification
// script.
func (p *PublicKey) ScriptHash() (h [20]byte) {
	copy(h[:], hash.Hash160(verificationScriptBytes(p))[:])
	return h
}

// Address returns the Base58Check N3 address of this key's single-sig
// verification script.
func (p *PublicKey) Address() (string, error) {
	vs := verificationScriptBytes(p)
	sh := hash.Hash160(vs)
	buf := make([]byte, 1+len(sh))
	buf[0] = AddressVersion
	copy(buf[1:], sh[:])
	return base58.CheckEncode(buf), nil
}

// PublicKeys is a sortable collection of public keys, ordered ascending by
// their SEC1-compressed byte encoding, as required when assembling
// multi-sig verification scripts.
type PublicKeys []*PublicKey

func (p PublicKeys) Len() int      { return len(p) }
func (p PublicKeys) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p PublicKeys) Less(i, j int) bool {
	bi, bj := p[i].Bytes(), p[j].Bytes()
	for k := 0; k < len(bi) && k < len(bj); k++ {
		if bi[k] != bj[k] {
			return bi[k] < bj[k]
		}
	}
	return len(bi) < len(bj)
}

// Sort orders the keys ascending by encoded bytes, in place.
func (p PublicKeys) Sort() { sort.Sort(p) }
