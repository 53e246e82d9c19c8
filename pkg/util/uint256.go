package util

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = 32

// Uint256 is a 32-byte little-endian unsigned integer, used for
// transaction and block hashes.
type Uint256 [Uint256Size]byte

// Uint256DecodeStringLE decodes a hex string already in wire (little-endian)
// byte order.
func Uint256DecodeStringLE(s string) (u Uint256, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("uint256: %w", err)
	}
	return Uint256DecodeBytesLE(b)
}

// Uint256DecodeString decodes a big-endian hex string (optionally
// 0x-prefixed).
func Uint256DecodeString(s string) (u Uint256, err error) {
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("uint256: %w", err)
	}
	return Uint256DecodeBytesBE(b)
}

// Uint256DecodeBytesLE decodes wire-order bytes.
func Uint256DecodeBytesLE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("uint256: expected %d bytes, got %d", Uint256Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// Uint256DecodeBytes decodes a big-endian byte slice, reversing it into
// wire order. It is an alias for Uint256DecodeBytesBE kept for callers
// that don't care to spell out the endianness.
func Uint256DecodeBytes(b []byte) (u Uint256, err error) {
	return Uint256DecodeBytesBE(b)
}

// Uint256DecodeBytesBE decodes big-endian bytes, reversing into wire order.
func Uint256DecodeBytesBE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("uint256: expected %d bytes, got %d", Uint256Size, len(b))
	}
	for i, v := range b {
		u[Uint256Size-i-1] = v
	}
	return u, nil
}

// BytesLE returns the wire (little-endian) byte representation.
func (u Uint256) BytesLE() []byte {
	b := make([]byte, Uint256Size)
	copy(b, u[:])
	return b
}

// BytesBE returns the big-endian byte representation used for display.
func (u Uint256) BytesBE() []byte {
	b := make([]byte, Uint256Size)
	for i := 0; i < Uint256Size; i++ {
		b[i] = u[Uint256Size-i-1]
	}
	return b
}

// Equals reports whether u and other denote the same value.
func (u Uint256) Equals(other Uint256) bool {
	return u == other
}

// StringLE returns the little-endian (wire order) hex encoding, no prefix.
func (u Uint256) StringLE() string {
	return hex.EncodeToString(u.BytesLE())
}

// String returns the canonical big-endian, 0x-prefixed textual form.
func (u Uint256) String() string {
	return "0x" + hex.EncodeToString(u.BytesBE())
}

// IsZero reports whether every byte of u is zero.
func (u Uint256) IsZero() bool {
	return u == Uint256{}
}

// CompareTo lexicographically compares the wire-order bytes of u and other.
func (u Uint256) CompareTo(other Uint256) int {
	return bytes.Compare(u[:], other[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (u Uint256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (u *Uint256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := Uint256DecodeString(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
