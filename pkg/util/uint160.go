package util

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// Uint160 is a 20-byte little-endian unsigned integer, used as a script
// hash (Hash160) throughout the protocol.
type Uint160 [Uint160Size]byte

// Uint160DecodeStringLE attempts to decode the given string (without the
// 0x prefix) into a Uint160, assuming the string is in little-endian wire
// order already.
func Uint160DecodeStringLE(s string) (u Uint160, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("uint160: %w", err)
	}
	return Uint160DecodeBytesLE(b)
}

// Uint160DecodeString decodes a big-endian hex string (optionally
// 0x-prefixed) into a Uint160, reversing byte order to the wire's
// little-endian form.
func Uint160DecodeString(s string) (u Uint160, err error) {
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("uint160: %w", err)
	}
	return Uint160DecodeBytesBE(b)
}

// Uint160DecodeBytesLE decodes a slice of bytes already in little-endian
// wire order.
func Uint160DecodeBytesLE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("uint160: expected %d bytes, got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// Uint160DecodeBytes decodes a big-endian byte slice, reversing it into
// wire order. It is an alias for Uint160DecodeBytesBE kept for callers
// that don't care to spell out the endianness.
func Uint160DecodeBytes(b []byte) (u Uint160, err error) {
	return Uint160DecodeBytesBE(b)
}

// Uint160DecodeBytesBE decodes a big-endian byte slice, reversing it into
// wire order.
func Uint160DecodeBytesBE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("uint160: expected %d bytes, got %d", Uint160Size, len(b))
	}
	for i, v := range b {
		u[Uint160Size-i-1] = v
	}
	return u, nil
}

// BytesLE returns the wire (little-endian) byte representation.
func (u Uint160) BytesLE() []byte {
	b := make([]byte, Uint160Size)
	copy(b, u[:])
	return b
}

// BytesBE returns the big-endian byte representation used for display.
func (u Uint160) BytesBE() []byte {
	b := make([]byte, Uint160Size)
	for i := 0; i < Uint160Size; i++ {
		b[i] = u[Uint160Size-i-1]
	}
	return b
}

// Equals reports whether u and other denote the same value.
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}

// StringLE returns the little-endian (wire order) hex encoding, no prefix.
func (u Uint160) StringLE() string {
	return hex.EncodeToString(u.BytesLE())
}

// String returns the canonical big-endian, 0x-prefixed textual form.
func (u Uint160) String() string {
	return "0x" + hex.EncodeToString(u.BytesBE())
}

// IsZero reports whether every byte of u is zero.
func (u Uint160) IsZero() bool {
	return u == Uint160{}
}

// CompareTo lexicographically compares the wire-order bytes of u and other,
// returning -1, 0 or 1.
func (u Uint160) CompareTo(other Uint160) int {
	return bytes.Compare(u[:], other[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (u Uint160) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface, accepting both
// 0x-prefixed and bare big-endian hex strings.
func (u *Uint160) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := Uint160DecodeString(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
