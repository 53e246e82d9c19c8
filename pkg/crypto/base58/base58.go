// Package base58 implements Base58 and Base58Check encoding as used for
// Neo addresses and WIF-encoded private keys.
package base58

import (
	"bytes"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/crypto/hash"
	"github.com/mr-tron/base58/base58"
)

// Encode Base58-encodes b.
func Encode(b []byte) string {
	return base58.Encode(b)
}

// Decode Base58-decodes s.
func Decode(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("base58: %w", err)
	}
	return b, nil
}

// CheckEncode appends a 4-byte DoubleSha256 checksum to b and Base58-encodes
// the result.
func CheckEncode(b []byte) string {
	buf := make([]byte, 0, len(b)+4)
	buf = append(buf, b...)
	buf = append(buf, hash.Checksum(b)...)
	return Encode(buf)
}

// CheckDecode Base58-decodes s and verifies its trailing 4-byte checksum,
// returning the payload with the checksum stripped.
func CheckDecode(s string) ([]byte, error) {
	b, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) < 5 {
		return nil, fmt.Errorf("base58: decoded payload too short: %d bytes", len(b))
	}
	payload, checksum := b[:len(b)-4], b[len(b)-4:]
	expected := hash.Checksum(payload)
	if !bytes.Equal(checksum, expected) {
		return nil, fmt.Errorf("base58: checksum mismatch")
	}
	return payload, nil
}
