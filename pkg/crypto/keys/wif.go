package keys

import (
	"errors"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/crypto/base58"
)

// WIFVersion is the version byte used for N3 WIF encoding.
const WIFVersion = 0x80

// WIF holds the result of decoding a Wallet Import Format string.
type WIF struct {
	Version    byte
	PrivateKey *PrivateKey
	Compressed bool
}

// WIFEncode encodes a raw 32-byte private key scalar as
// Base58Check(version || priv:32 [|| 0x01 if compressed]).
func WIFEncode(privateKey []byte, version byte, compressed bool) (string, error) {
	if len(privateKey) != PrivateKeySize {
		return "", fmt.Errorf("keys: invalid private key length: %d", len(privateKey))
	}
	if version == 0 {
		version = WIFVersion
	}
	buf := make([]byte, 0, 1+PrivateKeySize+1)
	buf = append(buf, version)
	buf = append(buf, privateKey...)
	if compressed {
		buf = append(buf, 0x01)
	}
	return base58.CheckEncode(buf), nil
}

// WIFDecode decodes s, verifying the expected version byte (0 accepts the
// default WIFVersion).
func WIFDecode(s string, version byte) (*WIF, error) {
	if version == 0 {
		version = WIFVersion
	}
	b, err := base58.CheckDecode(s)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid WIF: %w", err)
	}
	if len(b) != 1+PrivateKeySize && len(b) != 1+PrivateKeySize+1 {
		return nil, errors.New("keys: invalid WIF payload length")
	}
	if b[0] != version {
		return nil, fmt.Errorf("keys: unexpected WIF version 0x%02x", b[0])
	}
	compressed := len(b) == 1+PrivateKeySize+1
	if compressed && b[len(b)-1] != 0x01 {
		return nil, errors.New("keys: invalid WIF compression flag")
	}
	priv, err := NewPrivateKeyFromBytes(b[1 : 1+PrivateKeySize])
	if err != nil {
		return nil, err
	}
	return &WIF{Version: b[0], PrivateKey: priv, Compressed: compressed}, nil
}
