package smartcontract

import (
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/crypto/base58"
	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// addressToUint160 decodes a Base58Check N3 address into its script hash.
func addressToUint160(address string) (util.Uint160, error) {
	b, err := base58.CheckDecode(address)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("smartcontract: %w", err)
	}
	if len(b) != util.Uint160Size+1 {
		return util.Uint160{}, fmt.Errorf("smartcontract: invalid address length")
	}
	if b[0] != keys.AddressVersion {
		return util.Uint160{}, fmt.Errorf("smartcontract: unexpected address version 0x%02x", b[0])
	}
	return util.Uint160DecodeBytesBE(b[1:])
}
