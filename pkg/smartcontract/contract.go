package smartcontract

import (
	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/vm/emit"
)

// CreateMultiSigRedeemScript builds the verification script for an m-of-n
// multisignature account controlled by pubs.
func CreateMultiSigRedeemScript(m int, pubs keys.PublicKeys) ([]byte, error) {
	return emit.BuildMultiSigVerificationScript(pubs, m)
}
