package neorpc

import (
	"encoding/json"
	"testing"

	"github.com/cityofzion/neow3j-go/pkg/transaction"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestSignerWithWitnessRoundTrip(t *testing.T) {
	acc := util.Uint160{1, 2, 3}
	contract := util.Uint160{4, 5, 6}

	in := SignerWithWitness{
		Signer: transaction.Signer{
			Account:          acc,
			Scopes:           transaction.CalledByEntry | transaction.CustomContracts,
			AllowedContracts: []util.Uint160{contract},
		},
		Witness: transaction.Witness{
			InvocationScript:   []byte{0x0c, 0x01, 0x02},
			VerificationScript: []byte{0x0c, 0x03, 0x04},
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out SignerWithWitness
	require.NoError(t, json.Unmarshal(data, &out))

	require.Equal(t, in.Signer.Account, out.Signer.Account)
	require.Equal(t, in.Signer.Scopes, out.Signer.Scopes)
	require.Equal(t, in.Signer.AllowedContracts, out.Signer.AllowedContracts)
	require.Equal(t, in.Witness.InvocationScript, out.Witness.InvocationScript)
	require.Equal(t, in.Witness.VerificationScript, out.Witness.VerificationScript)
}

func TestInvokeGasConsumedIsQuoted(t *testing.T) {
	data := []byte(`{"state":"HALT","gasconsumed":"984060","script":"DA==","stack":[]}`)
	var inv Invoke
	require.NoError(t, json.Unmarshal(data, &inv))
	require.Equal(t, HALT, inv.State)
	require.EqualValues(t, 984060, inv.GasConsumed)
}
