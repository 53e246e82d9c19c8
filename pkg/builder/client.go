package builder

import (
	"context"

	"github.com/cityofzion/neow3j-go/pkg/neorpc"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// NodeClient is the subset of the Node Client the Transaction Builder
// consults. Accepting the interface here, rather than a
// concrete *rpcclient.Client, keeps this package decoupled from the
// transport and trivially testable with a mock.
type NodeClient interface {
	InvokeScript(ctx context.Context, script []byte, signers []neorpc.SignerWithWitness) (*neorpc.Invoke, error)
	InvokeFunction(ctx context.Context, hash util.Uint160, method string, params []smartcontract.Parameter, signers []neorpc.SignerWithWitness) (*neorpc.Invoke, error)
	CalculateNetworkFee(ctx context.Context, rawTx []byte) (int64, error)
	GetBlockCount(ctx context.Context) (uint32, error)
	SendRawTransaction(ctx context.Context, rawTx []byte) (*neorpc.RelayResult, error)
}

// BlockSource is the subset consumed by Track (the block-tracking
// feed); separated from NodeClient since not every caller needs a
// live subscription.
type BlockSource interface {
	Next(ctx context.Context) (*neorpc.Block, error)
	Close() error
}
