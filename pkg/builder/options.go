// Package builder implements the Transaction Builder: script, signers,
// and attributes go in; fee estimation, dummy-witness sizing, signing,
// and broadcast tracking come out.
package builder

import (
	"github.com/cityofzion/neow3j-go/pkg/util"
	"go.uber.org/zap"
)

// DefaultMaxValidUntilBlockIncrement is the N3 mainnet/testnet default
// for how far past the current height a transaction may remain valid.
const DefaultMaxValidUntilBlockIncrement = 5760

// GasToken is the native GAS contract's script hash, consulted by
// Builder.WithSenderBalanceCheck for the sender's spendable balance.
var GasToken = mustUint160("0xd2a4cff31913016155e38e474a2c06d08be276cf")

func mustUint160(s string) util.Uint160 {
	u, err := util.Uint160DecodeString(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Options configures a Builder; the zero value picks the N3 defaults.
type Options struct {
	// NetworkMagic is mixed into the signing preimage.
	NetworkMagic uint32
	// MaxValidUntilBlockIncrement bounds the default
	// valid_until_block when the caller hasn't set one explicitly.
	MaxValidUntilBlockIncrement uint32
	// Log receives build-step diagnostics; defaults to zap.NewNop().
	Log *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxValidUntilBlockIncrement == 0 {
		o.MaxValidUntilBlockIncrement = DefaultMaxValidUntilBlockIncrement
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}
