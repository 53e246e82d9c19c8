package builder

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/neorpc"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
	"github.com/cityofzion/neow3j-go/pkg/transaction"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/cityofzion/neow3j-go/pkg/vm/emit"
	"go.uber.org/zap"
)

// SignerKind distinguishes how a SignerAccount's witness is produced.
type SignerKind int

// The three witness-production strategies a signer can use.
const (
	SingleSig SignerKind = iota
	MultiSig
	ContractOnly
)

// SignerAccount carries a wire Signer plus whatever local key material
// is needed to witness it, generalizing the reference client's
// Signer/Account pairing.
type SignerAccount struct {
	Signer *transaction.Signer
	Kind   SignerKind

	// SingleSig.
	PrivateKey *keys.PrivateKey
	PublicKey  *keys.PublicKey

	// MultiSig.
	MultiSigKeys keys.PublicKeys
	MultiSigM    int

	// ContractOnly: the caller-supplied parameter push sequence run as
	// the invocation script; the contract's own Verify method stands
	// in for a verification script.
	InvocationScript []byte
}

func (sa *SignerAccount) verificationScript() ([]byte, error) {
	switch sa.Kind {
	case SingleSig:
		return emit.BuildVerificationScript(sa.PublicKey), nil
	case MultiSig:
		return emit.BuildMultiSigVerificationScript(sa.MultiSigKeys, sa.MultiSigM)
	case ContractOnly:
		return nil, nil
	default:
		return nil, fmt.Errorf("builder: unknown signer kind %d", sa.Kind)
	}
}

func (sa *SignerAccount) dummyInvocation() []byte {
	switch sa.Kind {
	case SingleSig:
		return emit.NewBuilder().PushBytes(make([]byte, 64)).Bytes()
	case MultiSig:
		b := emit.NewBuilder()
		for i := 0; i < sa.MultiSigM; i++ {
			b.PushBytes(make([]byte, 64))
		}
		return b.Bytes()
	default:
		return sa.InvocationScript
	}
}

// InsufficientFundsConsumer is invoked instead of failing build when
// the sender's GAS balance can't cover the estimated fees.
type InsufficientFundsConsumer func(systemFee, networkFee, balance int64)

// Builder assembles a Transaction from a script, its signers and
// attributes, consulting a NodeClient for fee estimation and the
// current height.
type Builder struct {
	client NodeClient
	opts   Options

	version              byte
	nonce                *uint32
	validUntilBlock      *uint32
	script               []byte
	signers              []SignerAccount
	attributes           []*transaction.Attribute
	additionalNetworkFee int64
	additionalSystemFee  int64
	firstSigner          *util.Uint160

	insufficientFundsConsumer InsufficientFundsConsumer
	insufficientFundsError    error

	ordered []SignerAccount
}

// New returns a Builder talking to client, with opts.withDefaults()
// applied.
func New(client NodeClient, opts Options) *Builder {
	return &Builder{client: client, opts: opts.withDefaults()}
}

// Version sets the transaction format version (u8, 0 in practice).
func (b *Builder) Version(v byte) *Builder { b.version = v; return b }

// Nonce pins the transaction's nonce instead of drawing one at build
// time.
func (b *Builder) Nonce(n uint32) *Builder { b.nonce = &n; return b }

// ValidUntilBlock pins the transaction's expiry height instead of
// deriving it from the current chain height.
func (b *Builder) ValidUntilBlock(h uint32) *Builder { b.validUntilBlock = &h; return b }

// Script sets the call script the transaction carries.
func (b *Builder) Script(s []byte) *Builder { b.script = s; return b }

// Signers replaces the signer set.
func (b *Builder) Signers(signers ...SignerAccount) *Builder { b.signers = signers; return b }

// Attributes replaces the attribute set.
func (b *Builder) Attributes(attrs ...*transaction.Attribute) *Builder {
	b.attributes = attrs
	return b
}

// AdditionalNetworkFee adds to the node-estimated network fee, e.g. to
// cover a custom witness invocation script that costs more than the
// dummy placeholder used for estimation.
func (b *Builder) AdditionalNetworkFee(v int64) *Builder { b.additionalNetworkFee = v; return b }

// AdditionalSystemFee adds to the node-estimated system fee.
func (b *Builder) AdditionalSystemFee(v int64) *Builder { b.additionalSystemFee = v; return b }

// FirstSigner moves the signer with this account to index 0 during
// Build, making it the fee-paying sender.
func (b *Builder) FirstSigner(account util.Uint160) *Builder { b.firstSigner = &account; return b }

// OnInsufficientFunds installs a consumer invoked instead of failing
// build when the sender's GAS balance can't cover the estimated fees.
// Mutually exclusive with FailOnInsufficientFunds.
func (b *Builder) OnInsufficientFunds(consumer InsufficientFundsConsumer) *Builder {
	b.insufficientFundsConsumer = consumer
	return b
}

// FailOnInsufficientFunds installs the error Build returns instead of
// failing build when the sender's GAS balance can't cover the
// estimated fees. Mutually exclusive with OnInsufficientFunds.
func (b *Builder) FailOnInsufficientFunds(err error) *Builder {
	b.insufficientFundsError = err
	return b
}

func (b *Builder) checksBalance() bool {
	return b.insufficientFundsConsumer != nil || b.insufficientFundsError != nil
}

func (b *Builder) validate() error {
	if b.insufficientFundsConsumer != nil && b.insufficientFundsError != nil {
		return ErrConflictingFeeHandlers
	}
	if len(b.script) == 0 {
		return ErrEmptyScript
	}
	if len(b.signers) == 0 {
		return ErrNoSigners
	}
	seen := make(map[util.Uint160]bool, len(b.signers))
	for _, sa := range b.signers {
		if sa.Signer == nil {
			return fmt.Errorf("builder: signer account missing its wire Signer")
		}
		if seen[sa.Signer.Account] {
			return ErrDuplicateSigner
		}
		seen[sa.Signer.Account] = true
	}
	if len(b.signers)+len(b.attributes) > transaction.MaxTransactionAttributes {
		return ErrTooManyAttributes
	}
	return nil
}

func (b *Builder) orderSigners() ([]SignerAccount, error) {
	if b.firstSigner == nil {
		return b.signers, nil
	}
	idx := -1
	for i, sa := range b.signers {
		if sa.Signer.Account == *b.firstSigner {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrFirstSignerNotFound
	}
	if b.signers[idx].Signer.Scopes == transaction.None {
		return nil, ErrFirstSignerFeeOnly
	}
	out := make([]SignerAccount, 0, len(b.signers))
	out = append(out, b.signers[idx])
	for i, sa := range b.signers {
		if i != idx {
			out = append(out, sa)
		}
	}
	return out, nil
}

func drawNonce() (uint32, error) {
	var buf [4]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("builder: draw nonce: %w", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func signersWithEmptyWitness(signers []SignerAccount) []neorpc.SignerWithWitness {
	out := make([]neorpc.SignerWithWitness, len(signers))
	for i, sa := range signers {
		out[i] = neorpc.SignerWithWitness{Signer: *sa.Signer}
	}
	return out
}

// Build draws any unset nonce/valid-until-block, invokes the script to
// price system_fee, prices network_fee against correctly-sized dummy
// witnesses, optionally checks the sender's GAS balance, and returns
// an unsigned Transaction.
func (b *Builder) Build(ctx context.Context) (*transaction.Transaction, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	ordered, err := b.orderSigners()
	if err != nil {
		return nil, err
	}
	b.ordered = ordered

	nonce := uint32(0)
	if b.nonce != nil {
		nonce = *b.nonce
	} else {
		nonce, err = drawNonce()
		if err != nil {
			return nil, err
		}
	}

	validUntil := uint32(0)
	if b.validUntilBlock != nil {
		validUntil = *b.validUntilBlock
	} else {
		height, err := b.client.GetBlockCount(ctx)
		if err != nil {
			return nil, fmt.Errorf("builder: get_block_count: %w", err)
		}
		validUntil = height + b.opts.MaxValidUntilBlockIncrement - 1
	}

	signers := make([]*transaction.Signer, len(ordered))
	for i, sa := range ordered {
		signers[i] = sa.Signer
	}

	tx := &transaction.Transaction{
		Version:         b.version,
		Nonce:           nonce,
		ValidUntilBlock: validUntil,
		Signers:         signers,
		Attributes:      b.attributes,
		Script:          b.script,
	}

	invoke, err := b.client.InvokeScript(ctx, b.script, signersWithEmptyWitness(ordered))
	if err != nil {
		return nil, fmt.Errorf("builder: invoke_script: %w", err)
	}
	if invoke.State == neorpc.FAULT {
		return nil, &FaultError{Exception: invoke.FaultException}
	}
	tx.SystemFee = invoke.GasConsumed + b.additionalSystemFee

	tx.Witnesses = make([]*transaction.Witness, len(ordered))
	for i, sa := range ordered {
		verification, err := sa.verificationScript()
		if err != nil {
			return nil, fmt.Errorf("builder: dummy witness: %w", err)
		}
		tx.Witnesses[i] = &transaction.Witness{
			InvocationScript:   sa.dummyInvocation(),
			VerificationScript: verification,
		}
	}

	networkFee, err := b.client.CalculateNetworkFee(ctx, tx.Bytes())
	if err != nil {
		return nil, fmt.Errorf("builder: calculate_network_fee: %w", err)
	}
	tx.NetworkFee = networkFee + b.additionalNetworkFee

	if b.checksBalance() {
		balance, err := b.gasBalance(ctx, tx.Sender())
		if err != nil {
			return nil, fmt.Errorf("builder: balance check: %w", err)
		}
		if tx.SystemFee+tx.NetworkFee > balance {
			if b.insufficientFundsConsumer != nil {
				b.insufficientFundsConsumer(tx.SystemFee, tx.NetworkFee, balance)
			} else {
				return nil, b.insufficientFundsError
			}
		}
	}

	// Reset the dummy witnesses used for fee sizing: Build returns an
	// unsigned transaction, ready for Sign/SetWitness to fill in by
	// index.
	tx.Witnesses = make([]*transaction.Witness, len(ordered))
	return tx, nil
}

func (b *Builder) gasBalance(ctx context.Context, account util.Uint160) (int64, error) {
	params, err := smartcontract.NewParametersFromValues(account)
	if err != nil {
		return 0, err
	}
	invoke, err := b.client.InvokeFunction(ctx, GasToken, "balanceOf", params, nil)
	if err != nil {
		return 0, fmt.Errorf("balanceOf: %w", err)
	}
	if invoke.State == neorpc.FAULT {
		return 0, &FaultError{Exception: invoke.FaultException}
	}
	if len(invoke.Stack) != 1 || invoke.Stack[0].Type != smartcontract.IntegerType {
		return 0, fmt.Errorf("builder: unexpected balanceOf stack shape")
	}
	balance, ok := invoke.Stack[0].Value.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("builder: unexpected balanceOf value type")
	}
	return balance.Int64(), nil
}

// Sign produces a witness for every SingleSig and ContractOnly signer
// in tx (built by Build, in the same order), using each
// SignerAccount's private key or caller-supplied invocation script.
// MultiSig signers are rejected: the caller must assemble those
// witnesses explicitly via SetWitness.
func (b *Builder) Sign(tx *transaction.Transaction) error {
	preimage := tx.SignedPart()
	for i, sa := range b.ordered {
		switch sa.Kind {
		case SingleSig:
			if sa.PrivateKey == nil {
				return ErrNoPrivateKeyForSigner
			}
			sig := sa.PrivateKey.SignTransaction(b.opts.NetworkMagic, preimage)
			tx.Witnesses[i] = &transaction.Witness{
				InvocationScript:   emit.NewBuilder().PushBytes(sig).Bytes(),
				VerificationScript: emit.BuildVerificationScript(sa.PrivateKey.PublicKey()),
			}
		case ContractOnly:
			tx.Witnesses[i] = &transaction.Witness{
				InvocationScript: sa.InvocationScript,
			}
		case MultiSig:
			return ErrMultiSigAutoSignNotSupported
		}
	}
	return nil
}

// SetWitness assembles a witness explicitly, for signers (multi-sig in
// particular) that Sign refuses to auto-witness.
func (b *Builder) SetWitness(tx *transaction.Transaction, account util.Uint160, w *transaction.Witness) error {
	for i, sa := range b.ordered {
		if sa.Signer.Account == account {
			tx.Witnesses[i] = w
			return nil
		}
	}
	return fmt.Errorf("builder: %s is not among this transaction's signers", account.StringLE())
}

// Send broadcasts a fully witnessed transaction.
func (b *Builder) Send(ctx context.Context, tx *transaction.Transaction) (*neorpc.RelayResult, error) {
	b.opts.Log.Debug("sending transaction", zap.Stringer("hash", tx.Hash()))
	return b.client.SendRawTransaction(ctx, tx.Bytes())
}
