package builder

import (
	"context"
	"math/big"
	"testing"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/neorpc"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
	"github.com/cityofzion/neow3j-go/pkg/transaction"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	blockCount    uint32
	gasConsumed   int64
	vmState       neorpc.VMState
	exception     string
	networkFee    int64
	balance       int64
	sendErr       error
	invokeCalls   int
	invokeFnStack []smartcontract.Parameter
}

func (m *mockClient) InvokeScript(ctx context.Context, script []byte, signers []neorpc.SignerWithWitness) (*neorpc.Invoke, error) {
	m.invokeCalls++
	state := m.vmState
	if state == "" {
		state = neorpc.HALT
	}
	return &neorpc.Invoke{State: state, GasConsumed: m.gasConsumed, FaultException: m.exception}, nil
}

func (m *mockClient) InvokeFunction(ctx context.Context, hash util.Uint160, method string, params []smartcontract.Parameter, signers []neorpc.SignerWithWitness) (*neorpc.Invoke, error) {
	stack := m.invokeFnStack
	if stack == nil {
		stack = []smartcontract.Parameter{{Type: smartcontract.IntegerType, Value: big.NewInt(m.balance)}}
	}
	return &neorpc.Invoke{State: neorpc.HALT, Stack: stack}, nil
}

func (m *mockClient) CalculateNetworkFee(ctx context.Context, rawTx []byte) (int64, error) {
	return m.networkFee, nil
}

func (m *mockClient) GetBlockCount(ctx context.Context) (uint32, error) {
	return m.blockCount, nil
}

func (m *mockClient) SendRawTransaction(ctx context.Context, rawTx []byte) (*neorpc.RelayResult, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &neorpc.RelayResult{}, nil
}

func singleSigAccount(t *testing.T) (SignerAccount, *keys.PrivateKey) {
	t.Helper()
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return SignerAccount{
		Signer:     &transaction.Signer{Account: priv.PublicKey().ScriptHash(), Scopes: transaction.CalledByEntry},
		Kind:       SingleSig,
		PrivateKey: priv,
		PublicKey:  priv.PublicKey(),
	}, priv
}

func TestBuildFeeAutoFill(t *testing.T) {
	sa, _ := singleSigAccount(t)
	client := &mockClient{blockCount: 1000, gasConsumed: 984060, networkFee: 1230610}
	b := New(client, Options{})
	b.Script([]byte{0x40}).Signers(sa)

	tx, err := b.Build(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 984060, tx.SystemFee)
	require.EqualValues(t, 1230610, tx.NetworkFee)
	require.EqualValues(t, 1000+DefaultMaxValidUntilBlockIncrement-1, tx.ValidUntilBlock)
}

func TestBuildFaultPropagatesException(t *testing.T) {
	sa, _ := singleSigAccount(t)
	client := &mockClient{vmState: neorpc.FAULT, exception: "division by zero"}
	b := New(client, Options{})
	b.Script([]byte{0x40}).Signers(sa)

	_, err := b.Build(context.Background())
	require.Error(t, err)
	var faultErr *FaultError
	require.ErrorAs(t, err, &faultErr)
	require.Equal(t, "division by zero", faultErr.Exception)
}

func TestBuildRejectsEmptyScript(t *testing.T) {
	sa, _ := singleSigAccount(t)
	b := New(&mockClient{}, Options{})
	b.Signers(sa)
	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, ErrEmptyScript)
}

func TestBuildRejectsDuplicateSigner(t *testing.T) {
	sa, _ := singleSigAccount(t)
	b := New(&mockClient{}, Options{})
	b.Script([]byte{0x40}).Signers(sa, sa)
	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, ErrDuplicateSigner)
}

func TestBuildConflictingFeeHandlers(t *testing.T) {
	sa, _ := singleSigAccount(t)
	b := New(&mockClient{}, Options{})
	b.Script([]byte{0x40}).Signers(sa)
	b.OnInsufficientFunds(func(int64, int64, int64) {})
	b.FailOnInsufficientFunds(ErrInsufficientFunds)
	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, ErrConflictingFeeHandlers)
}

func TestBuildInsufficientFundsConsumer(t *testing.T) {
	sa, _ := singleSigAccount(t)
	client := &mockClient{blockCount: 1, gasConsumed: 100, networkFee: 100, balance: 1}
	b := New(client, Options{})
	b.Script([]byte{0x40}).Signers(sa)

	var called bool
	var gotSys, gotNet, gotBal int64
	b.OnInsufficientFunds(func(sys, net, bal int64) {
		called = true
		gotSys, gotNet, gotBal = sys, net, bal
	})

	_, err := b.Build(context.Background())
	require.NoError(t, err)
	require.True(t, called)
	require.EqualValues(t, 100, gotSys)
	require.EqualValues(t, 100, gotNet)
	require.EqualValues(t, 1, gotBal)
}

func TestBuildInsufficientFundsError(t *testing.T) {
	sa, _ := singleSigAccount(t)
	client := &mockClient{blockCount: 1, gasConsumed: 100, networkFee: 100, balance: 1}
	b := New(client, Options{})
	b.Script([]byte{0x40}).Signers(sa)
	b.FailOnInsufficientFunds(ErrInsufficientFunds)

	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestFirstSignerOverride(t *testing.T) {
	sa1, _ := singleSigAccount(t)
	sa2, _ := singleSigAccount(t)
	client := &mockClient{blockCount: 1, networkFee: 1}
	b := New(client, Options{})
	b.Script([]byte{0x40}).Signers(sa1, sa2).FirstSigner(sa2.Signer.Account)

	tx, err := b.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, sa2.Signer.Account, tx.Signers[0].Account)
	require.Equal(t, sa1.Signer.Account, tx.Signers[1].Account)
}

func TestFirstSignerNotFound(t *testing.T) {
	sa1, _ := singleSigAccount(t)
	b := New(&mockClient{}, Options{})
	b.Script([]byte{0x40}).Signers(sa1).FirstSigner(util.Uint160{9, 9, 9})
	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, ErrFirstSignerNotFound)
}

func TestFirstSignerFeeOnlyRejected(t *testing.T) {
	sa1, _ := singleSigAccount(t)
	sa1.Signer.Scopes = transaction.None
	b := New(&mockClient{}, Options{})
	b.Script([]byte{0x40}).Signers(sa1).FirstSigner(sa1.Signer.Account)
	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, ErrFirstSignerFeeOnly)
}

func TestSignProducesVerifiableWitness(t *testing.T) {
	sa, priv := singleSigAccount(t)
	client := &mockClient{blockCount: 1, networkFee: 1}
	b := New(client, Options{NetworkMagic: 860833102})
	b.Script([]byte{0x40}).Signers(sa)

	tx, err := b.Build(context.Background())
	require.NoError(t, err)

	require.NoError(t, b.Sign(tx))
	require.Len(t, tx.Witnesses, 1)
	require.NotEmpty(t, tx.Witnesses[0].InvocationScript)
	require.Equal(t, priv.PublicKey().Bytes(), extractPubKey(tx.Witnesses[0].VerificationScript))
}

func extractPubKey(script []byte) []byte {
	// PUSHDATA1 0x21 <33-byte pubkey> SYSCALL ... for a single-sig
	// verification script; the pubkey immediately follows the 2-byte
	// push header.
	if len(script) < 2+33 {
		return nil
	}
	return script[2 : 2+33]
}

func TestSignRejectsMultiSig(t *testing.T) {
	val1, _ := keys.NewPublicKeyFromString("03b209fd4f53a7170ea4444e0cb0a6bb6a53c2bd016926989cf85f9b0fba17a70c")
	val2, _ := keys.NewPublicKeyFromString("02df48f60e8f3e01c48ff40b9b7f1310d7a8b2a193188befe1c2e3df740e895093")
	multiKeys := keys.PublicKeys{val1, val2}

	sa := SignerAccount{
		Signer:       &transaction.Signer{Account: util.Uint160{1}, Scopes: transaction.CalledByEntry},
		Kind:         MultiSig,
		MultiSigKeys: multiKeys,
		MultiSigM:    2,
	}
	client := &mockClient{blockCount: 1, networkFee: 1}
	b := New(client, Options{})
	b.Script([]byte{0x40}).Signers(sa)

	tx, err := b.Build(context.Background())
	require.NoError(t, err)
	require.ErrorIs(t, b.Sign(tx), ErrMultiSigAutoSignNotSupported)

	w := &transaction.Witness{InvocationScript: []byte{0x01}}
	require.NoError(t, b.SetWitness(tx, sa.Signer.Account, w))
	require.Equal(t, w, tx.Witnesses[0])
}

func TestSend(t *testing.T) {
	sa, _ := singleSigAccount(t)
	client := &mockClient{blockCount: 1, networkFee: 1}
	b := New(client, Options{})
	b.Script([]byte{0x40}).Signers(sa)

	tx, err := b.Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, b.Sign(tx))

	res, err := b.Send(context.Background(), tx)
	require.NoError(t, err)
	require.NotNil(t, res)
}
