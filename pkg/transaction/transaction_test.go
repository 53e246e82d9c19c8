package transaction

import (
	"testing"

	gio "github.com/cityofzion/neow3j-go/pkg/io"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *Transaction {
	return &Transaction{
		Version:         0,
		Nonce:           1,
		SystemFee:       100,
		NetworkFee:      200,
		ValidUntilBlock: 1000,
		Signers: []*Signer{
			{Account: util.Uint160{1}, Scopes: CalledByEntry},
		},
		Attributes: nil,
		Script:     []byte{0x10, 0x11, 0x40},
		Witnesses: []*Witness{
			{InvocationScript: []byte{0x01}, VerificationScript: []byte{0x02}},
		},
	}
}

func TestTransactionValidate(t *testing.T) {
	tx := newTestTransaction()
	require.NoError(t, tx.Validate())

	empty := newTestTransaction()
	empty.Signers = nil
	require.ErrorIs(t, empty.Validate(), ErrNoSigners)

	dup := newTestTransaction()
	dup.Signers = append(dup.Signers, &Signer{Account: dup.Signers[0].Account})
	require.ErrorIs(t, dup.Validate(), ErrDuplicateSignerAccount)

	noScript := newTestTransaction()
	noScript.Script = nil
	require.ErrorIs(t, noScript.Validate(), ErrEmptyScript)
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := newTestTransaction()
	b := tx.Bytes()
	require.NotEmpty(t, b)

	r := gio.NewBinReaderFromBuf(b)
	got := &Transaction{}
	got.DecodeBinary(r)
	require.NoError(t, r.Err)
	require.Equal(t, tx.Nonce, got.Nonce)
	require.Equal(t, tx.SystemFee, got.SystemFee)
	require.Equal(t, tx.Script, got.Script)
	require.Len(t, got.Witnesses, 1)
}

func TestTransactionDecodeRejectsWitnessMismatch(t *testing.T) {
	tx := newTestTransaction()
	tx.Witnesses = append(tx.Witnesses, &Witness{})
	bw := gio.NewBufBinWriter()
	tx.encodeUnsigned(bw.BinWriter)
	bw.WriteVarUint(uint64(len(tx.Witnesses)))
	for _, w := range tx.Witnesses {
		w.EncodeBinary(bw.BinWriter)
	}

	r := gio.NewBinReaderFromBuf(bw.Bytes())
	got := &Transaction{}
	got.DecodeBinary(r)
	require.ErrorIs(t, r.Err, ErrWitnessCountMismatch)
}

func TestTransactionHashIsStableAndExcludesWitnesses(t *testing.T) {
	tx := newTestTransaction()
	h1 := tx.Hash()

	tx2 := newTestTransaction()
	tx2.Witnesses[0].InvocationScript = []byte{0xff, 0xff, 0xff}
	h2 := tx2.Hash()

	require.Equal(t, h1, h2, "hash must be computed over the unsigned part only")
}

func TestTransactionGetSignedHashVariesByNetworkMagic(t *testing.T) {
	tx := newTestTransaction()
	h1 := tx.GetSignedHash(860833102)
	h2 := tx.GetSignedHash(894710606)
	require.NotEqual(t, h1, h2)
}
