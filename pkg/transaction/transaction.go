package transaction

import (
	"github.com/cityofzion/neow3j-go/pkg/crypto/hash"
	gio "github.com/cityofzion/neow3j-go/pkg/io"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// MaxTransactionAttributes bounds signers plus attributes combined.
const MaxTransactionAttributes = 16

// MaxScriptLength bounds a transaction's script.
const MaxScriptLength = 65535

// Transaction is the wire envelope carrying a script, its authorizing
// signers and witnesses, fees, and metadata. It is
// mutable while a Builder assembles it and frozen once Hash is taken for
// signing.
type Transaction struct {
	Version         byte
	Nonce           uint32
	SystemFee       int64
	NetworkFee      int64
	ValidUntilBlock uint32
	Signers         []*Signer
	Attributes      []*Attribute
	Script          []byte
	Witnesses       []*Witness

	hash *util.Uint256
}

// Sender returns the first signer's account, the signer whose witness
// pays network and system fees.
func (t *Transaction) Sender() util.Uint160 {
	if len(t.Signers) == 0 {
		return util.Uint160{}
	}
	return t.Signers[0].Account
}

// Validate enforces the wire format's structural invariants: at least
// one signer, no duplicate signer accounts, signers+attributes within
// budget, at most one HighPriority attribute, and a non-empty script.
func (t *Transaction) Validate() error {
	if len(t.Signers) == 0 {
		return ErrNoSigners
	}
	if len(t.Signers) > MaxTransactionAttributes {
		return ErrTooManySigners
	}
	seen := make(map[util.Uint160]bool, len(t.Signers))
	for _, s := range t.Signers {
		if seen[s.Account] {
			return ErrDuplicateSignerAccount
		}
		seen[s.Account] = true
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if len(t.Signers)+len(t.Attributes) > MaxTransactionAttributes {
		return ErrTooManyAttributes
	}
	highPriority := 0
	for _, a := range t.Attributes {
		if a.Type == AttrHighPriority {
			highPriority++
		}
	}
	if highPriority > 1 {
		return ErrDuplicateHighPriority
	}
	if len(t.Script) == 0 {
		return ErrEmptyScript
	}
	if len(t.Script) > MaxScriptLength {
		return ErrScriptTooLarge
	}
	return nil
}

// encodeUnsigned writes every field except the witnesses list: the part
// of the transaction that is hashed and signed.
func (t *Transaction) encodeUnsigned(w *gio.BinWriter) {
	w.WriteB(t.Version)
	w.WriteU32LE(t.Nonce)
	w.WriteI64LE(t.SystemFee)
	w.WriteI64LE(t.NetworkFee)
	w.WriteU32LE(t.ValidUntilBlock)
	w.WriteVarUint(uint64(len(t.Signers)))
	for _, s := range t.Signers {
		s.EncodeBinary(w)
	}
	w.WriteVarUint(uint64(len(t.Attributes)))
	for _, a := range t.Attributes {
		a.EncodeBinary(w)
	}
	w.WriteVarBytes(t.Script)
}

// EncodeBinary writes the full transaction: the unsigned part followed
// by its witnesses.
func (t *Transaction) EncodeBinary(w *gio.BinWriter) {
	t.encodeUnsigned(w)
	w.WriteVarUint(uint64(len(t.Witnesses)))
	for _, wit := range t.Witnesses {
		wit.EncodeBinary(w)
	}
}

// DecodeBinary reads a full transaction and validates its structural
// invariants, failing with a DeserializationError if witness count
// doesn't match signer count.
func (t *Transaction) DecodeBinary(r *gio.BinReader) {
	t.Version = r.ReadB()
	t.Nonce = r.ReadU32LE()
	t.SystemFee = r.ReadI64LE()
	t.NetworkFee = r.ReadI64LE()
	t.ValidUntilBlock = r.ReadU32LE()
	if r.Err != nil {
		return
	}
	nSigners := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if nSigners == 0 {
		r.Err = gio.NewDeserializationError("signers", 0, ErrNoSigners)
		return
	}
	if nSigners > MaxTransactionAttributes {
		r.Err = gio.NewDeserializationError("signers", 0, ErrTooManySigners)
		return
	}
	t.Signers = make([]*Signer, nSigners)
	for i := range t.Signers {
		s := &Signer{}
		s.DecodeBinary(r)
		if r.Err != nil {
			return
		}
		t.Signers[i] = s
	}
	nAttrs := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if nSigners+nAttrs > MaxTransactionAttributes {
		r.Err = gio.NewDeserializationError("attributes", 0, ErrTooManyAttributes)
		return
	}
	t.Attributes = make([]*Attribute, nAttrs)
	for i := range t.Attributes {
		a := &Attribute{}
		a.DecodeBinary(r)
		if r.Err != nil {
			return
		}
		t.Attributes[i] = a
	}
	t.Script = r.ReadVarBytes(MaxScriptLength)
	if r.Err != nil {
		return
	}
	if len(t.Script) == 0 {
		r.Err = gio.NewDeserializationError("script", 0, ErrEmptyScript)
		return
	}
	nWitnesses := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if nWitnesses != nSigners {
		r.Err = gio.NewDeserializationError("witnesses", 0, ErrWitnessCountMismatch)
		return
	}
	t.Witnesses = make([]*Witness, nWitnesses)
	for i := range t.Witnesses {
		wit := &Witness{}
		wit.DecodeBinary(r)
		if r.Err != nil {
			return
		}
		t.Witnesses[i] = wit
	}
}

// Bytes serializes the full transaction, including witnesses.
func (t *Transaction) Bytes() []byte {
	bw := gio.NewBufBinWriter()
	t.EncodeBinary(bw.BinWriter)
	return bw.Bytes()
}

// SignedPart returns the serialized transaction excluding the witnesses
// list: the preimage the Transaction Builder hashes with the network
// magic to produce each signer's signature.
func (t *Transaction) SignedPart() []byte {
	bw := gio.NewBufBinWriter()
	t.encodeUnsigned(bw.BinWriter)
	return bw.Bytes()
}

// GetSignedHash returns the hash actually signed: SHA256(networkMagic ||
// SignedPart).
func (t *Transaction) GetSignedHash(networkMagic uint32) util.Uint256 {
	bw := gio.NewBufBinWriter()
	bw.WriteU32LE(networkMagic)
	bw.WriteBytes(t.SignedPart())
	u, _ := util.Uint256DecodeBytesLE(hash.Sha256(bw.Bytes()))
	return u
}

// Hash returns the transaction's identity hash: DoubleSha256 of the
// unsigned part, cached after first computation since a frozen
// Transaction's unsigned part never changes.
func (t *Transaction) Hash() util.Uint256 {
	if t.hash != nil {
		return *t.hash
	}
	h := hash.Hash256(t.SignedPart())
	t.hash = &h
	return h
}

// Size returns the byte length of the fully-serialized transaction.
func (t *Transaction) Size() int {
	return len(t.Bytes())
}
