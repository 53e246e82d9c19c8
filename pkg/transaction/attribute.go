package transaction

import (
	"errors"
	"fmt"

	gio "github.com/cityofzion/neow3j-go/pkg/io"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// AttrType is the one-byte discriminant prefixing a transaction
// attribute.
type AttrType byte

// Attribute type discriminants.
const (
	AttrHighPriority    AttrType = 0x01
	AttrOracleResponse  AttrType = 0x11
	AttrNotValidBefore  AttrType = 0x20
	AttrConflicts       AttrType = 0x21
)

// MaxOracleResponseResultSize bounds the payload an oracle response may
// carry.
const MaxOracleResponseResultSize = 0xffff

// OracleResponseCode is the outcome of an oracle request.
type OracleResponseCode byte

// Response codes, per the Neo N3 oracle protocol.
const (
	OracleSuccess              OracleResponseCode = 0x00
	OracleProtocolNotSupported OracleResponseCode = 0x10
	OracleConsensusUnreachable OracleResponseCode = 0x12
	OracleNotFound             OracleResponseCode = 0x14
	OracleTimeout              OracleResponseCode = 0x16
	OracleForbidden            OracleResponseCode = 0x18
	OracleResponseTooLarge     OracleResponseCode = 0x1a
	OracleInsufficientFunds    OracleResponseCode = 0x1c
	OracleContentTypeNotSupported OracleResponseCode = 0x1f
	OracleError                OracleResponseCode = 0xff
)

// Attribute is a typed, extensible piece of metadata carried by a
// Transaction beyond its core envelope: priority hints,
// oracle callback payloads, validity windows, and conflict
// declarations.
type Attribute struct {
	Type  AttrType
	Value AttributeValue
}

// AttributeValue is implemented by each attribute's payload.
type AttributeValue interface {
	EncodeBinary(w *gio.BinWriter)
	DecodeBinary(r *gio.BinReader)
}

// HighPriorityAttribute has no payload: its mere presence signals the
// committee-fee-free fast lane.
type HighPriorityAttribute struct{}

func (*HighPriorityAttribute) EncodeBinary(*gio.BinWriter) {}
func (*HighPriorityAttribute) DecodeBinary(*gio.BinReader) {}

// OracleResponseAttribute carries the result of an oracle request this
// transaction answers.
type OracleResponseAttribute struct {
	ID     uint64
	Code   OracleResponseCode
	Result []byte
}

func (a *OracleResponseAttribute) EncodeBinary(w *gio.BinWriter) {
	w.WriteU64LE(a.ID)
	w.WriteB(byte(a.Code))
	w.WriteVarBytes(a.Result)
}

func (a *OracleResponseAttribute) DecodeBinary(r *gio.BinReader) {
	a.ID = r.ReadU64LE()
	if r.Err != nil {
		return
	}
	a.Code = OracleResponseCode(r.ReadB())
	if r.Err != nil {
		return
	}
	a.Result = r.ReadVarBytes(MaxOracleResponseResultSize)
}

// NotValidBeforeAttribute bounds the earliest block height at which the
// transaction may be included.
type NotValidBeforeAttribute struct {
	Height uint32
}

func (a *NotValidBeforeAttribute) EncodeBinary(w *gio.BinWriter) { w.WriteU32LE(a.Height) }
func (a *NotValidBeforeAttribute) DecodeBinary(r *gio.BinReader) { a.Height = r.ReadU32LE() }

// ConflictsAttribute declares that this transaction invalidates another
// pending transaction by hash.
type ConflictsAttribute struct {
	Hash util.Uint256
}

func (a *ConflictsAttribute) EncodeBinary(w *gio.BinWriter) { w.WriteBytes(a.Hash.BytesLE()) }
func (a *ConflictsAttribute) DecodeBinary(r *gio.BinReader) {
	b := make([]byte, util.Uint256Size)
	r.ReadBytesInto(b)
	if r.Err != nil {
		return
	}
	a.Hash, r.Err = util.Uint256DecodeBytesLE(b)
}

// ErrUnknownAttributeType is returned when a transaction's wire bytes
// carry an attribute discriminant this package doesn't recognize.
var ErrUnknownAttributeType = errors.New("transaction: unknown attribute type")

// EncodeBinary writes the attribute's discriminant byte followed by its
// payload.
func (a *Attribute) EncodeBinary(w *gio.BinWriter) {
	w.WriteB(byte(a.Type))
	a.Value.EncodeBinary(w)
}

// DecodeBinary reads an attribute's discriminant and dispatches to the
// matching payload type.
func (a *Attribute) DecodeBinary(r *gio.BinReader) {
	a.Type = AttrType(r.ReadB())
	if r.Err != nil {
		return
	}
	switch a.Type {
	case AttrHighPriority:
		a.Value = &HighPriorityAttribute{}
	case AttrOracleResponse:
		a.Value = &OracleResponseAttribute{}
	case AttrNotValidBefore:
		a.Value = &NotValidBeforeAttribute{}
	case AttrConflicts:
		a.Value = &ConflictsAttribute{}
	default:
		r.Err = gio.NewDeserializationError("attribute type", 0, fmt.Errorf("%w: 0x%02x", ErrUnknownAttributeType, a.Type))
		return
	}
	a.Value.DecodeBinary(r)
}
