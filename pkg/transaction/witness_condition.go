package transaction

import (
	"errors"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	gio "github.com/cityofzion/neow3j-go/pkg/io"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// ConditionType is the one-byte discriminant prefixing every
// WitnessCondition on the wire.
type ConditionType byte

// Condition type discriminants, per the Neo N3 protocol.
const (
	ConditionBoolean          ConditionType = 0x00
	ConditionNot              ConditionType = 0x01
	ConditionAnd              ConditionType = 0x02
	ConditionOr               ConditionType = 0x03
	ConditionScriptHash       ConditionType = 0x18
	ConditionGroup            ConditionType = 0x19
	ConditionCalledByEntry    ConditionType = 0x20
	ConditionCalledByContract ConditionType = 0x28
	ConditionCalledByGroup    ConditionType = 0x29
)

// MaxConditionDepth is the maximum nesting depth of a WitnessCondition
// tree.
const MaxConditionDepth = 2

// MaxConditionSubItems bounds the number of children under And/Or/Not.
const MaxConditionSubItems = 16

var (
	// ErrConditionTooDeep is returned when a condition tree nests beyond
	// MaxConditionDepth.
	ErrConditionTooDeep = errors.New("transaction: witness condition nesting exceeds maximum depth")
	// ErrConditionTooManyItems is returned when a list-shaped condition
	// carries more than MaxConditionSubItems children.
	ErrConditionTooManyItems = errors.New("transaction: witness condition has too many sub-items")
	// ErrConditionEmptyList is returned by And/Or with zero children.
	ErrConditionEmptyList = errors.New("transaction: And/Or condition requires at least one sub-condition")
)

// WitnessCondition is a tree of
// boolean combinators over leaf predicates, bounded to depth 2 and 16
// children per node.
type WitnessCondition interface {
	Type() ConditionType
	EncodeBinary(w *gio.BinWriter)
	// decodeBinary reads the payload (the discriminant has already been
	// consumed) at the given nesting depth, failing if depth would be
	// exceeded by a child.
	decodeBinary(r *gio.BinReader, depth int)
}

// DecodeWitnessCondition reads a one-byte discriminant and its payload,
// enforcing the depth and size invariants.
func DecodeWitnessCondition(r *gio.BinReader, depth int) WitnessCondition {
	if depth > MaxConditionDepth {
		r.Err = gio.NewDeserializationError("witness condition depth", 0, ErrConditionTooDeep)
		return nil
	}
	t := ConditionType(r.ReadB())
	if r.Err != nil {
		return nil
	}
	var cond WitnessCondition
	switch t {
	case ConditionBoolean:
		cond = &BooleanCondition{}
	case ConditionNot:
		cond = &NotCondition{}
	case ConditionAnd:
		cond = &AndCondition{}
	case ConditionOr:
		cond = &OrCondition{}
	case ConditionScriptHash:
		cond = &ScriptHashCondition{}
	case ConditionGroup:
		cond = &GroupCondition{}
	case ConditionCalledByEntry:
		cond = &CalledByEntryCondition{}
	case ConditionCalledByContract:
		cond = &CalledByContractCondition{}
	case ConditionCalledByGroup:
		cond = &CalledByGroupCondition{}
	default:
		r.Err = gio.NewDeserializationError("witness condition type", 0, fmt.Errorf("unknown discriminant 0x%02x", t))
		return nil
	}
	cond.decodeBinary(r, depth)
	if r.Err != nil {
		return nil
	}
	return cond
}

func encodeConditionList(w *gio.BinWriter, items []WitnessCondition) {
	w.WriteVarUint(uint64(len(items)))
	for _, c := range items {
		w.WriteB(byte(c.Type()))
		c.EncodeBinary(w)
	}
}

func decodeConditionList(r *gio.BinReader, depth int) []WitnessCondition {
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	if n > MaxConditionSubItems {
		r.Err = gio.NewDeserializationError("witness condition list", 0, ErrConditionTooManyItems)
		return nil
	}
	out := make([]WitnessCondition, 0, n)
	for i := uint64(0); i < n; i++ {
		c := DecodeWitnessCondition(r, depth)
		if r.Err != nil {
			return nil
		}
		out = append(out, c)
	}
	return out
}

// BooleanCondition is a leaf boolean literal.
type BooleanCondition struct{ Value bool }

func (c *BooleanCondition) Type() ConditionType { return ConditionBoolean }
func (c *BooleanCondition) EncodeBinary(w *gio.BinWriter) { w.WriteBool(c.Value) }
func (c *BooleanCondition) decodeBinary(r *gio.BinReader, _ int) { c.Value = r.ReadBool() }

// NotCondition negates exactly one child condition.
type NotCondition struct{ Condition WitnessCondition }

func (c *NotCondition) Type() ConditionType { return ConditionNot }
func (c *NotCondition) EncodeBinary(w *gio.BinWriter) {
	w.WriteB(byte(c.Condition.Type()))
	c.Condition.EncodeBinary(w)
}
func (c *NotCondition) decodeBinary(r *gio.BinReader, depth int) {
	c.Condition = DecodeWitnessCondition(r, depth+1)
}

// AndCondition requires every child to hold; must have at least one child.
type AndCondition struct{ Conditions []WitnessCondition }

func (c *AndCondition) Type() ConditionType { return ConditionAnd }
func (c *AndCondition) EncodeBinary(w *gio.BinWriter) { encodeConditionList(w, c.Conditions) }
func (c *AndCondition) decodeBinary(r *gio.BinReader, depth int) {
	c.Conditions = decodeConditionList(r, depth+1)
	if r.Err == nil && len(c.Conditions) == 0 {
		r.Err = gio.NewDeserializationError("And condition", 0, ErrConditionEmptyList)
	}
}

// OrCondition requires at least one child to hold; must have at least one
// child.
type OrCondition struct{ Conditions []WitnessCondition }

func (c *OrCondition) Type() ConditionType { return ConditionOr }
func (c *OrCondition) EncodeBinary(w *gio.BinWriter) { encodeConditionList(w, c.Conditions) }
func (c *OrCondition) decodeBinary(r *gio.BinReader, depth int) {
	c.Conditions = decodeConditionList(r, depth+1)
	if r.Err == nil && len(c.Conditions) == 0 {
		r.Err = gio.NewDeserializationError("Or condition", 0, ErrConditionEmptyList)
	}
}

// ScriptHashCondition matches when the entry script hash equals Hash.
type ScriptHashCondition struct{ Hash util.Uint160 }

func (c *ScriptHashCondition) Type() ConditionType { return ConditionScriptHash }
func (c *ScriptHashCondition) EncodeBinary(w *gio.BinWriter) { w.WriteBytes(c.Hash.BytesLE()) }
func (c *ScriptHashCondition) decodeBinary(r *gio.BinReader, _ int) {
	b := make([]byte, util.Uint160Size)
	r.ReadBytesInto(b)
	if r.Err != nil {
		return
	}
	c.Hash, r.Err = util.Uint160DecodeBytesLE(b)
}

// GroupCondition matches when the calling contract belongs to Group.
type GroupCondition struct{ Group *keys.PublicKey }

func (c *GroupCondition) Type() ConditionType { return ConditionGroup }
func (c *GroupCondition) EncodeBinary(w *gio.BinWriter) { c.Group.EncodeBinary(w) }
func (c *GroupCondition) decodeBinary(r *gio.BinReader, _ int) {
	c.Group = &keys.PublicKey{}
	c.Group.DecodeBinary(r)
}

// CalledByEntryCondition matches only the transaction's entry script.
type CalledByEntryCondition struct{}

func (c *CalledByEntryCondition) Type() ConditionType        { return ConditionCalledByEntry }
func (c *CalledByEntryCondition) EncodeBinary(*gio.BinWriter) {}
func (c *CalledByEntryCondition) decodeBinary(*gio.BinReader, int) {}

// CalledByContractCondition matches when the caller is Hash.
type CalledByContractCondition struct{ Hash util.Uint160 }

func (c *CalledByContractCondition) Type() ConditionType { return ConditionCalledByContract }
func (c *CalledByContractCondition) EncodeBinary(w *gio.BinWriter) { w.WriteBytes(c.Hash.BytesLE()) }
func (c *CalledByContractCondition) decodeBinary(r *gio.BinReader, _ int) {
	b := make([]byte, util.Uint160Size)
	r.ReadBytesInto(b)
	if r.Err != nil {
		return
	}
	c.Hash, r.Err = util.Uint160DecodeBytesLE(b)
}

// CalledByGroupCondition matches when the caller belongs to Group.
type CalledByGroupCondition struct{ Group *keys.PublicKey }

func (c *CalledByGroupCondition) Type() ConditionType { return ConditionCalledByGroup }
func (c *CalledByGroupCondition) EncodeBinary(w *gio.BinWriter) { c.Group.EncodeBinary(w) }
func (c *CalledByGroupCondition) decodeBinary(r *gio.BinReader, _ int) {
	c.Group = &keys.PublicKey{}
	c.Group.DecodeBinary(r)
}
