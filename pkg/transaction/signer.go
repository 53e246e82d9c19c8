package transaction

import (
	"errors"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	gio "github.com/cityofzion/neow3j-go/pkg/io"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// MaxSubitems bounds the allowed/denied contract and group lists, and the
// rules list, on a single Signer.
const MaxSubitems = 16

var (
	// ErrGlobalNotExclusive is returned when Global is combined with any
	// other scope bit.
	ErrGlobalNotExclusive = errors.New("transaction: Global scope cannot be combined with other scopes")
	// ErrTooManySubitems is returned when a Signer's contracts, groups,
	// or rules list exceeds MaxSubitems.
	ErrTooManySubitems = errors.New("transaction: signer sub-item list exceeds maximum size")
)

// Signer authorizes a transaction to the extent of its Scopes: which
// contracts, groups, or rule-matched calls its witness may satisfy.
type Signer struct {
	Account          util.Uint160
	Scopes           WitnessScope
	AllowedContracts []util.Uint160
	AllowedGroups    []*keys.PublicKey
	Rules            []*WitnessRule
}

// Validate enforces the Global-exclusivity and sub-item count invariants.
func (s *Signer) Validate() error {
	if s.Scopes&Global != 0 && s.Scopes != Global {
		return ErrGlobalNotExclusive
	}
	if len(s.AllowedContracts) > MaxSubitems || len(s.AllowedGroups) > MaxSubitems || len(s.Rules) > MaxSubitems {
		return ErrTooManySubitems
	}
	return nil
}

// EncodeBinary writes the signer's account, scopes, and whichever
// scope-dependent sub-lists apply.
func (s *Signer) EncodeBinary(w *gio.BinWriter) {
	w.WriteBytes(s.Account.BytesLE())
	w.WriteB(byte(s.Scopes))
	if s.Scopes&CustomContracts != 0 {
		w.WriteVarUint(uint64(len(s.AllowedContracts)))
		for _, h := range s.AllowedContracts {
			w.WriteBytes(h.BytesLE())
		}
	}
	if s.Scopes&CustomGroups != 0 {
		w.WriteVarUint(uint64(len(s.AllowedGroups)))
		for _, g := range s.AllowedGroups {
			g.EncodeBinary(w)
		}
	}
	if s.Scopes&WitnessRules != 0 {
		w.WriteVarUint(uint64(len(s.Rules)))
		for _, r := range s.Rules {
			r.EncodeBinary(w)
		}
	}
}

// DecodeBinary reads a signer, validating the scope invariants as it
// goes.
func (s *Signer) DecodeBinary(r *gio.BinReader) {
	b := make([]byte, util.Uint160Size)
	r.ReadBytesInto(b)
	if r.Err != nil {
		return
	}
	s.Account, r.Err = util.Uint160DecodeBytesLE(b)
	if r.Err != nil {
		return
	}
	s.Scopes = WitnessScope(r.ReadB())
	if r.Err != nil {
		return
	}
	if s.Scopes&Global != 0 && s.Scopes != Global {
		r.Err = gio.NewDeserializationError("signer scopes", 0, ErrGlobalNotExclusive)
		return
	}
	if s.Scopes&CustomContracts != 0 {
		n := r.ReadVarUint()
		if r.Err != nil {
			return
		}
		if n > MaxSubitems {
			r.Err = gio.NewDeserializationError("allowed contracts", 0, ErrTooManySubitems)
			return
		}
		s.AllowedContracts = make([]util.Uint160, n)
		for i := range s.AllowedContracts {
			cb := make([]byte, util.Uint160Size)
			r.ReadBytesInto(cb)
			if r.Err != nil {
				return
			}
			s.AllowedContracts[i], r.Err = util.Uint160DecodeBytesLE(cb)
			if r.Err != nil {
				return
			}
		}
	}
	if s.Scopes&CustomGroups != 0 {
		n := r.ReadVarUint()
		if r.Err != nil {
			return
		}
		if n > MaxSubitems {
			r.Err = gio.NewDeserializationError("allowed groups", 0, ErrTooManySubitems)
			return
		}
		s.AllowedGroups = make([]*keys.PublicKey, n)
		for i := range s.AllowedGroups {
			pub := &keys.PublicKey{}
			pub.DecodeBinary(r)
			if r.Err != nil {
				return
			}
			s.AllowedGroups[i] = pub
		}
	}
	if s.Scopes&WitnessRules != 0 {
		n := r.ReadVarUint()
		if r.Err != nil {
			return
		}
		if n > MaxSubitems {
			r.Err = gio.NewDeserializationError("witness rules", 0, ErrTooManySubitems)
			return
		}
		s.Rules = make([]*WitnessRule, n)
		for i := range s.Rules {
			rule := &WitnessRule{}
			rule.DecodeBinary(r)
			if r.Err != nil {
				return
			}
			s.Rules[i] = rule
		}
	}
}

// SignerAccount pairs a Signer with the key material needed to produce
// its witness, supplementing the wire-level Signer with what the
// Transaction Builder needs to actually sign.
type SignerAccount struct {
	Signer  *Signer
	Account *keys.PrivateKey
}

// String implements fmt.Stringer for diagnostic logging.
func (s *Signer) String() string {
	return fmt.Sprintf("Signer{Account: %s, Scopes: %s}", s.Account.StringLE(), s.Scopes)
}
