package transaction

import (
	gio "github.com/cityofzion/neow3j-go/pkg/io"
)

// WitnessRuleAction is the action a WitnessRule takes when its condition
// holds.
type WitnessRuleAction byte

// Rule actions.
const (
	WitnessRuleDeny  WitnessRuleAction = 0x00
	WitnessRuleAllow WitnessRuleAction = 0x01
)

// WitnessRule pairs a condition with the action to take when it matches;
// used by signers in WitnessRules scope to express fine-grained
// authorization beyond a flat contract/group allowlist.
type WitnessRule struct {
	Action    WitnessRuleAction
	Condition WitnessCondition
}

// EncodeBinary writes the rule's action byte followed by its condition's
// discriminant and payload.
func (r *WitnessRule) EncodeBinary(w *gio.BinWriter) {
	w.WriteB(byte(r.Action))
	w.WriteB(byte(r.Condition.Type()))
	r.Condition.EncodeBinary(w)
}

// DecodeBinary reads a rule's action byte and its condition tree, rooted
// at depth 0.
func (r *WitnessRule) DecodeBinary(br *gio.BinReader) {
	r.Action = WitnessRuleAction(br.ReadB())
	if br.Err != nil {
		return
	}
	r.Condition = DecodeWitnessCondition(br, 0)
}
