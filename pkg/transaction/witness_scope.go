// Package transaction implements the witness/signer model and the
// Transaction wire format: signer scopes, witness rules and conditions,
// witness pairs, attributes, and the transaction envelope itself, all
// bit-exact with the Neo N3 protocol.
package transaction

import (
	"fmt"
	"strings"
)

// WitnessScope is a bitmask controlling which contracts a signature may
// authorize.
type WitnessScope byte

// Scope bits.
const (
	None            WitnessScope = 0x00
	CalledByEntry   WitnessScope = 0x01
	CustomContracts WitnessScope = 0x10
	CustomGroups    WitnessScope = 0x20
	WitnessRules    WitnessScope = 0x40
	Global          WitnessScope = 0x80
)

var scopeNames = []struct {
	scope WitnessScope
	name  string
}{
	{CalledByEntry, "CalledByEntry"},
	{CustomContracts, "CustomContracts"},
	{CustomGroups, "CustomGroups"},
	{WitnessRules, "WitnessRules"},
	{Global, "Global"},
}

// Combine ORs a set of scopes into a single mask. It does not itself
// enforce the Global-exclusivity invariant; callers validating a Signer
// do that (see Signer.Validate).
func Combine(scopes []WitnessScope) WitnessScope {
	var out WitnessScope
	for _, s := range scopes {
		out |= s
	}
	return out
}

// Extract decomposes a mask into its set component scopes, Global and
// CalledByEntry first if present, in the order they're declared above.
func Extract(mask WitnessScope) []WitnessScope {
	if mask == None {
		return []WitnessScope{None}
	}
	var out []WitnessScope
	if mask&Global != 0 {
		out = append(out, Global)
	}
	if mask&CalledByEntry != 0 {
		out = append(out, CalledByEntry)
	}
	for _, sn := range scopeNames {
		if sn.scope == Global || sn.scope == CalledByEntry {
			continue
		}
		if mask&sn.scope != 0 {
			out = append(out, sn.scope)
		}
	}
	return out
}

// String renders the mask as a comma-separated list of its component
// scope names.
func (s WitnessScope) String() string {
	if s == None {
		return "None"
	}
	var parts []string
	if s&Global != 0 {
		parts = append(parts, "Global")
	}
	if s&CalledByEntry != 0 {
		parts = append(parts, "CalledByEntry")
	}
	for _, sn := range scopeNames {
		if sn.scope == Global || sn.scope == CalledByEntry {
			continue
		}
		if s&sn.scope != 0 {
			parts = append(parts, sn.name)
		}
	}
	return strings.Join(parts, ", ")
}

// ScopeFromString parses a single scope name back to its WitnessScope.
func ScopeFromString(s string) (WitnessScope, error) {
	switch s {
	case "None":
		return None, nil
	case "CalledByEntry":
		return CalledByEntry, nil
	case "CustomContracts":
		return CustomContracts, nil
	case "CustomGroups":
		return CustomGroups, nil
	case "WitnessRules":
		return WitnessRules, nil
	case "Global":
		return Global, nil
	default:
		return 0, fmt.Errorf("transaction: unknown witness scope %q", s)
	}
}
