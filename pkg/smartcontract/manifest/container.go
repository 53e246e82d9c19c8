package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// PermissionType distinguishes the three forms a permission's contract
// descriptor may take.
type PermissionType byte

// Permission contract-descriptor kinds.
const (
	PermissionWildcard PermissionType = iota
	PermissionHash
	PermissionGroup
)

// PermissionDesc identifies the contract(s) a Permission applies to:
// every contract (wildcard), one contract by script hash, or every
// contract whose manifest carries a matching group public key.
type PermissionDesc struct {
	Type  PermissionType
	Value interface{} // nil, util.Uint160, or *keys.PublicKey
}

// MarshalJSON implements json.Marshaler: "*" for wildcard, "0x"+hex for
// a hash, hex-encoded compressed bytes for a group key.
func (d *PermissionDesc) MarshalJSON() ([]byte, error) {
	switch d.Type {
	case PermissionWildcard:
		return json.Marshal("*")
	case PermissionHash:
		u := d.Value.(util.Uint160)
		return json.Marshal("0x" + u.StringLE())
	case PermissionGroup:
		return json.Marshal(hexPubKey(d.Value.(*keys.PublicKey)))
	default:
		return nil, fmt.Errorf("manifest: unknown permission descriptor type %d", d.Type)
	}
}

// UnmarshalJSON implements json.Unmarshaler, inferring the descriptor
// kind from the string's shape: "*" for wildcard, a 0x-prefixed or bare
// 40-hex-char string for a hash, a 66-hex-char string for a group key.
func (d *PermissionDesc) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("manifest: permission descriptor must be a string: %w", err)
	}
	if s == "*" {
		d.Type = PermissionWildcard
		d.Value = nil
		return nil
	}
	trimmed := s
	if len(trimmed) >= 2 && trimmed[0:2] == "0x" {
		trimmed = trimmed[2:]
	}
	switch len(trimmed) {
	case util.Uint160Size * 2:
		u, err := util.Uint160DecodeStringLE(trimmed)
		if err != nil {
			return fmt.Errorf("manifest: permission descriptor hash: %w", err)
		}
		d.Type = PermissionHash
		d.Value = u
		return nil
	case 66:
		pub, err := keys.NewPublicKeyFromString(s)
		if err != nil {
			return fmt.Errorf("manifest: permission descriptor public key: %w", err)
		}
		d.Type = PermissionGroup
		d.Value = pub
		return nil
	default:
		return fmt.Errorf("manifest: permission descriptor has invalid length %d", len(s))
	}
}

// WildStrings is a list of strings, or the unbounded wildcard when the
// container has never been restricted or populated (the zero value is
// a wildcard).
type WildStrings struct {
	Value []string
}

// IsWildcard reports whether c matches every string: true only for a
// container that has never had Add or Restrict called (and wasn't
// unmarshaled from an explicit list).
func (c *WildStrings) IsWildcard() bool { return c.Value == nil }

// Contains reports whether s is permitted by c.
func (c *WildStrings) Contains(s string) bool {
	if c.IsWildcard() {
		return true
	}
	for _, v := range c.Value {
		if v == s {
			return true
		}
	}
	return false
}

// Add appends s to the explicit allowlist.
func (c *WildStrings) Add(s string) {
	c.Value = append(c.Value, s)
}

// Restrict turns a wildcard container into an explicitly empty one.
func (c *WildStrings) Restrict() {
	c.Value = []string{}
}

// MarshalJSON implements json.Marshaler: "*" for wildcard, else the
// string array.
func (c WildStrings) MarshalJSON() ([]byte, error) {
	if c.Value == nil {
		return json.Marshal("*")
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *WildStrings) UnmarshalJSON(data []byte) error {
	var wildcard string
	if err := json.Unmarshal(data, &wildcard); err == nil {
		if wildcard != "*" {
			return errors.New("manifest: invalid wildcard string container")
		}
		c.Value = nil
		return nil
	}
	var ss []string
	if err := json.Unmarshal(data, &ss); err != nil {
		return fmt.Errorf("manifest: string container: %w", err)
	}
	if ss == nil {
		ss = []string{}
	}
	c.Value = ss
	return nil
}

// WildPermissionDescs is a list of PermissionDesc, or the unbounded
// wildcard when Wildcard is true.
type WildPermissionDescs struct {
	Wildcard bool
	Value    []PermissionDesc
}

// IsWildcard reports whether c matches every descriptor.
func (c *WildPermissionDescs) IsWildcard() bool { return c.Wildcard }

// Contains reports whether d is permitted by c.
func (c *WildPermissionDescs) Contains(d PermissionDesc) bool {
	if c.Wildcard {
		return true
	}
	for _, v := range c.Value {
		if permissionDescEqual(v, d) {
			return true
		}
	}
	return false
}

// Add appends d to the explicit allowlist.
func (c *WildPermissionDescs) Add(d PermissionDesc) {
	c.Value = append(c.Value, d)
}

// Restrict turns a wildcard container into an explicitly empty one.
func (c *WildPermissionDescs) Restrict() {
	c.Wildcard = false
	c.Value = []PermissionDesc{}
}

func permissionDescEqual(a, b PermissionDesc) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case PermissionHash:
		return a.Value.(util.Uint160) == b.Value.(util.Uint160)
	case PermissionGroup:
		return hexPubKey(a.Value.(*keys.PublicKey)) == hexPubKey(b.Value.(*keys.PublicKey))
	default:
		return true
	}
}

// MarshalJSON implements json.Marshaler.
func (c WildPermissionDescs) MarshalJSON() ([]byte, error) {
	if c.Wildcard {
		return json.Marshal("*")
	}
	if c.Value == nil {
		return json.Marshal([]PermissionDesc{})
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *WildPermissionDescs) UnmarshalJSON(data []byte) error {
	var wildcard string
	if err := json.Unmarshal(data, &wildcard); err == nil {
		if wildcard != "*" {
			return errors.New("manifest: invalid wildcard permission descriptor container")
		}
		c.Wildcard = true
		c.Value = nil
		return nil
	}
	var ds []PermissionDesc
	if err := json.Unmarshal(data, &ds); err != nil {
		return fmt.Errorf("manifest: permission descriptor container: %w", err)
	}
	c.Wildcard = false
	c.Value = ds
	return nil
}
