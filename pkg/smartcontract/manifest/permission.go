package manifest

import (
	"encoding/json"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// Permission declares that this contract may call the methods of
// another contract or group of contracts; a node enforces this at
// `System.Contract.Call` time.
type Permission struct {
	Contract PermissionDesc
	Methods  WildStrings
}

// NewPermission builds a Permission for t, taking a util.Uint160 for
// PermissionHash or a *keys.PublicKey for PermissionGroup (panicking on
// a type mismatch — this is a programming-time construction helper,
// not a parser).
func NewPermission(t PermissionType, args ...interface{}) *Permission {
	desc := PermissionDesc{Type: t}
	switch t {
	case PermissionWildcard:
		if len(args) != 0 {
			panic("manifest: wildcard permission takes no arguments")
		}
	case PermissionHash:
		if len(args) != 1 {
			panic("manifest: hash permission requires exactly one argument")
		}
		u, ok := args[0].(util.Uint160)
		if !ok {
			panic("manifest: hash permission argument must be a util.Uint160")
		}
		desc.Value = u
	case PermissionGroup:
		if len(args) != 1 {
			panic("manifest: group permission requires exactly one argument")
		}
		pub, ok := args[0].(*keys.PublicKey)
		if !ok {
			panic("manifest: group permission argument must be a *keys.PublicKey")
		}
		desc.Value = pub
	default:
		panic("manifest: unknown permission type")
	}
	return &Permission{Contract: desc}
}

// IsAllowed reports whether this permission authorizes calling method on
// the contract identified by h, whose manifest is m.
func (p *Permission) IsAllowed(h util.Uint160, m *Manifest, method string) bool {
	switch p.Contract.Type {
	case PermissionWildcard:
	case PermissionHash:
		if p.Contract.Value.(util.Uint160) != h {
			return false
		}
	case PermissionGroup:
		if !m.Groups.Contains(p.Contract.Value.(*keys.PublicKey)) {
			return false
		}
	default:
		return false
	}
	return p.Methods.Contains(method)
}

type permissionJSON struct {
	Contract PermissionDesc `json:"contract"`
	Methods  WildStrings    `json:"methods"`
}

// MarshalJSON implements json.Marshaler.
func (p *Permission) MarshalJSON() ([]byte, error) {
	return json.Marshal(permissionJSON{Contract: p.Contract, Methods: p.Methods})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Permission) UnmarshalJSON(data []byte) error {
	var pj permissionJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	p.Contract = pj.Contract
	p.Methods = pj.Methods
	return nil
}

// Permissions is a list of Permission.
type Permissions []*Permission
