package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/util"
)

// Well-known NEP standard names, used by IsStandardSupported.
const (
	NEP11StandardName = "NEP-11"
	NEP17StandardName = "NEP-17"
	NEP24StandardName = "NEP-24"
	NEP26StandardName = "NEP-26"
	NEP27StandardName = "NEP-27"
)

// Manifest is a contract's self-description: its ABI, the groups
// vouching for it, the permissions it needs from the sandbox, the
// contracts it trusts to call it back, and the NEP/other standards it
// claims to implement. Produced by the compiler alongside the NefFile
// and validated by a node at deployment.
type Manifest struct {
	Name               string          `json:"name"`
	Groups             Groups          `json:"groups"`
	Features           map[string]interface{} `json:"features"`
	SupportedStandards []string        `json:"supportedstandards"`
	ABI                ABI             `json:"abi"`
	Permissions        Permissions     `json:"permissions"`
	Trusts             WildPermissionDescs `json:"trusts"`
	Extra              interface{}     `json:"extra"`
}

// NewManifest returns a bare manifest for name with empty ABI,
// permissions, and trusts — the caller populates the rest.
func NewManifest(name string) *Manifest {
	return &Manifest{
		Name:               name,
		Groups:             Groups{},
		Features:           map[string]interface{}{},
		SupportedStandards: []string{},
		ABI:                ABI{Methods: []Method{}, Events: []Event{}},
		Permissions:        Permissions{},
		Trusts:             WildPermissionDescs{Value: []PermissionDesc{}},
		Extra:              nil,
	}
}

// DefaultManifest returns a manifest for name with a wildcard
// permission (may call any method of any contract) — the common case
// for a contract with no cross-contract trust model.
func DefaultManifest(name string) *Manifest {
	m := NewManifest(name)
	m.Permissions = Permissions{NewPermission(PermissionWildcard)}
	return m
}

// CanCall reports whether this manifest's contract may call method on
// the contract identified by h with manifest target.
func (m *Manifest) CanCall(h util.Uint160, target *Manifest, method string) bool {
	for _, p := range m.Permissions {
		if p.IsAllowed(h, target, method) {
			return true
		}
	}
	return false
}

var (
	errEmptyManifestName  = errors.New("manifest: name must not be empty")
	errEmptyStandardName  = errors.New("manifest: supported standard name must not be empty")
	errDuplicateStandard  = errors.New("manifest: duplicate supported standard")
	errDuplicatePermission = errors.New("manifest: duplicate permission")
)

// IsValid checks the manifest's own fields (name, ABI, supported
// standards, permissions, trusts) and, when full is true, also every
// group's self-signature over contractHash — callers that only have a
// manifest without yet knowing its contract hash (e.g. while compiling)
// pass full=false.
func (m *Manifest) IsValid(contractHash util.Uint160, full bool) error {
	if m.Name == "" {
		return errEmptyManifestName
	}
	if err := m.ABI.IsValid(); err != nil {
		return err
	}
	seenStandards := make(map[string]bool, len(m.SupportedStandards))
	for _, s := range m.SupportedStandards {
		if s == "" {
			return errEmptyStandardName
		}
		if seenStandards[s] {
			return errDuplicateStandard
		}
		seenStandards[s] = true
	}
	seenPermissions := make(map[string]bool, len(m.Permissions))
	for _, p := range m.Permissions {
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("manifest: permission: %w", err)
		}
		if seenPermissions[string(b)] {
			return errDuplicatePermission
		}
		seenPermissions[string(b)] = true
	}
	if !full {
		return nil
	}
	return m.Groups.AreValid(contractHash)
}

// IsStandardSupported reports whether m declares standard among its
// supported standards.
func (m *Manifest) IsStandardSupported(standard string) bool {
	if standard == "" {
		return false
	}
	for _, s := range m.SupportedStandards {
		if s == standard {
			return true
		}
	}
	return false
}

type manifestJSON struct {
	Groups             Groups                 `json:"groups"`
	Features           map[string]interface{} `json:"features"`
	SupportedStandards []string               `json:"supportedstandards"`
	Name               string                 `json:"name"`
	ABI                ABI                    `json:"abi"`
	Permissions        Permissions            `json:"permissions"`
	Trusts             WildPermissionDescs    `json:"trusts"`
	Extra              interface{}            `json:"extra"`
}

// MarshalJSON implements json.Marshaler, matching the field order a
// node's `getcontractstate` response uses.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(manifestJSON{
		Groups:             m.Groups,
		Features:           m.Features,
		SupportedStandards: m.SupportedStandards,
		Name:               m.Name,
		ABI:                m.ABI,
		Permissions:        m.Permissions,
		Trusts:             m.Trusts,
		Extra:              m.Extra,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var mj manifestJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	m.Groups = mj.Groups
	m.Features = mj.Features
	m.SupportedStandards = mj.SupportedStandards
	m.Name = mj.Name
	m.ABI = mj.ABI
	m.Permissions = mj.Permissions
	m.Trusts = mj.Trusts
	m.Extra = mj.Extra
	return nil
}
