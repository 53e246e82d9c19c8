// Package manifest describes a deployed contract's ABI, permissions,
// trust relationships, and declared standards: the metadata a node
// validates at deploy time and a caller consults before invoking a
// method, paired with the NefFile.
package manifest

import (
	"errors"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
)

// Parameter describes one named, typed method parameter or event field.
type Parameter struct {
	Name string               `json:"name"`
	Type smartcontract.ParamType `json:"type"`
}

// NewParameter returns a Parameter with the given name and type.
func NewParameter(name string, t smartcontract.ParamType) Parameter {
	return Parameter{Name: name, Type: t}
}

// Parameters is a list of Parameter, with list-level validation beyond
// what any single Parameter can check (name uniqueness).
type Parameters []Parameter

var (
	errEmptyParameterName = errors.New("manifest: parameter name must not be empty")
	errVoidParameterType  = errors.New("manifest: parameter type must not be Void")
	errDuplicateParameterName = errors.New("manifest: duplicate parameter name")
)

// IsValid checks that p has a non-empty name and a non-Void type.
func (p Parameter) IsValid() error {
	if p.Name == "" {
		return errEmptyParameterName
	}
	if p.Type == smartcontract.VoidType {
		return errVoidParameterType
	}
	return nil
}

// AreValid checks every parameter individually and rejects duplicate
// names across the list.
func (ps Parameters) AreValid() error {
	seen := make(map[string]bool, len(ps))
	for _, p := range ps {
		if err := p.IsValid(); err != nil {
			return fmt.Errorf("manifest: parameter %q: %w", p.Name, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %q", errDuplicateParameterName, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
