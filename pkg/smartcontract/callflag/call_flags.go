// Package callflag defines the bitmask NeoVM uses to restrict what a
// called contract may do during `System.Contract.Call`.
package callflag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CallFlag restricts the side effects a contract invocation may have.
type CallFlag byte

// Flag bits, matching the values the VM interprets; NoneFlag permits
// nothing beyond pure computation.
const (
	NoneFlag        CallFlag = 0
	ReadStates      CallFlag = 1 << 0
	WriteStates     CallFlag = 1 << 1
	AllowCall       CallFlag = 1 << 2
	AllowNotify     CallFlag = 1 << 3
	States          = ReadStates | WriteStates
	ReadOnly        = ReadStates | AllowCall
	All             = States | AllowCall | AllowNotify
)

// Has reports whether f has every bit set in other.
func (f CallFlag) Has(other CallFlag) bool {
	return f&other == other
}

var names = []struct {
	flag CallFlag
	name string
}{
	{ReadStates, "ReadStates"},
	{WriteStates, "WriteStates"},
	{AllowCall, "AllowCall"},
	{AllowNotify, "AllowNotify"},
}

// String renders f as a comma-separated list of its set bits, "All" or
// "None" for those exact values.
func (f CallFlag) String() string {
	switch f {
	case NoneFlag:
		return "None"
	case All:
		return "All"
	}
	var parts []string
	for _, n := range names {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}

var byName = map[string]CallFlag{
	"ReadStates":  ReadStates,
	"WriteStates": WriteStates,
	"AllowCall":   AllowCall,
	"AllowNotify": AllowNotify,
	"States":      States,
	"ReadOnly":    ReadOnly,
}

// FromString parses f's String form back into a CallFlag. "None" and
// "All" are only recognized standalone; combining them with any other
// name, an empty element, or an unknown name is an error.
func FromString(s string) (CallFlag, error) {
	if s == "None" {
		return NoneFlag, nil
	}
	if s == "All" {
		return All, nil
	}
	var result CallFlag
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" || name == "All" || name == "None" {
			return 0, fmt.Errorf("callflag: invalid flag string %q", s)
		}
		flag, ok := byName[name]
		if !ok {
			return 0, fmt.Errorf("callflag: unknown flag %q", name)
		}
		result |= flag
	}
	return result, nil
}

// MarshalJSON implements json.Marshaler, rendering f as its String form.
func (f CallFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON implements json.Unmarshaler, accepting only the String form.
func (f *CallFlag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("callflag: %w", err)
	}
	flag, err := FromString(s)
	if err != nil {
		return err
	}
	*f = flag
	return nil
}

// MarshalYAML implements yaml.Marshaler, rendering f as its String form.
func (f CallFlag) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler, accepting only the String form.
func (f *CallFlag) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	flag, err := FromString(s)
	if err != nil {
		return err
	}
	*f = flag
	return nil
}
