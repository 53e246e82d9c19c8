package manifest

import (
	"errors"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
)

// Method describes one exported contract method: its name, signature,
// the instruction offset the compiler placed it at, and whether it is
// declared safe (read-only, callable without a witness check).
type Method struct {
	Name       string     `json:"name"`
	Offset     int        `json:"offset"`
	Parameters Parameters `json:"parameters"`
	ReturnType smartcontract.ParamType `json:"returntype"`
	Safe       bool       `json:"safe"`
}

var (
	errEmptyMethodName  = errors.New("manifest: method name must not be empty")
	errNegativeOffset   = errors.New("manifest: method offset must not be negative")
	errDuplicateMethod  = errors.New("manifest: duplicate method name+parameter-count")
)

// IsValid checks name, offset, and parameter-list validity.
func (m Method) IsValid() error {
	if m.Name == "" {
		return errEmptyMethodName
	}
	if m.Offset < 0 {
		return errNegativeOffset
	}
	return m.Parameters.AreValid()
}

// Event describes a notification a contract may emit.
type Event struct {
	Name       string     `json:"name"`
	Parameters Parameters `json:"parameters"`
}

var errEmptyEventName = errors.New("manifest: event name must not be empty")

// IsValid checks name and parameter-list validity.
func (e Event) IsValid() error {
	if e.Name == "" {
		return errEmptyEventName
	}
	return e.Parameters.AreValid()
}

// ABI is the application binary interface a contract exposes: its
// callable methods and the events it may emit.
type ABI struct {
	Methods []Method `json:"methods"`
	Events  []Event  `json:"events"`
}

var errNoMethods = errors.New("manifest: ABI must declare at least one method")

// IsValid checks that the ABI declares at least one method, that every
// method and event is individually valid, and that no two methods share
// both a name and a parameter count (the overload-resolution key the VM
// uses) and no two events share a name.
func (a *ABI) IsValid() error {
	if len(a.Methods) == 0 {
		return errNoMethods
	}
	seenMethods := make(map[string]bool, len(a.Methods))
	for _, m := range a.Methods {
		if err := m.IsValid(); err != nil {
			return fmt.Errorf("manifest: method %q: %w", m.Name, err)
		}
		key := fmt.Sprintf("%s/%d", m.Name, len(m.Parameters))
		if seenMethods[key] {
			return fmt.Errorf("%w: %s", errDuplicateMethod, key)
		}
		seenMethods[key] = true
	}
	seenEvents := make(map[string]bool, len(a.Events))
	for _, e := range a.Events {
		if err := e.IsValid(); err != nil {
			return fmt.Errorf("manifest: event %q: %w", e.Name, err)
		}
		if seenEvents[e.Name] {
			return fmt.Errorf("manifest: duplicate event name %q", e.Name)
		}
		seenEvents[e.Name] = true
	}
	return nil
}

// GetMethod finds the method named name accepting paramCount arguments.
func (a *ABI) GetMethod(name string, paramCount int) (*Method, bool) {
	for i := range a.Methods {
		if a.Methods[i].Name == name && (paramCount < 0 || len(a.Methods[i].Parameters) == paramCount) {
			return &a.Methods[i], true
		}
	}
	return nil, false
}
