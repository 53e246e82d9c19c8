// Package trigger defines the reasons a contract's entry point can be
// invoked, as reported by a node's application log and referenced by
// the compiler's @OnVerification handling.
package trigger

import "fmt"

// Type is a bit mask of invocation triggers.
type Type byte

const (
	// OnPersist is triggered by system during block persistence.
	OnPersist Type = 0x01
	// PostPersist is triggered by system after block persistence.
	PostPersist Type = 0x02
	// Verification is triggered when a contract is used as a witness
	// verification script.
	Verification Type = 0x20
	// Application is triggered when a contract is invoked as part of
	// an application transaction.
	Application Type = 0x40
	// System is the combination of OnPersist and PostPersist.
	System = OnPersist | PostPersist
	// All is every trigger combined.
	All = System | Verification | Application
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case OnPersist:
		return "OnPersist"
	case PostPersist:
		return "PostPersist"
	case Verification:
		return "Verification"
	case Application:
		return "Application"
	case System:
		return "System"
	case All:
		return "All"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(t))
	}
}

// FromString parses a trigger name as produced by String.
func FromString(s string) (Type, error) {
	switch s {
	case "OnPersist":
		return OnPersist, nil
	case "PostPersist":
		return PostPersist, nil
	case "Verification":
		return Verification, nil
	case "Application":
		return Application, nil
	case "System":
		return System, nil
	case "All":
		return All, nil
	default:
		return 0, fmt.Errorf("trigger: unknown type %q", s)
	}
}
