package compiler

import "errors"

// Sentinel errors the compiler returns for a class/method shape the
// reference devpack's NEP-forward subset forbids outright, rather than
// lowering something that would silently misbehave on chain.
var (
	// ErrNoContractClass is returned when no class in the input set is
	// tagged ContractClass.
	ErrNoContractClass = errors.New("compiler: no contract class in input")
	// ErrMultipleContractClasses is returned when more than one class is
	// tagged ContractClass; a compile unit has exactly one entry point.
	ErrMultipleContractClasses = errors.New("compiler: multiple contract classes in input")
	// ErrInstanceField is returned for a non-static field on a class that
	// is neither a Struct nor an Event descriptor.
	ErrInstanceField = errors.New("compiler: instance fields are only allowed on @Struct classes")
	// ErrInstanceMethod is returned for a non-static, non-constructor
	// method with a meaningful body.
	ErrInstanceMethod = errors.New("compiler: instance methods are not supported")
	// ErrFloatLocal is returned when a method declares a floating-point
	// local; NeoVM's integer-only arithmetic has no lowering for it.
	ErrFloatLocal = errors.New("compiler: floating-point locals are not representable in NeoVM")
	// ErrUnsupportedInheritance is returned when a class extends anything
	// other than the contract root or, for a Struct, another Struct.
	ErrUnsupportedInheritance = errors.New("compiler: unsupported inheritance")
	// ErrTooManySlots is returned when a method or the module's static
	// fields exceed the 255-slot limit INITSLOT/INITSSLOT can address.
	ErrTooManySlots = errors.New("compiler: slot count exceeds 255")
)
