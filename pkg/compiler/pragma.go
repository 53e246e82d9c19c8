package compiler

import "github.com/cityofzion/neow3j-go/pkg/util"

// PragmaKind enumerates the effect an annotation has on codegen, the
// tagged-variant replacement for the source devpack's `@Syscall`,
// `@Instruction`, `@ContractHash`, `@Struct`, `@OnVerification`, …
// annotations.
type PragmaKind int

const (
	// PragmaSyscall inlines a SYSCALL for the named interop.
	PragmaSyscall PragmaKind = iota
	// PragmaOpcodes inlines one or more raw opcodes with no operand.
	PragmaOpcodes
	// PragmaContractHash marks a class whose static methods lower to
	// System.Contract.Call against a fixed external contract hash.
	PragmaContractHash
	// PragmaStruct marks a class as a NeoVM struct with value semantics.
	PragmaStruct
	// PragmaEvent marks a static field as a Notify-backed event handle.
	PragmaEvent
	// PragmaSafe marks an exported method read-only in the manifest.
	PragmaSafe
)

// Pragma is one parsed annotation, reduced to its effect and payload.
type Pragma struct {
	Kind PragmaKind

	// Syscall is the interop name for PragmaSyscall.
	Syscall string
	// Opcodes is the raw opcode sequence for PragmaOpcodes.
	Opcodes []byte
	// ContractHash is the fixed external contract hash for
	// PragmaContractHash.
	ContractHash util.Uint160
}

// find returns the first pragma of kind k attached to ps, if any.
func findPragma(ps []Pragma, k PragmaKind) (Pragma, bool) {
	for _, p := range ps {
		if p.Kind == k {
			return p, true
		}
	}
	return Pragma{}, false
}
