package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityofzion/neow3j-go/pkg/vm/opcode"
)

// TestLayoutShrinksShortJump builds a loop small enough that the
// backward GOTO's resolved displacement fits an int8, exercising the
// peephole pass that downgrades JMPL to JMP.
func TestLayoutShrinksShortJump(t *testing.T) {
	contract := &Class{
		Name: "Loop",
		Kind: ContractClass,
		Methods: []Method{
			{
				Name:   "main",
				Public: true,
				Static: true,
				Return: JType{Kind: JVoid},
				Instructions: []Instruction{
					{Op: OpIConst, IntOperand: 0},                  // 0: PUSH0
					{Op: OpPop},                                    // 1: DROP
					{Op: OpGoto, Target: 0},                        // 2: JMP back to 0
					{Op: OpReturn},                                 // unreachable, keeps the method well-formed
				},
			},
		},
	}

	nf, _, err := Compile([]*Class{contract})
	require.NoError(t, err)

	// PUSH0 (1) + DROP (1) + short JMP (2) + the unreachable RET (1) = 5
	// bytes; the jump back to address 0 is a displacement of -2, well
	// within int8 once peepholed.
	require.Len(t, nf.Script, 5)
	assert.Equal(t, byte(opcode.PUSH0), nf.Script[0])
	assert.Equal(t, byte(opcode.DROP), nf.Script[1])
	assert.Equal(t, byte(opcode.JMP), nf.Script[2])
	assert.Equal(t, byte(int8(-2)), nf.Script[3])
	assert.Equal(t, byte(opcode.RET), nf.Script[4])
}

func TestLayoutTryCatchUsesLongForms(t *testing.T) {
	contract := &Class{
		Name: "Guarded",
		Kind: ContractClass,
		Methods: []Method{
			{
				Name:   "main",
				Public: true,
				Static: true,
				Return: JType{Kind: JVoid},
				Locals: []LocalVar{{Name: "e", Type: JType{Kind: JAny}, Slot: 0}},
				Instructions: []Instruction{
					{Op: OpIConst, IntOperand: 1}, // 0: guarded region start
					{Op: OpPop},                   // 1: guarded region end
					{Op: OpReturn},                // 2: handler start, also exit target
				},
				TryRegions: []TryRegion{
					{Start: 0, End: 2, Handler: 2, CaughtSlot: 0, Exit: 2},
				},
			},
		},
	}

	nf, _, err := Compile([]*Class{contract})
	require.NoError(t, err)

	// INITSLOT(1,0) [3 bytes] then TRYL(catch,finally) [9 bytes] guards
	// PUSH1/DROP, the caught handler's RET, ENDTRYL back to it, and a
	// synthesized fall-off RET after the guarded region closes without
	// one (TRYL/ENDTRYL are always emitted long-form; there is no
	// finally-clause support, so tryFinally resolves to 0).
	require.Len(t, nf.Script, 21)
	assert.Equal(t, byte(opcode.INITSLOT), nf.Script[0])
	assert.Equal(t, byte(opcode.TRYL), nf.Script[3])
	assert.Equal(t, []byte{11, 0, 0, 0}, nf.Script[4:8]) // catch: handler at +11
	assert.Equal(t, []byte{0, 0, 0, 0}, nf.Script[8:12]) // no finally clause
	assert.Equal(t, byte(opcode.PUSH1), nf.Script[12])
	assert.Equal(t, byte(opcode.DROP), nf.Script[13])
	assert.Equal(t, byte(opcode.RET), nf.Script[14])
	assert.Equal(t, byte(opcode.ENDTRYL), nf.Script[15])
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, nf.Script[16:20]) // exit: -1 back to the handler RET
	assert.Equal(t, byte(opcode.RET), nf.Script[20])
}

func TestLowerContractCallInternsTokenOnce(t *testing.T) {
	proxy := &Class{
		Name: "GasToken",
		Kind: RegularClass,
		Pragmas: []Pragma{
			{Kind: PragmaContractHash},
		},
		Methods: []Method{
			{Name: "transfer", Static: true, Public: true, Return: JType{Kind: JBoolean}},
		},
	}
	contract := &Class{
		Name: "Token",
		Kind: ContractClass,
		Methods: []Method{
			mainMethod(
				Instruction{Op: OpInvokeStatic, ClassOperand: "GasToken", StrOperand: "transfer", Slot: 3},
				Instruction{Op: OpPop},
				Instruction{Op: OpInvokeStatic, ClassOperand: "GasToken", StrOperand: "transfer", Slot: 3},
				Instruction{Op: OpPop},
				Instruction{Op: OpReturn},
			),
		},
	}

	nf, _, err := Compile([]*Class{contract, proxy})
	require.NoError(t, err)

	// Both call sites hit the same (hash, method, paramCount, flags)
	// key, so exactly one MethodToken is minted despite two SYSCALLs.
	require.Len(t, nf.Tokens, 1)
	assert.Equal(t, "transfer", nf.Tokens[0].Method)
	assert.Equal(t, uint16(3), nf.Tokens[0].ParamCount)
}
