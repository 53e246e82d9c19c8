package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
	"github.com/cityofzion/neow3j-go/pkg/vm/opcode"
)

func TestManifestExportsPublicStaticMethodWithParams(t *testing.T) {
	contract := &Class{
		Name: "Token",
		Kind: ContractClass,
		Methods: []Method{
			{
				Name:   "transfer",
				Public: true,
				Static: true,
				Params: []JType{{Kind: JInt}, {Kind: JString}},
				Return: JType{Kind: JBoolean},
				Locals: []LocalVar{
					{Name: "amount", Type: JType{Kind: JInt}, Slot: 0},
					{Name: "to", Type: JType{Kind: JString}, Slot: 1},
				},
				Instructions: []Instruction{
					{Op: OpLoad, Slot: 0}, // argument, below nparams
					{Op: OpPop},
					{Op: OpIConst, IntOperand: 1},
					{Op: OpReturn},
				},
			},
		},
	}

	nf, mf, err := Compile([]*Class{contract})
	require.NoError(t, err)

	require.Len(t, mf.ABI.Methods, 1)
	m := mf.ABI.Methods[0]
	assert.Equal(t, "transfer", m.Name)
	assert.Equal(t, smartcontract.BoolType, m.ReturnType)
	require.Len(t, m.Parameters, 2)
	assert.Equal(t, smartcontract.IntegerType, m.Parameters[0].Type)
	assert.Equal(t, smartcontract.StringType, m.Parameters[1].Type)

	// INITSLOT(0 locals, 2 params) since the method has parameters, then
	// slot 0 is below nparams so OpLoad compiles to the compact argument
	// form (LDARG0), not a local load.
	assert.Equal(t, byte(opcode.INITSLOT), nf.Script[0])
	assert.Equal(t, byte(0), nf.Script[1])
	assert.Equal(t, byte(2), nf.Script[2])
	assert.Equal(t, byte(opcode.LDARG0), nf.Script[3])
}

func TestManifestEventParamsFromEventClassFields(t *testing.T) {
	transferEvent := &Class{
		Name: "TransferEvent",
		Kind: EventClass,
		Fields: []Field{
			{Name: "from", Type: JType{Kind: JByteArray}},
			{Name: "to", Type: JType{Kind: JByteArray}},
			{Name: "amount", Type: JType{Kind: JInt}},
		},
	}
	contract := &Class{
		Name: "Token",
		Kind: ContractClass,
		Fields: []Field{
			{
				Name:    "onTransfer",
				Type:    JType{Kind: JClass, Class: "TransferEvent"},
				Static:  true,
				Pragmas: []Pragma{{Kind: PragmaEvent}},
			},
		},
		Methods: []Method{mainMethod(Instruction{Op: OpReturn})},
	}

	_, mf, err := Compile([]*Class{contract, transferEvent})
	require.NoError(t, err)

	require.Len(t, mf.ABI.Events, 1)
	ev := mf.ABI.Events[0]
	assert.Equal(t, "onTransfer", ev.Name)
	require.Len(t, ev.Parameters, 3)
	assert.Equal(t, "from", ev.Parameters[0].Name)
	assert.Equal(t, smartcontract.ByteArrayType, ev.Parameters[0].Type)
	assert.Equal(t, smartcontract.IntegerType, ev.Parameters[2].Type)
}

func TestManifestAddsDummyInitializeWhenNoMethodsExported(t *testing.T) {
	contract := &Class{
		Name:    "Empty",
		Kind:    ContractClass,
		Methods: []Method{{Name: "helper", Static: true, Return: JType{Kind: JVoid}, Instructions: []Instruction{{Op: OpReturn}}}},
	}

	_, mf, err := Compile([]*Class{contract})
	require.NoError(t, err)

	require.Len(t, mf.ABI.Methods, 1)
	assert.Equal(t, "_initialize", mf.ABI.Methods[0].Name)
}
