package compiler

import "github.com/cityofzion/neow3j-go/pkg/vm/opcode"

// fixupKind tags a neoInstr whose operand cannot be known until the
// two-pass layout resolves addresses.
type fixupKind int

const (
	fixupNone fixupKind = iota
	fixupCall           // operand is a CALLL offset to another method
	fixupJump           // operand is a jump offset to a label within the same method
	fixupTry            // operand pair is a TRYL (catch,finally) offset
	fixupEndTry         // operand is an ENDTRYL offset
)

// neoInstr is one Pass 1 output record: an opcode, any operand bytes
// already known, and — for call/jump/try instructions — a reference to
// either a target neoMethod or a label within the current method that
// Pass 2 resolves to a concrete byte displacement (the two-pass layout
// and fixup scheme below).
type neoInstr struct {
	op   opcode.Opcode
	data []byte

	kind       fixupKind
	callTarget int // neoModule.methods index, for fixupCall
	jumpLabel  int // JVM instruction index within the owning method

	// tryCatch/tryFinally/tryExit are JVM instruction indices within the
	// owning method, used by fixupTry/fixupEndTry.
	tryCatch   int
	tryFinally int
	tryExit    int

	addr int // byte offset from the start of the module script
	size int // total encoded size (opcode + operand), set during layout
}

// neoMethod is one lowered method: its JVM-side origin (for export/name
// lookup) and its Pass 1 instruction stream, indexed by JVM instruction
// index so jump/try fixups can resolve "JVM instruction N" to a neoInstr.
type neoMethod struct {
	class  *Class
	source *Method

	// name is the on-chain method name; _initialize for the synthetic
	// static-slot initializer.
	name string

	instrs []neoInstr
	// jvmIndex maps a JVM instruction index (as used by jump/try
	// targets) to its position in instrs. A method may legitimately
	// lower one JVM instruction to zero neoInstrs (CHECKCAST) or several
	// (StringBuilder folding), so this indirection is required.
	jvmIndex map[int]int

	addr int // address of this method's first instruction
	size int // total encoded size of this method
}

// neoModule is the arena of lowered methods plus the field/event/token
// bookkeeping the manifest and NEF need. Concatenating every method's
// instrs in insertion order (Pass 2 step 4) produces the module script.
type neoModule struct {
	methods []*neoMethod
	// methodIndex resolves a fully-qualified "Class.method" symbol to
	// its neoModule index, for INVOKESTATIC of user code.
	methodIndex map[string]int

	staticFieldSlots map[string]int // "Class.field" -> slot index
	staticFieldCount int

	tokens *tokenCache
}

func newNeoModule() *neoModule {
	return &neoModule{
		methodIndex:      map[string]int{},
		staticFieldSlots: map[string]int{},
		tokens:           newTokenCache(),
	}
}

func (m *neoModule) addMethod(class *Class, src *Method, name string) *neoMethod {
	nm := &neoMethod{class: class, source: src, name: name, jvmIndex: map[int]int{}}
	m.methods = append(m.methods, nm)
	m.methodIndex[class.Name+"."+src.Name] = len(m.methods) - 1
	return nm
}

func (nm *neoMethod) emit(op opcode.Opcode, data ...byte) {
	nm.instrs = append(nm.instrs, neoInstr{op: op, data: data})
}

func (nm *neoMethod) emitCall(target int) {
	nm.instrs = append(nm.instrs, neoInstr{op: opcode.CALLL, kind: fixupCall, callTarget: target})
}

func (nm *neoMethod) emitJump(op opcode.Opcode, jvmLabel int) {
	nm.instrs = append(nm.instrs, neoInstr{op: op, kind: fixupJump, jumpLabel: jvmLabel})
}

func (nm *neoMethod) emitTry(catch, finally int) {
	nm.instrs = append(nm.instrs, neoInstr{op: opcode.TRYL, kind: fixupTry, tryCatch: catch, tryFinally: finally})
}

func (nm *neoMethod) emitEndTry(exit int) {
	nm.instrs = append(nm.instrs, neoInstr{op: opcode.ENDTRYL, kind: fixupEndTry, tryExit: exit})
}

// markJVM records that the JVM instruction at jvmIdx begins at the
// neoInstr about to be appended next.
func (nm *neoMethod) markJVM(jvmIdx int) {
	nm.jvmIndex[jvmIdx] = len(nm.instrs)
}
