// Package compiler lowers a compiled JVM class (and its transitive user
// classes) to NeoVM bytecode, producing a NefFile and a Manifest the way
// a Go-source compiler's codegen would for a .go file, but driven by a
// JVM-opcode dispatch table instead of go/ast.
//
// The input is treated as an already-parsed, opaque structured IR of
// classes — this package does not read .class binary containers itself;
// a separate front end is expected to produce the Class/Method/Instruction
// graph below from bytecode, the same way a Go compiler separates package
// loading (go/packages) from code generation.
package compiler

// JType is a JVM-side type projected onto the handful of shapes the
// lowering tables understand: primitives, String, arrays, and
// user-declared class types.
type JType struct {
	Kind JTypeKind
	// Class is populated when Kind is JClass or JArray of a class
	// element type; it names the class by its fully qualified name.
	Class string
}

// JTypeKind enumerates the type shapes the compiler distinguishes.
type JTypeKind int

const (
	JInt JTypeKind = iota
	JLong
	JBoolean
	JString
	JByteArray
	JClass
	JVoid
	JAny
	// JFloat and JDouble are recognized only so the compiler can reject
	// them by name; NeoVM's arithmetic is integer-only.
	JFloat
	JDouble
)

// ClassKind tags a class with the capability that drives its lowering,
// replacing JVM inheritance with a flat, explicit discriminant (the
// "capability tag" design: Event, ContractInterface, Struct, Exception,
// Regular all collapse to fields on Class rather than a type hierarchy).
type ClassKind int

const (
	RegularClass ClassKind = iota
	ContractClass
	StructClass
	EventClass
	ExceptionClass
	ContractInterfaceClass
)

// Class is one compilation unit: the contract's root class or one of its
// transitive user classes (a struct, an event type, a custom exception).
type Class struct {
	Name   string
	Kind   ClassKind
	Super  string
	Fields []Field
	// StructFieldCount is populated for StructClass, counting inherited
	// fields from every @Struct ancestor plus this class's own, for the
	// struct-NEW lowering rule.
	StructFieldCount int
	Methods          []Method
	Pragmas          []Pragma
}

// Field is a class-level field: a static slot, an instance/struct field,
// or (if Kind is EventKind on its owning class) an Event descriptor.
type Field struct {
	Name     string
	Type     JType
	Static   bool
	Pragmas  []Pragma
}

// LocalVar is one entry of a method's local-variable table.
type LocalVar struct {
	Name string
	Type JType
	Slot int
}

// TryRegion marks a JVM exception table entry: instructions in
// [Start,End) are guarded, transferring to Handler on a thrown value,
// which is bound to CaughtSlot. Exit is the instruction both the
// guarded region's normal fall-through and the handler's completion
// converge on — the target ENDTRY jumps to once either path finishes,
// matching how the class-file exception table's implicit "skip the
// handler" control flow is made explicit in this arena.
type TryRegion struct {
	Start      int
	End        int
	Handler    int
	CaughtSlot int
	Exit       int
}

// Method is one JVM method: its signature, local-variable table,
// ordered instruction list, and exception table.
type Method struct {
	Name         string
	Params       []JType
	Return       JType
	Static       bool
	Public       bool
	Safe         bool
	Locals       []LocalVar
	Instructions []Instruction
	TryRegions   []TryRegion
	Pragmas      []Pragma
}

// Exported reports whether m is part of the contract's ABI: public
// static on the designated contract class.
func (m *Method) Exported() bool { return m.Public && m.Static }

// JOp names a JVM instruction category, the granularity the lowering
// dispatch table operates at; operand details live on Instruction.
type JOp int

const (
	OpIConst JOp = iota // ICONST/BIPUSH/SIPUSH/LDC int,long
	OpLdcString
	OpLoad  // ILOAD/ALOAD/…
	OpStore // ISTORE/ASTORE/…
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpNeg
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpCmpEq // comparisons paired with a conditional jump
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe
	OpRefEq // IF_ACMPEQ/IF_ACMPNE — reference equality
	OpRefNe
	OpIfNull
	OpIfNonNull
	OpGoto
	OpTableSwitch
	OpLookupSwitch
	OpNewArray
	OpArrayLoad
	OpArrayStore
	OpArrayLength
	OpInvokeStatic
	OpGetStatic
	OpPutStatic
	OpNewStringBuilder
	OpStringBuilderAppend
	OpStringBuilderToString
	OpNewThrowable
	OpAThrow
	OpInstanceOf
	OpCheckCast
	OpNew
	OpDup
	OpPop
	OpReturn // IRETURN/ARETURN/RETURN
)

// SwitchCase is one arm of a TABLESWITCH/LOOKUPSWITCH.
type SwitchCase struct {
	Value  int64
	Target int
}

// Instruction is one JVM-level instruction in a method's linear body.
// Not every field is meaningful for every Op; the lowering table reads
// only the ones its category needs.
type Instruction struct {
	Op JOp

	IntOperand int64  // OpIConst
	StrOperand string // OpLdcString, OpInvokeStatic method name, OpGetStatic/OpPutStatic field name

	// ClassOperand names the class a NEW/INSTANCEOF/CHECKCAST/
	// OpInvokeStatic targets.
	ClassOperand string

	// Slot carries the JVM local-variable slot for OpLoad/OpStore and the
	// caught-variable binding for a try handler's first instruction; for
	// OpInvokeStatic against an @ContractHash class it instead carries
	// the argument count the front end recorded for the call, since
	// NeoVM's PACK (unlike the JVM operand stack) needs an explicit
	// count pushed ahead of the packed values.
	Slot int

	// Target is the instruction index a jump/switch-default branches to.
	Target int
	Cases  []SwitchCase

	Line int
}
