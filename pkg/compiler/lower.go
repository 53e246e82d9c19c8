package compiler

import (
	"fmt"
	"math/big"

	"github.com/cityofzion/neow3j-go/pkg/crypto/hash"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract/callflag"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/cityofzion/neow3j-go/pkg/vm/opcode"
)

// Stack item type bytes, the operand CONVERT/ISTYPE take. These mirror
// the VM's item-type tags; this package only needs the handful the
// lowering table actually emits.
const (
	stackByteString byte = 0x28
	stackArray      byte = 0x40
	stackStruct     byte = 0x41
)

// lowerCtx carries the state a method body lowers against: the classes
// available for INVOKESTATIC/NEW/INSTANCEOF resolution, the module
// arena fixups reference into, and the method/class currently being
// lowered.
type lowerCtx struct {
	module *neoModule
	classes map[string]*Class
	class  *Class
	method *Method
	nm     *neoMethod

	nparams int // Params count; JVM slots below this are arguments, at or above are locals
}

// lowerModule lowers every non-inlined method of every class into a
// fresh neoModule, returning the arena ready for layout.
func lowerModule(classes []*Class) (*neoModule, error) {
	byName := make(map[string]*Class, len(classes))
	for _, c := range classes {
		byName[c.Name] = c
	}
	m := newNeoModule()
	registerStaticFields(classes, m)

	// _initialize is registered first, ahead of every other method, so
	// it lands at script offset 0 without any post-hoc reordering of an
	// arena that fixupCall references have already been recorded
	// against.
	for _, c := range classes {
		if c.Kind != ContractClass {
			continue
		}
		for i := range c.Methods {
			if c.Methods[i].Name == "_initialize" {
				m.addMethod(c, &c.Methods[i], "_initialize")
			}
		}
	}

	for _, c := range classes {
		if _, ok := findPragma(c.Pragmas, PragmaContractHash); ok {
			continue // every method lowers to a call-site System.Contract.Call, never its own body
		}
		for i := range c.Methods {
			meth := &c.Methods[i]
			if isInlined(meth) || meth.Name == "_initialize" {
				continue
			}
			m.addMethod(c, meth, meth.Name)
		}
	}

	for _, c := range classes {
		if _, ok := findPragma(c.Pragmas, PragmaContractHash); ok {
			continue
		}
		for i := range c.Methods {
			meth := &c.Methods[i]
			if isInlined(meth) {
				continue
			}
			nm := m.methods[m.methodIndex[c.Name+"."+meth.Name]]
			ctx := &lowerCtx{module: m, classes: byName, class: c, method: meth, nm: nm, nparams: len(meth.Params)}
			if meth.Name == "_initialize" {
				if err := ctx.lowerInitialize(); err != nil {
					return nil, err
				}
				continue
			}
			if err := ctx.lowerMethod(); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// registerStaticFields assigns every class's static, non-event fields a
// stable slot in declaration order, ahead of any method lowering, so
// _initialize's INITSSLOT operand and every GETSTATIC/PUTSTATIC site
// agree on the same count.
func registerStaticFields(classes []*Class, m *neoModule) {
	for _, c := range classes {
		for _, f := range c.Fields {
			if !f.Static {
				continue
			}
			if _, ok := findPragma(f.Pragmas, PragmaEvent); ok {
				continue
			}
			key := c.Name + "." + f.Name
			if _, ok := m.staticFieldSlots[key]; ok {
				continue
			}
			m.staticFieldSlots[key] = m.staticFieldCount
			m.staticFieldCount++
		}
	}
}

// lowerInitialize emits the synthetic module entry point: INITSSLOT
// sized to the final static-field count, then a fall-through RET. Static
// slots start out null on the VM's own initialization, so a contract
// with no explicit static-initializer expressions in its IR needs
// nothing more.
func (ctx *lowerCtx) lowerInitialize() error {
	n := ctx.module.staticFieldCount
	if n > 255 {
		return ErrTooManySlots
	}
	if n > 0 {
		ctx.nm.emit(opcode.INITSSLOT, byte(n))
	}
	if len(ctx.method.Instructions) > 0 {
		if err := ctx.lowerBody(); err != nil {
			return err
		}
	}
	if last := ctx.nm.instrs; len(last) == 0 || (last[len(last)-1].op != opcode.RET && last[len(last)-1].op != opcode.THROW) {
		ctx.nm.emit(opcode.RET)
	}
	return nil
}

// isInlined reports whether a method's body is never compiled on its
// own, because every call site inlines it directly.
func isInlined(m *Method) bool {
	if _, ok := findPragma(m.Pragmas, PragmaSyscall); ok {
		return true
	}
	if _, ok := findPragma(m.Pragmas, PragmaOpcodes); ok {
		return true
	}
	return false
}

// lowerMethod walks the method's linear instruction list, emitting the
// INITSLOT prologue for non-trivial locals/params and a fall-off RET if
// the body does not already end in one.
func (ctx *lowerCtx) lowerMethod() error {
	nm := ctx.nm
	locals := localCount(ctx.method)
	params := len(ctx.method.Params)
	if locals > 255 || params > 255 {
		return fmt.Errorf("compiler: %s.%s exceeds 255 local/param slots", ctx.class.Name, ctx.method.Name)
	}
	if locals > 0 || params > 0 {
		nm.emit(opcode.INITSLOT, byte(locals), byte(params))
	}

	if err := ctx.lowerBody(); err != nil {
		return err
	}

	if n := len(nm.instrs); n == 0 || (nm.instrs[n-1].op != opcode.RET && nm.instrs[n-1].op != opcode.THROW) {
		nm.emit(opcode.RET)
	}
	return nil
}

// lowerBody walks the method's linear instruction list, threading
// try/catch region markers through as each boundary instruction index is
// reached. It emits no prologue or fall-off epilogue; callers add those
// (INITSLOT vs. INITSSLOT differs between a regular method and
// _initialize).
func (ctx *lowerCtx) lowerBody() error {
	nm := ctx.nm
	tryStarts := map[int][]TryRegion{}
	tryEnds := map[int][]TryRegion{}
	for _, tr := range ctx.method.TryRegions {
		tryStarts[tr.Start] = append(tryStarts[tr.Start], tr)
		tryEnds[tr.End] = append(tryEnds[tr.End], tr)
	}

	for i := range ctx.method.Instructions {
		in := &ctx.method.Instructions[i]
		nm.markJVM(i)
		for _, tr := range tryStarts[i] {
			nm.emitTry(tr.Handler, -1)
		}
		if err := ctx.lowerOne(i, in); err != nil {
			return err
		}
		for _, tr := range tryEnds[i] {
			nm.emitEndTry(tr.Exit)
		}
	}
	return nil
}

// localCount returns the number of JVM local-variable slots beyond the
// method's own parameters (the portion INITSLOT's first operand sizes).
func localCount(m *Method) int {
	max := -1
	for _, lv := range m.Locals {
		if lv.Slot > max {
			max = lv.Slot
		}
	}
	n := max + 1 - len(m.Params)
	if n < 0 {
		return 0
	}
	return n
}

func (ctx *lowerCtx) lowerOne(idx int, in *Instruction) error {
	nm := ctx.nm
	switch in.Op {
	case OpIConst:
		emitPushInt(nm, in.IntOperand)
	case OpLdcString:
		emitPushBytes(nm, []byte(in.StrOperand))
	case OpLoad:
		ctx.emitSlot(loadCompact, opcode.LDARG, opcode.LDLOC, in.Slot)
	case OpStore:
		ctx.emitSlot(storeCompact, opcode.STARG, opcode.STLOC, in.Slot)
	case OpAdd:
		nm.emit(opcode.ADD)
	case OpSub:
		nm.emit(opcode.SUB)
	case OpMul:
		nm.emit(opcode.MUL)
	case OpDiv:
		nm.emit(opcode.DIV)
	case OpRem:
		nm.emit(opcode.MOD)
	case OpNeg:
		nm.emit(opcode.NEGATE)
	case OpShl:
		nm.emit(opcode.SHL)
	case OpShr:
		nm.emit(opcode.SHR)
	case OpAnd:
		nm.emit(opcode.AND)
	case OpOr:
		nm.emit(opcode.OR)
	case OpXor:
		nm.emit(opcode.XOR)

	case OpCmpEq:
		nm.emit(opcode.NUMEQUAL)
		nm.emitJump(opcode.JMPIFL, in.Target)
	case OpCmpNe:
		nm.emit(opcode.NUMNOTEQUAL)
		nm.emitJump(opcode.JMPIFL, in.Target)
	case OpCmpLt:
		nm.emit(opcode.LT)
		nm.emitJump(opcode.JMPIFL, in.Target)
	case OpCmpLe:
		nm.emit(opcode.LE)
		nm.emitJump(opcode.JMPIFL, in.Target)
	case OpCmpGt:
		nm.emit(opcode.GT)
		nm.emitJump(opcode.JMPIFL, in.Target)
	case OpCmpGe:
		nm.emit(opcode.GE)
		nm.emitJump(opcode.JMPIFL, in.Target)
	case OpRefEq:
		nm.emit(opcode.EQUAL)
		nm.emitJump(opcode.JMPIFL, in.Target)
	case OpRefNe:
		nm.emit(opcode.NOTEQUAL)
		nm.emitJump(opcode.JMPIFL, in.Target)

	case OpIfNull:
		nm.emit(opcode.ISNULL)
		nm.emitJump(opcode.JMPIFL, in.Target)
	case OpIfNonNull:
		nm.emit(opcode.ISNULL)
		nm.emitJump(opcode.JMPIFNOTL, in.Target)
	case OpGoto:
		nm.emitJump(opcode.JMPL, in.Target)

	case OpTableSwitch, OpLookupSwitch:
		ctx.lowerSwitch(in)

	case OpArrayLoad:
		nm.emit(opcode.PICKITEM)
	case OpArrayStore:
		nm.emit(opcode.SETITEM)
	case OpArrayLength:
		nm.emit(opcode.SIZE)
	case OpNewArray:
		nm.emit(opcode.NEWARRAY)

	case OpInvokeStatic:
		return ctx.lowerInvokeStatic(in)
	case OpGetStatic:
		return ctx.lowerGetStatic(in)
	case OpPutStatic:
		return ctx.lowerPutStatic(in)

	case OpNewStringBuilder:
		emitPushBytes(nm, nil)
	case OpStringBuilderAppend:
		nm.emit(opcode.CAT)
	case OpStringBuilderToString:
		nm.emit(opcode.CONVERT, stackByteString)

	case OpNewThrowable:
		// The message argument is already on the stack from the
		// preceding constructor-argument evaluation; nothing to emit
		// until ATHROW.
	case OpAThrow:
		nm.emit(opcode.THROW)

	case OpInstanceOf:
		tag, err := ctx.classTypeTag(in.ClassOperand)
		if err != nil {
			return err
		}
		nm.emit(opcode.ISTYPE, tag)
	case OpCheckCast:
		// no-op: NeoVM has no static type system to reassert against.

	case OpNew:
		return ctx.lowerNew(in)

	case OpDup:
		nm.emit(opcode.DUP)
	case OpPop:
		nm.emit(opcode.DROP)
	case OpReturn:
		nm.emit(opcode.RET)

	default:
		return fmt.Errorf("compiler: %s.%s: unhandled instruction category %d at index %d", ctx.class.Name, ctx.method.Name, in.Op, idx)
	}
	return nil
}

// lowerSwitch lowers a TABLESWITCH/LOOKUPSWITCH to a DUP/PUSH k/NUMEQUAL/
// JMPIF chain with a trailing unconditional jump to the default target.
func (ctx *lowerCtx) lowerSwitch(in *Instruction) {
	nm := ctx.nm
	for _, c := range in.Cases {
		nm.emit(opcode.DUP)
		emitPushInt(nm, c.Value)
		nm.emit(opcode.NUMEQUAL)
		nm.emitJump(opcode.JMPIFL, c.Target)
	}
	nm.emit(opcode.DROP)
	nm.emitJump(opcode.JMPL, in.Target)
}

func (ctx *lowerCtx) lowerInvokeStatic(in *Instruction) error {
	nm := ctx.nm
	target, ok := ctx.classes[in.ClassOperand]
	if !ok {
		return fmt.Errorf("compiler: %s.%s: call to unknown class %s", ctx.class.Name, ctx.method.Name, in.ClassOperand)
	}

	if cp, ok := findPragma(target.Pragmas, PragmaContractHash); ok {
		return ctx.lowerContractCall(cp.ContractHash, in)
	}

	var targetMethod *Method
	for i := range target.Methods {
		if target.Methods[i].Name == in.StrOperand {
			targetMethod = &target.Methods[i]
			break
		}
	}
	if targetMethod == nil {
		return fmt.Errorf("compiler: %s: unknown method %s", target.Name, in.StrOperand)
	}

	if sp, ok := findPragma(targetMethod.Pragmas, PragmaSyscall); ok {
		nm.emit(opcode.SYSCALL, syscallHashBytes(sp.Syscall)...)
		return nil
	}
	if op, ok := findPragma(targetMethod.Pragmas, PragmaOpcodes); ok {
		for _, b := range op.Opcodes {
			nm.emit(opcode.Opcode(b))
		}
		return nil
	}

	idx, ok := ctx.module.methodIndex[target.Name+"."+targetMethod.Name]
	if !ok {
		return fmt.Errorf("compiler: %s.%s not registered in module", target.Name, targetMethod.Name)
	}
	nm.emitCall(idx)
	return nil
}

// lowerContractCall lowers an INVOKESTATIC against an @ContractHash class
// to a System.Contract.Call syscall, interning the external method in the
// module's token cache. in.Slot carries the argument count the front end
// recorded for this call (the JVM operand stack, unlike NeoVM's, has no
// single opcode to read "how many values did the preceding code push").
func (ctx *lowerCtx) lowerContractCall(contractHash util.Uint160, in *Instruction) error {
	nm := ctx.nm
	paramCount := in.Slot
	emitPushInt(nm, int64(paramCount))
	nm.emit(opcode.PACK)
	emitPushBytes(nm, []byte(in.StrOperand))
	emitPushBytes(nm, contractHash.BytesLE())
	flags := callflag.All
	emitPushInt(nm, int64(flags))
	nm.emit(opcode.SYSCALL, syscallHashBytes("System.Contract.Call")...)
	ctx.module.tokens.intern(contractHash, in.StrOperand, paramCount, true, flags)
	return nil
}

// staticSlot resolves a class.field reference to the slot
// registerStaticFields assigned it before any method lowering began.
func (ctx *lowerCtx) staticSlot(class, field string) (int, error) {
	slot, ok := ctx.module.staticFieldSlots[class+"."+field]
	if !ok {
		return 0, fmt.Errorf("compiler: %s.%s is not a registered static field", class, field)
	}
	return slot, nil
}

func (ctx *lowerCtx) lowerGetStatic(in *Instruction) error {
	target, ok := ctx.classes[in.ClassOperand]
	if !ok {
		return fmt.Errorf("compiler: GETSTATIC of unknown class %s", in.ClassOperand)
	}
	if target.Kind == EventClass {
		// The event handle carries no runtime state of its own; the
		// Notify syscall is emitted by the send-site INVOKESTATIC, so
		// reading the field just leaves a placeholder the send call
		// immediately discards.
		ctx.nm.emit(opcode.PUSHNULL)
		return nil
	}
	slot, err := ctx.staticSlot(in.ClassOperand, in.StrOperand)
	if err != nil {
		return err
	}
	ctx.emitSlot(ldsfldCompact, opcode.LDSFLD, opcode.LDSFLD, slot)
	return nil
}

func (ctx *lowerCtx) lowerPutStatic(in *Instruction) error {
	slot, err := ctx.staticSlot(in.ClassOperand, in.StrOperand)
	if err != nil {
		return err
	}
	ctx.emitSlot(stsfldCompact, opcode.STSFLD, opcode.STSFLD, slot)
	return nil
}

func (ctx *lowerCtx) lowerNew(in *Instruction) error {
	nm := ctx.nm
	target, ok := ctx.classes[in.ClassOperand]
	if !ok {
		return fmt.Errorf("compiler: NEW of unknown class %s", in.ClassOperand)
	}
	switch target.Kind {
	case StructClass:
		n := target.StructFieldCount
		emitPushInt(nm, int64(n))
		nm.emit(opcode.NEWSTRUCT)
		nm.emit(opcode.DUP)
		if n > 0 {
			nm.emit(opcode.REVERSEN)
		}
		return nil
	case ExceptionClass:
		// The message argument, if any, is left on the stack for the
		// surrounding ATHROW; NEW of an exception allocates nothing.
		return nil
	default:
		n := len(target.Fields)
		emitPushInt(nm, int64(n))
		nm.emit(opcode.NEWARRAY)
		nm.emit(opcode.DUP)
		if n > 0 {
			nm.emit(opcode.REVERSEN)
		}
		return nil
	}
}

func (ctx *lowerCtx) classTypeTag(name string) (byte, error) {
	c, ok := ctx.classes[name]
	if !ok {
		return 0, fmt.Errorf("compiler: INSTANCEOF of unknown class %s", name)
	}
	switch c.Kind {
	case StructClass:
		return stackStruct, nil
	case RegularClass, ContractClass:
		return stackArray, nil
	default:
		return 0, fmt.Errorf("compiler: INSTANCEOF target %s has no NeoVM item-type equivalent", name)
	}
}

// --- compact slot-opcode selection (LDLOC0..6/LDLOC, LDARG0..6/LDARG, …) ---

type compactTable [7]opcode.Opcode

var (
	loadCompact   = compactTable{opcode.LDLOC0, opcode.LDLOC1, opcode.LDLOC2, opcode.LDLOC3, opcode.LDLOC4, opcode.LDLOC5, opcode.LDLOC6}
	storeCompact  = compactTable{opcode.STLOC0, opcode.STLOC1, opcode.STLOC2, opcode.STLOC3, opcode.STLOC4, opcode.STLOC5, opcode.STLOC6}
	ldsfldCompact = compactTable{opcode.LDSFLD0, opcode.LDSFLD1, opcode.LDSFLD2, opcode.LDSFLD3, opcode.LDSFLD4, opcode.LDSFLD5, opcode.LDSFLD6}
	stsfldCompact = compactTable{opcode.STSFLD0, opcode.STSFLD1, opcode.STSFLD2, opcode.STSFLD3, opcode.STSFLD4, opcode.STSFLD5, opcode.STSFLD6}

	argLoadCompact  = compactTable{opcode.LDARG0, opcode.LDARG1, opcode.LDARG2, opcode.LDARG3, opcode.LDARG4, opcode.LDARG5, opcode.LDARG6}
	argStoreCompact = compactTable{opcode.STARG0, opcode.STARG1, opcode.STARG2, opcode.STARG3, opcode.STARG4, opcode.STARG5, opcode.STARG6}
)

// emitSlot picks the compact 0-argument opcode for slot<7, otherwise the
// operand form with slot as a single byte. For load/store the JVM slot is
// first split into "argument" (argOp, using argLoadCompact/argStoreCompact
// swapped in by the caller) or "local" depending on ctx.nparams; static
// field access always uses the locals-style table.
func (ctx *lowerCtx) emitSlot(localTable compactTable, argOp, localOp opcode.Opcode, jvmSlot int) {
	if argOp == opcode.LDARG || argOp == opcode.STARG {
		if jvmSlot < ctx.nparams {
			ctx.emitCompact(argCompactFor(argOp), argOp, jvmSlot)
			return
		}
		ctx.emitCompact(localTable, localOp, jvmSlot-ctx.nparams)
		return
	}
	ctx.emitCompact(localTable, localOp, jvmSlot)
}

func argCompactFor(op opcode.Opcode) compactTable {
	if op == opcode.LDARG {
		return argLoadCompact
	}
	return argStoreCompact
}

func (ctx *lowerCtx) emitCompact(table compactTable, operandOp opcode.Opcode, slot int) {
	if slot >= 0 && slot < 7 {
		ctx.nm.emit(table[slot])
		return
	}
	ctx.nm.emit(operandOp, byte(slot))
}

// --- literal encoding, mirroring the script-builder's PushInt/PushBytes ---

func emitPushInt(nm *neoMethod, n int64) {
	v := big.NewInt(n)
	switch {
	case v.Cmp(big.NewInt(-1)) == 0:
		nm.emit(opcode.PUSHM1)
		return
	case v.Sign() >= 0 && v.Cmp(big.NewInt(16)) <= 0:
		nm.emit(opcode.Opcode(int(opcode.PUSH0) + int(v.Int64())))
		return
	}
	data := signExtended(v)
	op, width := pushIntOpcodeFor(len(data))
	padded := make([]byte, width)
	copy(padded, data)
	nm.emit(op, padded...)
}

func pushIntOpcodeFor(n int) (opcode.Opcode, int) {
	switch {
	case n <= 1:
		return opcode.PUSHINT8, 1
	case n <= 2:
		return opcode.PUSHINT16, 2
	case n <= 4:
		return opcode.PUSHINT32, 4
	case n <= 8:
		return opcode.PUSHINT64, 8
	case n <= 16:
		return opcode.PUSHINT128, 16
	default:
		return opcode.PUSHINT256, 32
	}
}

func signExtended(n *big.Int) []byte {
	neg := n.Sign() < 0
	abs := new(big.Int).Abs(n)
	be := abs.Bytes()
	le := make([]byte, len(be))
	for i, v := range be {
		le[len(be)-1-i] = v
	}
	if neg {
		out := make([]byte, len(le))
		carry := 1
		for i := range le {
			v := int(^le[i]&0xff) + carry
			out[i] = byte(v)
			carry = v >> 8
		}
		le = out
	}
	if len(le) == 0 {
		le = []byte{0}
	}
	hi := le[len(le)-1]
	if neg && hi&0x80 == 0 {
		le = append(le, 0xff)
	} else if !neg && hi&0x80 != 0 {
		le = append(le, 0x00)
	}
	return le
}

func emitPushBytes(nm *neoMethod, data []byte) {
	n := len(data)
	switch {
	case n < 0x100:
		nm.emit(opcode.PUSHDATA1, append([]byte{byte(n)}, data...)...)
	case n < 0x10000:
		lenBuf := []byte{byte(n), byte(n >> 8)}
		nm.emit(opcode.PUSHDATA2, append(lenBuf, data...)...)
	default:
		lenBuf := []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
		nm.emit(opcode.PUSHDATA4, append(lenBuf, data...)...)
	}
}

func syscallHashBytes(api string) []byte {
	return hash.Sha256([]byte(api))[:4]
}
