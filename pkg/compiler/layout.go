package compiler

import (
	"encoding/binary"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/vm/opcode"
)

// longJumpToShort maps each long-form conditional/unconditional jump
// opcode to its short-form equivalent, the pair the layout peephole
// chooses between once the final displacement is known.
var longJumpToShort = map[opcode.Opcode]opcode.Opcode{
	opcode.JMPL:       opcode.JMP,
	opcode.JMPIFL:     opcode.JMPIF,
	opcode.JMPIFNOTL:  opcode.JMPIFNOT,
	opcode.JMPEQL:     opcode.JMPEQ,
	opcode.JMPNEL:     opcode.JMPNE,
	opcode.JMPGTL:     opcode.JMPGT,
	opcode.JMPGEL:     opcode.JMPGE,
	opcode.JMPLTL:     opcode.JMPLT,
	opcode.JMPLEL:     opcode.JMPLE,
}

const maxLayoutIterations = 10

// layout runs the module's Pass 2: assigning byte addresses, resolving
// every call/jump/try fixup, and peepholing long-form jumps down to
// short form when the final displacement fits an int8 (the peephole pass,
// "Two-pass layout and fixups").
func (m *neoModule) layout() error {
	for _, nm := range m.methods {
		for i := range nm.instrs {
			nm.instrs[i].size = provisionalSize(&nm.instrs[i])
		}
	}

	for iter := 0; iter < maxLayoutIterations; iter++ {
		m.assignAddresses()
		shrunk, err := m.peepholeJumps()
		if err != nil {
			return err
		}
		if !shrunk {
			break
		}
	}
	m.assignAddresses()
	return m.resolveFixups()
}

func provisionalSize(in *neoInstr) int {
	switch in.kind {
	case fixupCall:
		return 5 // CALLL opcode + i32
	case fixupJump:
		return 5 // pessimistic: long form until peepholed
	case fixupTry:
		return 9 // TRYL opcode + 2×i32
	case fixupEndTry:
		return 5 // ENDTRYL opcode + i32
	default:
		return 1 + len(in.data)
	}
}

func (m *neoModule) assignAddresses() {
	addr := 0
	for _, nm := range m.methods {
		nm.addr = addr
		for i := range nm.instrs {
			nm.instrs[i].addr = addr
			addr += nm.instrs[i].size
		}
		nm.size = addr - nm.addr
	}
}

// peepholeJumps shrinks any fixupJump instruction whose resolved
// displacement fits an int8 to its short form, reporting whether any
// instruction changed size (the caller re-assigns addresses and retries
// until a fixed point, since shrinking one jump can bring others into
// range).
func (m *neoModule) peepholeJumps() (bool, error) {
	shrunk := false
	for _, nm := range m.methods {
		for i := range nm.instrs {
			in := &nm.instrs[i]
			if in.kind != fixupJump || in.size == 2 {
				continue
			}
			targetIdx, ok := nm.jvmIndex[in.jumpLabel]
			if !ok {
				return false, fmt.Errorf("compiler: unresolved jump label %d in %s.%s", in.jumpLabel, nm.class.Name, nm.source.Name)
			}
			disp := nm.instrs[targetIdx].addr - in.addr
			if disp >= -128 && disp <= 127 {
				if short, ok := longJumpToShort[in.op]; ok {
					in.op = short
					in.size = 2
					shrunk = true
				}
			}
		}
	}
	return shrunk, nil
}

func (m *neoModule) resolveFixups() error {
	for _, nm := range m.methods {
		for i := range nm.instrs {
			in := &nm.instrs[i]
			switch in.kind {
			case fixupCall:
				target := m.methods[in.callTarget]
				in.data = i32le(target.addr - in.addr)
			case fixupJump:
				targetIdx, ok := nm.jvmIndex[in.jumpLabel]
				if !ok {
					return fmt.Errorf("compiler: unresolved jump label %d in %s.%s", in.jumpLabel, nm.class.Name, nm.source.Name)
				}
				disp := nm.instrs[targetIdx].addr - in.addr
				if in.size == 2 {
					in.data = []byte{byte(int8(disp))}
				} else {
					in.data = i32le(disp)
				}
			case fixupTry:
				catchAddr, finallyAddr := 0, 0
				if in.tryCatch >= 0 {
					idx, ok := nm.jvmIndex[in.tryCatch]
					if !ok {
						return fmt.Errorf("compiler: unresolved catch target %d in %s.%s", in.tryCatch, nm.class.Name, nm.source.Name)
					}
					catchAddr = nm.instrs[idx].addr - in.addr
				}
				if in.tryFinally >= 0 {
					idx, ok := nm.jvmIndex[in.tryFinally]
					if !ok {
						return fmt.Errorf("compiler: unresolved finally target %d in %s.%s", in.tryFinally, nm.class.Name, nm.source.Name)
					}
					finallyAddr = nm.instrs[idx].addr - in.addr
				}
				in.data = append(i32le(catchAddr), i32le(finallyAddr)...)
			case fixupEndTry:
				idx, ok := nm.jvmIndex[in.tryExit]
				if !ok {
					return fmt.Errorf("compiler: unresolved try-exit target %d in %s.%s", in.tryExit, nm.class.Name, nm.source.Name)
				}
				disp := nm.instrs[idx].addr - in.addr
				in.data = i32le(disp)
			}
		}
	}
	return nil
}

func i32le(v int) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	return b
}

// bytes concatenates every method's resolved instructions, in insertion
// order, into the final module script (Pass 2 step 4).
func (m *neoModule) bytes() []byte {
	var out []byte
	for _, nm := range m.methods {
		for _, in := range nm.instrs {
			out = append(out, byte(in.op))
			out = append(out, in.data...)
		}
	}
	return out
}
