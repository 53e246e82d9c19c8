// Package emit is the Script Builder: it assembles NeoVM opcode streams
// for contract calls, literal pushes, and the verification/invocation
// scripts that back witnesses, mirroring the low-level emit helpers the
// reference client's compiler uses to turn values into bytecode.
package emit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/cityofzion/neow3j-go/pkg/crypto/hash"
	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract/callflag"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/cityofzion/neow3j-go/pkg/vm/opcode"
)

// CheckSigInteropHash and CheckMultisigInteropHash are the first 4 bytes
// of SHA256 of their syscall names, resolved once and reused by every
// verification-script builder.
var (
	CheckSigInteropHash       = syscallHash("System.Crypto.CheckSig")
	CheckMultisigInteropHash  = syscallHash("System.Crypto.CheckMultisig")
	ContractCallInteropHash   = syscallHash("System.Contract.Call")
	RuntimeNotifyInteropHash  = syscallHash("System.Runtime.Notify")
)

func syscallHash(name string) []byte {
	return hash.Sha256([]byte(name))[:4]
}

// Builder accumulates opcodes into a NeoVM script. The zero value is
// ready to use.
type Builder struct {
	buf []byte
	Err error
}

// NewBuilder returns an empty script Builder.
func NewBuilder() *Builder { return &Builder{} }

// Bytes returns the assembled script.
func (b *Builder) Bytes() []byte { return b.buf }

// Len returns the number of bytes emitted so far.
func (b *Builder) Len() int { return len(b.buf) }

func (b *Builder) emit(op opcode.Opcode, arg ...byte) *Builder {
	b.buf = append(b.buf, byte(op))
	b.buf = append(b.buf, arg...)
	return b
}

// Opcode appends a bare opcode with no operand.
func (b *Builder) Opcode(op opcode.Opcode) *Builder { return b.emit(op) }

// PushInt emits the smallest opcode form for the integer n: PUSHM1/PUSH0..16
// for n in [-1,16], else the smallest PUSHINT* width that fits n,
// sign-extended to that width's byte length.
func (b *Builder) PushInt(n *big.Int) *Builder {
	switch {
	case n.Cmp(big.NewInt(-1)) == 0:
		return b.Opcode(opcode.PUSHM1)
	case n.Sign() >= 0 && n.Cmp(big.NewInt(16)) <= 0:
		return b.Opcode(opcode.Opcode(int(opcode.PUSH0) + int(n.Int64())))
	}
	data := signExtendedBytes(n)
	op, width := pushIntOpcodeFor(len(data))
	padded := make([]byte, width)
	copy(padded, data)
	return b.emit(op, padded...)
}

// PushInt64 is a convenience wrapper over PushInt for native int64 values.
func (b *Builder) PushInt64(n int64) *Builder {
	return b.PushInt(big.NewInt(n))
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

// signExtendedBytes returns the little-endian two's-complement encoding of
// n, the minimal width needed to represent it unambiguously (i.e. the
// high bit of the last byte matches the sign).
func signExtendedBytes(n *big.Int) []byte {
	neg := n.Sign() < 0
	abs := new(big.Int).Abs(n)
	be := abs.Bytes()
	// reverse to little-endian
	le := make([]byte, len(be))
	for i, v := range be {
		le[len(be)-1-i] = v
	}
	if neg {
		le = twosComplement(le)
	}
	// Ensure high bit reflects sign; grow by one byte if it doesn't.
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

func twosComplement(le []byte) []byte {
	out := make([]byte, len(le))
	carry := 1
	for i := 0; i < len(le); i++ {
		v := int(^le[i]&0xff) + carry
		out[i] = byte(v)
		carry = v >> 8
	}
	return out
}

// PushBool emits PUSHT/PUSHF.
func (b *Builder) PushBool(ok bool) *Builder {
	if ok {
		return b.Opcode(opcode.PUSHT)
	}
	return b.Opcode(opcode.PUSHF)
}

// PushBytes emits PUSHDATA1/2/4 sized to len(data).
func (b *Builder) PushBytes(data []byte) *Builder {
	n := len(data)
	switch {
	case n < 0x100:
		return b.emit(opcode.PUSHDATA1, append([]byte{byte(n)}, data...)...)
	case n < 0x10000:
		lenBuf := make([]byte, 2)
		binary.LittleEndian.PutUint16(lenBuf, uint16(n))
		return b.emit(opcode.PUSHDATA2, append(lenBuf, data...)...)
	default:
		lenBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBuf, uint32(n))
		return b.emit(opcode.PUSHDATA4, append(lenBuf, data...)...)
	}
}

// PushString pushes s as UTF-8 bytes.
func (b *Builder) PushString(s string) *Builder { return b.PushBytes([]byte(s)) }

// Syscall emits SYSCALL followed by the first-4-bytes interop hash of api.
func (b *Builder) Syscall(api string) *Builder {
	return b.emit(opcode.SYSCALL, syscallHash(api)...)
}

// Pack emits PACK: build an array from the top n stack items.
func (b *Builder) Pack() *Builder { return b.Opcode(opcode.PACK) }

// NewArray emits NEWARRAY(0)?: allocate a new array of size n (the caller
// must have already pushed n).
func (b *Builder) NewArray() *Builder { return b.Opcode(opcode.NEWARRAY) }

// ContractCall emits a `System.Contract.Call` invocation: parameters
// pushed in reverse, then packed, then method name, target hash, call
// flags, and finally the syscall.
func (b *Builder) ContractCall(hash util.Uint160, method string, flags callflag.CallFlag, params ...interface{}) *Builder {
	for i := len(params) - 1; i >= 0; i-- {
		b.pushParam(params[i])
	}
	b.PushInt64(int64(len(params)))
	b.Pack()
	b.PushString(method)
	b.PushBytes(hash.BytesLE())
	b.PushInt64(int64(flags))
	return b.Syscall("System.Contract.Call")
}

func (b *Builder) pushParam(v interface{}) {
	switch t := v.(type) {
	case bool:
		b.PushBool(t)
	case int:
		b.PushInt64(int64(t))
	case int64:
		b.PushInt64(t)
	case *big.Int:
		b.PushInt(t)
	case []byte:
		b.PushBytes(t)
	case string:
		b.PushString(t)
	case util.Uint160:
		b.PushBytes(t.BytesLE())
	case util.Uint256:
		b.PushBytes(t.BytesLE())
	case nil:
		b.Opcode(opcode.PUSHNULL)
	default:
		b.Err = fmt.Errorf("emit: unsupported contract call parameter type %T", v)
	}
}

// BuildVerificationScript emits the canonical single-sig verification
// script for pub: `PUSHDATA1 33 <pubkey> SYSCALL CheckSig`.
func BuildVerificationScript(pub *keys.PublicKey) []byte {
	b := NewBuilder()
	b.PushBytes(pub.Bytes())
	b.Syscall("System.Crypto.CheckSig")
	return b.Bytes()
}

// BuildMultiSigVerificationScript emits the canonical m-of-n multi-sig
// verification script. Keys are sorted ascending by encoded bytes before
// emission.
func BuildMultiSigVerificationScript(pubs keys.PublicKeys, m int) ([]byte, error) {
	n := len(pubs)
	if m <= 0 || m > n || n > 1024 {
		return nil, fmt.Errorf("emit: invalid multisig threshold m=%d of n=%d", m, n)
	}
	sorted := make(keys.PublicKeys, n)
	copy(sorted, pubs)
	sorted.Sort()

	b := NewBuilder()
	b.PushInt64(int64(m))
	for _, pub := range sorted {
		b.PushBytes(pub.Bytes())
	}
	b.PushInt64(int64(n))
	b.Syscall("System.Crypto.CheckMultisig")
	return b.Bytes(), b.Err
}

// ErrNotMultiSigScript is returned by SigningThreshold when script is not
// a recognizable multi-sig verification script.
var ErrNotMultiSigScript = errors.New("emit: script is not a multi-sig verification script")

// SigningThreshold parses a multi-sig verification script and recovers m,
// PUSH1..16 encode m directly as opcode-0x10; PUSHINT8/
// 16/32 read the following 1/2/4 little-endian bytes.
func SigningThreshold(script []byte) (int, error) {
	if len(script) == 0 {
		return 0, ErrNotMultiSigScript
	}
	op := opcode.Opcode(script[0])
	switch {
	case op >= opcode.PUSH1 && op <= opcode.PUSH16:
		return int(op) - int(opcode.PUSH0), nil
	case op == opcode.PUSHINT8:
		if len(script) < 2 {
			return 0, ErrNotMultiSigScript
		}
		return int(script[1]), nil
	case op == opcode.PUSHINT16:
		if len(script) < 3 {
			return 0, ErrNotMultiSigScript
		}
		return int(binary.LittleEndian.Uint16(script[1:3])), nil
	case op == opcode.PUSHINT32:
		if len(script) < 5 {
			return 0, ErrNotMultiSigScript
		}
		v := binary.LittleEndian.Uint32(script[1:5])
		if v > 1<<31 {
			return 0, ErrNotMultiSigScript
		}
		return int(v), nil
	default:
		return 0, ErrNotMultiSigScript
	}
}
