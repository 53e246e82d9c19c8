// Package nef implements the NEF (Neo Executable Format) file: the
// container a compiled contract's bytecode, method tokens, and
// self-verifying checksum travel in from compiler to chain.
package nef

import (
	"errors"
	"strings"

	gio "github.com/cityofzion/neow3j-go/pkg/io"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract/callflag"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// maxMethodLength bounds a MethodToken's method name.
const maxMethodLength = 32

var (
	errInvalidMethodName = errors.New("nef: method name must not start with '_'")
	errInvalidCallFlag   = errors.New("nef: call flag outside the defined enum range")
)

// MethodToken resolves a call to an external contract method at load
// time, letting the VM validate and cache the target once instead of on
// every invocation.
type MethodToken struct {
	Hash       util.Uint160
	Method     string
	ParamCount uint16
	HasReturn  bool
	CallFlag   callflag.CallFlag
}

// EncodeBinary implements the io.Serializable interface.
func (t *MethodToken) EncodeBinary(w *gio.BinWriter) {
	w.WriteBytes(t.Hash.BytesLE())
	w.WriteString(t.Method)
	w.WriteU16LE(t.ParamCount)
	w.WriteBool(t.HasReturn)
	w.WriteB(byte(t.CallFlag))
}

// DecodeBinary implements the io.Serializable interface, rejecting
// reserved method names and call-flag values outside the defined range.
func (t *MethodToken) DecodeBinary(r *gio.BinReader) {
	b := make([]byte, util.Uint160Size)
	r.ReadBytesInto(b)
	if r.Err != nil {
		return
	}
	t.Hash, r.Err = util.Uint160DecodeBytesLE(b)
	if r.Err != nil {
		return
	}
	t.Method = r.ReadString(maxMethodLength)
	if r.Err != nil {
		return
	}
	if strings.HasPrefix(t.Method, "_") {
		r.Err = gio.NewDeserializationError("method token method", 0, errInvalidMethodName)
		return
	}
	t.ParamCount = r.ReadU16LE()
	t.HasReturn = r.ReadBool()
	if r.Err != nil {
		return
	}
	t.CallFlag = callflag.CallFlag(r.ReadB())
	if r.Err != nil {
		return
	}
	if t.CallFlag&^callflag.All != 0 {
		r.Err = gio.NewDeserializationError("method token call flag", 0, errInvalidCallFlag)
	}
}
