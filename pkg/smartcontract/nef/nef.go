package nef

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/crypto/hash"
	gio "github.com/cityofzion/neow3j-go/pkg/io"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract/callflag"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// Magic is the fixed four-byte prefix identifying a NEF file, the ASCII
// bytes "NEF3" read little-endian.
const Magic uint32 = 0x3346454E

// MaxScriptLength bounds a NEF file's script.
const MaxScriptLength = 512 * 1024

// compilerFieldSize is the fixed width of the Header's Compiler field.
const compilerFieldSize = 64

var (
	errInvalidMagic     = errors.New("nef: invalid magic")
	errInvalidChecksum  = errors.New("nef: invalid checksum")
	errInvalidReserved  = errors.New("nef: reserved bytes must be zero")
	errEmptyScript      = errors.New("nef: script must not be empty")
)

// Header is the fixed-width leading portion of a File: its magic number
// and the compiler identifier that produced it.
type Header struct {
	Magic    uint32
	Compiler string
}

// EncodeBinary implements the io.Serializable interface.
func (h *Header) EncodeBinary(w *gio.BinWriter) {
	w.WriteU32LE(h.Magic)
	w.WriteFixedString(h.Compiler, compilerFieldSize)
}

// DecodeBinary implements the io.Serializable interface.
func (h *Header) DecodeBinary(r *gio.BinReader) {
	h.Magic = r.ReadU32LE()
	if r.Err != nil {
		return
	}
	if h.Magic != Magic {
		r.Err = gio.NewDeserializationError("nef magic", 0, errInvalidMagic)
		return
	}
	h.Compiler = r.ReadFixedString(compilerFieldSize)
}

// File is the NEF container a compiler emits and a node validates before
// deploying a contract: a checksummed bundle of bytecode and the method
// tokens it calls out to.
type File struct {
	Header   Header
	Tokens   []MethodToken
	Script   []byte
	Checksum uint32
}

// encodeWithoutChecksum writes every field except the trailing checksum,
// the part CalculateChecksum hashes.
func (f *File) encodeWithoutChecksum(w *gio.BinWriter) {
	f.Header.EncodeBinary(w)
	w.WriteU16LE(0) // reserved
	w.WriteVarUint(uint64(len(f.Tokens)))
	for i := range f.Tokens {
		f.Tokens[i].EncodeBinary(w)
	}
	w.WriteU16LE(0) // reserved
	w.WriteVarBytes(f.Script)
}

// CalculateChecksum computes the first 4 bytes of DoubleSha256 over the
// file's bytes excluding the checksum field itself.
func (f *File) CalculateChecksum() uint32 {
	bw := gio.NewBufBinWriter()
	f.encodeWithoutChecksum(bw.BinWriter)
	sum := hash.Checksum(bw.Bytes())
	return binary.LittleEndian.Uint32(sum)
}

// EncodeBinary implements the io.Serializable interface.
func (f *File) EncodeBinary(w *gio.BinWriter) {
	f.encodeWithoutChecksum(w)
	w.WriteU32LE(f.Checksum)
}

// DecodeBinary implements the io.Serializable interface, validating
// magic, both reserved pads, script bounds, the method-token list, and
// the trailing checksum.
func (f *File) DecodeBinary(r *gio.BinReader) {
	f.Header.DecodeBinary(r)
	if r.Err != nil {
		return
	}
	reserved1 := r.ReadU16LE()
	if r.Err != nil {
		return
	}
	if reserved1 != 0 {
		r.Err = gio.NewDeserializationError("nef reserved", 0, errInvalidReserved)
		return
	}
	n := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	f.Tokens = make([]MethodToken, n)
	for i := range f.Tokens {
		f.Tokens[i].DecodeBinary(r)
		if r.Err != nil {
			return
		}
	}
	reserved2 := r.ReadU16LE()
	if r.Err != nil {
		return
	}
	if reserved2 != 0 {
		r.Err = gio.NewDeserializationError("nef reserved", 0, errInvalidReserved)
		return
	}
	f.Script = r.ReadVarBytes(MaxScriptLength)
	if r.Err != nil {
		return
	}
	if len(f.Script) == 0 {
		r.Err = gio.NewDeserializationError("nef script", 0, errEmptyScript)
		return
	}
	f.Checksum = r.ReadU32LE()
	if r.Err != nil {
		return
	}
	if f.Checksum != f.CalculateChecksum() {
		r.Err = gio.NewDeserializationError("nef checksum", 0, errInvalidChecksum)
	}
}

// Bytes serializes f to its final, checksummed wire form.
func (f *File) Bytes() ([]byte, error) {
	bw := gio.NewBufBinWriter()
	f.EncodeBinary(bw.BinWriter)
	if bw.Err != nil {
		return nil, bw.Err
	}
	return bw.Bytes(), nil
}

// FileFromBytes deserializes and validates a NEF file.
func FileFromBytes(b []byte) (*File, error) {
	r := gio.NewBinReaderFromBuf(b)
	f := &File{}
	f.DecodeBinary(r)
	if r.Err != nil {
		return nil, fmt.Errorf("nef: %w", r.Err)
	}
	return f, nil
}

// jsonFile mirrors File's fields with the JSON names a node's
// `getcontractstate` RPC response uses.
type jsonMethodToken struct {
	Hash       string `json:"hash"`
	Method     string `json:"method"`
	ParamCount uint16 `json:"paramcount"`
	HasReturn  bool   `json:"hasreturnvalue"`
	CallFlag   int64  `json:"callflags"`
}

type jsonFile struct {
	Magic    uint32            `json:"magic"`
	Compiler string            `json:"compiler"`
	Tokens   []jsonMethodToken `json:"tokens"`
	Script   string            `json:"script"`
	Checksum uint32            `json:"checksum"`
}

// MarshalJSON implements json.Marshaler in the shape a Node Client
// expects for NEF-bearing responses.
func (f *File) MarshalJSON() ([]byte, error) {
	jf := jsonFile{
		Magic:    f.Header.Magic,
		Compiler: f.Header.Compiler,
		Script:   base64.StdEncoding.EncodeToString(f.Script),
		Checksum: f.Checksum,
	}
	jf.Tokens = make([]jsonMethodToken, len(f.Tokens))
	for i, t := range f.Tokens {
		jf.Tokens[i] = jsonMethodToken{
			Hash:       "0x" + t.Hash.StringLE(),
			Method:     t.Method,
			ParamCount: t.ParamCount,
			HasReturn:  t.HasReturn,
			CallFlag:   int64(t.CallFlag),
		}
	}
	return json.Marshal(jf)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *File) UnmarshalJSON(data []byte) error {
	var jf jsonFile
	if err := json.Unmarshal(data, &jf); err != nil {
		return err
	}
	f.Header.Magic = jf.Magic
	f.Header.Compiler = jf.Compiler
	script, err := base64.StdEncoding.DecodeString(jf.Script)
	if err != nil {
		return fmt.Errorf("nef: decoding script: %w", err)
	}
	f.Script = script
	f.Checksum = jf.Checksum
	f.Tokens = make([]MethodToken, len(jf.Tokens))
	for i, t := range jf.Tokens {
		hexHash := t.Hash
		if len(hexHash) >= 2 && hexHash[0:2] == "0x" {
			hexHash = hexHash[2:]
		}
		u, err := util.Uint160DecodeStringLE(hexHash)
		if err != nil {
			return fmt.Errorf("nef: decoding method token hash: %w", err)
		}
		f.Tokens[i] = MethodToken{
			Hash:       u,
			Method:     t.Method,
			ParamCount: t.ParamCount,
			HasReturn:  t.HasReturn,
			CallFlag:   callflag.CallFlag(t.CallFlag),
		}
	}
	return nil
}
