// Package smartcontract defines the ABI parameter-type vocabulary and
// contract invocation parameters shared by the manifest, the Script
// Builder, and the Transaction Builder when describing method
// signatures and call arguments.
package smartcontract

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// ParamType enumerates the types a contract method parameter, return
// value, or event field may declare, matching the Neo N3
// ContractParameterType wire values.
type ParamType byte

// Parameter type values, per the Neo N3 protocol.
const (
	AnyType              ParamType = 0x00
	BoolType             ParamType = 0x10
	IntegerType          ParamType = 0x11
	ByteArrayType        ParamType = 0x12
	StringType           ParamType = 0x13
	Hash160Type          ParamType = 0x14
	Hash256Type          ParamType = 0x15
	PublicKeyType        ParamType = 0x16
	SignatureType        ParamType = 0x17
	ArrayType            ParamType = 0x20
	MapType              ParamType = 0x22
	InteropInterfaceType ParamType = 0x30
	VoidType             ParamType = 0xff

	// UnknownType is returned when a name or wire value fails to parse;
	// it is never valid on the wire.
	UnknownType ParamType = 0xf0
)

var paramTypeNames = []struct {
	t    ParamType
	name string
}{
	{AnyType, "Any"},
	{BoolType, "Boolean"},
	{IntegerType, "Integer"},
	{ByteArrayType, "ByteArray"},
	{StringType, "String"},
	{Hash160Type, "Hash160"},
	{Hash256Type, "Hash256"},
	{PublicKeyType, "PublicKey"},
	{SignatureType, "Signature"},
	{ArrayType, "Array"},
	{MapType, "Map"},
	{InteropInterfaceType, "InteropInterface"},
	{VoidType, "Void"},
}

// String renders the canonical manifest-JSON name for t.
func (t ParamType) String() string {
	for _, p := range paramTypeNames {
		if p.t == t {
			return p.name
		}
	}
	return fmt.Sprintf("Unknown(%d)", byte(t))
}

// ParseParamType parses a parameter type name case-insensitively,
// accepting both the manifest-JSON spelling ("ByteArray") and the
// shorthand CLI spelling ("bytes", "key", "int", "hash160").
func ParseParamType(s string) (ParamType, error) {
	switch strings.ToLower(s) {
	case "any":
		return AnyType, nil
	case "signature":
		return SignatureType, nil
	case "bool", "boolean":
		return BoolType, nil
	case "int", "integer":
		return IntegerType, nil
	case "hash160":
		return Hash160Type, nil
	case "hash256":
		return Hash256Type, nil
	case "bytes", "bytearray":
		return ByteArrayType, nil
	case "key", "publickey":
		return PublicKeyType, nil
	case "string":
		return StringType, nil
	case "array":
		return ArrayType, nil
	case "map":
		return MapType, nil
	case "interopinterface":
		return InteropInterfaceType, nil
	case "void":
		return VoidType, nil
	default:
		return UnknownType, fmt.Errorf("smartcontract: unknown parameter type %q", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (t ParamType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *ParamType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseParamType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ConvertToParamType converts the wire byte value b to a ParamType,
// rejecting values that don't name a known type.
func ConvertToParamType(b int) (ParamType, error) {
	switch ParamType(b) {
	case UnknownType, AnyType, BoolType, IntegerType, ByteArrayType, StringType,
		Hash160Type, Hash256Type, PublicKeyType, SignatureType, ArrayType,
		MapType, InteropInterfaceType, VoidType:
		return ParamType(b), nil
	default:
		return 0, fmt.Errorf("smartcontract: unknown parameter type byte 0x%02x", b)
	}
}

var integerRe = regexp.MustCompile(`^-?[0-9]+$`)

// inferParamType guesses the most likely ParamType for a raw CLI-style
// string argument, trying integer, boolean, address, and hex-length
// heuristics (in that priority order) before falling back to String.
func inferParamType(s string) ParamType {
	if integerRe.MatchString(s) {
		return IntegerType
	}
	if s == "true" || s == "false" {
		return BoolType
	}
	if _, err := addressToUint160(s); err == nil {
		return Hash160Type
	}
	if b, err := hex.DecodeString(s); err == nil {
		switch {
		case len(b) == util.Uint160Size:
			return Hash160Type
		case len(b) == util.Uint256Size:
			return Hash256Type
		case len(b) == 33 && (b[0] == 0x02 || b[0] == 0x03):
			return PublicKeyType
		case len(b) == 64:
			return SignatureType
		default:
			return ByteArrayType
		}
	}
	return StringType
}

// adjustValToType parses val according to typ, the inverse of the
// String()-and-Value formatting a node's CLI-style parameter
// accepts for non-composite types. Composite types (Array, Map,
// InteropInterface) have no plain-string form and always error.
func adjustValToType(typ ParamType, val string) (interface{}, error) {
	switch typ {
	case SignatureType:
		b, err := hex.DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("smartcontract: invalid signature: %w", err)
		}
		if len(b) != 64 {
			return nil, fmt.Errorf("smartcontract: signature must be 64 bytes, got %d", len(b))
		}
		return b, nil
	case BoolType:
		switch val {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, fmt.Errorf("smartcontract: invalid boolean %q", val)
		}
	case IntegerType:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("smartcontract: invalid integer %q: %w", val, err)
		}
		return n, nil
	case Hash160Type:
		if u, err := addressToUint160(val); err == nil {
			return u, nil
		}
		u, err := util.Uint160DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("smartcontract: invalid Hash160 %q: %w", val, err)
		}
		return u, nil
	case Hash256Type:
		u, err := util.Uint256DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("smartcontract: invalid Hash256 %q: %w", val, err)
		}
		return u, nil
	case PublicKeyType:
		if _, err := keys.NewPublicKeyFromString(val); err != nil {
			return nil, fmt.Errorf("smartcontract: invalid public key %q: %w", val, err)
		}
		return hex.DecodeString(val)
	case ByteArrayType:
		b, err := hex.DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("smartcontract: invalid byte array %q: %w", val, err)
		}
		return b, nil
	case StringType:
		return val, nil
	default:
		return nil, fmt.Errorf("smartcontract: %s parameters have no plain-string form", typ)
	}
}
