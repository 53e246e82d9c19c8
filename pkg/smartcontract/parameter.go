package smartcontract

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"unicode/utf8"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// Parameter is a single typed argument (or return value) exchanged with
// a node over JSON-RPC: the wire shape `invoke_function`/`invoke_script`
// send for each call argument and receive for each result stack item.
type Parameter struct {
	Type  ParamType
	Value interface{}
}

// ParameterPair is one key/value entry of a MapType Parameter's value.
type ParameterPair struct {
	Key   Parameter
	Value Parameter
}

// Convertible is implemented by domain types that know how to turn
// themselves into an invocation Parameter, consulted by
// NewParameterFromValue before falling back to reflection.
type Convertible interface {
	ToSCParameter() (Parameter, error)
}

var parameterTypeNames = map[ParamType]string{
	AnyType:              "Any",
	BoolType:             "Boolean",
	IntegerType:          "Integer",
	ByteArrayType:        "ByteString",
	StringType:           "String",
	Hash160Type:          "Hash160",
	Hash256Type:          "Hash256",
	PublicKeyType:        "PublicKey",
	SignatureType:        "Signature",
	ArrayType:            "Array",
	MapType:              "Map",
	InteropInterfaceType: "InteropInterface",
	VoidType:             "Void",
}

func parameterTypeName(t ParamType) (string, error) {
	if s, ok := parameterTypeNames[t]; ok {
		return s, nil
	}
	return "", fmt.Errorf("smartcontract: cannot marshal parameter of type %s", t)
}

func parseParameterTypeName(s string) (ParamType, error) {
	if s == "Bool" {
		return BoolType, nil
	}
	for t, name := range parameterTypeNames {
		if name == s {
			return t, nil
		}
	}
	return UnknownType, fmt.Errorf("smartcontract: unknown parameter type %q", s)
}

type parameterJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type parameterPairJSON struct {
	Key   Parameter `json:"key"`
	Value Parameter `json:"value"`
}

// MarshalJSON implements json.Marshaler, matching a node's invocation
// parameter/stack-item wire shape.
func (p Parameter) MarshalJSON() ([]byte, error) {
	typeName, err := parameterTypeName(p.Type)
	if err != nil {
		return nil, err
	}
	out := parameterJSON{Type: typeName}
	switch p.Type {
	case BoolType:
		v, ok := p.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("smartcontract: Boolean parameter holds %T", p.Value)
		}
		out.Value, err = json.Marshal(v)
	case IntegerType:
		n, ok := p.Value.(*big.Int)
		if !ok {
			return nil, fmt.Errorf("smartcontract: Integer parameter holds %T", p.Value)
		}
		if n.IsInt64() {
			out.Value = json.RawMessage(n.String())
		} else {
			out.Value, err = json.Marshal(n.String())
		}
	case StringType:
		v, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("smartcontract: String parameter holds %T", p.Value)
		}
		out.Value, err = json.Marshal(v)
	case ByteArrayType:
		if p.Value == nil {
			out.Value = json.RawMessage("null")
		} else {
			b, ok := p.Value.([]byte)
			if !ok {
				return nil, fmt.Errorf("smartcontract: ByteString parameter holds %T", p.Value)
			}
			out.Value, err = json.Marshal(base64.StdEncoding.EncodeToString(b))
		}
	case SignatureType:
		if p.Value != nil {
			b, ok := p.Value.([]byte)
			if !ok {
				return nil, fmt.Errorf("smartcontract: Signature parameter holds %T", p.Value)
			}
			out.Value, err = json.Marshal(base64.StdEncoding.EncodeToString(b))
		}
	case PublicKeyType:
		b, ok := p.Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("smartcontract: PublicKey parameter holds %T", p.Value)
		}
		out.Value, err = json.Marshal(hex.EncodeToString(b))
	case Hash160Type:
		u, ok := p.Value.(util.Uint160)
		if !ok {
			return nil, fmt.Errorf("smartcontract: Hash160 parameter holds %T", p.Value)
		}
		out.Value, err = json.Marshal(u)
	case Hash256Type:
		u, ok := p.Value.(util.Uint256)
		if !ok {
			return nil, fmt.Errorf("smartcontract: Hash256 parameter holds %T", p.Value)
		}
		out.Value, err = json.Marshal(u)
	case ArrayType:
		arr, _ := p.Value.([]Parameter)
		out.Value, err = json.Marshal(arr)
	case MapType:
		pairs, _ := p.Value.([]ParameterPair)
		wire := make([]parameterPairJSON, len(pairs))
		for i, pr := range pairs {
			wire[i] = parameterPairJSON{Key: pr.Key, Value: pr.Value}
		}
		out.Value, err = json.Marshal(wire)
	case InteropInterfaceType, AnyType:
		out.Value = json.RawMessage("null")
	default:
		return nil, fmt.Errorf("smartcontract: cannot marshal parameter of type %s", p.Type)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var in parameterJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	typ, err := parseParameterTypeName(in.Type)
	if err != nil {
		return err
	}
	p.Type = typ
	if len(in.Value) == 0 {
		p.Value = nil
		return nil
	}
	switch typ {
	case BoolType:
		var v bool
		if err := json.Unmarshal(in.Value, &v); err != nil {
			return fmt.Errorf("smartcontract: invalid Boolean value: %w", err)
		}
		p.Value = v
	case IntegerType:
		n, err := decodeIntegerValue(in.Value)
		if err != nil {
			return err
		}
		p.Value = n
	case StringType:
		var v string
		if err := json.Unmarshal(in.Value, &v); err != nil {
			return fmt.Errorf("smartcontract: invalid String value: %w", err)
		}
		p.Value = v
	case ByteArrayType:
		var v *string
		if err := json.Unmarshal(in.Value, &v); err != nil {
			return fmt.Errorf("smartcontract: invalid ByteString value: %w", err)
		}
		if v == nil {
			p.Value = nil
			return nil
		}
		b, err := base64.StdEncoding.DecodeString(*v)
		if err != nil {
			return fmt.Errorf("smartcontract: invalid ByteString encoding: %w", err)
		}
		p.Value = b
	case SignatureType:
		var v *string
		if err := json.Unmarshal(in.Value, &v); err != nil {
			return fmt.Errorf("smartcontract: invalid Signature value: %w", err)
		}
		if v == nil {
			p.Value = nil
			return nil
		}
		b, err := base64.StdEncoding.DecodeString(*v)
		if err != nil {
			return fmt.Errorf("smartcontract: invalid Signature encoding: %w", err)
		}
		p.Value = b
	case PublicKeyType:
		var v string
		if err := json.Unmarshal(in.Value, &v); err != nil {
			return fmt.Errorf("smartcontract: invalid PublicKey value: %w", err)
		}
		b, err := hex.DecodeString(v)
		if err != nil {
			return fmt.Errorf("smartcontract: invalid PublicKey encoding: %w", err)
		}
		p.Value = b
	case Hash160Type:
		var u util.Uint160
		if err := json.Unmarshal(in.Value, &u); err != nil {
			return fmt.Errorf("smartcontract: invalid Hash160 value: %w", err)
		}
		p.Value = u
	case Hash256Type:
		var u util.Uint256
		if err := json.Unmarshal(in.Value, &u); err != nil {
			return fmt.Errorf("smartcontract: invalid Hash256 value: %w", err)
		}
		p.Value = u
	case ArrayType:
		var arr []Parameter
		if err := json.Unmarshal(in.Value, &arr); err != nil {
			return fmt.Errorf("smartcontract: invalid Array value: %w", err)
		}
		p.Value = arr
	case MapType:
		var wire []parameterPairJSON
		if err := json.Unmarshal(in.Value, &wire); err != nil {
			return fmt.Errorf("smartcontract: invalid Map value: %w", err)
		}
		pairs := make([]ParameterPair, len(wire))
		for i, w := range wire {
			pairs[i] = ParameterPair{Key: w.Key, Value: w.Value}
		}
		p.Value = pairs
	case InteropInterfaceType, AnyType:
		p.Value = nil
	default:
		return fmt.Errorf("smartcontract: cannot unmarshal parameter of type %s", typ)
	}
	return nil
}

func decodeIntegerValue(raw json.RawMessage) (*big.Int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return nil, fmt.Errorf("smartcontract: invalid Integer value: %w", err)
		}
		s = num.String()
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("smartcontract: invalid Integer value %q", s)
	}
	if n.BitLen() > 256 {
		return nil, fmt.Errorf("smartcontract: Integer value exceeds 256 bits")
	}
	return n, nil
}

// NewParameterFromValue converts an arbitrary Go value into the invocation
// Parameter that best represents it: literal types map directly, slices
// become ArrayType recursively (via reflection, so any named slice type
// works), and anything implementing Convertible is delegated to.
func NewParameterFromValue(value interface{}) (*Parameter, error) {
	if value == nil {
		return &Parameter{Type: AnyType}, nil
	}
	switch v := value.(type) {
	case Parameter:
		return &v, nil
	case *Parameter:
		return v, nil
	case Convertible:
		p, err := v.ToSCParameter()
		if err != nil {
			return nil, err
		}
		return &p, nil
	case []byte:
		return &Parameter{Type: ByteArrayType, Value: v}, nil
	case string:
		return &Parameter{Type: StringType, Value: v}, nil
	case bool:
		return &Parameter{Type: BoolType, Value: v}, nil
	case *big.Int:
		return &Parameter{Type: IntegerType, Value: v}, nil
	case util.Uint160:
		return &Parameter{Type: Hash160Type, Value: v}, nil
	case *util.Uint160:
		if v == nil {
			return &Parameter{Type: AnyType}, nil
		}
		return &Parameter{Type: Hash160Type, Value: *v}, nil
	case util.Uint256:
		return &Parameter{Type: Hash256Type, Value: v}, nil
	case *util.Uint256:
		if v == nil {
			return &Parameter{Type: AnyType}, nil
		}
		return &Parameter{Type: Hash256Type, Value: *v}, nil
	case keys.PublicKey:
		return &Parameter{Type: PublicKeyType, Value: v.Bytes()}, nil
	case *keys.PublicKey:
		return &Parameter{Type: PublicKeyType, Value: v.Bytes()}, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Parameter{Type: IntegerType, Value: big.NewInt(rv.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Parameter{Type: IntegerType, Value: new(big.Int).SetUint64(rv.Uint())}, nil
	case reflect.Slice, reflect.Array:
		params := make([]Parameter, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			el, err := NewParameterFromValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			params[i] = *el
		}
		return &Parameter{Type: ArrayType, Value: params}, nil
	}
	return nil, fmt.Errorf("smartcontract: unsupported operation: %T type", value)
}

// NewParametersFromValues converts each of values via NewParameterFromValue.
func NewParametersFromValues(values ...interface{}) ([]Parameter, error) {
	params := make([]Parameter, len(values))
	for i, v := range values {
		p, err := NewParameterFromValue(v)
		if err != nil {
			return nil, err
		}
		params[i] = *p
	}
	return params, nil
}

// NewParameterFromString parses a CLI-style "type:value" or bare-value
// string into a Parameter, inferring the type from the value's shape
// when no type prefix is given. A backslash escapes the character that
// follows it, so a literal colon or backslash can appear in either the
// type name or the value.
func NewParameterFromString(s string) (*Parameter, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("smartcontract: invalid UTF-8 input")
	}
	typeName, hasType, val := unescapeAndSplitType(s)
	var typ ParamType
	if hasType {
		t, err := ParseParamType(typeName)
		if err != nil {
			return nil, err
		}
		typ = t
	} else {
		typ = inferParamType(val)
	}
	adjusted, err := adjustValToType(typ, val)
	if err != nil {
		return nil, err
	}
	if typ == IntegerType {
		adjusted = big.NewInt(adjusted.(int64))
	}
	return &Parameter{Type: typ, Value: adjusted}, nil
}

// unescapeAndSplitType scans s for the first unescaped ':', unescaping
// backslash sequences along the way. hasType reports whether such a
// colon was found; typ is the unescaped text before it and val the
// unescaped text after (or all of s, unescaped, when hasType is false).
func unescapeAndSplitType(s string) (typ string, hasType bool, val string) {
	var out []rune
	escaped := false
	splitAt := -1
	for _, r := range s {
		if escaped {
			out = append(out, r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if r == ':' && splitAt == -1 {
			splitAt = len(out)
			continue
		}
		out = append(out, r)
	}
	if splitAt == -1 {
		return "", false, string(out)
	}
	return string(out[:splitAt]), true, string(out[splitAt:])
}

// ExpandParameterToEmitable converts p into the plain Go value a Script
// Builder can push onto the NeoVM stack, recursing into ArrayType
// elements. Composite types with no direct emit form (Map,
// InteropInterface) error.
func ExpandParameterToEmitable(p Parameter) (interface{}, error) {
	switch p.Type {
	case BoolType, IntegerType, ByteArrayType, StringType, Hash160Type, Hash256Type, PublicKeyType, SignatureType:
		return p.Value, nil
	case AnyType:
		return nil, nil
	case ArrayType:
		arr, _ := p.Value.([]Parameter)
		out := make([]interface{}, len(arr))
		for i, el := range arr {
			v, err := ExpandParameterToEmitable(el)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("smartcontract: cannot expand parameter of type %s to an emittable value", p.Type)
	}
}
