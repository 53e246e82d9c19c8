package compiler

import (
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract/manifest"
)

// jtypeToParamType projects a JVM-side type onto the Neo ABI parameter
// vocabulary, the same narrowing the reference compiler's own type
// checker performs for Go types.
func jtypeToParamType(t JType) (smartcontract.ParamType, error) {
	switch t.Kind {
	case JInt, JLong:
		return smartcontract.IntegerType, nil
	case JBoolean:
		return smartcontract.BoolType, nil
	case JString:
		return smartcontract.StringType, nil
	case JByteArray:
		return smartcontract.ByteArrayType, nil
	case JVoid:
		return smartcontract.VoidType, nil
	case JAny:
		return smartcontract.AnyType, nil
	case JClass:
		return smartcontract.ArrayType, nil
	default:
		return 0, fmt.Errorf("compiler: unrepresentable parameter type %d", t.Kind)
	}
}

// buildManifest aggregates the contract class's exported methods and
// Event fields into a manifest.Manifest, with method offsets resolved
// from the already-laid-out module.
func buildManifest(contract *Class, classes map[string]*Class, m *neoModule) (*manifest.Manifest, error) {
	mf := manifest.NewManifest(contract.Name)

	for i := range contract.Methods {
		meth := &contract.Methods[i]
		if !meth.Exported() {
			continue
		}
		nmIdx, ok := m.methodIndex[contract.Name+"."+meth.Name]
		if !ok {
			return nil, fmt.Errorf("compiler: exported method %s.%s was not lowered", contract.Name, meth.Name)
		}
		nm := m.methods[nmIdx]

		params := make(manifest.Parameters, 0, len(meth.Params))
		for pi, pt := range meth.Params {
			paramType, err := jtypeToParamType(pt)
			if err != nil {
				return nil, fmt.Errorf("compiler: %s.%s param %d: %w", contract.Name, meth.Name, pi, err)
			}
			name := fmt.Sprintf("arg%d", pi)
			if pi < len(meth.Locals) {
				name = meth.Locals[pi].Name
			}
			params = append(params, manifest.NewParameter(name, paramType))
		}
		retType, err := jtypeToParamType(meth.Return)
		if err != nil {
			return nil, fmt.Errorf("compiler: %s.%s return: %w", contract.Name, meth.Name, err)
		}
		safe := false
		if _, ok := findPragma(meth.Pragmas, PragmaSafe); ok {
			safe = true
		}
		mf.ABI.Methods = append(mf.ABI.Methods, manifest.Method{
			Name:       meth.Name,
			Offset:     nm.addr,
			Parameters: params,
			ReturnType: retType,
			Safe:       safe,
		})
	}

	for _, f := range contract.Fields {
		if !f.Static {
			continue
		}
		if _, ok := findPragma(f.Pragmas, PragmaEvent); !ok {
			continue
		}
		evParams, err := eventParams(f, classes)
		if err != nil {
			return nil, fmt.Errorf("compiler: event %s: %w", f.Name, err)
		}
		mf.ABI.Events = append(mf.ABI.Events, manifest.Event{
			Name:       f.Name,
			Parameters: evParams,
		})
	}

	if len(mf.ABI.Methods) == 0 {
		mf.ABI.Methods = append(mf.ABI.Methods, manifest.Method{
			Name:       "_initialize",
			Parameters: manifest.Parameters{},
			ReturnType: smartcontract.VoidType,
		})
	}

	mf.Permissions = manifest.Permissions{manifest.NewPermission(manifest.PermissionWildcard)}
	return mf, nil
}

// eventParams recovers an Event field's notification signature: the
// class it names is an EventClass whose instance fields are, in
// declaration order, the arguments System.Runtime.Notify sends.
func eventParams(f Field, classes map[string]*Class) (manifest.Parameters, error) {
	if f.Type.Kind != JClass {
		return nil, fmt.Errorf("event field must be a class-typed handle")
	}
	evClass, ok := classes[f.Type.Class]
	if !ok {
		return nil, fmt.Errorf("event handle names unknown class %s", f.Type.Class)
	}
	params := make(manifest.Parameters, 0, len(evClass.Fields))
	for _, ef := range evClass.Fields {
		pt, err := jtypeToParamType(ef.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", ef.Name, err)
		}
		params = append(params, manifest.NewParameter(ef.Name, pt))
	}
	return params, nil
}
