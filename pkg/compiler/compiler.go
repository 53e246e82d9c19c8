package compiler

import (
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/smartcontract/manifest"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract/nef"
)

// compilerIdent is the Compiler field baked into every produced NEF
// file's header.
const compilerIdent = "neow3j-go-3.0"

// Compile lowers a contract's class set (its root contract class plus
// every transitively referenced user class: structs, events, exception
// types, @ContractHash proxies) to a NefFile and its paired Manifest.
//
// classes must contain exactly one ContractClass; every exported
// (public static) method on it becomes part of the ABI.
func Compile(classes []*Class) (*nef.File, *manifest.Manifest, error) {
	contract, err := validate(classes)
	if err != nil {
		return nil, nil, err
	}

	addStaticInitializer(contract)

	m, err := lowerModule(classes)
	if err != nil {
		return nil, nil, err
	}

	if err := m.layout(); err != nil {
		return nil, nil, err
	}

	byName := make(map[string]*Class, len(classes))
	for _, c := range classes {
		byName[c.Name] = c
	}
	mf, err := buildManifest(contract, byName, m)
	if err != nil {
		return nil, nil, err
	}

	f := &nef.File{
		Header: nef.Header{Magic: nef.Magic, Compiler: compilerIdent},
		Tokens: m.tokens.tokens,
		Script: m.bytes(),
	}
	f.Checksum = f.CalculateChecksum()

	return f, mf, nil
}

// validate checks the class set against the forbidden shapes this
// compiler rejects, returning the single contract class on success.
func validate(classes []*Class) (*Class, error) {
	var contract *Class
	for _, c := range classes {
		if c.Kind == ContractClass {
			if contract != nil {
				return nil, ErrMultipleContractClasses
			}
			contract = c
		}
	}
	if contract == nil {
		return nil, ErrNoContractClass
	}

	for _, c := range classes {
		if err := validateClass(c); err != nil {
			return nil, fmt.Errorf("compiler: class %s: %w", c.Name, err)
		}
	}
	return contract, nil
}

func validateClass(c *Class) error {
	if c.Kind != StructClass && c.Kind != EventClass {
		for _, f := range c.Fields {
			if !f.Static {
				return ErrInstanceField
			}
		}
	}
	if c.Super != "" && c.Super != "java.lang.Object" {
		switch c.Kind {
		case StructClass:
			// a Struct may extend another Struct
		case ContractClass, ExceptionClass:
			return ErrUnsupportedInheritance
		default:
			return ErrUnsupportedInheritance
		}
	}
	for i := range c.Methods {
		meth := &c.Methods[i]
		if !meth.Static && !isConstructorLike(meth, c) {
			return ErrInstanceMethod
		}
		for _, lv := range meth.Locals {
			if lv.Type.Kind == JFloat || lv.Type.Kind == JDouble {
				return ErrFloatLocal
			}
		}
	}
	return nil
}

// isConstructorLike reports whether meth is a trivial constructor: a
// Struct's field-assigning <init>, which the NEW lowering inlines
// directly rather than treating as a callable instance method.
func isConstructorLike(meth *Method, c *Class) bool {
	return c.Kind == StructClass && meth.Name == "<init>"
}

// addStaticInitializer synthesizes the module's _initialize method when
// the contract (or any referenced class) declares static fields,
// reporting whether one was added.
func addStaticInitializer(contract *Class) bool {
	n := 0
	for _, f := range contract.Fields {
		if f.Static {
			n++
		}
	}
	if n == 0 {
		return false
	}
	for _, m := range contract.Methods {
		if m.Name == "_initialize" {
			return true // already present in the input IR
		}
	}
	contract.Methods = append(contract.Methods, Method{
		Name:   "_initialize",
		Static: true,
		Public: false,
		Return: JType{Kind: JVoid},
	})
	return true
}
