package manifest

import (
	"testing"

	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
	"github.com/stretchr/testify/require"
)

func TestMethodIsValid(t *testing.T) {
	m := Method{}
	require.Error(t, m.IsValid()) // No name.

	m.Name = "qwerty"
	require.NoError(t, m.IsValid())

	m.Offset = -1
	require.Error(t, m.IsValid())

	m.Offset = 42
	require.NoError(t, m.IsValid())

	m.Parameters = append(m.Parameters, Parameter{})
	require.Error(t, m.IsValid()) // Bad parameter.

	m.Parameters[0].Name = "p1"
	m.Parameters[0].Type = smartcontract.BoolType
	require.NoError(t, m.IsValid())
}

func TestEventIsValid(t *testing.T) {
	e := Event{}
	require.Error(t, e.IsValid())

	e.Name = "some"
	require.NoError(t, e.IsValid())

	e.Parameters = append(e.Parameters, NewParameter("p1", smartcontract.BoolType))
	require.NoError(t, e.IsValid())

	e.Parameters = append(e.Parameters, NewParameter("p1", smartcontract.IntegerType))
	require.Error(t, e.IsValid()) // Duplicate parameter name.
}

func TestABIIsValid(t *testing.T) {
	a := &ABI{}
	require.Error(t, a.IsValid()) // No methods.

	a.Methods = append(a.Methods, Method{Name: "qwe"})
	require.NoError(t, a.IsValid())

	a.Methods = append(a.Methods, Method{Name: "qaz"})
	require.NoError(t, a.IsValid())

	a.Methods = append(a.Methods, Method{Name: "qaz", Offset: -42})
	require.Error(t, a.IsValid())

	a.Methods = append(a.Methods[:len(a.Methods)-1], Method{
		Name:       "qwe",
		Parameters: []Parameter{NewParameter("param", smartcontract.BoolType)},
	})
	require.NoError(t, a.IsValid()) // Overload: same name, different parameter count.

	a.Methods = append(a.Methods, Method{Name: "qwe"})
	require.Error(t, a.IsValid()) // Duplicate name+parameter-count.
	a.Methods = a.Methods[:len(a.Methods)-1]

	a.Events = append(a.Events, Event{Name: "wsx"})
	require.NoError(t, a.IsValid())

	a.Events = append(a.Events, Event{})
	require.Error(t, a.IsValid())

	a.Events = append(a.Events[:len(a.Events)-1], Event{Name: "edc"})
	require.NoError(t, a.IsValid())

	a.Events = append(a.Events, Event{Name: "wsx"})
	require.Error(t, a.IsValid()) // Duplicate event name.
}

func TestABI_GetMethod(t *testing.T) {
	a := &ABI{
		Methods: []Method{
			{Name: "transfer", Parameters: []Parameter{NewParameter("to", smartcontract.Hash160Type)}},
			{Name: "transfer", Parameters: []Parameter{
				NewParameter("to", smartcontract.Hash160Type),
				NewParameter("amount", smartcontract.IntegerType),
			}},
		},
	}
	m, ok := a.GetMethod("transfer", 1)
	require.True(t, ok)
	require.Len(t, m.Parameters, 1)

	m, ok = a.GetMethod("transfer", 2)
	require.True(t, ok)
	require.Len(t, m.Parameters, 2)

	_, ok = a.GetMethod("transfer", 3)
	require.False(t, ok)

	_, ok = a.GetMethod("nonexistent", -1)
	require.False(t, ok)
}
