package stdlib_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaelang/vael/internal/evaluator"
	"github.com/vaelang/vael/internal/identity"
	"github.com/vaelang/vael/internal/stdlib"
	"github.com/vaelang/vael/internal/traits"
	"github.com/vaelang/vael/internal/value"
)

func callBuiltin(t *testing.T, name string, args ...*value.Value) (value.Data, error) {
	t.Helper()
	builtins := stdlib.Builtins()
	fnVal, ok := builtins[name]
	require.True(t, ok, "no such builtin %q", name)
	data, derr := fnVal.Await(context.Background())
	require.Nil(t, derr)
	fn := data.(value.Function)
	result := fn.Apply(args)
	rdata, rerr := result.Await(context.Background())
	if rerr != nil {
		return nil, rerr
	}
	return rdata, nil
}

func constInt(n int64) *value.Value {
	return value.Const(evaluator.TInt, value.Int(n), []byte{byte(n)})
}

func TestAddPromotesToFloat(t *testing.T) {
	a := value.Const(evaluator.TFloat, value.Float(1.5), []byte{1})
	b := constInt(2)
	data, err := callBuiltin(t, "add", a, b)
	require.NoError(t, err)
	require.Equal(t, value.Float(3.5), data)
}

func TestAddIntStaysInt(t *testing.T) {
	data, err := callBuiltin(t, "add", constInt(2), constInt(3))
	require.NoError(t, err)
	require.Equal(t, value.Int(5), data)
}

func TestSubAndMul(t *testing.T) {
	data, err := callBuiltin(t, "sub", constInt(5), constInt(3))
	require.NoError(t, err)
	require.Equal(t, value.Int(2), data)

	data, err = callBuiltin(t, "mul", constInt(5), constInt(3))
	require.NoError(t, err)
	require.Equal(t, value.Int(15), data)
}

func TestEqComparesIdentityNotStructure(t *testing.T) {
	a := constInt(7)
	b := constInt(7)
	data, err := callBuiltin(t, "eq", a, b)
	require.NoError(t, err)
	require.Equal(t, value.Bool(true), data)
}

func TestLenOverArrayAndString(t *testing.T) {
	arr := value.Array{Items: []*value.Value{constInt(1), constInt(2)}}
	arrVal := value.Const(evaluator.TArray, arr, []byte{1, 2})
	data, err := callBuiltin(t, "len", arrVal)
	require.NoError(t, err)
	require.Equal(t, value.Int(2), data)

	s := value.Const(evaluator.TString, value.String("hello"), []byte("hello"))
	data, err = callBuiltin(t, "len", s)
	require.NoError(t, err)
	require.Equal(t, value.Int(5), data)
}

func TestLenRejectsNonContainer(t *testing.T) {
	_, err := callBuiltin(t, "len", constInt(1))
	require.Error(t, err)
}

func TestDisplayRendersInspectString(t *testing.T) {
	data, err := callBuiltin(t, "display", constInt(42))
	require.NoError(t, err)
	require.Equal(t, value.String(value.Inspect(value.Int(42))), data)
}

func TestTypeOfReturnsTypeData(t *testing.T) {
	data, err := callBuiltin(t, "typeOf", constInt(1))
	require.NoError(t, err)
	td, ok := data.(value.TypeData)
	require.True(t, ok)
	require.Equal(t, evaluator.TInt.ID(), td.T.ID())
}

func intoTypedBool(t *testing.T, typ identity.Type, v *value.Value) value.Data {
	t.Helper()
	reg := traits.New()
	stdlib.Install(reg)
	impl, ok := reg.GetImpl(typ, traits.IntoTypedOf("Bool"))
	require.True(t, ok, "no IntoTyped<Bool> registered for %v", typ)
	fn, ok := impl.(traits.IntoTypedFunc)
	require.True(t, ok)
	out, err := fn(context.Background(), v)
	require.Nil(t, err)
	data, derr := out.Await(context.Background())
	require.Nil(t, derr)
	return data
}

func TestIntoTypedBoolIsTrueForEveryOrdinaryType(t *testing.T) {
	require.Equal(t, value.Bool(true), intoTypedBool(t, evaluator.TInt, constInt(0)))
	require.Equal(t, value.Bool(true), intoTypedBool(t, evaluator.TString, value.Const(evaluator.TString, value.String(""), nil)))
	empty := value.Const(evaluator.TArray, value.Array{}, nil)
	require.Equal(t, value.Bool(true), intoTypedBool(t, evaluator.TArray, empty))
	require.Equal(t, value.Bool(true), intoTypedBool(t, evaluator.TBool, value.Const(evaluator.TBool, value.Bool(false), []byte{0})))
}

func TestIntoTypedBoolIsFalseOnlyForUnset(t *testing.T) {
	unset := value.Const(evaluator.TUnset, value.Unset{}, nil)
	require.Equal(t, value.Bool(false), intoTypedBool(t, evaluator.TUnset, unset))
}

func TestDocAndDocNames(t *testing.T) {
	_, ok := stdlib.Doc("print")
	require.True(t, ok)
	_, ok = stdlib.Doc("nonexistent")
	require.False(t, ok)

	names := stdlib.DocNames()
	require.Contains(t, names, "print")
	for i := 1; i < len(names); i++ {
		require.LessOrEqual(t, names[i-1], names[i], "DocNames should be sorted")
	}
}
