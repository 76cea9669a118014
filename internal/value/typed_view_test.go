package value_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/value"
)

func TestAsSucceedsOnMatchingConcreteType(t *testing.T) {
	v := value.Const(testType, value.Int(5), []byte{5})
	got, err := value.As[value.Int](v, context.Background())
	require.Nil(t, err)
	require.Equal(t, value.Int(5), got)
}

func TestAsFailsOnTypeMismatch(t *testing.T) {
	v := value.Const(testType, value.Int(5), []byte{5})
	_, err := value.As[value.String](v, context.Background())
	require.NotNil(t, err)
	require.Equal(t, diagnostics.KindType, err.Kind)
}

func TestAsPropagatesAwaitError(t *testing.T) {
	wantErr := diagnostics.New(diagnostics.KindValue, "boom")
	v := value.New(testType, nil, func(context.Context) (value.Data, *diagnostics.Error) {
		return nil, wantErr
	})
	_, err := value.As[value.Int](v, context.Background())
	require.Same(t, wantErr, err)
}
