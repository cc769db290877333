package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Argument(t *testing.T) {
	v := Value{
		FullName:  "X",
		CtorArgs:  []any{1, "a"},
		NamedArgs: []NamedArg{{Name: "Y", Value: true}},
	}

	t.Run("positional in range", func(t *testing.T) {
		got, ok := v.Argument(0, "")
		require.True(t, ok)
		assert.Equal(t, 1, got)
	})

	t.Run("named fallback", func(t *testing.T) {
		got, ok := v.Argument(5, "Y")
		require.True(t, ok)
		assert.Equal(t, true, got)
	})

	t.Run("out of range with no name match", func(t *testing.T) {
		_, ok := v.Argument(5, "Z")
		assert.False(t, ok)
	})

	t.Run("hole falls through to named", func(t *testing.T) {
		holed := Value{
			CtorArgs:  []any{nil, "b"},
			NamedArgs: []NamedArg{{Name: "first", Value: "named"}},
		}
		got, ok := holed.Argument(0, "first")
		require.True(t, ok)
		assert.Equal(t, "named", got)
	})
}

func TestValue_Equal(t *testing.T) {
	a := Value{FullName: "X", CtorArgs: []any{1}, NamedArgs: []NamedArg{{Name: "Y", Value: true}}}
	b := Value{FullName: "X", CtorArgs: []any{1}, NamedArgs: []NamedArg{{Name: "Y", Value: true}}}
	assert.True(t, a.Equal(b))

	t.Run("position does not affect equality", func(t *testing.T) {
		c := b
		c.Position = Position{File: "x.go", Line: 3}
		assert.True(t, a.Equal(c))
	})

	t.Run("argument order matters", func(t *testing.T) {
		c := Value{FullName: "X", CtorArgs: []any{1}, NamedArgs: []NamedArg{{Name: "Z", Value: true}}}
		assert.False(t, a.Equal(c))
	})

	t.Run("different arity", func(t *testing.T) {
		c := Value{FullName: "X", CtorArgs: []any{1, 2}}
		assert.False(t, a.Equal(c))
	})
}

func TestSort(t *testing.T) {
	values := []Value{{FullName: "b"}, {FullName: "a"}, {FullName: "c"}}
	Sort(values)
	assert.Equal(t, "a", values[0].FullName)
	assert.Equal(t, "b", values[1].FullName)
	assert.Equal(t, "c", values[2].FullName)
}

func TestFilter(t *testing.T) {
	values := []Value{
		{FullName: "json"},
		{FullName: "go.embed"},
		{FullName: "yaml"},
	}
	kept := Filter(values)
	require.Len(t, kept, 2)
	assert.Equal(t, "json", kept[0].FullName)
	assert.Equal(t, "yaml", kept[1].FullName)
}

func TestParseStructTag(t *testing.T) {
	pos := Position{File: "f.go", Line: 10}
	values := ParseStructTag(`json:"name,omitempty" yaml:"n" db:"col,type=text"`, pos)
	require.Len(t, values, 3)

	t.Run("primary value and flag", func(t *testing.T) {
		v := values[0]
		assert.Equal(t, "json", v.FullName)
		got, ok := v.Argument(0, "")
		require.True(t, ok)
		assert.Equal(t, "name", got)
		flag, ok := v.Named("omitempty")
		require.True(t, ok)
		assert.Equal(t, true, flag)
		assert.Equal(t, pos, v.Position)
	})

	t.Run("name=value pair", func(t *testing.T) {
		v := values[2]
		got, ok := v.Named("type")
		require.True(t, ok)
		assert.Equal(t, "text", got)
	})

	t.Run("empty primary is a hole", func(t *testing.T) {
		vs := ParseStructTag(`json:",omitempty"`, Position{})
		require.Len(t, vs, 1)
		_, ok := vs[0].Argument(0, "")
		assert.False(t, ok)
		flag, ok := vs[0].Named("omitempty")
		require.True(t, ok)
		assert.Equal(t, true, flag)
	})

	t.Run("malformed tag yields nothing", func(t *testing.T) {
		assert.Empty(t, ParseStructTag(`not a tag`, Position{}))
	})
}
