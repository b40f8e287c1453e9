package idl_test

import (
	"testing"

	"github.com/Alia5/giopgen/internal/idl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scratchTree(t *testing.T) *idl.Tree {
	t.Helper()
	tree := idl.NewTree()
	require.NoError(t, tree.Declare("Tux::Color", &idl.Enum{Scoped: idl.NewScoped("Tux::Color"), Enumerators: []string{"RED", "GREEN", "BLUE"}}))
	require.NoError(t, tree.Declare("Tux::Inner::Point", &idl.Struct{Scoped: idl.NewScoped("Tux::Inner::Point")}))
	require.NoError(t, tree.Declare("Point", &idl.Struct{Scoped: idl.NewScoped("Point")}))
	return tree
}

func TestParseType(t *testing.T) {
	tree := scratchTree(t)
	tests := []struct {
		name  string
		scope []string
		expr  string
		want  string
		kind  idl.Kind
	}{
		{name: "short", expr: "short", want: "short", kind: idl.KindShort},
		{name: "unsigned long long", expr: "unsigned  long long", want: "unsigned long long", kind: idl.KindULongLong},
		{name: "long double", expr: "long double", want: "long double", kind: idl.KindLongDouble},
		{name: "bounded string", expr: "string<10>", want: "string<10>", kind: idl.KindString},
		{name: "wstring", expr: "wstring", want: "wstring", kind: idl.KindWString},
		{name: "fixed", expr: "fixed<5,2>", want: "fixed<5,2>", kind: idl.KindFixed},
		{name: "bounded sequence", expr: "sequence<octet, 0x10>", want: "sequence<octet,16>", kind: idl.KindSequence},
		{name: "nested sequence", expr: "sequence<sequence<long>>", want: "sequence<sequence<long>>", kind: idl.KindSequence},
		{name: "array", expr: "long[4][3]", want: "long[4][3]", kind: idl.KindArray},
		{name: "typecode", expr: "CORBA::TypeCode", want: "TypeCode", kind: idl.KindTypeCode},
		{name: "object", expr: "Object", want: "Object", kind: idl.KindObjRef},
		{name: "innermost scope wins", scope: []string{"Tux", "Inner"}, expr: "Point", want: "Tux::Inner::Point", kind: idl.KindStruct},
		{name: "global override", scope: []string{"Tux", "Inner"}, expr: "::Point", want: "Point", kind: idl.KindStruct},
		{name: "outer scope", scope: []string{"Tux", "Inner"}, expr: "Color", want: "Tux::Color", kind: idl.KindEnum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := tree.ParseType(tt.scope, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, idl.Describe(typ))
			assert.Equal(t, tt.kind, typ.Kind())
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	tree := scratchTree(t)
	tests := []struct {
		name       string
		expr       string
		unresolved bool
	}{
		{name: "unknown name", expr: "Penguin", unresolved: true},
		{name: "unknown element", expr: "sequence<Penguin>", unresolved: true},
		{name: "unsigned alone", expr: "unsigned"},
		{name: "unclosed sequence", expr: "sequence<long"},
		{name: "trailing tokens", expr: "long short"},
		{name: "fixed without scale", expr: "fixed<5>"},
		{name: "bad character", expr: "long*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.ParseType(nil, tt.expr)
			require.Error(t, err)
			if tt.unresolved {
				assert.ErrorIs(t, err, idl.ErrUnresolved)
			}
		})
	}
}

func TestParseDeclarator(t *testing.T) {
	d, err := idl.ParseDeclarator("grid[4][3]")
	require.NoError(t, err)
	assert.Equal(t, "grid", d.Name)
	assert.Equal(t, []int{4, 3}, d.Sizes)
	assert.Equal(t, "grid[4][3]", d.String())

	d, err = idl.ParseDeclarator("x")
	require.NoError(t, err)
	assert.Empty(t, d.Sizes)

	for _, bad := range []string{"", "a::b", "grid[0]", "grid[4", "grid[4]x"} {
		_, err := idl.ParseDeclarator(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseLabel(t *testing.T) {
	color := &idl.Enum{Scoped: idl.NewScoped("Tux::Color"), Enumerators: []string{"RED", "GREEN", "BLUE"}}
	tests := []struct {
		name string
		in   string
		disc idl.Type
		want idl.Label
	}{
		{name: "default", in: "default", disc: idl.Long, want: idl.Label{Kind: idl.LabelDefault}},
		{name: "decimal", in: "42", disc: idl.Long, want: idl.Label{Kind: idl.LabelInt, Int: 42}},
		{name: "negative", in: "-3", disc: idl.Short, want: idl.Label{Kind: idl.LabelInt, Int: -3}},
		{name: "hex", in: "0x1f", disc: idl.ULong, want: idl.Label{Kind: idl.LabelInt, Int: 31}},
		{name: "above int64", in: "18446744073709551615", disc: idl.ULongLong, want: idl.Label{Kind: idl.LabelInt, Int: -1, Unsigned: true}},
		{name: "true", in: "TRUE", disc: idl.Boolean, want: idl.Label{Kind: idl.LabelInt, Int: 1}},
		{name: "false", in: "FALSE", disc: idl.Boolean, want: idl.Label{Kind: idl.LabelInt, Int: 0}},
		{name: "char", in: "'a'", disc: idl.Char, want: idl.Label{Kind: idl.LabelChar, Char: 'a'}},
		{name: "newline", in: `'\n'`, disc: idl.Char, want: idl.Label{Kind: idl.LabelChar, Char: '\n'}},
		{name: "tab", in: `'\t'`, disc: idl.Char, want: idl.Label{Kind: idl.LabelChar, Char: '\t'}},
		{name: "enumerator", in: "GREEN", disc: color, want: idl.Label{Kind: idl.LabelEnum, Enumerator: "GREEN"}},
		{name: "scoped enumerator", in: "Tux::BLUE", disc: color, want: idl.Label{Kind: idl.LabelEnum, Enumerator: "BLUE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idl.ParseLabel(tt.in, tt.disc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := idl.ParseLabel("PURPLE", color)
	assert.ErrorIs(t, err, idl.ErrUnresolved)
	_, err = idl.ParseLabel("PURPLE", idl.Long)
	assert.Error(t, err)
	_, err = idl.ParseLabel("18446744073709551615", idl.LongLong)
	assert.Error(t, err)
}

func TestEnumOrdinal(t *testing.T) {
	en := &idl.Enum{Scoped: idl.NewScoped("Tux::Color"), Enumerators: []string{"A", "B", "C"}}
	for want, name := range []string{"A", "B", "C"} {
		got, ok := en.Ordinal(name)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	got, ok := en.Ordinal("Tux::Color::C")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
	_, ok = en.Ordinal("D")
	assert.False(t, ok)
}

func TestUnalias(t *testing.T) {
	a := &idl.Typedef{Scoped: idl.NewScoped("A")}
	b := &idl.Typedef{Scoped: idl.NewScoped("B"), Target: a}
	a.Target = b
	_, err := idl.Unalias(a)
	assert.ErrorIs(t, err, idl.ErrAliasCycle)

	inner := &idl.Typedef{Scoped: idl.NewScoped("Inner"), Target: idl.Long}
	outer := &idl.Typedef{Scoped: idl.NewScoped("Outer"), Target: inner}
	got, err := idl.Unalias(outer)
	require.NoError(t, err)
	assert.Same(t, idl.Long, got)

	again, err := idl.Unalias(got)
	require.NoError(t, err)
	assert.Same(t, got, again)

	grid := &idl.Typedef{Scoped: idl.NewScoped("Grid"), Target: idl.Long, Sizes: []int{4, 3}}
	wrapped := &idl.Typedef{Scoped: idl.NewScoped("Board"), Target: grid}
	got, err = idl.Unalias(wrapped)
	require.NoError(t, err)
	assert.Same(t, grid, got)
}
