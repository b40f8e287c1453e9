package idl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Alia5/giopgen/internal/idl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileFormats(t *testing.T) {
	for _, name := range []string{"tux.yaml", "tux.json", "tux.toml"} {
		t.Run(name, func(t *testing.T) {
			tree, raw, err := idl.LoadFile(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.NotEmpty(t, raw)
			checkTuxTree(t, tree)
		})
	}
}

func checkTuxTree(t *testing.T, tree *idl.Tree) {
	t.Helper()

	require.Len(t, tree.Enums, 1)
	assert.Equal(t, "IDL:Tux/Color:1.0", tree.Enums[0].RepoID)

	require.Len(t, tree.Structs, 2)
	point := tree.Structs[0]
	assert.Equal(t, []string{"Tux", "Point"}, point.Path)
	require.Len(t, point.Members, 3)
	assert.Equal(t, "x", point.Members[0].Declarators[0].Name)
	assert.Equal(t, "y", point.Members[0].Declarators[1].Name)
	assert.Same(t, tree.Enums[0], point.Members[1].Type)
	assert.Equal(t, []int{2, 2}, point.Members[2].Declarators[0].Sizes)

	node := tree.Structs[1]
	seq, ok := node.Members[1].Type.(*idl.Sequence)
	require.True(t, ok)
	assert.Same(t, node, seq.Elem, "self reference resolves to the same entity")

	require.Len(t, tree.Unions, 1)
	shape := tree.Unions[0]
	shade, ok := shape.Discriminant.(*idl.Typedef)
	require.True(t, ok)
	assert.Equal(t, "Tux::Shade", shade.ScopedName())
	require.Len(t, shape.Cases, 3)
	assert.Equal(t, idl.Label{Kind: idl.LabelEnum, Enumerator: "RED"}, shape.Cases[0].Labels[0])
	assert.Equal(t, idl.Label{Kind: idl.LabelEnum, Enumerator: "BLUE"}, shape.Cases[1].Labels[1])
	assert.True(t, shape.Cases[2].Labels[0].IsDefault())
	assert.Same(t, point, shape.Cases[1].Type)

	require.Len(t, tree.Typedefs, 3)
	assert.Equal(t, []int{4, 3}, tree.Typedefs[0].Sizes)

	require.Len(t, tree.Operations, 2)
	add := tree.Operations[0]
	assert.Equal(t, "Tux::Echo::add", add.ScopedName())
	assert.Same(t, idl.Long, add.Return)
	require.Len(t, add.Params, 2)
	assert.Equal(t, idl.In, add.Params[1].Dir)
	require.Len(t, add.Raises, 2)

	move := tree.Operations[1]
	assert.Same(t, idl.Void, move.Return)
	assert.Equal(t, idl.InOut, move.Params[0].Dir)
	assert.Equal(t, idl.Out, move.Params[1].Dir)
	ref, ok := move.Params[1].Type.(*idl.ObjRef)
	require.True(t, ok)
	assert.Equal(t, "Tux::Echo", ref.Interface)

	exceptions := tree.ExceptionList()
	require.Len(t, exceptions, 2)
	assert.Equal(t, "Tux::BadValue", exceptions[0].ScopedName())
	assert.True(t, exceptions[0].HasMembers())
	assert.False(t, exceptions[1].HasMembers())

	assert.Equal(t, []string{"Tux/Echo"}, tree.InterfaceList())

	require.Len(t, tree.Attributes, 2)
	assert.True(t, tree.Attributes[0].ReadOnly)
	assert.Equal(t, "Tux::Echo::width", tree.Attributes[0].Accessor(tree.Attributes[0].Declarators[0]).ScopedName())
	assert.False(t, tree.Attributes[1].ReadOnly)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		data    string
		wantErr error
	}{
		{name: "unsupported format", format: "xml", data: "<tree/>", wantErr: idl.ErrUnsupportedFormat},
		{name: "unknown json field", format: "json", data: `{"penguins": []}`},
		{name: "unknown yaml field", format: "yaml", data: "penguins: []\n"},
		{name: "malformed toml", format: "toml", data: "enums = [[["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := idl.Decode([]byte(tt.data), tt.format)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	doc, err := idl.Decode(nil, "yaml")
	require.NoError(t, err)
	tree, err := idl.Build(doc)
	require.NoError(t, err)
	assert.Empty(t, tree.Operations)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     idl.Document
		wantErr error
	}{
		{
			name: "alias cycle",
			doc: idl.Document{Typedefs: []idl.TypedefDoc{
				{Name: "A", Type: "B"},
				{Name: "B", Type: "A"},
			}},
			wantErr: idl.ErrAliasCycle,
		},
		{
			name: "alias cycle through sized typedef",
			doc: idl.Document{Typedefs: []idl.TypedefDoc{
				{Name: "Tux::A", Type: "B", Sizes: []int{2}},
				{Name: "Tux::B", Type: "A"},
			}},
			wantErr: idl.ErrAliasCycle,
		},
		{
			name: "alias cycle through sequence",
			doc: idl.Document{Typedefs: []idl.TypedefDoc{
				{Name: "Tux::L", Type: "sequence<L>"},
			}},
			wantErr: idl.ErrAliasCycle,
		},
		{
			name: "alias cycle through anonymous array",
			doc: idl.Document{Typedefs: []idl.TypedefDoc{
				{Name: "Tux::M", Type: "sequence<N>"},
				{Name: "Tux::N", Type: "M[3]"},
			}},
			wantErr: idl.ErrAliasCycle,
		},
		{
			name: "unresolved member",
			doc: idl.Document{Structs: []idl.StructDoc{
				{Name: "S", Members: []idl.MemberDoc{{Type: "Missing", Declarators: []string{"m"}}}},
			}},
			wantErr: idl.ErrUnresolved,
		},
		{
			name: "unresolved raises",
			doc: idl.Document{Operations: []idl.OperationDoc{
				{Name: "I::op", Raises: []string{"Nope"}},
			}},
			wantErr: idl.ErrUnresolved,
		},
		{
			name: "duplicate name",
			doc: idl.Document{
				Structs: []idl.StructDoc{{Name: "X"}},
				Unions:  []idl.UnionDoc{{Name: "X", Discriminant: "long"}},
			},
		},
		{
			name: "unscoped operation",
			doc:  idl.Document{Operations: []idl.OperationDoc{{Name: "op"}}},
		},
		{
			name: "raises a struct",
			doc: idl.Document{
				Structs:    []idl.StructDoc{{Name: "I::S"}},
				Operations: []idl.OperationDoc{{Name: "I::op", Raises: []string{"S"}}},
			},
		},
		{
			name: "bad direction",
			doc: idl.Document{Operations: []idl.OperationDoc{
				{Name: "I::op", Params: []idl.ParamDoc{{Name: "p", Direction: "sideways", Type: "long"}}},
			}},
		},
		{
			name: "case without labels",
			doc: idl.Document{Unions: []idl.UnionDoc{
				{Name: "U", Discriminant: "long", Cases: []idl.CaseDoc{{Type: "long", Declarator: "x"}}},
			}},
		},
		{
			name: "attribute without declarators",
			doc:  idl.Document{Attributes: []idl.AttributeDoc{{Scope: "I", Type: "long"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := idl.Build(&tt.doc)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, _, err := idl.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
