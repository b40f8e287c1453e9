package dissector_test

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/giopgen/internal/codegen/emit"
	"github.com/Alia5/giopgen/internal/codegen/generator/dissector"
	"github.com/Alia5/giopgen/internal/codegen/meta"
	"github.com/Alia5/giopgen/internal/idl"
)

func buildTree(t *testing.T, doc string) *idl.Tree {
	t.Helper()
	d, err := idl.Decode([]byte(doc), "yaml")
	require.NoError(t, err)
	tree, err := idl.Build(d)
	require.NoError(t, err)
	return tree
}

func generate(t *testing.T, doc string) (string, *meta.Result) {
	t.Helper()
	var out bytes.Buffer
	res, err := dissector.Generate(slog.New(slog.NewTextHandler(io.Discard, nil)), &out, &meta.Metadata{
		Tree: buildTree(t, doc),
		Options: meta.Options{
			ProtocolName:  "TUX",
			DissectorName: "tux",
			Version:       "1.2.3",
			Digest:        "blake2b-256:00",
		},
	})
	require.NoError(t, err)
	return out.String(), res
}

func routine(t *testing.T, res *meta.Result, name string) meta.Routine {
	t.Helper()
	for _, r := range res.Routines {
		if r.Name == name {
			return r
		}
	}
	require.Failf(t, "routine not generated", "%s", name)
	return meta.Routine{}
}

func routineNames(res *meta.Result) []string {
	names := make([]string, 0, len(res.Routines))
	for _, r := range res.Routines {
		names = append(names, r.Name)
	}
	return names
}

// body returns the generated text of one routine, up to its closing brace.
func body(t *testing.T, src, name string) string {
	t.Helper()
	start := strings.Index(src, "static void "+name+"(tvbuff_t *tvb, packet_info *pinfo, proto_tree *tree, int *offset, MessageHeader *header, gchar *operation) {")
	require.GreaterOrEqual(t, start, 0, "no body for %s", name)
	end := strings.Index(src[start:], "\n}\n")
	require.Greater(t, end, 0)
	return src[start : start+end]
}

const addDoc = `
interfaces: [Tux::Echo]
operations:
  - name: Tux::Echo::add
    returns: long
    params:
      - {name: a, type: long}
      - {name: b, type: long}
`

func TestAddSharesOneSlot(t *testing.T) {
	src, res := generate(t, addDoc)

	r := routine(t, res, "decode_Tux_Echo_add")
	assert.Equal(t, []string{"gint32    s_octet4;"}, r.Declarations)
	assert.Equal(t, meta.RoutineOperation, r.Kind)
	assert.Equal(t, "Tux::Echo::add", r.Entity)

	b := body(t, src, "decode_Tux_Echo_add")
	assert.Equal(t, 1, strings.Count(b, "s_octet4;"))
	assert.Equal(t, 3, strings.Count(b, "s_octet4 = get_CDR_long(tvb,offset,stream_is_big_endian, boundary);"))
	assert.Contains(t, b, `"a = %i"`)
	assert.Contains(t, b, `"b = %i"`)
	assert.Contains(t, b, `"Operation_Return_Value = %i"`)
	assert.Less(t, strings.Index(b, `"b = %i"`), strings.Index(b, "case Reply:"))
	assert.Greater(t, strings.Index(b, `"Operation_Return_Value = %i"`), strings.Index(b, "case NO_EXCEPTION:"))
}

func TestArtifactLayout(t *testing.T) {
	src, res := generate(t, addDoc)

	sections := []string{
		"/* packet-tux.c",
		"Input digest: blake2b-256:00",
		"GNU General Public License",
		`G_MODULE_EXPORT const gchar version[] = "1.2.3";`,
		"static int proto_tux = -1;",
		`static const char Tux_Echo_add_op[] = "add" ;`,
		"static void decode_Tux_Echo_add(",
		"static gboolean dissect_tux(",
		"if (!strcmp(operation, Tux_Echo_add_op )) {",
		"void proto_register_giop_tux(void) {",
		`register_giop_user_module(dissect_tux, "TUX", "Tux/Echo", proto_tux );`,
		`register_giop_user(dissect_tux, "TUX" ,proto_tux);`,
		"G_MODULE_EXPORT void\nplugin_init(",
	}
	last := -1
	for _, s := range sections {
		i := strings.Index(src, s)
		require.GreaterOrEqual(t, i, 0, "missing %q", s)
		assert.Greater(t, i, last, "%q out of order", s)
		last = i
	}

	assert.Equal(t, "giop", res.Target)
	assert.Equal(t, "tux", res.Dissector)
	assert.Empty(t, res.Diagnostics)
}

const tuxDoc = `
enums:
  - name: Tux::Color
    enumerators: [RED, GREEN, BLUE]
typedefs:
  - name: Tux::Shade
    type: Color
  - name: Tux::Spot
    type: Point
  - name: Tux::Count
    type: unsigned long
structs:
  - name: Tux::Point
    members:
      - type: long
        declarators: [x, "y"]
      - type: Color
        declarators: [color]
      - type: short
        declarators: ["m[2][2]"]
  - name: Tux::Node
    members:
      - type: string
        declarators: [label]
      - type: sequence<Node>
        declarators: [children]
      - type: Spot
        declarators: [at]
unions:
  - name: Tux::Shape
    discriminant: Shade
    cases:
      - labels: [RED]
        type: long
        declarator: radius
      - labels: [GREEN, "Tux::BLUE"]
        type: Point
        declarator: corner
      - labels: [default]
        type: string
        declarator: label
exceptions:
  - name: Tux::BadValue
    members:
      - type: string
        declarators: [reason]
  - name: Tux::Busy
interfaces: [Tux::Echo]
operations:
  - name: Tux::Echo::add
    returns: long
    params:
      - {name: a, direction: in, type: long}
      - {name: b, direction: in, type: long}
    raises: [BadValue, Busy]
  - name: Tux::Echo::move
    returns: Count
    params:
      - {name: p, direction: inout, type: Point}
      - {name: peer, direction: out, type: Echo}
    raises: [BadValue]
  - name: Tux::Echo::ping
    oneway: true
attributes:
  - scope: Tux::Echo
    type: Count
    readonly: true
    declarators: [width]
  - scope: Tux::Echo
    type: Shape
    declarators: [shape]
`

func TestRoutineOrder(t *testing.T) {
	_, res := generate(t, tuxDoc)

	assert.Equal(t, []string{
		"decode_ex_Tux_BadValue",
		"decode_get_Tux_Echo_width_at",
		"decode_get_Tux_Echo_shape_at",
		"decode_set_Tux_Echo_shape_at",
		"decode_Tux_Echo_add",
		"decode_Tux_Echo_move",
		"decode_Tux_Echo_ping",
		"decode_Tux_Point_st",
		"decode_Tux_Node_st",
		"decode_Tux_Shape_un",
	}, routineNames(res))
}

func TestStructMembers(t *testing.T) {
	src, res := generate(t, tuxDoc)

	assert.Equal(t, []string{
		"gint32    s_octet4;",
		"guint32   u_octet4;",
		"guint32   i_m;",
		"gint16    s_octet2;",
	}, routine(t, res, "decode_Tux_Point_st").Declarations)

	b := body(t, src, "decode_Tux_Point_st")
	x := strings.Index(b, `"Point_x = %i"`)
	y := strings.Index(b, `"Point_y = %i"`)
	c := strings.Index(b, `"Point_color = %u (%s)"`)
	m := strings.Index(b, "/* Array: m[ 4]  */")
	require.True(t, x >= 0 && y >= 0 && c >= 0 && m >= 0, b)
	assert.True(t, x < y && y < c && c < m)
	assert.Contains(t, b, "val_to_str(u_octet4,Tux_Color,")
	assert.Contains(t, b, "for (i_m=0; i_m < 4; i_m++) {")
}

func TestRecursiveStructCallsRoutine(t *testing.T) {
	src, res := generate(t, tuxDoc)

	assert.Equal(t, []string{
		"guint32   u_octet4;",
		"gchar   *seq = NULL;",
		"guint32   u_octet4_loop_Node_children;",
		"guint32   i_Node_children;",
	}, routine(t, res, "decode_Tux_Node_st").Declarations)

	b := body(t, src, "decode_Tux_Node_st")
	assert.Equal(t, 1, strings.Count(b, "decode_Tux_Node_st(tvb, pinfo, tree, offset, header, operation);"))
	// A struct reached through a typedef calls the underlying struct's routine.
	assert.Contains(t, b, "decode_Tux_Point_st(tvb, pinfo, tree, offset, header, operation);")
	assert.NotContains(t, b, "Spot_st")

	// Prototypes precede every body.
	proto := strings.Index(src, "static void decode_Tux_Node_st(tvbuff_t *tvb, packet_info *pinfo, proto_tree *tree, int *offset, MessageHeader *header, gchar *operation);")
	require.GreaterOrEqual(t, proto, 0)
	assert.Less(t, proto, strings.Index(src, "static void decode_ex_Tux_BadValue("))
}

func TestUnionCases(t *testing.T) {
	src, res := generate(t, tuxDoc)

	assert.Equal(t, []string{
		"guint32   u_octet4;",
		"gint32    disc_s_Shape;",
		"gint32    s_octet4;",
		"gchar   *seq = NULL;",
	}, routine(t, res, "decode_Tux_Shape_un").Declarations)

	b := body(t, src, "decode_Tux_Shape_un")
	// The discriminant is decoded, labelled, then saved.
	decoded := strings.Index(b, "u_octet4 = get_CDR_enum(")
	label := strings.Index(b, "IDL Union - Discriminant - IDL:Tux/Color:1.0")
	saved := strings.Index(b, "disc_s_Shape = (gint32) u_octet4;")
	require.True(t, decoded >= 0 && label >= 0 && saved >= 0, b)
	assert.True(t, decoded < label && label < saved)
	red := strings.Index(b, "if (disc_s_Shape == 0) {")
	green := strings.Index(b, "if (disc_s_Shape == 1) {")
	blue := strings.Index(b, "if (disc_s_Shape == 2) {")
	def := strings.Index(b, "/* Default Union Case Start */")
	require.True(t, red >= 0 && green >= 0 && blue >= 0 && def >= 0, b)
	assert.True(t, red < green && green < blue && blue < def)
	assert.Equal(t, 3, strings.Count(b, "return;     /* End Compare for this discriminant type */"))
	assert.NotContains(t, b[def:], "return;")
	assert.Contains(t, b[red:green], `"Shape_radius = %i"`)
	assert.Equal(t, 2, strings.Count(b, "decode_Tux_Point_st(tvb, pinfo, tree, offset, header, operation);"))
	assert.Contains(t, b[def:], `"Shape_label = %s"`)
}

func TestLiteralUnionLabels(t *testing.T) {
	src, _ := generate(t, `
unions:
  - name: Tux::Pick
    discriminant: char
    cases:
      - labels: ["'\\n'", "'a'"]
        type: long
        declarator: x
  - name: Tux::Big
    discriminant: long long
    cases:
      - labels: ["1", "0x100000000"]
        type: short
        declarator: y
      - labels: [default]
        type: octet
        declarator: z
  - name: Tux::Mask
    discriminant: unsigned long
    cases:
      - labels: ["4294967295", "7"]
        type: short
        declarator: m
  - name: Tux::Huge
    discriminant: unsigned long long
    cases:
      - labels: ["18446744073709551615"]
        type: short
        declarator: h
`)

	pick := body(t, src, "decode_Tux_Pick_un")
	assert.Contains(t, pick, "disc_s_Pick = (gint32) u_octet1;")
	assert.Contains(t, pick, `if (disc_s_Pick == '\n') {`)
	assert.Contains(t, pick, "if (disc_s_Pick == 'a') {")

	big := body(t, src, "decode_Tux_Big_un")
	assert.Contains(t, big, "disc_s_Big = (gint64) s_octet8;")
	assert.Contains(t, big, "if (disc_s_Big == 1) {")
	assert.Contains(t, big, "if (disc_s_Big == 4294967296LL) {")

	mask := body(t, src, "decode_Tux_Mask_un")
	assert.Contains(t, mask, "disc_s_Mask = (gint64) u_octet4;")
	assert.Contains(t, mask, "if (disc_s_Mask == 4294967295LL) {")
	assert.Contains(t, mask, "if (disc_s_Mask == 7) {")

	huge := body(t, src, "decode_Tux_Huge_un")
	assert.Contains(t, huge, "disc_s_Huge = (gint64) u_octet8;")
	assert.Contains(t, huge, "if (disc_s_Huge == (gint64) 18446744073709551615ULL) {")
}

func TestExceptions(t *testing.T) {
	src, res := generate(t, tuxDoc)

	assert.Equal(t, []string{"guint32   u_octet4;", "gchar   *seq = NULL;"},
		routine(t, res, "decode_ex_Tux_BadValue").Declarations)
	assert.NotContains(t, routineNames(res), "decode_ex_Tux_Busy")

	assert.Contains(t, src, `static const char user_exception_Tux_BadValue[] = "IDL:Tux/BadValue:1.0" ;`)
	assert.NotContains(t, src, "user_exception_Tux_Busy")
	assert.Equal(t, 1, strings.Count(src, "if (!strcmp(header->exception_id, user_exception_Tux_BadValue )) {"))

	add := body(t, src, "decode_Tux_Echo_add")
	assert.Contains(t, add, "/* Raises IDL:Tux/BadValue:1.0 (decoded by decode_user_exception) */")
	assert.Contains(t, add, "/* Raises IDL:Tux/Busy:1.0 (decoded by decode_user_exception) */")
}

func TestOperationReply(t *testing.T) {
	src, res := generate(t, tuxDoc)

	move := body(t, src, "decode_Tux_Echo_move")
	reply := strings.Index(move, "case NO_EXCEPTION:")
	require.GreaterOrEqual(t, reply, 0)
	// Typedef returns are labelled with the typedef name.
	assert.Contains(t, move[reply:], `"Count = %u"`)
	// inout travels both ways, out only in the reply.
	assert.Equal(t, 2, strings.Count(move, "decode_Tux_Point_st("))
	assert.Greater(t, strings.Index(move, "get_CDR_object("), reply)
	assert.Equal(t, []string{"guint32   u_octet4;"}, routine(t, res, "decode_Tux_Echo_move").Declarations)

	ping := body(t, src, "decode_Tux_Echo_ping")
	assert.Contains(t, ping, "/* Oneway operation, no reply expected */")
	assert.Empty(t, routine(t, res, "decode_Tux_Echo_ping").Declarations)
}

func TestAttributes(t *testing.T) {
	src, res := generate(t, tuxDoc)

	assert.Contains(t, src, `static const char get_Tux_Echo_width_at[] = "_get_width" ;`)
	assert.NotContains(t, src, "set_Tux_Echo_width_at")
	assert.Contains(t, src, `static const char set_Tux_Echo_shape_at[] = "_set_shape" ;`)

	assert.Contains(t, src, "if (!strcmp(operation, get_Tux_Echo_width_at ) && (header->message_type == Reply) && (header->rep_status == NO_EXCEPTION) ) {")
	assert.Contains(t, src, "if (!strcmp(operation, set_Tux_Echo_shape_at ) && (header->message_type == Request) ) {")

	assert.Equal(t, []string{"guint32   u_octet4;"}, routine(t, res, "decode_get_Tux_Echo_width_at").Declarations)
	assert.Equal(t, meta.RoutineSetter, routine(t, res, "decode_set_Tux_Echo_shape_at").Kind)
	assert.Contains(t, body(t, src, "decode_get_Tux_Echo_width_at"), `"width = %u"`)

	// Operations are matched before attributes.
	assert.Less(t, strings.Index(src, "Tux_Echo_add_op )) {"), strings.Index(src, "get_Tux_Echo_width_at ) &&"))
}

func TestNestedSequenceElement(t *testing.T) {
	src, res := generate(t, `
structs:
  - name: Tux::Grid
    members:
      - type: sequence<sequence<long>>
        declarators: [rows]
`)

	assert.Equal(t, []string{
		"guint32   u_octet4_loop_Grid_rows;",
		"guint32   i_Grid_rows;",
		"guint32   u_octet4_loop_Grid_rows_elem;",
		"guint32   i_Grid_rows_elem;",
		"gint32    s_octet4;",
	}, routine(t, res, "decode_Tux_Grid_st").Declarations)
	assert.Contains(t, body(t, src, "decode_Tux_Grid_st"), `"Grid_rows_elem = %i"`)
}

func TestUnknownKindLeavesMarker(t *testing.T) {
	src, res := generate(t, `
natives: [Tux::Handle]
structs:
  - name: Tux::Holder
    members:
      - type: Handle
        declarators: [h]
      - type: long
        declarators: [n]
`)

	b := body(t, src, "decode_Tux_Holder_st")
	assert.Contains(t, b, "/* WARNING - Unknown typecode = 31 */")
	assert.Contains(t, b, `"Holder_n = %i"`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, meta.Diagnostic{
		Routine: "decode_Tux_Holder_st",
		Binding: "Holder_h",
		Kind:    int(idl.KindNative),
		Message: "Unknown typecode = 31",
	}, res.Diagnostics[0])
}

func TestUnsupportedDiscriminant(t *testing.T) {
	src, res := generate(t, `
unions:
  - name: Tux::Odd
    discriminant: octet
    cases:
      - labels: ["1"]
        type: long
        declarator: x
`)

	b := body(t, src, "decode_Tux_Odd_un")
	assert.Contains(t, b, "/* WARNING - Unsupported union discriminant kind = 10 */")
	assert.NotContains(t, b, "disc_s_Odd")
	assert.Empty(t, routine(t, res, "decode_Tux_Odd_un").Declarations)
	require.Len(t, res.Diagnostics, 1)
}

func TestGenerateErrors(t *testing.T) {
	tree := buildTree(t, addDoc)
	clash := buildTree(t, `
interfaces: [A::B_C, A_B::C]
operations:
  - name: A::B_C::d
  - name: A_B::C::d
`)

	tests := []struct {
		name string
		md   *meta.Metadata
		is   error
	}{
		{name: "no tree", md: &meta.Metadata{}},
		{name: "bad dissector name", md: &meta.Metadata{Tree: tree, Options: meta.Options{ProtocolName: "TUX", DissectorName: "tux-echo"}}},
		{name: "no protocol", md: &meta.Metadata{Tree: tree, Options: meta.Options{DissectorName: "tux"}}},
		{name: "routine clash", md: &meta.Metadata{Tree: clash, Options: meta.Options{ProtocolName: "TUX", DissectorName: "tux", Version: "1.0.0"}}, is: emit.ErrDuplicateRoutine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			res, err := dissector.Generate(slog.New(slog.NewTextHandler(io.Discard, nil)), &out, tt.md)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.Nil(t, res)
			assert.Zero(t, out.Len(), "nothing is written on a fatal error")
		})
	}
}
