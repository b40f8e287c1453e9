package dissector

import (
	"fmt"

	"github.com/Alia5/giopgen/internal/codegen/common"
	"github.com/Alia5/giopgen/internal/idl"
)

// scalar describes how one fixed-size primitive is read and shown.
type scalar struct {
	Fn      string // get_CDR_<Fn>
	Var     string
	Decl    string
	Format  string
	Aligned bool // takes endianness and alignment boundary
}

var scalars = map[idl.Kind]scalar{
	idl.KindShort:     {Fn: "short", Var: "s_octet2", Decl: declSOctet2, Format: "%i", Aligned: true},
	idl.KindLong:      {Fn: "long", Var: "s_octet4", Decl: declSOctet4, Format: "%i", Aligned: true},
	idl.KindUShort:    {Fn: "ushort", Var: "u_octet2", Decl: declUOctet2, Format: "%u", Aligned: true},
	idl.KindULong:     {Fn: "ulong", Var: "u_octet4", Decl: declUOctet4, Format: "%u", Aligned: true},
	idl.KindLongLong:  {Fn: "long_long", Var: "s_octet8", Decl: declSOctet8, Format: `%" G_GINT64_MODIFIER "d`, Aligned: true},
	idl.KindULongLong: {Fn: "ulong_long", Var: "u_octet8", Decl: declUOctet8, Format: `%" G_GINT64_MODIFIER "u`, Aligned: true},
	idl.KindFloat:     {Fn: "float", Var: "my_float", Decl: declFloat, Format: "%.6e", Aligned: true},
	idl.KindDouble:    {Fn: "double", Var: "my_double", Decl: declDouble, Format: "%.15e", Aligned: true},
	idl.KindBoolean:   {Fn: "boolean", Var: "u_octet1", Decl: declUOctet1, Format: "%u"},
	idl.KindChar:      {Fn: "char", Var: "u_octet1", Decl: declUOctet1, Format: "%u"},
	idl.KindOctet:     {Fn: "octet", Var: "u_octet1", Decl: declUOctet1, Format: "%u"},
}

type scalarData struct {
	Name    string
	Var     string
	Fn      string
	Format  string
	Size    int
	Aligned bool
}

type nameData struct {
	Name string
	Size int
}

type stringData struct {
	Name string
	Fn   string
	Wide bool
}

type fixedData struct {
	Name   string
	Digits int
	Scale  int
	Length int
}

type enumData struct {
	Name  string
	Table string
}

type loopData struct {
	Name  string
	Count int
}

type callData struct {
	Label   string
	Name    string
	Routine string
}

// decode emits the statements that decode one value of typ, labelled name
// in the display tree. name also keys the loop variables a sequence or
// array registers, so sibling values must use distinct names.
func (g *generator) decode(typ idl.Type, name string) error {
	base, err := idl.Unalias(typ)
	if err != nil {
		return err
	}
	switch t := base.(type) {
	case *idl.Basic:
		g.decodeBasic(t, name)
	case *idl.Fixed:
		g.st.Out(tmplFixed, fixedData{Name: name, Digits: t.Digits, Scale: t.Scale, Length: common.FixedLength(t.Digits)})
		g.add(declSeq)
	case *idl.Enum:
		g.st.Out(tmplEnum, enumData{Name: name, Table: common.Namespace(t.Path)})
		g.add(declUOctet4)
	case *idl.Struct:
		g.st.Out(tmplCall, callData{Label: "struct", Name: common.Namespace(t.Path), Routine: structRoutine(t)})
	case *idl.Union:
		g.st.Out(tmplCall, callData{Label: "union", Name: common.Namespace(t.Path), Routine: unionRoutine(t)})
	case *idl.Exception:
		return g.decodeException(t, name)
	case *idl.Sequence:
		return g.decodeSequence(t, name)
	case *idl.Array:
		return g.loop(name, common.ElementCount(t.Dims), t.Elem, elemBinding(t.Elem, name))
	case *idl.Typedef:
		// Unalias only stops at a typedef that declares array dimensions.
		return g.loop(name, common.ElementCount(t.Sizes), t.Target, elemBinding(t.Target, name))
	case *idl.ObjRef:
		g.st.Out(tmplObject, nil)
	case *idl.Opaque:
		g.unknown(name, t.Kind())
	default:
		g.unknown(name, base.Kind())
	}
	return nil
}

func (g *generator) decodeBasic(b *idl.Basic, name string) {
	switch b.K {
	case idl.KindVoid:
		g.st.Out(tmplVoid, nil)
	case idl.KindLongDouble:
		g.st.Out(tmplLongDouble, nameData{Name: name, Size: common.WireSize(b.K)})
	case idl.KindAny:
		g.st.Out(tmplAny, nil)
	case idl.KindTypeCode:
		g.st.Out(tmplTypeCode, nil)
		g.add(declUOctet4)
	case idl.KindString:
		g.st.Out(tmplString, stringData{Name: name, Fn: "string"})
		g.add(declUOctet4)
		g.add(declSeq)
	case idl.KindWString:
		g.st.Out(tmplString, stringData{Name: name, Fn: "wstring", Wide: true})
		g.add(declUOctet4)
		g.add(declSeq)
	case idl.KindWChar:
		g.st.Out(tmplWChar, nameData{Name: name})
		g.add(declSOctet1)
		g.add(declSeq)
	default:
		sc, ok := scalars[b.K]
		if !ok {
			g.unknown(name, b.K)
			return
		}
		g.st.Out(tmplScalar, scalarData{
			Name:    name,
			Var:     sc.Var,
			Fn:      sc.Fn,
			Format:  sc.Format,
			Size:    common.WireSize(b.K),
			Aligned: sc.Aligned,
		})
		g.add(sc.Decl)
	}
}

func (g *generator) decodeSequence(seq *idl.Sequence, name string) error {
	g.st.Out(tmplSequenceStart, nameData{Name: name})
	g.add(declLimit(name))
	g.add(declIndex(name))
	g.st.Inc()
	err := g.decode(seq.Elem, elemBinding(seq.Elem, name))
	g.st.Dec()
	g.st.Out(tmplLoopEnd, nil)
	return err
}

// decodeException handles an exception used as a value type. Raised
// exceptions with members already have a routine; others are walked in
// place.
func (g *generator) decodeException(ex *idl.Exception, name string) error {
	switch {
	case !ex.HasMembers():
		g.st.Out(tmplNoPayload, ex.ScopedName())
		return nil
	case g.raised[ex]:
		g.st.Out(tmplCall, callData{Label: "exception", Name: common.Namespace(ex.Path), Routine: exceptionRoutine(ex)})
		return nil
	case g.inlining[ex]:
		g.warn(name, idl.KindExcept, "Recursive exception "+ex.ScopedName()+" not decoded")
		return nil
	}
	g.inlining[ex] = true
	defer delete(g.inlining, ex)
	return g.members(ex.Identifier(), ex.Members)
}

// loop emits a flattened bounded loop of count iterations indexed by
// i_<index>, decoding elem as binding on every iteration.
func (g *generator) loop(index string, count int, elem idl.Type, binding string) error {
	g.st.Out(tmplArrayStart, loopData{Name: index, Count: count})
	g.add(declIndex(index))
	g.st.Inc()
	err := g.decode(elem, binding)
	g.st.Dec()
	g.st.Out(tmplLoopEnd, nil)
	return err
}

// member decodes one declarator of a struct, exception, union case or
// attribute. Dimensioned declarators are wrapped in a loop indexed by the
// declarator name.
func (g *generator) member(typ idl.Type, d idl.Declarator, binding string) error {
	if len(d.Sizes) == 0 {
		return g.decode(typ, binding)
	}
	if binding == d.Name {
		binding = elemBinding(typ, binding)
	}
	return g.loop(d.Name, common.ElementCount(d.Sizes), typ, binding)
}

// members walks every declarator in order, binding each as
// <prefix>_<declarator>.
func (g *generator) members(prefix string, ms []idl.Member) error {
	for _, m := range ms {
		for _, d := range m.Declarators {
			if err := g.member(m.Type, d, prefix+"_"+d.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *generator) unknown(binding string, k idl.Kind) {
	g.warn(binding, k, fmt.Sprintf("Unknown typecode = %d", int(k)))
}

// elemBinding names the element of a sequence or array bound to name. An
// element that opens a loop of its own gets a composed name so that its
// index and limit variables do not reuse the enclosing loop's.
func elemBinding(elem idl.Type, name string) string {
	if opensLoop(elem) {
		return name + "_elem"
	}
	return name
}

func opensLoop(t idl.Type) bool {
	base, err := idl.Unalias(t)
	if err != nil {
		return false
	}
	switch base.(type) {
	case *idl.Sequence, *idl.Array, *idl.Typedef:
		return true
	}
	return false
}
