package dissector

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Alia5/giopgen/internal/codegen/common"
	"github.com/Alia5/giopgen/internal/codegen/meta"
	"github.com/Alia5/giopgen/internal/idl"
)

// discriminant is the storage a decoded union discriminant is read into and
// the canonical type it is compared as.
type discriminant struct {
	Var  string
	Wide bool // compared as gint64
}

var discriminants = map[idl.Kind]discriminant{
	idl.KindEnum:      {Var: "u_octet4"},
	idl.KindLong:      {Var: "s_octet4"},
	idl.KindShort:     {Var: "s_octet2"},
	idl.KindBoolean:   {Var: "u_octet1"},
	idl.KindChar:      {Var: "u_octet1"},
	idl.KindULong:     {Var: "u_octet4", Wide: true},
	idl.KindUShort:    {Var: "u_octet2"},
	idl.KindLongLong:  {Var: "s_octet8", Wide: true},
	idl.KindULongLong: {Var: "u_octet8", Wide: true},
}

type saveData struct {
	Name  string
	CType string
	Var   string
	From  string
}

type compareData struct {
	Name  string
	Value string
}

func (g *generator) genUnionHelper(un *idl.Union) error {
	r := routineSpec{
		Routine: unionRoutine(un),
		Label:   "Union",
		RepoID:  un.RepoID,
		Entity:  un.ScopedName(),
		Kind:    meta.RoutineUnion,
	}
	return g.routine(r, func() error {
		g.st.Out(tmplEndianess, nil)
		g.st.Out(tmplUnionStart, un.RepoID)
		if err := g.genUnionBody(un); err != nil {
			return err
		}
		g.st.Out(tmplUnionEnd, un.RepoID)
		return nil
	})
}

// genUnionBody decodes the discriminant, saves it in canonical form and
// emits one guarded block per label in declaration order. A matching block
// returns; a default block runs whenever control reaches it.
func (g *generator) genUnionBody(un *idl.Union) error {
	name := un.Identifier()
	base, err := idl.Unalias(un.Discriminant)
	if err != nil {
		return err
	}
	disc, ok := discriminants[base.Kind()]
	if !ok {
		g.warn(name, base.Kind(), fmt.Sprintf("Unsupported union discriminant kind = %d", int(base.Kind())))
		return nil
	}

	if err := g.decode(un.Discriminant, name); err != nil {
		return err
	}
	enum, _ := base.(*idl.Enum)
	if enum != nil {
		g.st.Out(tmplUnionDiscriminant, enum.RepoID)
	}
	save := saveData{Name: name, CType: "gint32", Var: disc.Var, From: base.Kind().String()}
	if disc.Wide {
		save.CType = "gint64"
		g.add(declWideDisc(name))
	} else {
		g.add(declDisc(name))
	}
	g.st.Out(tmplSaveDiscriminant, save)

	for _, c := range un.Cases {
		binding := name + "_" + c.Declarator.Name
		for _, l := range c.Labels {
			if l.IsDefault() {
				g.st.Out(tmplLabelDefaultStart, nil)
				if err := g.member(c.Type, c.Declarator, binding); err != nil {
					return err
				}
				g.st.Out(tmplLabelDefaultEnd, nil)
				continue
			}
			value, err := labelValue(l, enum, disc.Wide)
			if err != nil {
				return fmt.Errorf("union %s: %w", un.ScopedName(), err)
			}
			g.st.Out(tmplLabelCompareStart, compareData{Name: name, Value: value})
			g.st.Inc()
			if err := g.member(c.Type, c.Declarator, binding); err != nil {
				return err
			}
			g.st.Dec()
			g.st.Out(tmplLabelCompareEnd, nil)
		}
	}
	return nil
}

// labelValue renders a non-default label as the C expression it is
// compared against. Enumerators compare by ordinal.
func labelValue(l idl.Label, enum *idl.Enum, wide bool) (string, error) {
	switch l.Kind {
	case idl.LabelEnum:
		if enum == nil {
			return "", fmt.Errorf("enumerator label %s on a non-enum discriminant", l.Enumerator)
		}
		n, ok := enum.Ordinal(l.Enumerator)
		if !ok {
			return "", fmt.Errorf("%w: enumerator %s of %s", idl.ErrUnresolved, l.Enumerator, enum.ScopedName())
		}
		return strconv.Itoa(n), nil
	case idl.LabelChar:
		return common.CharLiteral(l.Char), nil
	case idl.LabelInt:
		if l.Unsigned {
			return "(gint64) " + strconv.FormatUint(uint64(l.Int), 10) + "ULL", nil
		}
		s := strconv.FormatInt(l.Int, 10)
		if wide && (l.Int > math.MaxInt32 || l.Int < math.MinInt32) {
			s += "LL"
		}
		return s, nil
	default:
		return "", fmt.Errorf("unexpected label kind %d", l.Kind)
	}
}
