package dissector

import (
	"github.com/Alia5/giopgen/internal/codegen/common"
)

type prototypeData struct {
	Label   string
	RepoID  string
	Routine string
}

type valueStringData struct {
	RepoID      string
	Name        string
	Enumerators []string
}

// genDeclares forward declares every struct and union routine so call
// sites never depend on body order.
func (g *generator) genDeclares() {
	if len(g.tree.Structs) > 0 {
		g.st.Out(tmplPrototypesStart, "Struct")
		for _, st := range g.tree.Structs {
			g.st.Out(tmplPrototype, prototypeData{Label: "Struct", RepoID: st.RepoID, Routine: structRoutine(st)})
		}
		g.st.Out(tmplPrototypesEnd, "Struct")
	}
	if len(g.tree.Unions) > 0 {
		g.st.Out(tmplPrototypesStart, "Union")
		for _, un := range g.tree.Unions {
			g.st.Out(tmplPrototype, prototypeData{Label: "Union", RepoID: un.RepoID, Routine: unionRoutine(un)})
		}
		g.st.Out(tmplPrototypesEnd, "Union")
	}
}

func (g *generator) constants(section string, entries []dispatchEntry) {
	g.st.Out(tmplSectionStart, section)
	for _, e := range entries {
		g.st.Out(tmplConstant, e)
	}
	g.st.Out(tmplSectionEnd, section)
}

func (g *generator) genOpList() { g.constants("Operations", g.dispatch.operations) }

// genExList only lists exceptions that have a decoding routine.
func (g *generator) genExList() { g.constants("User Exceptions", g.dispatch.exceptions) }

func (g *generator) genAtList() { g.constants("Attributes", g.dispatch.accessors) }

func (g *generator) genEnList() {
	g.st.Out(tmplSectionStart, "Enums")
	for _, en := range g.tree.Enums {
		g.st.Out(tmplValueString, valueStringData{
			RepoID:      en.RepoID,
			Name:        common.Namespace(en.Path),
			Enumerators: en.Enumerators,
		})
	}
	g.st.Out(tmplSectionEnd, "Enums")
}
