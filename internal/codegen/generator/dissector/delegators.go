package dissector

import (
	"text/template"

	"github.com/Alia5/giopgen/internal/codegen/common"
	"github.com/Alia5/giopgen/internal/idl"
)

// dispatchEntry is one guarded call of a delegator chain: when the incoming
// name equals the string stored in Constant, Routine is invoked and the
// message is handled. Entries are tried in slice order; the first match wins.
type dispatchEntry struct {
	Constant string // C identifier of the name constant
	Wire     string // value of the constant
	Routine  string
	Comment  string

	guard *template.Template
}

// dispatchTables are built once per run from the tree and shared by the
// constant sections and the delegators.
type dispatchTables struct {
	exceptions []dispatchEntry
	operations []dispatchEntry
	accessors  []dispatchEntry
}

func buildDispatch(tree *idl.Tree, exceptions []*idl.Exception) dispatchTables {
	var d dispatchTables
	for _, ex := range exceptions {
		if !ex.HasMembers() {
			continue
		}
		d.exceptions = append(d.exceptions, dispatchEntry{
			Constant: "user_exception_" + common.Namespace(ex.Path),
			Wire:     ex.RepoID,
			Routine:  exceptionRoutine(ex),
			Comment:  ex.ScopedName(),
			guard:    tmplExceptionEntry,
		})
	}
	for _, op := range tree.Operations {
		d.operations = append(d.operations, dispatchEntry{
			Constant: common.Namespace(op.Path) + "_op",
			Wire:     op.Identifier(),
			Routine:  operationRoutine(op),
			guard:    tmplOperationEntry,
		})
	}
	for _, at := range tree.Attributes {
		for _, decl := range at.Declarators {
			acc := at.Accessor(decl)
			d.accessors = append(d.accessors, accessorEntry(acc, "get", tmplGetterEntry))
			if !at.ReadOnly {
				d.accessors = append(d.accessors, accessorEntry(acc, "set", tmplSetterEntry))
			}
		}
	}
	return d
}

func accessorEntry(acc idl.Scoped, direction string, guard *template.Template) dispatchEntry {
	return dispatchEntry{
		Constant: common.AccessorName(direction, acc.Path) + "_at",
		Wire:     "_" + direction + "_" + acc.Identifier(),
		Routine:  accessorRoutine(direction, acc),
		guard:    guard,
	}
}

func (g *generator) chain(entries []dispatchEntry) {
	for _, e := range entries {
		g.st.Out(e.guard, e)
	}
}

type mainData struct {
	Dissector   string
	Protocol    string
	Description string
}

type handoffData struct {
	Dissector string
	Protocol  string
	Interface string
}

func (g *generator) registration() mainData {
	desc := g.opts.Description
	if desc == "" {
		desc = g.opts.ProtocolName
	}
	return mainData{
		Dissector:   g.opts.DissectorName,
		Protocol:    common.CString(g.opts.ProtocolName),
		Description: common.CString(desc),
	}
}

// genExceptionDelegator emits decode_user_exception, which matches the
// reply's exception id against every exception with a payload.
func (g *generator) genExceptionDelegator() {
	g.st.Out(tmplExceptionDelegatorStart, nil)
	g.st.Inc()
	g.chain(g.dispatch.exceptions)
	g.st.Dec()
	g.st.Out(tmplExceptionDelegatorEnd, nil)
}

// genMainEntry emits the dissector entry point: user exceptions first, then
// the operation chain, then the attribute chain.
func (g *generator) genMainEntry() {
	g.st.Out(tmplMainStart, g.registration())
	g.st.Inc()
	g.st.Out(tmplMainSwitchStart, nil)
	g.st.Inc()
	g.chain(g.dispatch.operations)
	g.chain(g.dispatch.accessors)
	g.st.Dec()
	g.st.Out(tmplMainSwitchEnd, nil)
	g.st.Dec()
	g.st.Out(tmplMainEnd, nil)
}

// genRegistration emits protocol registration, the handoff routine and the
// plugin entry points.
func (g *generator) genRegistration() {
	md := g.registration()
	g.st.Out(tmplProtoRegister, md)
	g.st.Out(tmplHandoffStart, md.Dissector)
	g.st.Inc()
	for _, iface := range g.tree.InterfaceList() {
		g.st.Out(tmplHandoffExplicit, handoffData{Dissector: md.Dissector, Protocol: md.Protocol, Interface: iface})
	}
	g.st.Out(tmplHandoffHeuristic, handoffData{Dissector: md.Dissector, Protocol: md.Protocol})
	g.st.Dec()
	g.st.Out(tmplHandoffEnd, nil)
	g.st.Out(tmplPlugin, md)
}
