package dissector

import (
	"github.com/Alia5/giopgen/internal/codegen/common"
	"github.com/Alia5/giopgen/internal/codegen/meta"
	"github.com/Alia5/giopgen/internal/idl"
)

// Routine names. They double as declaration table identities, so each
// embeds the entity category.

func operationRoutine(op *idl.Operation) string {
	return "decode_" + common.Namespace(op.Path)
}

func structRoutine(st *idl.Struct) string {
	return "decode_" + common.Namespace(st.Path) + "_st"
}

func unionRoutine(un *idl.Union) string {
	return "decode_" + common.Namespace(un.Path) + "_un"
}

func exceptionRoutine(ex *idl.Exception) string {
	return "decode_ex_" + common.Namespace(ex.Path)
}

func accessorRoutine(direction string, acc idl.Scoped) string {
	return "decode_" + common.AccessorName(direction, acc.Path) + "_at"
}

// genHelpers emits the operation, struct and union routines, in that order.
func (g *generator) genHelpers() error {
	for _, op := range g.tree.Operations {
		if err := g.genOperation(op); err != nil {
			return err
		}
	}
	for _, st := range g.tree.Structs {
		if err := g.genStructHelper(st); err != nil {
			return err
		}
	}
	for _, un := range g.tree.Unions {
		if err := g.genUnionHelper(un); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) genOperation(op *idl.Operation) error {
	r := routineSpec{
		Routine: operationRoutine(op),
		Label:   "Operation",
		RepoID:  op.RepoID,
		Entity:  op.ScopedName(),
		Kind:    meta.RoutineOperation,
	}
	return g.routine(r, func() error {
		g.st.Out(tmplOperationSwitchStart, nil)
		g.st.Inc()
		for _, p := range op.Params {
			if !p.Dir.IsIn() {
				continue
			}
			if err := g.decode(p.Type, p.Name); err != nil {
				return err
			}
		}
		g.st.Dec()
		g.st.Out(tmplOperationRequestEnd, nil)

		g.st.Inc()
		g.st.Out(tmplRepStatusStart, nil)
		g.st.Inc()
		if err := g.genReply(op); err != nil {
			return err
		}
		g.st.Dec()
		g.st.Out(tmplNoExceptionEnd, nil)
		g.st.Inc()
		for _, ex := range op.Raises {
			g.st.Out(tmplRaises, ex.RepoID)
		}
		g.st.Dec()
		g.st.Out(tmplUserExceptionEnd, nil)
		g.st.Dec()

		g.st.Out(tmplOperationSwitchEnd, nil)
		return nil
	})
}

// genReply decodes the NO_EXCEPTION reply: the return value, then every out
// and inout parameter.
func (g *generator) genReply(op *idl.Operation) error {
	if op.Oneway {
		g.st.Out(tmplOneway, nil)
		return nil
	}
	if op.Return != nil {
		binding := "Operation_Return_Value"
		if td, ok := op.Return.(*idl.Typedef); ok {
			binding = td.Identifier()
		}
		if err := g.decode(op.Return, binding); err != nil {
			return err
		}
	}
	for _, p := range op.Params {
		if !p.Dir.IsOut() {
			continue
		}
		if err := g.decode(p.Type, p.Name); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) genStructHelper(st *idl.Struct) error {
	r := routineSpec{
		Routine: structRoutine(st),
		Label:   "Struct",
		RepoID:  st.RepoID,
		Entity:  st.ScopedName(),
		Kind:    meta.RoutineStruct,
	}
	return g.routine(r, func() error {
		g.st.Out(tmplEndianess, nil)
		return g.members(st.Identifier(), st.Members)
	})
}

// genExceptionHelpers emits one routine per raised exception that carries
// members.
func (g *generator) genExceptionHelpers() error {
	g.st.Out(tmplHelpersStart, "Exception")
	for _, ex := range g.exceptions {
		if !ex.HasMembers() {
			continue
		}
		r := routineSpec{
			Routine: exceptionRoutine(ex),
			Label:   "Exception",
			RepoID:  ex.RepoID,
			Entity:  ex.ScopedName(),
			Kind:    meta.RoutineException,
		}
		err := g.routine(r, func() error {
			g.st.Out(tmplEndianess, nil)
			return g.members(ex.Identifier(), ex.Members)
		})
		if err != nil {
			return err
		}
	}
	g.st.Out(tmplHelpersEnd, "Exception")
	return nil
}

// genAttributeHelpers emits a getter for every attribute declarator and a
// setter unless the attribute is read-only.
func (g *generator) genAttributeHelpers() error {
	g.st.Out(tmplHelpersStart, "Attribute")
	for _, at := range g.tree.Attributes {
		for _, d := range at.Declarators {
			acc := at.Accessor(d)
			if err := g.genAccessor(at, d, acc, "get", meta.RoutineGetter); err != nil {
				return err
			}
			if at.ReadOnly {
				continue
			}
			if err := g.genAccessor(at, d, acc, "set", meta.RoutineSetter); err != nil {
				return err
			}
		}
	}
	g.st.Out(tmplHelpersEnd, "Attribute")
	return nil
}

func (g *generator) genAccessor(at *idl.Attribute, d idl.Declarator, acc idl.Scoped, direction string, kind meta.RoutineKind) error {
	r := routineSpec{
		Routine: accessorRoutine(direction, acc),
		Label:   "Attribute",
		RepoID:  acc.RepoID,
		Entity:  acc.ScopedName(),
		Kind:    kind,
	}
	return g.routine(r, func() error {
		g.st.Out(tmplEndianess, nil)
		return g.member(at.Type, d, d.Name)
	})
}
