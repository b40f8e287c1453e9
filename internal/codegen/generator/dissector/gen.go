// Package dissector generates a GIOP sub-dissector in C from a typed tree.
//
// Generation runs the same traversal twice. The first run writes to a
// discarded sink and records, per routine, the scratch declarations its body
// registers. The second run writes the real artifact and opens every routine
// with the declarations recorded for it.
package dissector

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Alia5/giopgen/internal/codegen/common"
	"github.com/Alia5/giopgen/internal/codegen/emit"
	"github.com/Alia5/giopgen/internal/codegen/meta"
	"github.com/Alia5/giopgen/internal/idl"
)

// DefaultIndent is the indentation width used when the options leave it 0.
const DefaultIndent = 4

type generator struct {
	logger *slog.Logger
	tree   *idl.Tree
	opts   meta.Options

	st    *emit.Stream
	decls *emit.Table

	current    string
	exceptions []*idl.Exception
	raised     map[*idl.Exception]bool
	inlining   map[*idl.Exception]bool
	dispatch   dispatchTables

	routines    []meta.Routine
	diagnostics []meta.Diagnostic
}

// Generate writes the complete dissector source for md to w. Nothing is
// written when a fatal error is met while recording declarations.
func Generate(logger *slog.Logger, w io.Writer, md *meta.Metadata) (*meta.Result, error) {
	if md == nil || md.Tree == nil {
		return nil, errors.New("no tree to generate from")
	}
	opts := md.Options
	if !common.IsCIdentifier(opts.DissectorName) {
		return nil, fmt.Errorf("dissector name %q is not a valid C identifier", opts.DissectorName)
	}
	if opts.ProtocolName == "" {
		return nil, errors.New("protocol name is required")
	}
	if opts.Indent <= 0 {
		opts.Indent = DefaultIndent
	}
	if opts.Version == "" {
		v, err := common.GetVersion()
		if err != nil {
			return nil, fmt.Errorf("get version: %w", err)
		}
		opts.Version = v
	}

	g := &generator{
		logger:     logger,
		tree:       md.Tree,
		opts:       opts,
		decls:      emit.NewTable(),
		exceptions: md.Tree.ExceptionList(),
		raised:     make(map[*idl.Exception]bool),
		inlining:   make(map[*idl.Exception]bool),
	}
	for _, ex := range g.exceptions {
		g.raised[ex] = ex.HasMembers()
	}
	g.dispatch = buildDispatch(md.Tree, g.exceptions)

	g.st = emit.NewStream(io.Discard, opts.Indent)
	if err := g.record(); err != nil {
		return nil, fmt.Errorf("record declarations: %w", err)
	}
	if err := g.decls.Seal(); err != nil {
		return nil, err
	}
	logger.Debug("Recorded scratch declarations", "routines", len(g.decls.Identities()))

	if err := common.WriteLicenseHeader(w, opts.DissectorName, opts.Version, opts.Digest); err != nil {
		return nil, err
	}
	g.st = emit.NewStream(w, opts.Indent)
	if err := g.artifact(); err != nil {
		return nil, fmt.Errorf("emit dissector: %w", err)
	}
	if err := g.st.Err(); err != nil {
		return nil, fmt.Errorf("write dissector: %w", err)
	}

	return &meta.Result{
		Target:      Target,
		Dissector:   opts.DissectorName,
		Version:     opts.Version,
		Digest:      opts.Digest,
		Routines:    g.routines,
		Diagnostics: g.diagnostics,
	}, nil
}

// Target is the registry name of this backend.
const Target = "giop"

// record is the first pass. Its output is discarded; only the declaration
// table it fills is kept.
func (g *generator) record() error {
	if err := g.genHelpers(); err != nil {
		return err
	}
	if err := g.genExceptionHelpers(); err != nil {
		return err
	}
	return g.genAttributeHelpers()
}

// artifact is the second pass: the whole source file in output order.
func (g *generator) artifact() error {
	g.st.Out(tmplIncludes, common.PluginVersion(g.opts.Version))
	g.genDeclares()
	g.st.Out(tmplProtocol, g.opts.DissectorName)
	g.genOpList()
	g.genExList()
	g.genAtList()
	g.genEnList()

	if err := g.genExceptionHelpers(); err != nil {
		return err
	}
	g.genExceptionDelegator()
	if err := g.genAttributeHelpers(); err != nil {
		return err
	}
	if err := g.genHelpers(); err != nil {
		return err
	}

	g.genMainEntry()
	g.genRegistration()
	return g.st.Err()
}

// routineSpec identifies one generated routine. Routine doubles as the
// declaration table identity.
type routineSpec struct {
	Routine string
	Label   string
	RepoID  string
	Entity  string
	Kind    meta.RoutineKind
}

// routine emits one decoding routine: the signature, the declarations
// recorded for it, then body.
func (g *generator) routine(r routineSpec, body func() error) error {
	decls, err := g.decls.Enter(r.Routine)
	if err != nil {
		return err
	}
	g.current = r.Routine

	g.st.Out(tmplRoutineStart, r)
	g.st.Inc()
	g.st.Out(tmplVarsStart, nil)
	for _, d := range decls {
		g.st.Text(d)
	}
	g.st.Out(tmplVarsEnd, nil)
	if err := body(); err != nil {
		return fmt.Errorf("%s: %w", r.Entity, err)
	}
	g.st.Dec()
	g.st.Out(tmplRoutineEnd, nil)

	if err := g.decls.Leave(); err != nil {
		return err
	}
	g.current = ""
	if !g.decls.Recording() {
		g.routines = append(g.routines, meta.Routine{
			Name:         r.Routine,
			Entity:       r.Entity,
			Kind:         r.Kind,
			Declarations: decls,
		})
		g.logger.Debug("Generated routine", "routine", r.Routine, "declarations", len(decls))
	}
	return g.st.Err()
}

// add registers a scratch declaration for the routine being generated.
func (g *generator) add(decl string) { g.decls.Add(decl) }

// warn emits a visible marker and, on the emitting pass, records it.
func (g *generator) warn(binding string, kind idl.Kind, message string) {
	g.st.Out(tmplWarning, message)
	if g.decls.Recording() {
		return
	}
	g.diagnostics = append(g.diagnostics, meta.Diagnostic{
		Routine: g.current,
		Binding: binding,
		Kind:    int(kind),
		Message: message,
	})
	g.logger.Warn("Emitted diagnostic marker", "routine", g.current, "binding", binding, "kind", kind.String(), "message", message)
}
