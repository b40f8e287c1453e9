package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/Alia5/giopgen/internal/codegen/common"
	"github.com/Alia5/giopgen/internal/codegen/generator/dissector"
	"github.com/Alia5/giopgen/internal/codegen/meta"
	"github.com/Alia5/giopgen/internal/idl"
)

// ErrUnknownTarget is returned for a target no backend is registered for.
var ErrUnknownTarget = errors.New("unknown target")

type Generator struct {
	logger *slog.Logger
}

// Backend renders one artifact from resolved metadata.
type Backend func(logger *slog.Logger, w io.Writer, md *meta.Metadata) (*meta.Result, error)

var backends = map[string]Backend{
	dissector.Target: dissector.Generate,
}

// Targets lists the registered backends, sorted.
func Targets() []string {
	out := make([]string, 0, len(backends))
	for k := range backends {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Request names an input document and the generation options. Empty
// dissector and protocol names are derived from the input path.
type Request struct {
	Input   string
	Target  string
	Options meta.Options
}

// Output is a rendered artifact. Nothing has been written anywhere yet.
type Output struct {
	Source []byte
	Result *meta.Result
}

func New(logger *slog.Logger) *Generator {
	return &Generator{logger: logger}
}

// Prepare loads the input document and resolves the options, including the
// digest stamped into the artifact.
func (g *Generator) Prepare(req Request) (*meta.Metadata, error) {
	if _, ok := backends[req.Target]; !ok {
		return nil, fmt.Errorf("%w '%s' (supported: %v)", ErrUnknownTarget, req.Target, Targets())
	}

	g.logger.Info("Loading typed tree", "input", req.Input)
	tree, data, err := idl.LoadFile(req.Input)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", req.Input, err)
	}
	g.logger.Info("Loaded typed tree",
		"operations", len(tree.Operations),
		"attributes", len(tree.Attributes),
		"structs", len(tree.Structs),
		"unions", len(tree.Unions),
		"exceptions", len(tree.ExceptionList()))

	opts := req.Options
	if opts.DissectorName == "" {
		opts.DissectorName = common.DissectorNameFromPath(req.Input)
	}
	if opts.ProtocolName == "" {
		opts.ProtocolName = strings.ToUpper(opts.DissectorName)
	}
	if opts.Indent <= 0 {
		opts.Indent = dissector.DefaultIndent
	}
	if opts.Version == "" {
		if opts.Version, err = common.GetVersion(); err != nil {
			return nil, fmt.Errorf("get version: %w", err)
		}
	}
	opts.Digest = common.Digest(data,
		req.Target,
		opts.ProtocolName,
		opts.DissectorName,
		opts.Description,
		strconv.Itoa(opts.Indent),
		opts.Version,
	)
	g.logger.Debug("Resolved options", "dissector", opts.DissectorName, "protocol", opts.ProtocolName, "digest", opts.Digest)

	return &meta.Metadata{Tree: tree, Source: req.Input, Options: opts}, nil
}

// Generate renders md with the target's backend into memory.
func (g *Generator) Generate(target string, md *meta.Metadata) (*Output, error) {
	backend, ok := backends[target]
	if !ok {
		return nil, fmt.Errorf("%w '%s' (supported: %v)", ErrUnknownTarget, target, Targets())
	}

	g.logger.Info("Generating dissector", "target", target, "dissector", md.Options.DissectorName)
	var buf bytes.Buffer
	res, err := backend(g.logger, &buf, md)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", target, err)
	}
	g.logger.Info("Dissector generation complete",
		"routines", len(res.Routines),
		"diagnostics", len(res.Diagnostics),
		"bytes", buf.Len())
	return &Output{Source: buf.Bytes(), Result: res}, nil
}

// UpToDate reports whether existing was generated from the same input and
// options as md.
func UpToDate(existing []byte, md *meta.Metadata) bool {
	digest, ok := common.ReadDigest(existing)
	return ok && digest == md.Options.Digest
}
