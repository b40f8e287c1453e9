package idl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// FormatFromPath maps a file extension to a document format name.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}

// LoadFile reads and resolves a tree document. The raw bytes are returned
// alongside the tree so callers can fingerprint the input.
func LoadFile(path string) (*Tree, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read tree document: %w", err)
	}
	doc, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	tree, err := Build(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return tree, data, nil
}

// Decode parses a document in the named format. Unknown fields are
// rejected by the JSON and YAML decoders.
func Decode(data []byte, format string) (*Document, error) {
	var doc Document
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty YAML document decodes to an empty tree.
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &doc, nil
}

type builder struct {
	tree       *Tree
	typedefs   map[*TypedefDoc]*Typedef
	structs    map[*StructDoc]*Struct
	exceptions map[*StructDoc]*Exception
	unions     map[*UnionDoc]*Union
}

// Build resolves every name in doc and returns the typed tree.
func Build(doc *Document) (*Tree, error) {
	b := &builder{
		tree:       NewTree(),
		typedefs:   make(map[*TypedefDoc]*Typedef),
		structs:    make(map[*StructDoc]*Struct),
		exceptions: make(map[*StructDoc]*Exception),
		unions:     make(map[*UnionDoc]*Union),
	}
	if err := b.declare(doc); err != nil {
		return nil, err
	}
	if err := b.resolve(doc); err != nil {
		return nil, err
	}
	return b.tree, nil
}

func scoped(name, repoID string) Scoped {
	s := NewScoped(name)
	if repoID != "" {
		s.RepoID = repoID
	}
	return s
}

// declare registers every named type first so that members may refer to
// entities declared later in the document, including themselves.
func (b *builder) declare(doc *Document) error {
	t := b.tree
	for i := range doc.Enums {
		d := &doc.Enums[i]
		en := &Enum{Scoped: scoped(d.Name, d.RepoID), Enumerators: d.Enumerators}
		if err := t.Declare(d.Name, en); err != nil {
			return err
		}
		t.Enums = append(t.Enums, en)
	}
	for i := range doc.Typedefs {
		d := &doc.Typedefs[i]
		td := &Typedef{Scoped: scoped(d.Name, d.RepoID), Sizes: d.Sizes}
		if err := t.Declare(d.Name, td); err != nil {
			return err
		}
		b.typedefs[d] = td
		t.Typedefs = append(t.Typedefs, td)
	}
	for i := range doc.Structs {
		d := &doc.Structs[i]
		st := &Struct{Scoped: scoped(d.Name, d.RepoID)}
		if err := t.Declare(d.Name, st); err != nil {
			return err
		}
		b.structs[d] = st
		t.Structs = append(t.Structs, st)
	}
	for i := range doc.Exceptions {
		d := &doc.Exceptions[i]
		ex := &Exception{Scoped: scoped(d.Name, d.RepoID)}
		if err := t.Declare(d.Name, ex); err != nil {
			return err
		}
		b.exceptions[d] = ex
		t.Exceptions = append(t.Exceptions, ex)
	}
	for i := range doc.Unions {
		d := &doc.Unions[i]
		un := &Union{Scoped: scoped(d.Name, d.RepoID)}
		if err := t.Declare(d.Name, un); err != nil {
			return err
		}
		b.unions[d] = un
		t.Unions = append(t.Unions, un)
	}
	for _, name := range doc.Interfaces {
		full := strings.Join(SplitScoped(name), ScopeSep)
		if err := t.Declare(name, &ObjRef{Interface: full}); err != nil {
			return err
		}
		t.Interfaces = append(t.Interfaces, full)
	}
	for _, name := range doc.Natives {
		if err := t.Declare(name, &Opaque{K: KindNative, Name: name}); err != nil {
			return err
		}
	}
	for _, name := range doc.ValueTypes {
		if err := t.Declare(name, &Opaque{K: KindValue, Name: name}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) resolve(doc *Document) error {
	t := b.tree
	for i := range doc.Typedefs {
		d := &doc.Typedefs[i]
		td := b.typedefs[d]
		target, err := t.ParseType(td.Scope(), d.Type)
		if err != nil {
			return fmt.Errorf("typedef %s: %w", d.Name, err)
		}
		td.Target = target
	}
	if err := t.CheckAliases(); err != nil {
		return err
	}
	for i := range doc.Structs {
		d := &doc.Structs[i]
		st := b.structs[d]
		members, err := b.members(st.Path, d.Members)
		if err != nil {
			return fmt.Errorf("struct %s: %w", d.Name, err)
		}
		st.Members = members
	}
	for i := range doc.Exceptions {
		d := &doc.Exceptions[i]
		ex := b.exceptions[d]
		members, err := b.members(ex.Path, d.Members)
		if err != nil {
			return fmt.Errorf("exception %s: %w", d.Name, err)
		}
		ex.Members = members
	}
	for i := range doc.Unions {
		d := &doc.Unions[i]
		if err := b.union(b.unions[d], d); err != nil {
			return fmt.Errorf("union %s: %w", d.Name, err)
		}
	}
	for i := range doc.Operations {
		op, err := b.operation(&doc.Operations[i])
		if err != nil {
			return fmt.Errorf("operation %s: %w", doc.Operations[i].Name, err)
		}
		t.Operations = append(t.Operations, op)
	}
	for i := range doc.Attributes {
		at, err := b.attribute(&doc.Attributes[i])
		if err != nil {
			return fmt.Errorf("attribute %s: %w", doc.Attributes[i].Scope, err)
		}
		t.Attributes = append(t.Attributes, at)
	}
	return nil
}

func (b *builder) members(scope []string, docs []MemberDoc) ([]Member, error) {
	out := make([]Member, 0, len(docs))
	for _, md := range docs {
		typ, err := b.tree.ParseType(scope, md.Type)
		if err != nil {
			return nil, err
		}
		m := Member{Type: typ}
		for _, ds := range md.Declarators {
			decl, err := ParseDeclarator(ds)
			if err != nil {
				return nil, err
			}
			m.Declarators = append(m.Declarators, decl)
		}
		if len(m.Declarators) == 0 {
			return nil, fmt.Errorf("member of type %s has no declarators", md.Type)
		}
		out = append(out, m)
	}
	return out, nil
}

func (b *builder) union(un *Union, d *UnionDoc) error {
	disc, err := b.tree.ParseType(un.Path, d.Discriminant)
	if err != nil {
		return fmt.Errorf("discriminant: %w", err)
	}
	un.Discriminant = disc
	base, err := Unalias(disc)
	if err != nil {
		return err
	}
	for _, cd := range d.Cases {
		typ, err := b.tree.ParseType(un.Path, cd.Type)
		if err != nil {
			return err
		}
		decl, err := ParseDeclarator(cd.Declarator)
		if err != nil {
			return err
		}
		c := Case{Type: typ, Declarator: decl}
		for _, ls := range cd.Labels {
			l, err := ParseLabel(ls, base)
			if err != nil {
				return err
			}
			c.Labels = append(c.Labels, l)
		}
		if len(c.Labels) == 0 {
			return fmt.Errorf("case %s has no labels", cd.Declarator)
		}
		un.Cases = append(un.Cases, c)
	}
	return nil
}

func (b *builder) operation(d *OperationDoc) (*Operation, error) {
	op := &Operation{Scoped: scoped(d.Name, d.RepoID), Oneway: d.Oneway}
	if len(op.Path) < 2 {
		return nil, fmt.Errorf("operation name must be scoped by its interface")
	}
	scope := op.Scope()
	ret := "void"
	if d.Returns != "" {
		ret = d.Returns
	}
	var err error
	if op.Return, err = b.tree.ParseType(scope, ret); err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}
	for _, pd := range d.Params {
		dir, err := ParseDirection(pd.Direction)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pd.Name, err)
		}
		typ, err := b.tree.ParseType(scope, pd.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pd.Name, err)
		}
		op.Params = append(op.Params, Param{Name: pd.Name, Dir: dir, Type: typ})
	}
	for _, name := range d.Raises {
		typ, ok := b.tree.Lookup(scope, name)
		if !ok {
			return nil, fmt.Errorf("%w: exception %q", ErrUnresolved, name)
		}
		ex, ok := typ.(*Exception)
		if !ok {
			return nil, fmt.Errorf("raises %q which is a %s, not an exception", name, typ.Kind())
		}
		op.Raises = append(op.Raises, ex)
	}
	return op, nil
}

func (b *builder) attribute(d *AttributeDoc) (*Attribute, error) {
	at := &Attribute{Scope: SplitScoped(d.Scope), ReadOnly: d.ReadOnly}
	if len(at.Scope) == 0 {
		return nil, fmt.Errorf("attribute must be scoped by its interface")
	}
	typ, err := b.tree.ParseType(at.Scope, d.Type)
	if err != nil {
		return nil, err
	}
	at.Type = typ
	for _, ds := range d.Declarators {
		decl, err := ParseDeclarator(ds)
		if err != nil {
			return nil, err
		}
		at.Declarators = append(at.Declarators, decl)
	}
	if len(at.Declarators) == 0 {
		return nil, fmt.Errorf("attribute of type %s has no declarators", d.Type)
	}
	return at, nil
}
