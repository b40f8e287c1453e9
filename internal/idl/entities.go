package idl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAliasCycle is returned when a typedef chain never reaches a
	// non-alias type.
	ErrAliasCycle = errors.New("typedef cycle")
	// ErrUnresolved is returned when a document names a type or entity
	// that was never declared.
	ErrUnresolved = errors.New("unresolved name")
	// ErrUnsupportedFormat is returned for document extensions the loader
	// has no decoder for.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// ScopeSep separates the components of a scoped name in documents.
const ScopeSep = "::"

// Scoped is the identity of a declared entity: its full nesting path and
// its repository id.
type Scoped struct {
	Path   []string
	RepoID string
}

// NewScoped splits a "A::B::C" name into a Scoped identity with the default
// repository id.
func NewScoped(name string) Scoped {
	path := SplitScoped(name)
	return Scoped{Path: path, RepoID: DefaultRepoID(path)}
}

// SplitScoped splits a scoped name, ignoring a leading "::".
func SplitScoped(name string) []string {
	name = strings.TrimPrefix(strings.TrimSpace(name), ScopeSep)
	if name == "" {
		return nil
	}
	return strings.Split(name, ScopeSep)
}

// DefaultRepoID builds the "IDL:A/B/C:1.0" repository id for a path.
func DefaultRepoID(path []string) string {
	return "IDL:" + strings.Join(path, "/") + ":1.0"
}

// Identifier is the last component of the path.
func (s Scoped) Identifier() string {
	if len(s.Path) == 0 {
		return ""
	}
	return s.Path[len(s.Path)-1]
}

// ScopedName renders the path with "::".
func (s Scoped) ScopedName() string { return strings.Join(s.Path, ScopeSep) }

// Scope is the enclosing path.
func (s Scoped) Scope() []string {
	if len(s.Path) == 0 {
		return nil
	}
	return s.Path[:len(s.Path)-1]
}

// Declarator names one value of a member, attribute or union case. Sizes
// holds fixed array dimensions when the declarator is an array.
type Declarator struct {
	Name  string
	Sizes []int
}

func (d Declarator) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	for _, s := range d.Sizes {
		fmt.Fprintf(&b, "[%d]", s)
	}
	return b.String()
}

// Member is one struct or exception member: a type shared by one or more
// declarators.
type Member struct {
	Type        Type
	Declarators []Declarator
}

// Struct is a struct declaration.
type Struct struct {
	Scoped
	Members []Member
}

// Exception is a user exception declaration. Exceptions without members
// carry no payload.
type Exception struct {
	Scoped
	Members []Member
}

// HasMembers reports whether the exception carries a payload.
func (e *Exception) HasMembers() bool { return len(e.Members) > 0 }

// Enum is an enum declaration. An enumerator's wire value is its position
// in Enumerators.
type Enum struct {
	Scoped
	Enumerators []string
}

// Ordinal returns the zero based position of the named enumerator. A scoped
// enumerator name is matched on its last component.
func (e *Enum) Ordinal(name string) (int, bool) {
	if p := SplitScoped(name); len(p) > 0 {
		name = p[len(p)-1]
	}
	for i, n := range e.Enumerators {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Typedef is an alias. When Sizes is set the alias is an array of Target
// with those dimensions.
type Typedef struct {
	Scoped
	Target Type
	Sizes  []int
}

// LabelKind tags the value carried by a union case label.
type LabelKind int

const (
	LabelDefault LabelKind = iota
	LabelInt
	LabelChar
	LabelEnum
)

// Label is one case label of a union case.
type Label struct {
	Kind       LabelKind
	Int        int64  // LabelInt; booleans are 0 and 1
	Unsigned   bool   // Int holds the bits of a uint64 above MaxInt64
	Char       rune   // LabelChar
	Enumerator string // LabelEnum
}

// IsDefault reports whether this is the default label.
func (l Label) IsDefault() bool { return l.Kind == LabelDefault }

// Case is one union case. Several labels may select the same field.
type Case struct {
	Labels     []Label
	Type       Type
	Declarator Declarator
}

// Union is a discriminated union declaration.
type Union struct {
	Scoped
	Discriminant Type
	Cases        []Case
}

// Direction is a parameter passing mode.
type Direction int

const (
	In Direction = iota
	Out
	InOut
)

func (d Direction) String() string {
	switch d {
	case Out:
		return "out"
	case InOut:
		return "inout"
	default:
		return "in"
	}
}

// IsIn reports whether the parameter travels in the request.
func (d Direction) IsIn() bool { return d == In || d == InOut }

// IsOut reports whether the parameter travels in the reply.
func (d Direction) IsOut() bool { return d == Out || d == InOut }

// ParseDirection accepts "in", "out", "inout" and "in-out".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "in":
		return In, nil
	case "out":
		return Out, nil
	case "inout", "in-out", "in_out":
		return InOut, nil
	default:
		return In, fmt.Errorf("unknown parameter direction %q", s)
	}
}

// Param is an operation parameter.
type Param struct {
	Name string
	Dir  Direction
	Type Type
}

// Operation is an interface operation.
type Operation struct {
	Scoped
	Params []Param
	Return Type
	Raises []*Exception
	Oneway bool
}

// Interface is the scoped name of the interface the operation belongs to.
func (o *Operation) Interface() []string { return o.Scope() }

// Attribute is an interface attribute. Every declarator is an accessor pair
// of its own; read-only attributes only have a getter.
type Attribute struct {
	Scope       []string
	Type        Type
	Declarators []Declarator
	ReadOnly    bool
}

// Accessor returns the scoped identity of one declarator.
func (a *Attribute) Accessor(d Declarator) Scoped {
	path := make([]string, 0, len(a.Scope)+1)
	path = append(path, a.Scope...)
	path = append(path, d.Name)
	return Scoped{Path: path, RepoID: DefaultRepoID(path)}
}
