package idl

import (
	"fmt"
	"strings"
)

// Tree is the complete, resolved input of one generation run. Collections
// keep document order; the symbol table indexes every named type.
type Tree struct {
	Operations []*Operation
	Attributes []*Attribute
	Structs    []*Struct
	Unions     []*Union
	Enums      []*Enum
	Exceptions []*Exception
	Typedefs   []*Typedef
	Interfaces []string

	symbols map[string]Type
}

// NewTree returns an empty tree ready for Declare.
func NewTree() *Tree {
	return &Tree{symbols: make(map[string]Type)}
}

// Declare registers a named type under its scoped name.
func (t *Tree) Declare(name string, typ Type) error {
	if t.symbols == nil {
		t.symbols = make(map[string]Type)
	}
	key := strings.Join(SplitScoped(name), ScopeSep)
	if key == "" {
		return fmt.Errorf("empty name for %s", Describe(typ))
	}
	if _, dup := t.symbols[key]; dup {
		return fmt.Errorf("%s declared twice", key)
	}
	t.symbols[key] = typ
	return nil
}

// Lookup resolves name the way IDL scoping does: from the innermost scope
// outwards, then globally. A leading "::" forces a global lookup.
func (t *Tree) Lookup(scope []string, name string) (Type, bool) {
	if strings.HasPrefix(strings.TrimSpace(name), ScopeSep) {
		scope = nil
	}
	path := SplitScoped(name)
	if len(path) == 0 {
		return nil, false
	}
	for i := len(scope); i >= 0; i-- {
		candidate := make([]string, 0, i+len(path))
		candidate = append(candidate, scope[:i]...)
		candidate = append(candidate, path...)
		if typ, ok := t.symbols[strings.Join(candidate, ScopeSep)]; ok {
			return typ, true
		}
	}
	return nil, false
}

// ExceptionList returns every exception raised by the operations, once,
// in the order it is first raised.
func (t *Tree) ExceptionList() []*Exception {
	seen := make(map[*Exception]struct{})
	var out []*Exception
	for _, op := range t.Operations {
		for _, ex := range op.Raises {
			if _, dup := seen[ex]; dup {
				continue
			}
			seen[ex] = struct{}{}
			out = append(out, ex)
		}
	}
	return out
}

// InterfaceList returns the interfaces that own operations as slash
// separated names ("Penguin/Echo"), in first-seen order.
func (t *Tree) InterfaceList() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, op := range t.Operations {
		name := strings.Join(op.Interface(), "/")
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// CheckAliases verifies every typedef reaches a named type or a basic one.
// The walk passes through sized typedefs, sequences and arrays, since none of
// them gets a routine of its own to stop the decoder from recursing.
func (t *Tree) CheckAliases() error {
	for _, td := range t.Typedefs {
		if err := checkAlias(td, make(map[*Typedef]struct{})); err != nil {
			return err
		}
	}
	return nil
}

func checkAlias(t Type, seen map[*Typedef]struct{}) error {
	for {
		switch v := t.(type) {
		case *Typedef:
			if _, dup := seen[v]; dup {
				return fmt.Errorf("%w: %s", ErrAliasCycle, v.ScopedName())
			}
			seen[v] = struct{}{}
			if v.Target == nil {
				return fmt.Errorf("%w: typedef %s has no target", ErrUnresolved, v.ScopedName())
			}
			t = v.Target
		case *Sequence:
			t = v.Elem
		case *Array:
			t = v.Elem
		default:
			return nil
		}
	}
}
