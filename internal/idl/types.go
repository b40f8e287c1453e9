// Package idl holds the typed tree a generator backend consumes: the type
// nodes, the declared entities that own them, and a loader that builds the
// tree from a JSON, YAML or TOML document.
package idl

import "fmt"

// Kind is the type-kind tag of a Type. Values follow the CORBA TCKind
// numbering so diagnostics can name the code a reviewer will recognise.
type Kind int

const (
	KindNull Kind = iota
	KindVoid
	KindShort
	KindLong
	KindUShort
	KindULong
	KindFloat
	KindDouble
	KindBoolean
	KindChar
	KindOctet
	KindAny
	KindTypeCode
	KindPrincipal
	KindObjRef
	KindStruct
	KindUnion
	KindEnum
	KindString
	KindSequence
	KindArray
	KindAlias
	KindExcept
	KindLongLong
	KindULongLong
	KindLongDouble
	KindWChar
	KindWString
	KindFixed
	KindValue
	KindValueBox
	KindNative
	KindAbstractInterface
)

var kindNames = [...]string{
	KindNull:              "null",
	KindVoid:              "void",
	KindShort:             "short",
	KindLong:              "long",
	KindUShort:            "unsigned short",
	KindULong:             "unsigned long",
	KindFloat:             "float",
	KindDouble:            "double",
	KindBoolean:           "boolean",
	KindChar:              "char",
	KindOctet:             "octet",
	KindAny:               "any",
	KindTypeCode:          "TypeCode",
	KindPrincipal:         "Principal",
	KindObjRef:            "Object",
	KindStruct:            "struct",
	KindUnion:             "union",
	KindEnum:              "enum",
	KindString:            "string",
	KindSequence:          "sequence",
	KindArray:             "array",
	KindAlias:             "typedef",
	KindExcept:            "exception",
	KindLongLong:          "long long",
	KindULongLong:         "unsigned long long",
	KindLongDouble:        "long double",
	KindWChar:             "wchar",
	KindWString:           "wstring",
	KindFixed:             "fixed",
	KindValue:             "valuetype",
	KindValueBox:          "valuebox",
	KindNative:            "native",
	KindAbstractInterface: "abstract interface",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type is a node of the typed tree. The set of implementations is closed:
// *Basic, *Fixed, *Sequence, *Array, *ObjRef, *Opaque and the declared
// entities *Enum, *Struct, *Union, *Exception and *Typedef.
type Type interface {
	Kind() Kind
	isType()
}

// Basic is a primitive kind that carries no parameters: void, the integer,
// floating point, character and string kinds, any and TypeCode.
type Basic struct {
	K     Kind
	Bound int // string/wstring bound, 0 when unbounded
}

func (b *Basic) Kind() Kind { return b.K }
func (*Basic) isType()      {}

// Shared primitive nodes. They are read-only like every other tree node.
var (
	Void       = &Basic{K: KindVoid}
	Short      = &Basic{K: KindShort}
	Long       = &Basic{K: KindLong}
	UShort     = &Basic{K: KindUShort}
	ULong      = &Basic{K: KindULong}
	LongLong   = &Basic{K: KindLongLong}
	ULongLong  = &Basic{K: KindULongLong}
	Float      = &Basic{K: KindFloat}
	Double     = &Basic{K: KindDouble}
	LongDouble = &Basic{K: KindLongDouble}
	Boolean    = &Basic{K: KindBoolean}
	Char       = &Basic{K: KindChar}
	WChar      = &Basic{K: KindWChar}
	Octet      = &Basic{K: KindOctet}
	Any        = &Basic{K: KindAny}
	TypeCode   = &Basic{K: KindTypeCode}
	String     = &Basic{K: KindString}
	WString    = &Basic{K: KindWString}
)

// Fixed is fixed<Digits,Scale>.
type Fixed struct {
	Digits int
	Scale  int
}

func (*Fixed) Kind() Kind { return KindFixed }
func (*Fixed) isType()    {}

// Sequence is sequence<Elem> or sequence<Elem,Bound>.
type Sequence struct {
	Elem  Type
	Bound int
}

func (*Sequence) Kind() Kind { return KindSequence }
func (*Sequence) isType()    {}

// Array is an anonymous array type with its dimension sizes in declaration
// order. The wire layout is row-major, so the element count is the product
// of all dimensions.
type Array struct {
	Elem Type
	Dims []int
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) isType()    {}

// ObjRef is a reference to an interface, or to CORBA::Object when
// Interface is empty.
type ObjRef struct {
	Interface string
}

func (*ObjRef) Kind() Kind { return KindObjRef }
func (*ObjRef) isType()    {}

// Opaque is a kind the tree can carry but no backend is required to
// understand (native, valuetype, Principal, ...). It is the extension
// point where backends degrade to a diagnostic.
type Opaque struct {
	K    Kind
	Name string
}

func (o *Opaque) Kind() Kind { return o.K }
func (*Opaque) isType()      {}

func (*Enum) Kind() Kind      { return KindEnum }
func (*Enum) isType()         {}
func (*Struct) Kind() Kind    { return KindStruct }
func (*Struct) isType()       {}
func (*Union) Kind() Kind     { return KindUnion }
func (*Union) isType()        {}
func (*Exception) Kind() Kind { return KindExcept }
func (*Exception) isType()    {}
func (*Typedef) Kind() Kind   { return KindAlias }
func (*Typedef) isType()      {}

// Unalias follows typedef chains to the first non-alias type. A typedef that
// declares array dimensions is where the chain stops, because its sizes are
// part of the wire shape. Unaliasing an already unaliased type returns it
// unchanged.
func Unalias(t Type) (Type, error) {
	var seen map[*Typedef]struct{}
	for {
		td, ok := t.(*Typedef)
		if !ok || len(td.Sizes) > 0 {
			return t, nil
		}
		if seen == nil {
			seen = make(map[*Typedef]struct{})
		}
		if _, dup := seen[td]; dup {
			return nil, fmt.Errorf("%w: %s", ErrAliasCycle, td.ScopedName())
		}
		seen[td] = struct{}{}
		if td.Target == nil {
			return nil, fmt.Errorf("%w: typedef %s has no target", ErrUnresolved, td.ScopedName())
		}
		t = td.Target
	}
}

// Describe renders t the way it would be written in a type expression.
func Describe(t Type) string {
	switch v := t.(type) {
	case nil:
		return "<nil>"
	case *Basic:
		if v.Bound > 0 {
			return fmt.Sprintf("%s<%d>", v.K, v.Bound)
		}
		return v.K.String()
	case *Fixed:
		return fmt.Sprintf("fixed<%d,%d>", v.Digits, v.Scale)
	case *Sequence:
		if v.Bound > 0 {
			return fmt.Sprintf("sequence<%s,%d>", Describe(v.Elem), v.Bound)
		}
		return fmt.Sprintf("sequence<%s>", Describe(v.Elem))
	case *Array:
		s := Describe(v.Elem)
		for _, d := range v.Dims {
			s += fmt.Sprintf("[%d]", d)
		}
		return s
	case *ObjRef:
		if v.Interface == "" {
			return "Object"
		}
		return v.Interface
	case *Opaque:
		return v.Name
	case *Enum:
		return v.ScopedName()
	case *Struct:
		return v.ScopedName()
	case *Union:
		return v.ScopedName()
	case *Exception:
		return v.ScopedName()
	case *Typedef:
		return v.ScopedName()
	default:
		return fmt.Sprintf("%T", t)
	}
}
