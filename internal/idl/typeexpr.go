package idl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokPunct
)

type token struct {
	kind tokKind
	text string
}

func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case strings.ContainsRune("<>,[]", c):
			toks = append(toks, token{tokPunct, string(c)})
			i++
		case c == '-' || unicode.IsDigit(c):
			j := i + 1
			for j < len(src) && (isAlnum(rune(src[j]))) {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j
		case c == '_' || c == ':' || unicode.IsLetter(c):
			j := i
			for j < len(src) && (isAlnum(rune(src[j])) || src[j] == ':') {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("unexpected %q in %q", c, src)
		}
	}
	return toks, nil
}

func isAlnum(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

type exprParser struct {
	src   string
	toks  []token
	pos   int
	tree  *Tree
	scope []string
}

func (p *exprParser) peek() token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token{kind: tokEOF}
}

func (p *exprParser) next() token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *exprParser) accept(text string) bool {
	if t := p.peek(); t.kind != tokEOF && t.text == text {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) expect(text string) error {
	if !p.accept(text) {
		return fmt.Errorf("expected %q in type %q", text, p.src)
	}
	return nil
}

func (p *exprParser) number() (int, error) {
	t := p.next()
	if t.kind != tokNumber {
		return 0, fmt.Errorf("expected a number in %q", p.src)
	}
	n, err := strconv.ParseInt(t.text, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q in %q: %w", t.text, p.src, err)
	}
	return int(n), nil
}

// ParseType resolves a type expression written inside scope.
func (t *Tree) ParseType(scope []string, expr string) (Type, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &exprParser{src: expr, toks: toks, tree: t, scope: scope}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("trailing %q in type %q", p.peek().text, expr)
	}
	return typ, nil
}

func (p *exprParser) parseType() (Type, error) {
	base, err := p.parseBase()
	if err != nil {
		return nil, err
	}
	var dims []int
	for p.accept("[") {
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		dims = append(dims, n)
	}
	if len(dims) > 0 {
		return &Array{Elem: base, Dims: dims}, nil
	}
	return base, nil
}

func (p *exprParser) parseBase() (Type, error) {
	t := p.next()
	if t.kind != tokIdent {
		return nil, fmt.Errorf("expected a type name in %q", p.src)
	}
	switch t.text {
	case "void":
		return Void, nil
	case "short":
		return Short, nil
	case "float":
		return Float, nil
	case "double":
		return Double, nil
	case "boolean":
		return Boolean, nil
	case "char":
		return Char, nil
	case "wchar":
		return WChar, nil
	case "octet":
		return Octet, nil
	case "any":
		return Any, nil
	case "TypeCode", "CORBA::TypeCode", "::CORBA::TypeCode":
		return TypeCode, nil
	case "Object", "CORBA::Object", "::CORBA::Object":
		return &ObjRef{}, nil
	case "Principal", "CORBA::Principal":
		return &Opaque{K: KindPrincipal, Name: "Principal"}, nil
	case "long":
		switch {
		case p.accept("long"):
			return LongLong, nil
		case p.accept("double"):
			return LongDouble, nil
		}
		return Long, nil
	case "unsigned":
		switch {
		case p.accept("short"):
			return UShort, nil
		case p.accept("long"):
			if p.accept("long") {
				return ULongLong, nil
			}
			return ULong, nil
		}
		return nil, fmt.Errorf("expected short or long after unsigned in %q", p.src)
	case "string", "wstring":
		k := KindString
		if t.text == "wstring" {
			k = KindWString
		}
		if !p.accept("<") {
			if k == KindWString {
				return WString, nil
			}
			return String, nil
		}
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return &Basic{K: k, Bound: n}, nil
	case "sequence":
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		seq := &Sequence{Elem: elem}
		if p.accept(",") {
			if seq.Bound, err = p.number(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return seq, nil
	case "fixed":
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		digits, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		scale, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return &Fixed{Digits: digits, Scale: scale}, nil
	}
	typ, ok := p.tree.Lookup(p.scope, t.text)
	if !ok {
		return nil, fmt.Errorf("%w: type %q", ErrUnresolved, t.text)
	}
	return typ, nil
}

// ParseDeclarator parses "name" or "name[4][3]".
func ParseDeclarator(s string) (Declarator, error) {
	toks, err := lex(s)
	if err != nil {
		return Declarator{}, err
	}
	p := &exprParser{src: s, toks: toks}
	name := p.next()
	if name.kind != tokIdent || strings.Contains(name.text, ScopeSep) {
		return Declarator{}, fmt.Errorf("bad declarator %q", s)
	}
	d := Declarator{Name: name.text}
	for p.accept("[") {
		n, err := p.number()
		if err != nil {
			return Declarator{}, err
		}
		if n <= 0 {
			return Declarator{}, fmt.Errorf("declarator %q: dimension must be positive", s)
		}
		if err := p.expect("]"); err != nil {
			return Declarator{}, err
		}
		d.Sizes = append(d.Sizes, n)
	}
	if p.peek().kind != tokEOF {
		return Declarator{}, fmt.Errorf("trailing %q in declarator %q", p.peek().text, s)
	}
	return d, nil
}

// ParseLabel parses one union case label. Enumerator labels are checked
// against disc when the discriminant is an enum.
func ParseLabel(s string, disc Type) (Label, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "default":
		return Label{Kind: LabelDefault}, nil
	case s == "TRUE" || s == "true":
		return Label{Kind: LabelInt, Int: 1}, nil
	case s == "FALSE" || s == "false":
		return Label{Kind: LabelInt, Int: 0}, nil
	case len(s) >= 3 && s[0] == '\'' && s[len(s)-1] == '\'':
		r, err := unquoteChar(s[1 : len(s)-1])
		if err != nil {
			return Label{}, fmt.Errorf("label %s: %w", s, err)
		}
		return Label{Kind: LabelChar, Char: r}, nil
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return Label{Kind: LabelInt, Int: n}, nil
	}
	if disc != nil && disc.Kind() == KindULongLong {
		if n, err := strconv.ParseUint(s, 0, 64); err == nil {
			return Label{Kind: LabelInt, Int: int64(n), Unsigned: true}, nil
		}
	}
	if en, ok := disc.(*Enum); ok {
		if _, found := en.Ordinal(s); !found {
			return Label{}, fmt.Errorf("%w: enumerator %q of %s", ErrUnresolved, s, en.ScopedName())
		}
		path := SplitScoped(s)
		return Label{Kind: LabelEnum, Enumerator: path[len(path)-1]}, nil
	}
	return Label{}, fmt.Errorf("label %q is not valid for discriminant %s", s, Describe(disc))
}

func unquoteChar(body string) (rune, error) {
	switch body {
	case `\n`:
		return '\n', nil
	case `\t`:
		return '\t', nil
	case `\\`:
		return '\\', nil
	case `\'`:
		return '\'', nil
	case `\0`:
		return 0, nil
	}
	r := []rune(body)
	if len(r) != 1 {
		return 0, fmt.Errorf("not a single character")
	}
	return r[0], nil
}
