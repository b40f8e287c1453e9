package common

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// NameSep joins scope components into flat C identifiers.
const NameSep = "_"

// Namespace flattens a scoped path into one identifier.
// Example: ["Penguin", "Echo", "echoWString"] => "Penguin_Echo_echoWString".
func Namespace(path []string) string {
	return strings.Join(path, NameSep)
}

// AccessorName prefixes a flattened attribute path with its direction so that
// getters, setters and same-named operations never collide.
// Example: ("get", ["Tux", "Echo", "width"]) => "get_Tux_Echo_width".
func AccessorName(direction string, path []string) string {
	return direction + NameSep + Namespace(path)
}

// SlashName renders a path the way GIOP interface registration expects.
func SlashName(path []string) string {
	return strings.Join(path, "/")
}

// SanitizeLeadingDigit prefixes names that start with a digit with "_"
// to keep them valid C identifiers.
func SanitizeLeadingDigit(name string) string {
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "_" + name
	}
	return name
}

// IsCIdentifier reports whether s can be used verbatim as a C identifier.
func IsCIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r < unicode.MaxASCII && unicode.IsLetter(r):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// DissectorNameFromPath derives a dissector short name from an input file.
// Example: "idl/Penguin-Echo.yaml" => "penguin_echo".
func DissectorNameFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	name := SanitizeLeadingDigit(strings.Trim(b.String(), "_"))
	if name == "" {
		return "idl"
	}
	return name
}

// CharLiteral renders r as a C character literal. Newline and tab get
// explicit escapes; quote and backslash are escaped so the literal stays
// well formed.
func CharLiteral(r rune) string {
	switch r {
	case '\n':
		return `'\n'`
	case '\t':
		return `'\t'`
	case '\\':
		return `'\\'`
	case '\'':
		return `'\''`
	}
	if r < 0x20 || r == 0x7f {
		return fmt.Sprintf(`'\%03o'`, r)
	}
	return "'" + string(r) + "'"
}

// CString escapes s for use inside a C string literal.
func CString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return r.Replace(s)
}
