package common

import "github.com/Alia5/giopgen/internal/idl"

// WireSize returns the CDR encoded size in bytes of a primitive kind, or 0
// for kinds whose size is not fixed (strings, wide chars, compound kinds).
func WireSize(k idl.Kind) int {
	switch k {
	case idl.KindBoolean, idl.KindChar, idl.KindOctet:
		return 1
	case idl.KindShort, idl.KindUShort:
		return 2
	case idl.KindLong, idl.KindULong, idl.KindFloat, idl.KindEnum:
		return 4
	case idl.KindLongLong, idl.KindULongLong, idl.KindDouble:
		return 8
	case idl.KindLongDouble:
		return 16
	default:
		return 0
	}
}

// FixedLength returns how many octets carry a fixed<digits,scale> value on
// the wire: two digits per octet plus the sign nibble, rounded down.
func FixedLength(digits int) int {
	return digits/2 + 1
}

// ElementCount returns the number of elements of an array with the given
// dimensions. Arrays are laid out row-major, so [4][3] holds 12 elements.
func ElementCount(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
