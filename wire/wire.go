// Package wire defines the Thrift Binary Protocol's wire type tags.
//
// The tag values are bit-exact with the Apache Thrift reference
// implementation and must never change: they are written to and read
// from real wire bytes, not just used as an internal enumeration.
package wire

import "fmt"

// Type is a single wire type tag, as it appears on the wire or in a schema.
type Type byte

// Tag values, bit-exact with the Apache Thrift Binary Protocol.
// 5, 7 and 9 are unassigned by the reference protocol and are rejected
// wherever a Type is parsed from a name or read from the wire.
const (
	Stop   Type = 0
	Void   Type = 1
	Bool   Type = 2
	Byte   Type = 3
	Double Type = 4
	I16    Type = 6
	I32    Type = 8
	I64    Type = 10
	String Type = 11
	Struct Type = 12
	Map    Type = 13
	Set    Type = 14
	List   Type = 15
	Enum   Type = 16
)

// String renders the tag's schema name, e.g. "i32". Unassigned and
// out-of-range tags render as a numeric placeholder; callers that need
// to reject those should use Valid, not String.
func (t Type) String() string {
	switch t {
	case Stop:
		return "stop"
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Byte:
		return "byte"
	case Double:
		return "double"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case String:
		return "string"
	case Struct:
		return "struct"
	case Map:
		return "map"
	case Set:
		return "set"
	case List:
		return "list"
	case Enum:
		return "enum"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// byName maps the schema-builder spelling (see schema.Build) to a tag.
// Enum is accepted here only as a schema-side spelling; on the wire it
// is indistinguishable from I32 and WireType always reports I32 for it.
var byName = map[string]Type{
	"bool":   Bool,
	"byte":   Byte,
	"double": Double,
	"i16":    I16,
	"i32":    I32,
	"i64":    I64,
	"string": String,
	"struct": Struct,
	"map":    Map,
	"set":    Set,
	"list":   List,
	"enum":   Enum,
}

// FromName resolves a schema-builder type name to a Type. ok is false for
// unknown names, including the three unassigned numeric slots.
func FromName(name string) (Type, bool) {
	t, ok := byName[name]
	return t, ok
}

// Valid reports whether t is one of the fourteen assigned tags. It does
// not distinguish schema-only tags (Enum, Void, Stop) from tags that may
// appear standalone on the wire — callers enforce that distinction.
func Valid(t Type) bool {
	switch t {
	case Stop, Void, Bool, Byte, Double, I16, I32, I64, String, Struct, Map, Set, List, Enum:
		return true
	default:
		return false
	}
}

// WireType returns the tag actually written to and read from the wire
// for t. Every tag maps to itself except Enum, which is carried as I32.
func WireType(t Type) Type {
	if t == Enum {
		return I32
	}
	return t
}

// IsPrimitiveNumeric reports whether t is one of the fixed-width numeric
// leaf types eligible for SEQ_AS_VECTOR sequence representation.
func IsPrimitiveNumeric(t Type) bool {
	switch t {
	case Byte, I16, I32, I64, Double:
		return true
	default:
		return false
	}
}
