// Package value defines the narrow capability interface (the Host Value
// Adapter) through which the codec reads and constructs host-language
// values. The codec itself never inspects a host value directly; every
// access — scalar coercion, mapping iteration, sequence indexing, record
// lookup, and construction of new values — goes through an Adapter.
//
// This indirection is what lets schema, codec and buffer stay ignorant
// of any particular in-memory value representation. Package value also
// ships Native, a reference Adapter built on plain Go maps, slices and
// typed vectors, so the rest of the module can be exercised without a
// second host runtime.
package value

// Kind identifies the element type of a typed 1-D vector used for
// SEQ_AS_VECTOR sequences and for the I64_AS_TENSOR representation of a
// single 64-bit integer.
type Kind int

const (
	KindByte Kind = iota
	KindI16
	KindI32
	KindI64
	KindDouble
)

// Adapter is the capability set the codec requires of a host value
// representation. Every method is total: coercion methods report
// failure via their second (or, for slice-returning methods, only)
// return value rather than panicking, so the codec can turn a failed
// coercion into a TypeMismatch error with full descriptor-path context.
type Adapter interface {
	// Scalar reads.
	Bool(v any) (bool, bool)
	Byte(v any) (byte, bool)
	Int16(v any) (int16, bool)
	Int32(v any) (int32, bool)
	Int64(v any) (int64, bool)
	Float64(v any) (float64, bool)
	String(v any) (string, bool)
	Bytes(v any) ([]byte, bool)

	// Mapping iteration. Len requires a separate O(1) (or, failing
	// that, a dedicated) pass; Range yields pairs in any order.
	MapLen(v any) (int, bool)
	MapRange(v any, fn func(key, val any) bool)

	// NewMap and MapSet construct a host mapping during MAP decode.
	// Spec §4.6 enumerates record/sequence/vector constructors but a
	// MAP must materialize as an actual host mapping, not a record
	// shoehorned into string/uint16 keys — see DESIGN.md.
	NewMap(n int) any
	MapSet(m any, key, val any)

	// Sequence access, 1-based per the wire-order emitted on decode.
	SeqLen(v any) (int, bool)
	SeqGet(v any, i int) any

	// Typed 1-D vector access, used under SEQ_AS_VECTOR / I64_AS_TENSOR.
	VectorLen(v any) (int, bool)
	VectorGet(v any, i int) any

	// Record access, keyed by field name when the descriptor supplies
	// one, else by the numeric field id. Returns Nil() when absent.
	RecordGet(v any, key string) any
	RecordGetByID(v any, id uint16) any

	// Constructors.
	NewRecord() any
	RecordSet(rec any, key string, val any)
	RecordSetByID(rec any, id uint16, val any)
	NewSeq(n int) any
	SeqSet(seq any, i int, val any)
	NewVector(kind Kind, n int) any
	VectorSet(vec any, i int, val any)

	// Nil sentinel.
	Nil() any
	IsNil(v any) bool
}
