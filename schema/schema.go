// Package schema builds and represents the descriptor tree that
// parameterizes the codec (spec §3, §4.3). A Descriptor is immutable
// once built: Build produces the whole tree in one pass and nothing in
// this package ever mutates a node afterwards.
package schema

import (
	"hash/fnv"
	"sort"

	"github.com/kungfusheep/thriftbin/errs"
	"github.com/kungfusheep/thriftbin/wire"
)

// Flags is the root-level policy bitmask (spec §3). Individual nodes
// never carry their own copy — the codec reads Flags once from the root
// and threads it explicitly through every recursive call, exactly as
// design note §9 prescribes ("route through an explicit value passed
// with every recursive call rather than a thread-local").
type Flags uint8

const (
	// I64AsNumber is the default: 64-bit integers round-trip through a
	// float64, RangeError if that round-trip would be lossy.
	I64AsNumber Flags = 0
	// I64AsString exchanges 64-bit integers as decimal strings.
	I64AsString Flags = 1
	// I64AsTensor exchanges 64-bit integers as a 1-element typed vector.
	I64AsTensor Flags = 2
	// I64Mask isolates the (mutually exclusive) I64 representation bits.
	I64Mask Flags = 3
	// SeqAsVector requests typed-vector representation for sequences of
	// primitive numeric elements.
	SeqAsVector Flags = 1 << 2
)

// I64Mode extracts the selected I64 representation.
func (f Flags) I64Mode() Flags { return f & I64Mask }

// Vectorized reports whether SeqAsVector is set.
func (f Flags) Vectorized() bool { return f&SeqAsVector != 0 }

// Field is one struct member: a field id, an optional name used as the
// record key in place of the numeric id, and the member's own
// descriptor.
type Field struct {
	ID   uint16
	Name string
	Type *Descriptor
}

// Descriptor is one node of the schema tree (spec §3). The zero value is
// not meaningful; construct via Build or FromJSON.
type Descriptor struct {
	Ttype  wire.Type
	Fields []Field     // STRUCT only, sorted ascending by ID, no duplicates
	Key    *Descriptor // MAP only
	Value  *Descriptor // MAP, SET, LIST only
	flags  Flags       // meaningful only when this Descriptor is a root
}

// Flags returns the policy bitmask set at construction. Only meaningful
// on the Descriptor returned directly by Build/FromJSON (the root); it
// is never read from a nested node by the codec.
func (d *Descriptor) Flags() Flags { return d.flags }

// FieldByID performs the linear scan over the sorted field list the
// decoder uses to resolve a wire-read field id. A binary search would
// also satisfy spec §4.5; fields lists are small enough in practice that
// the simpler scan wins.
func (d *Descriptor) FieldByID(id uint16) (Field, bool) {
	for _, f := range d.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Hash returns an FNV-1a hash of the descriptor's shape (tags, field
// ids, field order, nesting — not field names). It is pure in-memory
// bookkeeping with no wire-format role (Thrift Binary carries no schema
// section to elide); cmd/thriftdump prints it to stderr after each
// decoded payload.
func (d *Descriptor) Hash() uint32 {
	h := fnv.New32a()
	d.hashInto(h)
	return h.Sum32()
}

func (d *Descriptor) hashInto(h interface{ Write([]byte) (int, error) }) {
	h.Write([]byte{byte(d.Ttype)})
	switch d.Ttype {
	case wire.Struct:
		for _, f := range d.Fields {
			h.Write([]byte{byte(f.ID >> 8), byte(f.ID)})
			f.Type.hashInto(h)
		}
	case wire.Map:
		d.Key.hashInto(h)
		d.Value.hashInto(h)
	case wire.Set, wire.List:
		d.Value.hashInto(h)
	}
}

// Spec is the structured form accepted by Build (spec §4.3). A scalar
// type may instead be built from its bare name via BuildName.
type Spec struct {
	Ttype     string      `json:"ttype,omitempty"`
	Name      string      `json:"name,omitempty"`
	Fields    []FieldSpec `json:"fields,omitempty"`
	Key       *Spec       `json:"key,omitempty"`
	Value     *Spec       `json:"value,omitempty"`
	I64String bool        `json:"i64string,omitempty"`
	I64Tensor bool        `json:"i64tensor,omitempty"`
	Tensors   bool        `json:"tensors,omitempty"`
}

// FieldSpec is one (field_id, sub-descriptor) pair of a struct Spec.
type FieldSpec struct {
	ID   uint16 `json:"id"`
	Spec Spec   `json:"spec"`
}

// Build constructs a Descriptor from a Spec. Unknown ttype names,
// malformed composite shapes (a map missing its key or value, a list or
// set missing its value), and duplicate field ids within one struct all
// fail with ErrSchemaError. A struct with no fields is accepted.
func Build(spec Spec) (*Descriptor, error) {
	d, err := build(spec)
	if err != nil {
		return nil, err
	}
	d.flags = rootFlags(spec)
	return d, nil
}

// BuildName constructs a Descriptor for a bare scalar type name, the
// "(a) a single string naming a scalar type" shorthand of spec §4.3.
func BuildName(name string) (*Descriptor, error) {
	return Build(Spec{Ttype: name})
}

func rootFlags(spec Spec) Flags {
	var f Flags
	switch {
	case spec.I64String:
		f |= I64AsString
	case spec.I64Tensor:
		f |= I64AsTensor
	default:
		f |= I64AsNumber
	}
	if spec.Tensors {
		f |= SeqAsVector
	}
	return f
}

func build(spec Spec) (*Descriptor, error) {
	ttypeName := spec.Ttype
	if ttypeName == "" {
		ttypeName = "struct"
	}

	t, ok := wire.FromName(ttypeName)
	if !ok {
		return nil, errs.Wrapf(errs.ErrSchemaError, "unknown ttype %q", spec.Ttype)
	}

	d := &Descriptor{Ttype: t}

	switch t {
	case wire.Struct:
		fields := make([]Field, 0, len(spec.Fields))
		seen := make(map[uint16]bool, len(spec.Fields))
		for _, fs := range spec.Fields {
			if seen[fs.ID] {
				return nil, errs.Wrapf(errs.ErrSchemaError, "duplicate field id %d", fs.ID)
			}
			seen[fs.ID] = true

			sub, err := build(fs.Spec)
			if err != nil {
				return nil, errs.Wrapf(err, "field %d", fs.ID)
			}
			fields = append(fields, Field{ID: fs.ID, Name: fs.Spec.Name, Type: sub})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].ID < fields[j].ID })
		d.Fields = fields

	case wire.Map:
		if spec.Key == nil || spec.Value == nil {
			return nil, errs.Wrapf(errs.ErrSchemaError, "map requires both key and value")
		}
		k, err := build(*spec.Key)
		if err != nil {
			return nil, errs.Wrapf(err, "map key")
		}
		v, err := build(*spec.Value)
		if err != nil {
			return nil, errs.Wrapf(err, "map value")
		}
		d.Key, d.Value = k, v

	case wire.Set, wire.List:
		if spec.Value == nil {
			return nil, errs.Wrapf(errs.ErrSchemaError, "%s requires a value descriptor", ttypeName)
		}
		v, err := build(*spec.Value)
		if err != nil {
			return nil, errs.Wrapf(err, "%s value", ttypeName)
		}
		d.Value = v

	case wire.Stop:
		return nil, errs.Wrapf(errs.ErrSchemaError, "stop is not a valid schema ttype")
	}

	return d, nil
}
