package codec

import (
	"strconv"

	"github.com/kungfusheep/thriftbin/buffer"
	"github.com/kungfusheep/thriftbin/errs"
	"github.com/kungfusheep/thriftbin/schema"
	"github.com/kungfusheep/thriftbin/value"
	"github.com/kungfusheep/thriftbin/wire"
)

// encodeValue dispatches on d.Ttype and appends v's encoding to w (spec
// §4.4). depth guards against pathological nesting; path carries the
// descriptor-path breadcrumb every returned error is annotated with.
func (c *Codec) encodeValue(w *buffer.Writer, d *schema.Descriptor, flags schema.Flags, v any, depth int, path string) error {
	if depth > c.maxDepth {
		return errs.Wrapf(errs.ErrSchemaError, "%s: exceeds max recursion depth %d", path, c.maxDepth)
	}

	switch d.Ttype {
	case wire.Bool:
		b, ok := c.adapter.Bool(v)
		if !ok {
			return typeMismatch(path, "bool")
		}
		w.AppendBool(b)

	case wire.Byte:
		b, err := c.readByte(v, path)
		if err != nil {
			return err
		}
		w.AppendByte(b)

	case wire.I16:
		i, err := c.readInt16(v, path)
		if err != nil {
			return err
		}
		w.AppendInt16(i)

	case wire.I32, wire.Enum:
		i, err := c.readInt32(v, path)
		if err != nil {
			return err
		}
		w.AppendInt32(i)

	case wire.I64:
		return c.encodeI64(w, flags, v, path)

	case wire.Double:
		f, ok := c.adapter.Float64(v)
		if !ok {
			return typeMismatch(path, "double")
		}
		w.AppendDouble(f)

	case wire.String:
		s, ok := c.adapter.String(v)
		if !ok {
			return typeMismatch(path, "string")
		}
		w.AppendString(s)

	case wire.List, wire.Set:
		return c.encodeSeq(w, d, flags, v, depth, path)

	case wire.Map:
		return c.encodeMap(w, d, flags, v, depth, path)

	case wire.Struct:
		return c.encodeStruct(w, d, flags, v, depth, path)

	default:
		return errs.Wrapf(errs.ErrSchemaError, "%s: descriptor has no encodable ttype %v", path, d.Ttype)
	}
	return nil
}

// encodeI64 implements the three mutually exclusive I64 policies of
// spec §3/§4.4.
func (c *Codec) encodeI64(w *buffer.Writer, flags schema.Flags, v any, path string) error {
	switch flags.I64Mode() {
	case schema.I64AsString:
		s, ok := c.adapter.String(v)
		if !ok {
			return typeMismatch(path, "i64 decimal string")
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
				return errs.Wrapf(errs.ErrRangeError, "%s: %q out of int64 range", path, s)
			}
			return errs.Wrapf(errs.ErrParseError, "%s: %q is not a valid decimal i64", path, s)
		}
		w.AppendInt64(i)
		return nil

	case schema.I64AsTensor:
		n, ok := c.adapter.VectorLen(v)
		if !ok || n != 1 {
			return typeMismatch(path, "1-element i64 vector")
		}
		i, ok := c.adapter.VectorGet(v, 0).(int64)
		if !ok {
			return typeMismatch(path, "i64 vector element")
		}
		w.AppendInt64(i)
		return nil

	default: // I64AsNumber
		i, err := c.readInt64Number(v, path)
		if err != nil {
			return err
		}
		w.AppendInt64(i)
		return nil
	}
}

// encodeSeq handles LIST and SET (identical wire shape, spec §4.4).
func (c *Codec) encodeSeq(w *buffer.Writer, d *schema.Descriptor, flags schema.Flags, v any, depth int, path string) error {
	elemTag := wire.WireType(d.Value.Ttype)

	if flags.Vectorized() {
		if kind, ok := vectorKind(d.Value.Ttype); ok {
			n, ok := c.adapter.VectorLen(v)
			if !ok {
				return typeMismatch(path, "numeric vector")
			}
			w.AppendByte(byte(elemTag))
			w.AppendInt32(int32(n))
			for i := 0; i < n; i++ {
				if err := c.encodeVectorElem(w, kind, c.adapter.VectorGet(v, i), path); err != nil {
					return err
				}
			}
			return nil
		}
	}

	n, ok := c.adapter.SeqLen(v)
	if !ok {
		return typeMismatch(path, "sequence")
	}
	w.AppendByte(byte(elemTag))
	w.AppendInt32(int32(n))
	for i := 1; i <= n; i++ {
		elem := c.adapter.SeqGet(v, i)
		if err := c.encodeValue(w, d.Value, flags, elem, depth+1, path+"[]"); err != nil {
			return err
		}
	}
	return nil
}

// encodeVectorElem writes one element of a SEQ_AS_VECTOR-backed typed
// vector directly, bypassing the generic dispatch in encodeValue since
// the element kind is already known and is never a composite type.
func (c *Codec) encodeVectorElem(w *buffer.Writer, kind value.Kind, elem any, path string) error {
	switch kind {
	case value.KindByte:
		w.AppendByte(elem.(byte))
	case value.KindI16:
		w.AppendInt16(elem.(int16))
	case value.KindI32:
		w.AppendInt32(elem.(int32))
	case value.KindI64:
		w.AppendInt64(elem.(int64))
	case value.KindDouble:
		w.AppendDouble(elem.(float64))
	default:
		return errs.Wrapf(errs.ErrSchemaError, "%s: unsupported vector element kind", path)
	}
	return nil
}

// encodeMap handles MAP (spec §4.4). The pair count must be known
// before the count prefix is written; value.Adapter's MapLen is assumed
// O(1) or otherwise already amortized by the host (see value.Adapter doc).
func (c *Codec) encodeMap(w *buffer.Writer, d *schema.Descriptor, flags schema.Flags, v any, depth int, path string) error {
	n, ok := c.adapter.MapLen(v)
	if !ok {
		return typeMismatch(path, "map")
	}
	w.AppendByte(byte(wire.WireType(d.Key.Ttype)))
	w.AppendByte(byte(wire.WireType(d.Value.Ttype)))
	w.AppendInt32(int32(n))

	var rangeErr error
	c.adapter.MapRange(v, func(key, val any) bool {
		if err := c.encodeValue(w, d.Key, flags, key, depth+1, path+".key"); err != nil {
			rangeErr = err
			return false
		}
		if err := c.encodeValue(w, d.Value, flags, val, depth+1, path+".value"); err != nil {
			rangeErr = err
			return false
		}
		return true
	})
	return rangeErr
}

// encodeStruct handles STRUCT (spec §4.4): fields are emitted in
// ascending field_id order (the order Fields is already sorted in),
// absent fields are skipped entirely (the revision-3 "skip absent"
// policy — see SPEC_FULL.md §6, resolving spec §9 open question 2), and
// a STOP byte terminates the field list.
func (c *Codec) encodeStruct(w *buffer.Writer, d *schema.Descriptor, flags schema.Flags, v any, depth int, path string) error {
	for _, f := range d.Fields {
		var fv any
		if f.Name != "" {
			fv = c.adapter.RecordGet(v, f.Name)
		} else {
			fv = c.adapter.RecordGetByID(v, f.ID)
		}
		if c.adapter.IsNil(fv) {
			continue
		}

		w.AppendByte(byte(wire.WireType(f.Type.Ttype)))
		w.AppendUint16(f.ID)

		fieldPath := path + "." + fieldLabel(f)
		if err := c.encodeValue(w, f.Type, flags, fv, depth+1, fieldPath); err != nil {
			return err
		}
	}
	w.AppendByte(byte(wire.Stop))
	return nil
}

func fieldLabel(f schema.Field) string {
	if f.Name != "" {
		return f.Name
	}
	return strconv.Itoa(int(f.ID))
}
