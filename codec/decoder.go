package codec

import (
	"strconv"

	"github.com/kungfusheep/thriftbin/buffer"
	"github.com/kungfusheep/thriftbin/errs"
	"github.com/kungfusheep/thriftbin/schema"
	"github.com/kungfusheep/thriftbin/value"
	"github.com/kungfusheep/thriftbin/wire"
)

// decodeValue dispatches on d.Ttype and materializes a host value from
// r (spec §4.5). Within STRUCT, MAP, LIST and SET the element/field wire
// tag is read from the buffer and checked against the declared type
// (spec §9 open question 4, resolved as TypeMismatch on mismatch)
// before the nested descriptor is used to parse the body.
func (c *Codec) decodeValue(r *buffer.Reader, d *schema.Descriptor, flags schema.Flags, depth int, path string) (any, error) {
	if depth > c.maxDepth {
		return nil, errs.Wrapf(errs.ErrSchemaError, "%s: exceeds max recursion depth %d", path, c.maxDepth)
	}

	switch d.Ttype {
	case wire.Bool:
		b, err := r.ReadBool()
		return b, wrapPos(err, r, path)

	case wire.Byte:
		b, err := r.ReadByte()
		return b, wrapPos(err, r, path)

	case wire.I16:
		i, err := r.ReadInt16()
		return i, wrapPos(err, r, path)

	case wire.I32, wire.Enum:
		i, err := r.ReadInt32()
		return i, wrapPos(err, r, path)

	case wire.I64:
		return c.decodeI64(r, flags, path)

	case wire.Double:
		f, err := r.ReadDouble()
		return f, wrapPos(err, r, path)

	case wire.String:
		s, err := r.ReadString()
		return s, wrapPos(err, r, path)

	case wire.List, wire.Set:
		return c.decodeSeq(r, d, flags, depth, path)

	case wire.Map:
		return c.decodeMap(r, d, flags, depth, path)

	case wire.Struct:
		return c.decodeStruct(r, d, flags, depth, path)

	default:
		return nil, errs.Wrapf(errs.ErrSchemaError, "%s: descriptor has no decodable ttype %v", path, d.Ttype)
	}
}

func wrapPos(err error, r *buffer.Reader, path string) error {
	if err == nil {
		return nil
	}
	return errs.Wrapf(err, "%s: at offset %d", path, r.Pos())
}

// readWireTag reads one wire-type tag byte and rejects the unassigned
// slots (5, 7, 9) and any other out-of-range byte before the caller
// ever dispatches on it.
func readWireTag(r *buffer.Reader, path string) (wire.Type, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, wrapPos(err, r, path)
	}
	t := wire.Type(b)
	if !wire.Valid(t) {
		return 0, errs.Wrapf(errs.ErrParseError, "%s: %d is not a valid wire type tag", path, b)
	}
	return t, nil
}

// decodeI64 implements the three I64 policies symmetrically with encodeI64.
func (c *Codec) decodeI64(r *buffer.Reader, flags schema.Flags, path string) (any, error) {
	i, err := r.ReadInt64()
	if err != nil {
		return nil, wrapPos(err, r, path)
	}

	switch flags.I64Mode() {
	case schema.I64AsString:
		return strconv.FormatInt(i, 10), nil

	case schema.I64AsTensor:
		vec := c.adapter.NewVector(value.KindI64, 1)
		c.adapter.VectorSet(vec, 0, i)
		return vec, nil

	default: // I64AsNumber
		if int64(float64(i)) != i {
			return nil, errs.Wrapf(errs.ErrRangeError, "%s: %d does not fit losslessly in a double", path, i)
		}
		return float64(i), nil
	}
}

// decodeSeq handles LIST and SET (spec §4.5).
func (c *Codec) decodeSeq(r *buffer.Reader, d *schema.Descriptor, flags schema.Flags, depth int, path string) (any, error) {
	elemTag, err := readWireTag(r, path)
	if err != nil {
		return nil, err
	}
	count, err := r.ReadInt32()
	if err != nil {
		return nil, wrapPos(err, r, path)
	}
	if count < 0 {
		return nil, errs.Wrapf(errs.ErrBufferUnderflow, "%s: negative element count %d", path, count)
	}

	if elemTag != wire.WireType(d.Value.Ttype) {
		return nil, errs.Wrapf(errs.ErrTypeMismatch, "%s: wire element type %v does not match declared %v", path, elemTag, d.Value.Ttype)
	}

	c.log.WithFields(logFields(path, int(count))).Debug("decoding sequence")

	if flags.Vectorized() {
		if kind, ok := vectorKind(d.Value.Ttype); ok {
			vec := c.adapter.NewVector(kind, int(count))
			for i := 0; i < int(count); i++ {
				elem, err := c.decodeVectorElem(r, kind, path)
				if err != nil {
					return nil, err
				}
				c.adapter.VectorSet(vec, i, elem)
			}
			return vec, nil
		}
	}

	seq := c.adapter.NewSeq(int(count))
	for i := 1; i <= int(count); i++ {
		elem, err := c.decodeValue(r, d.Value, flags, depth+1, path+"[]")
		if err != nil {
			return nil, err
		}
		c.adapter.SeqSet(seq, i, elem)
	}
	return seq, nil
}

func (c *Codec) decodeVectorElem(r *buffer.Reader, kind value.Kind, path string) (any, error) {
	switch kind {
	case value.KindByte:
		b, err := r.ReadByte()
		return b, wrapPos(err, r, path)
	case value.KindI16:
		i, err := r.ReadInt16()
		return i, wrapPos(err, r, path)
	case value.KindI32:
		i, err := r.ReadInt32()
		return i, wrapPos(err, r, path)
	case value.KindI64:
		i, err := r.ReadInt64()
		return i, wrapPos(err, r, path)
	case value.KindDouble:
		f, err := r.ReadDouble()
		return f, wrapPos(err, r, path)
	}
	return nil, errs.Wrapf(errs.ErrSchemaError, "%s: unsupported vector element kind", path)
}

// decodeMap handles MAP (spec §4.5).
func (c *Codec) decodeMap(r *buffer.Reader, d *schema.Descriptor, flags schema.Flags, depth int, path string) (any, error) {
	kt, err := readWireTag(r, path)
	if err != nil {
		return nil, err
	}
	vt, err := readWireTag(r, path)
	if err != nil {
		return nil, err
	}
	count, err := r.ReadInt32()
	if err != nil {
		return nil, wrapPos(err, r, path)
	}
	if count < 0 {
		return nil, errs.Wrapf(errs.ErrBufferUnderflow, "%s: negative pair count %d", path, count)
	}

	if kt != wire.WireType(d.Key.Ttype) {
		return nil, errs.Wrapf(errs.ErrTypeMismatch, "%s: wire key type %v does not match declared %v", path, kt, d.Key.Ttype)
	}
	if vt != wire.WireType(d.Value.Ttype) {
		return nil, errs.Wrapf(errs.ErrTypeMismatch, "%s: wire value type %v does not match declared %v", path, vt, d.Value.Ttype)
	}

	c.log.WithFields(logFields(path, int(count))).Debug("decoding map")

	m := c.adapter.NewMap(int(count))
	for i := 0; i < int(count); i++ {
		key, err := c.decodeValue(r, d.Key, flags, depth+1, path+".key")
		if err != nil {
			return nil, err
		}
		val, err := c.decodeValue(r, d.Value, flags, depth+1, path+".value")
		if err != nil {
			return nil, err
		}
		c.adapter.MapSet(m, key, val)
	}
	return m, nil
}

// decodeStruct handles STRUCT (spec §4.5): field ids are read until a
// STOP byte is seen. A descriptor with at least one field rejects an
// unmatched id as UnknownField; a descriptor with zero fields (a
// permissive record) accepts any id, keyed by its decimal rendering.
func (c *Codec) decodeStruct(r *buffer.Reader, d *schema.Descriptor, flags schema.Flags, depth int, path string) (any, error) {
	c.log.WithField("path", path).Debug("decoding struct")

	rec := c.adapter.NewRecord()

	for {
		vt, err := readWireTag(r, path)
		if err != nil {
			return nil, err
		}
		if vt == wire.Stop {
			break
		}

		fid, err := r.ReadUint16()
		if err != nil {
			return nil, wrapPos(err, r, path)
		}

		f, found := d.FieldByID(fid)
		if !found {
			if len(d.Fields) > 0 {
				return nil, errs.Wrapf(errs.ErrUnknownField, "%s: field id %d not present in schema", path, fid)
			}
			// permissive record: no declared shape for this field, so
			// decode generically off the wire tag itself, recursing
			// through nested composites exactly as their own element/
			// key/value tags dictate (decodeWildcard), mirroring the
			// NULL-descriptor threading of the reference decoder.
			fieldPath := path + "." + strconv.Itoa(int(fid))
			val, err := c.decodeWildcard(r, vt, flags, depth+1, fieldPath)
			if err != nil {
				return nil, err
			}
			c.adapter.RecordSetByID(rec, fid, val)
			continue
		}

		if vt != wire.WireType(f.Type.Ttype) {
			return nil, errs.Wrapf(errs.ErrTypeMismatch, "%s: field %d wire type %v does not match declared %v", path, fid, vt, f.Type.Ttype)
		}

		fieldPath := path + "." + fieldLabel(f)
		val, err := c.decodeValue(r, f.Type, flags, depth+1, fieldPath)
		if err != nil {
			return nil, err
		}

		if f.Name != "" {
			c.adapter.RecordSet(rec, f.Name, val)
		} else {
			c.adapter.RecordSetByID(rec, f.ID, val)
		}
	}

	return rec, nil
}

// decodeWildcard decodes a value whose wire tag wt is known but has no
// declared schema shape: a scalar tag is decoded directly, and each
// composite tag reads its own element/key/value type(s) off the wire
// and recurses, instead of requiring a pre-built nested descriptor.
// This mirrors thrift_read_rcsv's NULL field_desc threading through the
// MAP/LIST/SET/STRUCT branches in the reference decoder, which lets an
// unknown or permissive field decode to arbitrary depth.
func (c *Codec) decodeWildcard(r *buffer.Reader, wt wire.Type, flags schema.Flags, depth int, path string) (any, error) {
	if depth > c.maxDepth {
		return nil, errs.Wrapf(errs.ErrSchemaError, "%s: exceeds max recursion depth %d", path, c.maxDepth)
	}

	switch wt {
	case wire.Struct:
		return c.decodeStruct(r, &schema.Descriptor{Ttype: wire.Struct}, flags, depth, path)

	case wire.List, wire.Set:
		elemTag, err := readWireTag(r, path)
		if err != nil {
			return nil, err
		}
		count, err := r.ReadInt32()
		if err != nil {
			return nil, wrapPos(err, r, path)
		}
		if count < 0 {
			return nil, errs.Wrapf(errs.ErrBufferUnderflow, "%s: negative element count %d", path, count)
		}
		c.log.WithFields(logFields(path, int(count))).Debug("decoding sequence")
		seq := c.adapter.NewSeq(int(count))
		for i := 1; i <= int(count); i++ {
			elem, err := c.decodeWildcard(r, elemTag, flags, depth+1, path+"[]")
			if err != nil {
				return nil, err
			}
			c.adapter.SeqSet(seq, i, elem)
		}
		return seq, nil

	case wire.Map:
		kt, err := readWireTag(r, path)
		if err != nil {
			return nil, err
		}
		vt, err := readWireTag(r, path)
		if err != nil {
			return nil, err
		}
		count, err := r.ReadInt32()
		if err != nil {
			return nil, wrapPos(err, r, path)
		}
		if count < 0 {
			return nil, errs.Wrapf(errs.ErrBufferUnderflow, "%s: negative pair count %d", path, count)
		}
		c.log.WithFields(logFields(path, int(count))).Debug("decoding map")
		m := c.adapter.NewMap(int(count))
		for i := 0; i < int(count); i++ {
			key, err := c.decodeWildcard(r, kt, flags, depth+1, path+".key")
			if err != nil {
				return nil, err
			}
			val, err := c.decodeWildcard(r, vt, flags, depth+1, path+".value")
			if err != nil {
				return nil, err
			}
			c.adapter.MapSet(m, key, val)
		}
		return m, nil

	default:
		return c.decodeValue(r, &schema.Descriptor{Ttype: wt}, flags, depth, path)
	}
}

func logFields(path string, count int) map[string]any {
	return map[string]any{"path": path, "count": count}
}
