package codec

import (
	"github.com/kungfusheep/thriftbin/errs"
	"github.com/kungfusheep/thriftbin/value"
	"github.com/kungfusheep/thriftbin/wire"
)

// vectorKind maps a primitive numeric wire.Type to the value.Kind a
// typed vector under SEQ_AS_VECTOR or I64_AS_TENSOR is built from.
func vectorKind(t wire.Type) (value.Kind, bool) {
	if !wire.IsPrimitiveNumeric(t) {
		return 0, false
	}
	switch t {
	case wire.Byte:
		return value.KindByte, true
	case wire.I16:
		return value.KindI16, true
	case wire.I32:
		return value.KindI32, true
	case wire.I64:
		return value.KindI64, true
	case wire.Double:
		return value.KindDouble, true
	}
	return 0, false
}

func typeMismatch(path, want string) error {
	return errs.Wrapf(errs.ErrTypeMismatch, "%s: value does not provide a %s", path, want)
}

// readByte resolves a BYTE host value: the typed accessor first, a
// float64 round-trip as a fallback for adapters that only expose numbers
// generically (spec §4.4's "reads the host value as a float" path).
func (c *Codec) readByte(v any, path string) (byte, error) {
	if b, ok := c.adapter.Byte(v); ok {
		return b, nil
	}
	f, ok := c.adapter.Float64(v)
	if !ok {
		return 0, typeMismatch(path, "byte")
	}
	b := byte(f)
	if float64(b) != f {
		return 0, errs.Wrapf(errs.ErrRangeError, "%s: %v does not fit losslessly in a byte", path, f)
	}
	return b, nil
}

func (c *Codec) readInt16(v any, path string) (int16, error) {
	if i, ok := c.adapter.Int16(v); ok {
		return i, nil
	}
	f, ok := c.adapter.Float64(v)
	if !ok {
		return 0, typeMismatch(path, "i16")
	}
	i := int16(f)
	if float64(i) != f {
		return 0, errs.Wrapf(errs.ErrRangeError, "%s: %v does not fit losslessly in an i16", path, f)
	}
	return i, nil
}

func (c *Codec) readInt32(v any, path string) (int32, error) {
	if i, ok := c.adapter.Int32(v); ok {
		return i, nil
	}
	f, ok := c.adapter.Float64(v)
	if !ok {
		return 0, typeMismatch(path, "i32")
	}
	i := int32(f)
	if float64(i) != f {
		return 0, errs.Wrapf(errs.ErrRangeError, "%s: %v does not fit losslessly in an i32", path, f)
	}
	return i, nil
}

// readInt64Number implements I64_AS_NUMBER: regardless of how the host
// stores the value, it must round-trip exactly through float64 — the
// wire field is declared as double-representable, so a typed int64
// accessor does not exempt the value from the check (spec §4.4).
func (c *Codec) readInt64Number(v any, path string) (int64, error) {
	var i int64
	if got, ok := c.adapter.Int64(v); ok {
		i = got
	} else {
		f, ok := c.adapter.Float64(v)
		if !ok {
			return 0, typeMismatch(path, "i64")
		}
		i = int64(f)
		if float64(i) != f {
			return 0, errs.Wrapf(errs.ErrRangeError, "%s: %v does not fit losslessly in an i64 double round-trip", path, f)
		}
	}
	if int64(float64(i)) != i {
		return 0, errs.Wrapf(errs.ErrRangeError, "%s: %d does not fit losslessly in a double", path, i)
	}
	return i, nil
}
