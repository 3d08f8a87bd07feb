// Package buffer provides the growable write buffer and bounded read
// cursor the codec uses to produce and consume Thrift Binary Protocol
// bytes, along with the big-endian primitives both directions share.
//
// Write and read are deliberately separate types: the writer only ever
// appends (apart from Reset, which empties it for reuse), the reader only
// ever advances, and neither exposes seek. That asymmetry mirrors the
// protocol itself, which is a single linear pass in each direction.
package buffer

import (
	"encoding/binary"
	"math"

	"github.com/kungfusheep/thriftbin/errs"
)

const initialCap = 256

// Writer is an append-only, growable byte buffer. The zero value is
// ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with no preallocated capacity.
func NewWriter() *Writer { return &Writer{} }

// NewWriterSize returns a Writer preallocated to hold at least size bytes.
func NewWriterSize(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Bytes returns the accumulated bytes. The slice aliases the Writer's
// internal storage; callers that retain it across further writes must copy.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Reset discards accumulated bytes but keeps the underlying array, so the
// Writer can be reused (e.g. pooled) without reallocating.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

func (w *Writer) grow(n int) {
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	need := len(w.buf) + n
	newCap := cap(w.buf) * 2
	if newCap < initialCap {
		newCap = initialCap
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(w.buf), newCap)
	copy(grown, w.buf)
	w.buf = grown
}

// Append appends raw bytes verbatim.
func (w *Writer) Append(b []byte) {
	w.grow(len(b))
	w.buf = append(w.buf, b...)
}

// AppendByte appends a single byte.
func (w *Writer) AppendByte(b byte) {
	w.grow(1)
	w.buf = append(w.buf, b)
}

// AppendBool appends 1 for true, 0 for false.
func (w *Writer) AppendBool(v bool) {
	if v {
		w.AppendByte(1)
	} else {
		w.AppendByte(0)
	}
}

// AppendUint16 appends v big-endian.
func (w *Writer) AppendUint16(v uint16) {
	w.grow(2)
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// AppendInt16 appends v as big-endian two's complement.
func (w *Writer) AppendInt16(v int16) { w.AppendUint16(uint16(v)) }

// AppendUint32 appends v big-endian.
func (w *Writer) AppendUint32(v uint32) {
	w.grow(4)
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// AppendInt32 appends v as big-endian two's complement.
func (w *Writer) AppendInt32(v int32) { w.AppendUint32(uint32(v)) }

// AppendUint64 appends v big-endian.
func (w *Writer) AppendUint64(v uint64) {
	w.grow(8)
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// AppendInt64 appends v as big-endian two's complement.
func (w *Writer) AppendInt64(v int64) { w.AppendUint64(uint64(v)) }

// AppendDouble appends v's IEEE-754 binary64 bit pattern, big-endian.
func (w *Writer) AppendDouble(v float64) { w.AppendUint64(math.Float64bits(v)) }

// AppendString appends a big-endian int32 byte count followed by s's bytes.
func (w *Writer) AppendString(s string) {
	w.AppendInt32(int32(len(s)))
	w.Append([]byte(s))
}

// Reader is a bounded, forward-only cursor over a borrowed byte slice.
// It never mutates or takes ownership of buf.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for reading. buf is borrowed, not copied.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Pos reports the current read offset, used for error context.
func (r *Reader) Pos() int { return r.pos }

// Remaining reports how many unread bytes remain.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// TakeExact returns the next n bytes and advances the cursor. The
// returned slice aliases the Reader's backing array. On underflow the
// cursor does not advance.
func (r *Reader) TakeExact(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errs.Wrapf(errs.ErrBufferUnderflow, "at offset %d: need %d bytes, have %d", r.pos, n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// TakeInto copies exactly len(dst) bytes into dst and advances the
// cursor. On underflow the cursor does not advance and dst is untouched.
func (r *Reader) TakeInto(dst []byte) error {
	n := len(dst)
	if n > r.Remaining() {
		return errs.Wrapf(errs.ErrBufferUnderflow, "at offset %d: need %d bytes, have %d", r.pos, n, r.Remaining())
	}
	copy(dst, r.buf[r.pos:r.pos+n])
	r.pos += n
	return nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.TakeExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads one byte and interprets it as a boolean: any nonzero
// byte is true, matching the reference implementation's decode side
// (only the encoder is strict about emitting exactly 0 or 1).
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadUint16 reads a big-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.TakeExact(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadInt16 reads a big-endian two's-complement int16.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.TakeExact(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadInt32 reads a big-endian two's-complement int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a big-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.TakeExact(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadInt64 reads a big-endian two's-complement int64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadDouble reads a big-endian IEEE-754 binary64 bit pattern.
func (r *Reader) ReadDouble() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadString reads a big-endian int32 byte count followed by exactly
// that many raw bytes. A negative or oversized count is BufferUnderflow,
// never an allocation attempt against the declared length.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", errs.Wrapf(errs.ErrBufferUnderflow, "at offset %d: negative string length %d", r.pos-4, n)
	}
	b, err := r.TakeExact(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
