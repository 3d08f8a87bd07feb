package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kungfusheep/thriftbin/value"
)

func TestNativeScalarAccessors(t *testing.T) {
	n := value.Native{}

	b, ok := n.Bool(true)
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = n.Bool("nope")
	assert.False(t, ok)

	i64, ok := n.Int64(int64(42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), i64)

	s, ok := n.String("hi")
	assert.True(t, ok)
	assert.Equal(t, "hi", s)
}

func TestNativeRecordByNameAndByID(t *testing.T) {
	n := value.Native{}
	rec := n.NewRecord()

	n.RecordSet(rec, "x", int32(7))
	n.RecordSetByID(rec, 9, "nine")

	assert.Equal(t, int32(7), n.RecordGet(rec, "x"))
	assert.Equal(t, "nine", n.RecordGetByID(rec, 9))
	assert.True(t, n.IsNil(n.RecordGet(rec, "missing")))
}

func TestNativeSeqIsOneBased(t *testing.T) {
	n := value.Native{}
	seq := n.NewSeq(3)
	n.SeqSet(seq, 1, "a")
	n.SeqSet(seq, 2, "b")
	n.SeqSet(seq, 3, "c")

	l, ok := n.SeqLen(seq)
	assert.True(t, ok)
	assert.Equal(t, 3, l)
	assert.Equal(t, "a", n.SeqGet(seq, 1))
	assert.Equal(t, "c", n.SeqGet(seq, 3))
	assert.True(t, n.IsNil(n.SeqGet(seq, 0)))
	assert.True(t, n.IsNil(n.SeqGet(seq, 4)))
}

func TestNativeMapRangeVisitsEveryPair(t *testing.T) {
	n := value.Native{}
	m := n.NewMap(2)
	n.MapSet(m, "a", int16(1))
	n.MapSet(m, "b", int16(2))

	seen := map[any]any{}
	n.MapRange(m, func(k, v any) bool {
		seen[k] = v
		return true
	})
	assert.Equal(t, map[any]any{"a": int16(1), "b": int16(2)}, seen)
}

func TestNativeMapRangeStopsOnFalse(t *testing.T) {
	n := value.Native{}
	m := n.NewMap(3)
	n.MapSet(m, "a", 1)
	n.MapSet(m, "b", 2)
	n.MapSet(m, "c", 3)

	visited := 0
	n.MapRange(m, func(k, v any) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestNativeVectorRoundTrip(t *testing.T) {
	n := value.Native{}
	vec := n.NewVector(value.KindI32, 3)
	n.VectorSet(vec, 0, int32(10))
	n.VectorSet(vec, 1, int32(20))
	n.VectorSet(vec, 2, int32(30))

	l, ok := n.VectorLen(vec)
	assert.True(t, ok)
	assert.Equal(t, 3, l)
	assert.Equal(t, int32(20), n.VectorGet(vec, 1))
}

func TestNativeNilSentinelIsDistinctFromZeroValues(t *testing.T) {
	n := value.Native{}
	assert.True(t, n.IsNil(n.Nil()))
	assert.False(t, n.IsNil(int32(0)))
	assert.False(t, n.IsNil(""))
	assert.False(t, n.IsNil(false))
}
