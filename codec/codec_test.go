package codec_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungfusheep/thriftbin/codec"
	"github.com/kungfusheep/thriftbin/errs"
	"github.com/kungfusheep/thriftbin/schema"
	"github.com/kungfusheep/thriftbin/value"
)

func mustBuild(t *testing.T, spec schema.Spec) *schema.Descriptor {
	t.Helper()
	d, err := schema.Build(spec)
	require.NoError(t, err)
	return d
}

// S1 — bool.
func TestScenarioBool(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "bool"})
	c := codec.New(d, value.Native{})

	got, err := c.Encode(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)

	v, err := c.Decode([]byte{0x00})
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

// S2 — i32.
func TestScenarioI32(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "i32"})
	c := codec.New(d, value.Native{})

	got, err := c.Encode(int32(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, got)

	got, err = c.Encode(int32(-1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, got)

	v, err := c.Decode([]byte{0x7F, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, int32(2147483647), v)
}

// S3 — string.
func TestScenarioString(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "string"})
	c := codec.New(d, value.Native{})

	got, err := c.Encode("hi")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02, 'h', 'i'}, got)

	v, err := c.Decode([]byte{0x00, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

// S4 — list of i32.
func TestScenarioListOfI32(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "list", Value: &schema.Spec{Ttype: "i32"}})
	c := codec.New(d, value.Native{})

	seq := value.Seq{int32(10), int32(20)}
	got, err := c.Encode(seq)
	require.NoError(t, err)
	want := []byte{
		0x08,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x0A,
		0x00, 0x00, 0x00, 0x14,
	}
	assert.Equal(t, want, got)

	v, err := c.Decode(want)
	require.NoError(t, err)
	assert.True(t, cmp.Equal(seq, v.(value.Seq)))
}

// S5 — map<string,i16>.
func TestScenarioMapStringToI16(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "map", Key: &schema.Spec{Ttype: "string"}, Value: &schema.Spec{Ttype: "i16"}})
	c := codec.New(d, value.Native{})

	m := value.Map{"a": int16(1)}
	got, err := c.Encode(m)
	require.NoError(t, err)
	want := []byte{
		0x0B, 0x06,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01, 'a',
		0x00, 0x01,
	}
	assert.Equal(t, want, got)

	v, err := c.Decode(want)
	require.NoError(t, err)
	assert.Equal(t, m, v.(value.Map))
}

// S6 — struct.
func TestScenarioStruct(t *testing.T) {
	d := mustBuild(t, schema.Spec{
		Ttype: "struct",
		Fields: []schema.FieldSpec{
			{ID: 1, Spec: schema.Spec{Ttype: "i32", Name: "x"}},
			{ID: 2, Spec: schema.Spec{Ttype: "string", Name: "s"}},
		},
	})
	c := codec.New(d, value.Native{})

	rec := value.Record{"x": int32(7), "s": "hi"}
	got, err := c.Encode(rec)
	require.NoError(t, err)
	want := []byte{
		0x08, 0x00, 0x01, 0x00, 0x00, 0x00, 0x07,
		0x0B, 0x00, 0x02, 0x00, 0x00, 0x00, 0x02, 'h', 'i',
		0x00,
	}
	assert.Equal(t, want, got)

	v, err := c.Decode(want)
	require.NoError(t, err)
	assert.Equal(t, rec, v.(value.Record))
}

func TestScenarioStructAbsentFieldSkippedAndOmittedFromWire(t *testing.T) {
	d := mustBuild(t, schema.Spec{
		Ttype: "struct",
		Fields: []schema.FieldSpec{
			{ID: 1, Spec: schema.Spec{Ttype: "i32", Name: "x"}},
			{ID: 2, Spec: schema.Spec{Ttype: "string", Name: "s"}},
		},
	})
	c := codec.New(d, value.Native{})

	rec := value.Record{"x": int32(7)}
	got, err := c.Encode(rec)
	require.NoError(t, err)
	want := []byte{
		0x08, 0x00, 0x01, 0x00, 0x00, 0x00, 0x07,
		0x00,
	}
	assert.Equal(t, want, got)

	v, err := c.Decode(want)
	require.NoError(t, err)
	assert.Equal(t, value.Record{"x": int32(7)}, v.(value.Record))
}

func TestEmptyCompositesRoundTripEmpty(t *testing.T) {
	cases := []struct {
		name string
		spec schema.Spec
		v    any
	}{
		{"string", schema.Spec{Ttype: "string"}, ""},
		{"list", schema.Spec{Ttype: "list", Value: &schema.Spec{Ttype: "i32"}}, value.Seq{}},
		{"set", schema.Spec{Ttype: "set", Value: &schema.Spec{Ttype: "i32"}}, value.Seq{}},
		{"map", schema.Spec{Ttype: "map", Key: &schema.Spec{Ttype: "string"}, Value: &schema.Spec{Ttype: "i32"}}, value.Map{}},
		{"struct", schema.Spec{Ttype: "struct"}, value.Record{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := mustBuild(t, tc.spec)
			c := codec.New(d, value.Native{})
			enc, err := c.Encode(tc.v)
			require.NoError(t, err)
			dec, err := c.Decode(enc)
			require.NoError(t, err)
			assert.Equal(t, tc.v, dec)
		})
	}
}

func TestIntegerBoundaryValuesRoundTripExactBits(t *testing.T) {
	t.Run("i16", func(t *testing.T) {
		d := mustBuild(t, schema.Spec{Ttype: "i16"})
		c := codec.New(d, value.Native{})
		for _, v := range []int16{0, 1, -1, 32767, -32768} {
			enc, err := c.Encode(v)
			require.NoError(t, err)
			dec, err := c.Decode(enc)
			require.NoError(t, err)
			assert.Equal(t, v, dec)
		}
	})
	t.Run("i32", func(t *testing.T) {
		d := mustBuild(t, schema.Spec{Ttype: "i32"})
		c := codec.New(d, value.Native{})
		for _, v := range []int32{0, 1, -1, 2147483647, -2147483648} {
			enc, err := c.Encode(v)
			require.NoError(t, err)
			dec, err := c.Decode(enc)
			require.NoError(t, err)
			assert.Equal(t, v, dec)
		}
	})
	t.Run("i64 as number within double range", func(t *testing.T) {
		d := mustBuild(t, schema.Spec{Ttype: "i64"})
		c := codec.New(d, value.Native{})
		for _, v := range []int64{0, 1, -1, 1 << 53, -(1 << 53)} {
			enc, err := c.Encode(float64(v))
			require.NoError(t, err)
			dec, err := c.Decode(enc)
			require.NoError(t, err)
			assert.Equal(t, float64(v), dec)
		}
	})
}

func TestI64AsNumberRejectsLossyValues(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "i64"})
	c := codec.New(d, value.Native{})
	_, err := c.Encode(int64(1<<63 - 1)) // max int64, not exactly representable as float64
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrRangeError)
}

func TestI64AsStringPolicy(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "i64", I64String: true})
	c := codec.New(d, value.Native{})

	enc, err := c.Encode("1234567890123456789")
	require.NoError(t, err)
	dec, err := c.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, "1234567890123456789", dec)

	_, err = c.Encode("not-a-number")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrParseError)

	_, err = c.Encode("99999999999999999999999999")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrRangeError)
}

func TestI64AsTensorPolicy(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "i64", I64Tensor: true})
	c := codec.New(d, value.Native{})

	vec := value.Vector{Kind: value.KindI64, I64: []int64{42}}
	enc, err := c.Encode(vec)
	require.NoError(t, err)

	dec, err := c.Decode(enc)
	require.NoError(t, err)
	got := dec.(value.Vector)
	assert.Equal(t, value.KindI64, got.Kind)
	assert.Equal(t, []int64{42}, got.I64)
}

func TestSeqAsVectorPolicy(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "list", Value: &schema.Spec{Ttype: "i32"}, Tensors: true})
	c := codec.New(d, value.Native{})

	vec := value.Vector{Kind: value.KindI32, I32: []int32{1, 2, 3}}
	enc, err := c.Encode(vec)
	require.NoError(t, err)

	dec, err := c.Decode(enc)
	require.NoError(t, err)
	got := dec.(value.Vector)
	assert.Equal(t, []int32{1, 2, 3}, got.I32)
}

func TestDecodeUnknownFieldFailsOnNonEmptySchema(t *testing.T) {
	d := mustBuild(t, schema.Spec{
		Ttype:  "struct",
		Fields: []schema.FieldSpec{{ID: 1, Spec: schema.Spec{Ttype: "i32", Name: "x"}}},
	})
	c := codec.New(d, value.Native{})

	wire := []byte{
		0x08, 0x00, 0x02, 0x00, 0x00, 0x00, 0x07, // field id 2, not in schema
		0x00,
	}
	_, err := c.Decode(wire)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnknownField)
}

func TestDecodePermissiveStructKeysByNumericID(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "struct"}) // no fields declared

	c := codec.New(d, value.Native{})
	wire := []byte{
		0x08, 0x00, 0x09, 0x00, 0x00, 0x00, 0x07,
		0x00,
	}
	v, err := c.Decode(wire)
	require.NoError(t, err)
	rec := v.(value.Record)
	assert.Equal(t, int32(7), rec[strconv.Itoa(9)])
}

func TestDecodePermissiveStructDecodesNestedList(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "struct"}) // no fields declared
	c := codec.New(d, value.Native{})

	wire := []byte{
		0x0F, 0x00, 0x05, // field 5: list, no declared shape
		0x08, 0x00, 0x00, 0x00, 0x02, // element type i32, count 2
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x02,
		0x00, // stop
	}
	v, err := c.Decode(wire)
	require.NoError(t, err)
	rec := v.(value.Record)
	assert.Equal(t, value.Seq{int32(1), int32(2)}, rec[strconv.Itoa(5)])
}

func TestDecodePermissiveStructDecodesNestedMap(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "struct"}) // no fields declared
	c := codec.New(d, value.Native{})

	wire := []byte{
		0x0D, 0x00, 0x07, // field 7: map, no declared shape
		0x0B, 0x06, 0x00, 0x00, 0x00, 0x01, // key type string, value type i16, count 1
		0x00, 0x00, 0x00, 0x01, 'a', // key "a"
		0x00, 0x02, // value 2
		0x00, // stop
	}
	v, err := c.Decode(wire)
	require.NoError(t, err)
	rec := v.(value.Record)
	assert.Equal(t, value.Map{"a": int16(2)}, rec[strconv.Itoa(7)])
}

func TestDecodePermissiveStructDecodesArbitrarilyNestedStruct(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "struct"}) // no fields declared
	c := codec.New(d, value.Native{})

	wire := []byte{
		0x0C, 0x00, 0x01, // field 1: struct, no declared shape
		0x08, 0x00, 0x02, 0x00, 0x00, 0x00, 0x2A, // nested field 2: i32 = 42
		0x00, // nested stop
		0x00, // outer stop
	}
	v, err := c.Decode(wire)
	require.NoError(t, err)
	rec := v.(value.Record)
	inner := rec[strconv.Itoa(1)].(value.Record)
	assert.Equal(t, int32(42), inner[strconv.Itoa(2)])
}

func TestDecodeStructFieldWireTypeMismatchFailsTypeMismatch(t *testing.T) {
	d := mustBuild(t, schema.Spec{
		Ttype:  "struct",
		Fields: []schema.FieldSpec{{ID: 1, Spec: schema.Spec{Ttype: "i32", Name: "x"}}},
	})
	c := codec.New(d, value.Native{})

	wire := []byte{
		0x0B, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, // string tag where i32 was declared
		0x00,
	}
	_, err := c.Decode(wire)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestDecodeTruncatedStringLengthFailsUnderflowNotAllocation(t *testing.T) {
	d := mustBuild(t, schema.Spec{Ttype: "string"})
	c := codec.New(d, value.Native{})

	huge := []byte{0x7F, 0xFF, 0xFF, 0xFF} // declares ~2^31 bytes, supplies none
	_, err := c.Decode(huge)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrBufferUnderflow)
}

func TestRecursionDepthGuard(t *testing.T) {
	spec := schema.Spec{Ttype: "i32"}
	v := any(int32(1))
	for i := 0; i < codec.DefaultMaxDepth+5; i++ {
		spec = schema.Spec{Ttype: "list", Value: &spec}
		v = value.Seq{v}
	}
	d := mustBuild(t, spec)
	c := codec.New(d, value.Native{})

	_, err := c.Encode(v)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSchemaError)
}

// Multiple goroutines may invoke encode/decode concurrently against the
// same Codec provided each call owns its own buffer and value root
// (spec §5).
func TestConcurrentEncodeDecodeAgainstSharedCodec(t *testing.T) {
	d := mustBuild(t, schema.Spec{
		Ttype: "struct",
		Fields: []schema.FieldSpec{
			{ID: 1, Spec: schema.Spec{Ttype: "i32", Name: "x"}},
			{ID: 2, Spec: schema.Spec{Ttype: "string", Name: "s"}},
		},
	})
	c := codec.New(d, value.Native{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := value.Record{"x": int32(i), "s": "hi"}
			enc, err := c.Encode(rec)
			assert.NoError(t, err)
			dec, err := c.Decode(enc)
			assert.NoError(t, err)
			assert.Equal(t, rec, dec)
		}(i)
	}
	wg.Wait()
}

func TestDeterministicEncodingForStructurallyEqualValues(t *testing.T) {
	d := mustBuild(t, schema.Spec{
		Ttype: "struct",
		Fields: []schema.FieldSpec{
			{ID: 1, Spec: schema.Spec{Ttype: "i32", Name: "x"}},
			{ID: 2, Spec: schema.Spec{Ttype: "string", Name: "s"}},
		},
	})
	c := codec.New(d, value.Native{})

	a := value.Record{"x": int32(1), "s": "q"}
	b := value.Record{"x": int32(1), "s": "q"}

	ea, err := c.Encode(a)
	require.NoError(t, err)
	eb, err := c.Encode(b)
	require.NoError(t, err)
	assert.Equal(t, ea, eb)
}
