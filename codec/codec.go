// Package codec implements the encode and decode walkers (spec §4.4,
// §4.5) that move between host values (reached through a value.Adapter)
// and Thrift Binary Protocol bytes, parameterized by a schema.Descriptor.
//
// A Codec is safe for concurrent use: encode and decode calls sharing
// one Codec each allocate their own buffer.Writer/buffer.Reader and walk
// a read-only descriptor, matching the concurrency model of spec §5.
package codec

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/kungfusheep/thriftbin/buffer"
	"github.com/kungfusheep/thriftbin/schema"
	"github.com/kungfusheep/thriftbin/value"
)

// DefaultMaxDepth bounds recursive descent through nested STRUCT/MAP/
// LIST/SET shapes, per the recursion-depth design note in spec §9.
const DefaultMaxDepth = 128

// Codec binds a descriptor to a value.Adapter and exposes the four
// operations of spec §6: Encode, EncodeInto, Decode and DecodeFrom.
type Codec struct {
	desc     *schema.Descriptor
	adapter  value.Adapter
	maxDepth int
	log      *logrus.Logger
}

// Option configures a Codec at construction.
type Option func(*Codec)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(c *Codec) { c.maxDepth = n }
}

// WithLogger attaches a logger that receives a debug-level trace of
// every STRUCT/MAP/LIST/SET entered during decode. Nil is ignored; by
// default a Codec logs nowhere.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.log = l
		}
	}
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New constructs a Codec for desc using adapter to reach host values.
func New(desc *schema.Descriptor, adapter value.Adapter, opts ...Option) *Codec {
	c := &Codec{
		desc:     desc,
		adapter:  adapter,
		maxDepth: DefaultMaxDepth,
		log:      discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode walks root against the Codec's descriptor and returns the
// resulting Thrift Binary Protocol bytes.
func (c *Codec) Encode(root any) ([]byte, error) {
	w := buffer.NewWriter()
	if err := c.EncodeInto(w, root); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeInto appends root's encoding onto w, the zero-copy variant of
// Encode for callers that already own a target buffer.Writer (spec §6's
// optional encode_into).
func (c *Codec) EncodeInto(w *buffer.Writer, root any) error {
	return c.encodeValue(w, c.desc, c.desc.Flags(), root, 0, "$")
}

// Decode parses data against the Codec's descriptor and returns the
// decoded root host value.
func (c *Codec) Decode(data []byte) (any, error) {
	return c.DecodeFrom(data)
}

// DecodeFrom is Decode's explicit zero-copy spelling (spec §6's optional
// decode_from): data is borrowed, never copied, for the life of the call.
func (c *Codec) DecodeFrom(data []byte) (any, error) {
	r := buffer.NewReader(data)
	return c.decodeValue(r, c.desc, c.desc.Flags(), 0, "$")
}
