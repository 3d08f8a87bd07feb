package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kungfusheep/thriftbin/codec"
	"github.com/kungfusheep/thriftbin/schema"
	"github.com/kungfusheep/thriftbin/value"
	"github.com/kungfusheep/thriftbin/wire"
)

func newEncodeCmd() *cobra.Command {
	var schemaPath, valuePath, outPath string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON-described value against a schema and write the binary payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(valuePath)
			if err != nil {
				return fmt.Errorf("read value: %w", err)
			}

			var generic any
			if err := json.Unmarshal(raw, &generic); err != nil {
				return fmt.Errorf("parse value json: %w", err)
			}
			root := fromJSONable(generic, desc)

			c := codec.New(desc, value.Native{})
			payload, err := c.Encode(root)
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}

			if outPath == "" || outPath == "-" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}
			return os.WriteFile(outPath, payload, 0o644)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a JSON schema descriptor")
	cmd.Flags().StringVar(&valuePath, "value", "", "path to a JSON file describing the value to encode")
	cmd.Flags().StringVar(&outPath, "out", "-", "output path for the binary payload, - for stdout")
	cmd.MarkFlagRequired("schema")
	cmd.MarkFlagRequired("value")

	return cmd
}

// fromJSONable converts the plain encoding/json tree (map[string]any,
// []any, float64, string, bool, nil) into the shapes value.Native
// expects, guided by d so a JSON object lands as a value.Record under a
// STRUCT descriptor but as a value.Map under a MAP one. Scalars pass
// through unchanged; the codec's own numeric coercion (readInt32 et al.)
// accepts a bare float64 for any integer-typed field, so no further
// narrowing happens here.
func fromJSONable(v any, d *schema.Descriptor) any {
	if v == nil {
		return value.Native{}.Nil()
	}

	switch d.Ttype {
	case wire.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			return v
		}
		rec := value.Record{}
		for k, val := range obj {
			if f, found := fieldByName(d, k); found {
				rec[k] = fromJSONable(val, f.Type)
			} else {
				rec[k] = val
			}
		}
		return rec

	case wire.Map:
		obj, ok := v.(map[string]any)
		if !ok {
			return v
		}
		m := value.Map{}
		for k, val := range obj {
			m[k] = fromJSONable(val, d.Value)
		}
		return m

	case wire.List, wire.Set:
		arr, ok := v.([]any)
		if !ok {
			return v
		}
		seq := make(value.Seq, len(arr))
		for i, val := range arr {
			seq[i] = fromJSONable(val, d.Value)
		}
		return seq

	default:
		return v
	}
}

func fieldByName(d *schema.Descriptor, name string) (schema.Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return schema.Field{}, false
}
