package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kungfusheep/thriftbin/codec"
	"github.com/kungfusheep/thriftbin/schema"
	"github.com/kungfusheep/thriftbin/value"
)

func newDecodeCmd() *cobra.Command {
	var schemaPath, payloadPath string
	var verbose bool
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a binary payload against a JSON schema and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			payload, err := os.ReadFile(payloadPath)
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}

			opts := []codec.Option{codec.WithMaxDepth(maxDepth)}
			if verbose {
				log := logrus.New()
				log.SetLevel(logrus.DebugLevel)
				opts = append(opts, codec.WithLogger(log))
			}
			c := codec.New(desc, value.Native{}, opts...)

			v, err := c.Decode(payload)
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}

			out, err := json.MarshalIndent(toJSONable(v), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal decoded value: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
			fmt.Fprintf(cmd.ErrOrStderr(), "shape hash: %08x\n", desc.Hash())
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a JSON schema descriptor")
	cmd.Flags().StringVar(&payloadPath, "payload", "", "path to the binary payload to decode")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log a debug trace of every struct/map/list/set entered")
	cmd.Flags().IntVar(&maxDepth, "max-depth", codec.DefaultMaxDepth, "recursion depth guard")
	cmd.MarkFlagRequired("schema")
	cmd.MarkFlagRequired("payload")

	return cmd
}

func loadSchema(path string) (*schema.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	desc, err := schema.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return desc, nil
}

// toJSONable recurses over a value.Native result, converting the
// interfaces encoding/json cannot handle directly (value.Record's
// map[string]any is fine as-is, but value.Seq, value.Map and
// value.Vector need a plain-JSON shape).
func toJSONable(v any) any {
	switch t := v.(type) {
	case value.Record:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = toJSONable(val)
		}
		return out
	case value.Seq:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = toJSONable(val)
		}
		return out
	case value.Map:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = toJSONable(val)
		}
		return out
	case value.Vector:
		return vectorToJSONable(t)
	default:
		return v
	}
}

func vectorToJSONable(vec value.Vector) any {
	switch vec.Kind {
	case value.KindByte:
		return vec.Bytes
	case value.KindI16:
		return vec.I16
	case value.KindI32:
		return vec.I32
	case value.KindI64:
		return vec.I64
	case value.KindDouble:
		return vec.Double
	default:
		return nil
	}
}
