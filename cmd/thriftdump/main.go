// Command thriftdump decodes a Thrift Binary Protocol payload against a
// JSON-described schema and prints the result as JSON.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "thriftdump:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "thriftdump",
		Short: "Inspect Thrift Binary Protocol payloads against a schema",
	}
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newEncodeCmd())
	return root
}
