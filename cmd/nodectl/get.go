package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kvasirlab/nodekit/nodetree"
)

var (
	getDeep bool
	getRaw  bool
)

func init() {
	cmd := newGetCmd()
	cmd.Flags().BoolVar(&getDeep, "deep", false, "Read from the device instead of the cache")
	cmd.Flags().BoolVar(&getRaw, "raw", false, "Skip enum decoding and parsers")
	rootCmd.AddCommand(cmd)
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Read a node value",
		Long: `The get command reads the value of a node. Wildcard paths and
partial paths fan out and print one line per matched node.

Example:
  nodectl -l bench.yaml get demods/0/rate
  nodectl -l bench.yaml get "demods/*/enable"
  nodectl -l bench.yaml get demods/0/rate --deep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0])
		},
	}
}

func runGet(cmd *cobra.Command, path string) error {
	tree, _, err := loadTree(cmd)
	if err != nil {
		return err
	}

	var opts []nodetree.CallOption
	if getDeep {
		opts = append(opts, nodetree.Deep())
	}
	if getRaw {
		opts = append(opts, nodetree.NoEnum(), nodetree.NoParse())
	}

	v, err := tree.Path(path).Get(cmd.Context(), opts...)
	if err != nil {
		return err
	}
	if multi, ok := v.Multi(); ok {
		nodes := make([]nodetree.Node, 0, len(multi))
		for node := range multi {
			nodes = append(nodes, node)
		}
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].String() < nodes[j].String() })
		for _, node := range nodes {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", node, multi[node].Data)
		}
		return nil
	}
	if v.HasTimestamp {
		fmt.Fprintf(cmd.OutOrStdout(), "%v (timestamp %d)\n", v.Data, v.Timestamp)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v.Data)
	return nil
}
