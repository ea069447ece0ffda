package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kvasirlab/nodekit/nodetree"
)

var setDeep bool

func init() {
	cmd := newSetCmd()
	cmd.Flags().BoolVar(&setDeep, "deep", false, "Block until the device confirms the write")
	rootCmd.AddCommand(cmd)
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Write a node value",
		Long: `The set command writes a value to a node. Integers and floats
are detected from the literal; everything else is written as string, so
enum labels work directly. Wildcard paths fan out as one batched write.

Example:
  nodectl -l bench.yaml set demods/0/rate 1674.0
  nodectl -l bench.yaml set demods/0/enable on
  nodectl -l bench.yaml set "demods/*/enable" 0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, args[0], args[1])
		},
	}
}

func runSet(cmd *cobra.Command, path, literal string) error {
	tree, _, err := loadTree(cmd)
	if err != nil {
		return err
	}

	var opts []nodetree.CallOption
	if setDeep {
		opts = append(opts, nodetree.Deep())
	}

	if err := tree.Path(path).Set(cmd.Context(), parseLiteral(literal), opts...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <- %s\n", path, literal)
	return nil
}

// parseLiteral guesses the value type of a command line literal.
func parseLiteral(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
