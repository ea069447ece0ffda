package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kvasirlab/nodekit/nodetree"
)

func init() {
	rootCmd.AddCommand(newLsCmd())
}

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List nodes below a path",
		Long: `The ls command lists every registered node, or every node below
the given path.

Example:
  nodectl -l bench.yaml ls
  nodectl -l bench.yaml ls demods/0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(cmd, args)
		},
	}
}

func runLs(cmd *cobra.Command, args []string) error {
	tree, _, err := loadTree(cmd)
	if err != nil {
		return err
	}
	color.NoColor = color.NoColor || noColor

	kindColor := color.New(color.FgCyan).SprintFunc()
	unitColor := color.New(color.FgYellow).SprintFunc()

	printEntry := func(n nodetree.Node, d *nodetree.Descriptor) bool {
		line := fmt.Sprintf("%-48s %-12s", n, kindColor(d.Kind))
		if d.Unit != "" && d.Unit != "None" {
			line += " " + unitColor(d.Unit)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
		return true
	}

	if len(args) == 0 {
		tree.Walk(printEntry)
		return nil
	}
	node := tree.Path(args[0])
	node.Walk(printEntry)
	return nil
}
