package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDescribeCmd())
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <path>",
		Short: "Show the metadata of matching nodes",
		Long: `The describe command prints the descriptor of every node matching
the path: kind, unit, access rights, options and description. Wildcards
are supported.

Example:
  nodectl -l bench.yaml describe demods/0/rate
  nodectl -l bench.yaml describe "demods/*"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, args[0])
		},
	}
}

func runDescribe(cmd *cobra.Command, path string) error {
	tree, _, err := loadTree(cmd)
	if err != nil {
		return err
	}
	color.NoColor = color.NoColor || noColor
	header := color.New(color.Bold).SprintFunc()

	descs, err := tree.DescribePath(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, d := range descs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s\n", header(d.Path))
		fmt.Fprintf(out, "  Type:       %s (%s)\n", d.Kind, d.TypeName)
		fmt.Fprintf(out, "  Properties: %s\n", d.Access)
		if d.Unit != "" {
			fmt.Fprintf(out, "  Unit:       %s\n", d.Unit)
		}
		if d.Description != "" {
			fmt.Fprintf(out, "  %s\n", d.Description)
		}
		if len(d.Options) > 0 {
			fmt.Fprintf(out, "  Options:\n")
			codes := make([]int64, 0, len(d.Options))
			for code := range d.Options {
				codes = append(codes, code)
			}
			sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
			for _, code := range codes {
				fmt.Fprintf(out, "    %d: %s\n", code, d.Options[code])
			}
		}
	}
	return nil
}
