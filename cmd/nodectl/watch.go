package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	watchTimeout  time.Duration
	watchInterval time.Duration
)

func init() {
	cmd := newWatchCmd()
	cmd.Flags().DurationVar(&watchTimeout, "timeout", 2*time.Second, "Maximum wait time")
	cmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Millisecond, "Poll interval")
	rootCmd.AddCommand(cmd)
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path> <value>",
		Short: "Wait until a node reaches the expected value",
		Long: `The watch command polls a node until its value equals the
expectation or the timeout elapses. On a wildcard path only the first
match waits the full timeout; the rest get a single immediate check.

Example:
  nodectl -l bench.yaml watch demods/0/enable on --timeout 5s`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], args[1])
		},
	}
}

func runWatch(cmd *cobra.Command, path, literal string) error {
	tree, _, err := loadTree(cmd)
	if err != nil {
		return err
	}
	results, err := tree.Path(path).WaitForStateChange(
		cmd.Context(), parseLiteral(literal), watchTimeout, watchInterval)
	if err != nil {
		return err
	}
	matched := true
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s matched=%t\n", r.Node, r.Matched)
		matched = matched && r.Matched
	}
	if !matched {
		return fmt.Errorf("timed out after %s", watchTimeout)
	}
	return nil
}
