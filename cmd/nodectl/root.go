package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvasirlab/nodekit/internal/logging"
	"github.com/kvasirlab/nodekit/nodefile"
	"github.com/kvasirlab/nodekit/nodetree"
	"github.com/kvasirlab/nodekit/sim"
)

var (
	// Global flags
	listingPath string
	devicePre   string
	verbose     bool
	noColor     bool
)

var rootCmd = &cobra.Command{
	Use:   "nodectl",
	Short: "Browse and manipulate a simulated parameter tree",
	Long: `nodectl loads a node listing from a YAML node file and serves it
through an in-memory connection. Paths can be given relative to the hidden
device prefix (demods/0/rate) or absolute (/dev8000/demods/0/rate), and may
contain wildcards (*, ?, [...]) where the command supports fan-out.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Options{Enabled: verbose, Level: slog.LevelDebug})
	},
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&listingPath, "listing", "l", "", "Path to the YAML node file (required)")
	rootCmd.PersistentFlags().
		StringVarP(&devicePre, "device", "d", "", "Hidden device prefix (overrides the node file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	_ = rootCmd.MarkPersistentFlagRequired("listing")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadTree builds the registry over a sim connection fed from the node
// file given with --listing.
func loadTree(cmd *cobra.Command) (*nodetree.Tree, *sim.Connection, error) {
	f, err := nodefile.Load(listingPath)
	if err != nil {
		return nil, nil, err
	}
	prefix := f.Device
	if devicePre != "" {
		prefix = devicePre
	}

	conn := sim.New(f.Defs(), sim.WithValues(f.Values()))
	tree, err := nodetree.New(cmd.Context(), conn,
		nodetree.WithPrefixHide(prefix),
		nodetree.WithLogger(logging.L),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build node tree: %w", err)
	}

	updates, err := f.ParserUpdates()
	if err != nil {
		return nil, nil, err
	}
	if err := tree.UpdateMany(updates, false); err != nil {
		return nil, nil, fmt.Errorf("failed to attach parsers: %w", err)
	}
	return tree, conn, nil
}
