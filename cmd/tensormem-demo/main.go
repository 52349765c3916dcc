// Command tensormem-demo runs the tensormem planning scenarios against a
// toy two-layer conv/fc/softmax graph and prints the resulting pool
// layout, grounded on the two-MemoryManagerOnDemand pattern of the
// original ARM Compute Library's examples/neon_cnn.cpp: one memory
// manager plans each operator's scratch tensors (intra-function), a
// second plans the tensors handed between operators (transitions).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cogpy/tensormem/cmd/tensormem-demo/graph"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tensormem-demo",
		Short: "Runs the tensormem memory-planning scenarios and prints the resulting layout",
	}
	root.AddCommand(newBlobCmd())
	root.AddCommand(newOffsetCmd())
	root.AddCommand(newRacepoolCmd())
	return root
}

func newBlobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blob",
		Short: "Plan the demo graph with the blob-per-class lifetime manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			return graph.RunBlobDemo(cmd.OutOrStdout())
		},
	}
}

func newOffsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offset",
		Short: "Plan the demo graph with the single-arena offset lifetime manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			return graph.RunOffsetDemo(cmd.OutOrStdout())
		},
	}
}

func newRacepoolCmd() *cobra.Command {
	var threads int
	var iterations int
	var pools int
	cmd := &cobra.Command{
		Use:   "racepool",
		Short: "Hammer a shared PoolManager from several goroutines and report peak concurrent leases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return graph.RunRacepoolDemo(cmd.OutOrStdout(), pools, threads, iterations)
		},
	}
	cmd.Flags().IntVar(&threads, "threads", 4, "number of concurrent goroutines leasing pools")
	cmd.Flags().IntVar(&iterations, "iterations", 100, "lock/hold/unlock cycles per goroutine")
	cmd.Flags().IntVar(&pools, "pools", 2, "number of pools registered with the pool manager")
	return cmd
}
