package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/console"
	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/kheap"
)

var (
	simRandom    int
	simSeed      uint64
	simMaxBlocks int
	simScreen    bool
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().IntVar(&simRandom, "random", 0, "Append N randomly generated ops")
	cmd.Flags().Uint64Var(&simSeed, "seed", 1, "Seed for --random")
	cmd.Flags().IntVar(&simMaxBlocks, "max-blocks", 8, "Largest random allocation in blocks")
	cmd.Flags().BoolVar(&simScreen, "screen", false, "Render the run on the VGA text console and print the screen")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [op...]",
		Short: "Run a sequence of allocations and frees",
		Long: `The simulate command boots a heap and applies each op in order, reporting
the address or error of every call followed by heap statistics.

Ops:
  alloc:<size>   allocate size bytes
  zalloc:<size>  allocate and zero size bytes
  free:<addr>    free an address
  free:@<n>      free the address returned by op n (0-based)

Example:
  kheapctl simulate alloc:5000 alloc:50 free:@0 alloc:4096
  kheapctl simulate --random 1000 --seed 7 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(args)
		},
	}
	return cmd
}

type simulateReport struct {
	Ops    []opResult `json:"ops"`
	Stats  heap.Stats `json:"stats"`
	Screen []string   `json:"screen,omitempty"`
}

func runSimulate(args []string) error {
	ops, err := parseOps(args)
	if err != nil {
		return err
	}
	if simRandom > 0 {
		if simMaxBlocks < 1 {
			return fmt.Errorf("--max-blocks must be at least 1")
		}
		ops = append(ops, randomOps(simRandom, simSeed, simMaxBlocks)...)
	}

	k, err := bootHeap()
	if err != nil {
		return err
	}
	defer k.Close()

	report := simulateReport{Ops: applyOps(k, ops)}
	report.Stats = k.Heap().Stats()
	if verr := k.Heap().Verify(); verr != nil {
		return fmt.Errorf("heap corrupted after run: %w", verr)
	}

	if simScreen {
		screen, err := renderScreen(k, report.Ops)
		if err != nil {
			return err
		}
		report.Screen = screen
	}

	if jsonOut {
		return printJSON(report)
	}

	if report.Screen != nil {
		for _, line := range report.Screen {
			printInfo("%s\n", line)
		}
		return nil
	}

	printInfo("\nOps:\n")
	for _, r := range report.Ops {
		printInfo("  %s\n", formatResult(r))
	}
	printStats(report.Stats)
	return nil
}

func formatResult(r opResult) string {
	switch {
	case r.Error != "":
		return fmt.Sprintf("%-20s error: %s", r.Op, r.Error)
	case r.Blocks > 0:
		return fmt.Sprintf("%-20s 0x%08x (%d blocks)", r.Op, r.Addr, r.Blocks)
	default:
		return fmt.Sprintf("%-20s ok", r.Op)
	}
}

func printStats(s heap.Stats) {
	printInfo("\nHeap Statistics:\n")
	printInfo("  Blocks:          %d total, %d used, %d free\n", s.TotalBlocks, s.UsedBlocks, s.FreeBlocks)
	printInfo("  Live runs:       %d\n", s.LiveRuns)
	printInfo("  Largest free:    %d blocks\n", s.LargestFreeRun)
	printInfo("  Alloc calls:     %d (%d failed)\n", s.AllocCalls, s.FailedAllocs)
	printInfo("  Free calls:      %d (%d invalid)\n", s.FreeCalls, s.InvalidFrees)
}

// renderScreen replays the op log onto the console in the heap's own memory.
func renderScreen(k *kheap.KernelHeap, results []opResult) ([]string, error) {
	term, err := console.New(k.Memory())
	if err != nil {
		return nil, fmt.Errorf("failed to attach console: %w", err)
	}
	term.Initialize()
	for _, r := range results {
		if r.Error != "" {
			term.SetColor(0x0C)
		} else {
			term.SetColor(console.DefaultColor)
		}
		term.Print(formatResult(r) + "\n")
	}
	return term.Screen(), nil
}
