package main

import (
	"fmt"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/logger"
	"github.com/joshuapare/kheap/kheap"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logDir  string

	// Heap layout
	heapAddr  uint64
	heapSize  uint64
	tableAddr uint64
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	IndentionStep:          2,
}.Froze()

var rootCmd = &cobra.Command{
	Use:   "kheapctl",
	Short: "Drive and inspect a simulated block-table kernel heap",
	Long: `kheapctl boots a kernel heap inside simulated physical memory and lets you
allocate, free, and inspect it. The block table, the disk stream reader, and the
path parser all run against the same heap.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return logger.Init(logger.Options{
			Enabled: verbose || logDir != "",
			LogDir:  logDir,
			Level:   level,
		})
	},
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write logs to a dated file in this directory")

	rootCmd.PersistentFlags().
		Uint64Var(&heapAddr, "heap-addr", format.DefaultHeapAddress, "Physical address of the heap data region")
	rootCmd.PersistentFlags().
		Uint64Var(&heapSize, "heap-size", format.DefaultHeapSize, "Size of the heap data region in bytes")
	rootCmd.PersistentFlags().
		Uint64Var(&tableAddr, "table-addr", format.DefaultTableAddress, "Physical address of the block table")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// layout returns the heap layout selected by the global flags.
func layout() kheap.Config {
	return kheap.Config{
		HeapAddress:  heapAddr,
		HeapSize:     heapSize,
		TableAddress: tableAddr,
	}
}

// bootHeap reserves simulated memory and brings up a heap with the flag layout.
func bootHeap() (*kheap.KernelHeap, error) {
	k, err := kheap.Boot(layout())
	if err != nil {
		return nil, fmt.Errorf("failed to boot heap: %w", err)
	}
	printVerbose("Heap: %#x-%#x, %d blocks, table at %#x\n",
		k.Config().HeapAddress, k.Config().HeapEnd(), k.Config().Blocks(), k.Config().TableAddress)
	return k, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	return jsonAPI.NewEncoder(os.Stdout).Encode(v)
}
