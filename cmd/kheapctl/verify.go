package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/heap/table"
	"github.com/joshuapare/kheap/internal/mmfile"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <table-file>",
		Short: "Check a raw block table for run-shape errors",
		Long: `The verify command reads a block table image (one byte per block, as
written by "table --dump") and checks that every run starts with IS_FIRST,
chains through HAS_NEXT, and that free entries carry no flags.

Example:
  kheapctl verify table.bin
  kheapctl verify table.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

type verifyReport struct {
	File           string `json:"file"`
	Blocks         int    `json:"blocks"`
	Valid          bool   `json:"valid"`
	Error          string `json:"error,omitempty"`
	ErrorType      string `json:"error_type,omitempty"`
	ErrorBlock     int    `json:"error_block,omitempty"`
	LiveRuns       int    `json:"live_runs"`
	FreeBlocks     int    `json:"free_blocks"`
	LargestFreeRun int    `json:"largest_free_run"`
}

func runVerify(args []string) error {
	path := args[0]
	printVerbose("Opening table: %s\n", path)

	data, release, err := mmfile.Map(path)
	if err != nil {
		return fmt.Errorf("failed to open table: %w", err)
	}
	defer release()

	tbl := table.New(data)
	report := verifyReport{File: path, Blocks: tbl.Len()}
	checkErr := table.Check(tbl)
	if checkErr == nil {
		report.Valid = true
		report.LiveRuns = len(tbl.Runs())
		report.FreeBlocks, report.LargestFreeRun = tbl.FreeBlocks()
	} else {
		report.Error = checkErr.Error()
		var ve *table.ValidationError
		if errors.As(checkErr, &ve) {
			report.ErrorType, report.ErrorBlock = ve.Type, ve.Index
		}
	}

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printInfo("\nTable: %s (%d blocks)\n", path, report.Blocks)
		if report.Valid {
			printInfo("  ✓ Run structure valid\n")
			printInfo("  Live runs: %d\n", report.LiveRuns)
			printInfo("  Free blocks: %d (largest run %d)\n", report.FreeBlocks, report.LargestFreeRun)
		} else {
			printInfo("  ✗ %s\n", report.Error)
		}
	}

	if checkErr != nil {
		return fmt.Errorf("table invalid: %w", checkErr)
	}
	return nil
}
