package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/pathparser"
)

func init() {
	rootCmd.AddCommand(newParseCmd())
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <path>",
		Short: "Split a drive path into its parts",
		Long: `The parse command runs the kernel path parser on a path of the form
<drive>:/part/part and prints the drive number and each part. Every part is
held in a heap allocation while parsing.

Example:
  kheapctl parse 0:/bin/shell.exe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(args)
		},
	}
	return cmd
}

type parseReport struct {
	Drive int      `json:"drive"`
	Parts []string `json:"parts"`
}

func runParse(args []string) error {
	k, err := bootHeap()
	if err != nil {
		return err
	}
	defer k.Close()

	p, err := pathparser.Parse(k, args[0])
	if err != nil {
		return err
	}
	parts, err := p.Parts()
	if ferr := p.Free(); err == nil {
		err = ferr
	}
	if err != nil {
		return fmt.Errorf("failed to read parts: %w", err)
	}

	if jsonOut {
		return printJSON(parseReport{Drive: p.Drive, Parts: parts})
	}
	printInfo("Drive: %d\n", p.Drive)
	for i, part := range parts {
		printInfo("  %d: %s\n", i, part)
	}
	return nil
}
