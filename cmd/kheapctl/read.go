package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/disk"
)

var (
	readOffset int64
	readLength int
)

func init() {
	cmd := newReadCmd()
	cmd.Flags().Int64Var(&readOffset, "offset", 0, "Byte offset to start reading at")
	cmd.Flags().IntVar(&readLength, "length", 512, "Number of bytes to read")
	rootCmd.AddCommand(cmd)
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <disk-image>",
		Short: "Read bytes from a disk image through the sector stream",
		Long: `The read command attaches a disk image as the primary disk and reads a
byte range through the stream reader, whose sector buffer lives on the heap.
Output is a hex dump.

Example:
  kheapctl read disk.img --offset 510 --length 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(args)
		},
	}
	return cmd
}

type readReport struct {
	Offset int64  `json:"offset"`
	Length int    `json:"length"`
	Data   string `json:"data"`
}

func runRead(args []string) error {
	if readLength < 0 {
		return fmt.Errorf("--length must not be negative")
	}

	d, err := disk.Open(args[0])
	if err != nil {
		return err
	}
	defer d.Close()
	printVerbose("Disk: %s, %d sectors\n", args[0], d.Sectors())

	k, err := bootHeap()
	if err != nil {
		return err
	}
	defer k.Close()

	stream, err := disk.NewStream(disk.NewSet(d), 0, k)
	if err != nil {
		return err
	}
	defer stream.Close()

	if _, err := stream.Seek(readOffset, io.SeekStart); err != nil {
		return err
	}
	out := make([]byte, readLength)
	n, err := io.ReadFull(stream, out)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("failed to read disk: %w", err)
	}
	out = out[:n]

	if jsonOut {
		return printJSON(readReport{Offset: readOffset, Length: n, Data: hex.EncodeToString(out)})
	}
	if n < readLength {
		printVerbose("Short read: %d of %d bytes\n", n, readLength)
	}
	printInfo("%s", hex.Dump(out))
	return nil
}
