package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/joshuapare/kheap/internal/format"
)

const testHeapAddr = 0x100000

// resetFlags restores every command flag to a small test layout.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut, logDir = false, false, false, ""
	heapAddr = testHeapAddr
	heapSize = 16 * format.BlockSize
	tableAddr = format.DefaultTableAddress

	simRandom, simSeed, simMaxBlocks, simScreen = 0, 1, 8, false
	tableAll, tableDump = false, ""
	readOffset, readLength = 0, 512
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	// Read captured output
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
