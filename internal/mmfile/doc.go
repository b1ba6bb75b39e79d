// Package mmfile provides platform-specific helpers for memory-mapping disk
// images and reserving the backing store of simulated physical memory.
package mmfile
