// Package mmap provides read-only memory-mapped file access.
//
// Binary matrix files are mapped instead of read so a dataset load costs no
// copy of the payload: the header is decoded in place and the float64 rows
// are materialized straight from the mapping.
//
//	m, err := mmap.Open("dataset.bin")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// Unix platforms use mmap(2) via golang.org/x/sys; Windows uses
// CreateFileMapping/MapViewOfFile. A mapping is safe for concurrent reads,
// but no goroutine may touch Bytes() after Close returns.
package mmap
