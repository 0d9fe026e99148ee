// Package matfile loads and saves dense matrices from the file formats the
// command line tool accepts.
//
// Two formats are supported, selected by file extension:
//
//   - .csv / .txt / .tsv: text rows of numbers, comma, tab or space
//     separated. A leading header row is detected and skipped automatically.
//   - .bin: a little-endian binary format (magic, version, shape, CRC32,
//     float64 payload), memory-mapped on load so the payload is decoded
//     without an intermediate read buffer.
//
//	data, err := matfile.Load("dataset.csv")
//	...
//	err = matfile.Save("labeled.bin", result.Output)
package matfile
