// Package snapshot persists a trained clustering model.
//
// A snapshot holds the final centroids together with the run metadata needed
// to reproduce or warm-start a run (surviving cluster mapping, iteration
// count, distortion, seed). The payload is framed with a magic number and a
// CRC32 and can be block-compressed with lz4 (fast) or zstd (smaller);
// zstd coders are pooled across calls.
//
//	err := snapshot.Save("model.kms", &snapshot.Model{Centroids: result.Centroids, Seed: result.Seed},
//		snapshot.WithCompression(snapshot.CompressionZSTD))
//	...
//	model, err := snapshot.Load("model.kms")
package snapshot
