// Package matrix provides the dense row-major float64 matrix used for
// datasets and centroid sets.
//
// A Dense stores N rows of D columns in a single flat backing slice, so a
// row is a cheap subslice and iteration stays allocation-free:
//
//	m := matrix.Zero(100, 4)
//	row := m.Row(42) // borrowed, valid until the matrix is resized
//
// Dense is not synchronized; concurrent readers are safe, concurrent
// writers are the caller's problem.
package matrix
