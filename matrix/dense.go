package matrix

import (
	"fmt"
	"slices"
)

// Dense is a row-major matrix of float64 values.
type Dense struct {
	rows int
	cols int
	data []float64
}

// NewDense creates a rows×cols matrix backed by data. If data is nil a
// zeroed backing slice is allocated; otherwise len(data) must equal
// rows*cols and the slice is used directly (not copied).
func NewDense(rows, cols int, data []float64) *Dense {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix: negative dimension %dx%d", rows, cols))
	}
	if data == nil {
		data = make([]float64, rows*cols)
	} else if len(data) != rows*cols {
		panic(fmt.Sprintf("matrix: backing slice length %d does not match %dx%d", len(data), rows, cols))
	}
	return &Dense{rows: rows, cols: cols, data: data}
}

// Zero creates a zeroed rows×cols matrix.
func Zero(rows, cols int) *Dense {
	return NewDense(rows, cols, nil)
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.cols }

// Dims returns rows and columns in one call.
func (m *Dense) Dims() (rows, cols int) { return m.rows, m.cols }

// Row returns row i as a borrowed subslice of the backing array.
// The slice stays valid until the matrix is resized (AppendCol).
func (m *Dense) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// At returns the value at row i, column j.
func (m *Dense) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Set stores v at row i, column j.
func (m *Dense) Set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

// SetRow copies src into row i. len(src) must equal Cols.
func (m *Dense) SetRow(i int, src []float64) {
	if len(src) != m.cols {
		panic(fmt.Sprintf("matrix: row length %d does not match %d columns", len(src), m.cols))
	}
	copy(m.Row(i), src)
}

// Data returns the flat row-major backing slice, borrowed.
func (m *Dense) Data() []float64 { return m.data }

// Clone returns a deep copy.
func (m *Dense) Clone() *Dense {
	return &Dense{rows: m.rows, cols: m.cols, data: slices.Clone(m.data)}
}

// AppendCol grows the matrix by one column in place, filling it from col.
// len(col) must equal Rows. Existing row slices become stale.
func (m *Dense) AppendCol(col []float64) {
	if len(col) != m.rows {
		panic(fmt.Sprintf("matrix: column length %d does not match %d rows", len(col), m.rows))
	}
	next := make([]float64, m.rows*(m.cols+1))
	for i := 0; i < m.rows; i++ {
		copy(next[i*(m.cols+1):], m.data[i*m.cols:(i+1)*m.cols])
		next[i*(m.cols+1)+m.cols] = col[i]
	}
	m.data = next
	m.cols++
}

// SelectRows returns a new matrix holding the given rows in order.
func (m *Dense) SelectRows(rows []int) *Dense {
	out := Zero(len(rows), m.cols)
	for i, r := range rows {
		copy(out.Row(i), m.Row(r))
	}
	return out
}

// Equal reports whether a and b have the same shape and bit-identical
// contents.
func Equal(a, b *Dense) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	return slices.Equal(a.data, b.data)
}
