package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDense(t *testing.T) {
	t.Run("allocates when data is nil", func(t *testing.T) {
		m := NewDense(2, 3, nil)
		assert.Equal(t, 2, m.Rows())
		assert.Equal(t, 3, m.Cols())
		assert.Equal(t, make([]float64, 6), m.Data())
	})

	t.Run("wraps provided backing slice", func(t *testing.T) {
		data := []float64{1, 2, 3, 4}
		m := NewDense(2, 2, data)
		m.Set(0, 1, 9)
		assert.Equal(t, 9.0, data[1])
	})

	t.Run("panics on length mismatch", func(t *testing.T) {
		assert.Panics(t, func() {
			NewDense(2, 2, []float64{1, 2, 3})
		})
	})

	t.Run("panics on negative dimension", func(t *testing.T) {
		assert.Panics(t, func() {
			NewDense(-1, 2, nil)
		})
	})
}

func TestDenseRowAccess(t *testing.T) {
	m := NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	assert.Equal(t, []float64{3, 4}, m.Row(1))
	assert.Equal(t, 6.0, m.At(2, 1))

	// Row borrows, so writes through it land in the matrix.
	m.Row(1)[0] = 30
	assert.Equal(t, 30.0, m.At(1, 0))

	m.SetRow(0, []float64{7, 8})
	assert.Equal(t, []float64{7, 8}, m.Row(0))

	assert.Panics(t, func() {
		m.SetRow(0, []float64{1, 2, 3})
	})
}

func TestDenseClone(t *testing.T) {
	m := NewDense(2, 2, []float64{1, 2, 3, 4})
	c := m.Clone()

	c.Set(0, 0, 99)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 99.0, c.At(0, 0))
}

func TestDenseAppendCol(t *testing.T) {
	m := NewDense(2, 2, []float64{1, 2, 3, 4})
	m.AppendCol([]float64{10, 20})

	require.Equal(t, 3, m.Cols())
	require.Equal(t, 2, m.Rows())
	assert.Equal(t, []float64{1, 2, 10}, m.Row(0))
	assert.Equal(t, []float64{3, 4, 20}, m.Row(1))

	assert.Panics(t, func() {
		m.AppendCol([]float64{1})
	})
}

func TestDenseSelectRows(t *testing.T) {
	m := NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	s := m.SelectRows([]int{2, 0})

	require.Equal(t, 2, s.Rows())
	assert.Equal(t, []float64{5, 6}, s.Row(0))
	assert.Equal(t, []float64{1, 2}, s.Row(1))

	// Selection copies.
	s.Set(0, 0, 99)
	assert.Equal(t, 5.0, m.At(2, 0))
}

func TestEqual(t *testing.T) {
	a := NewDense(2, 2, []float64{1, 2, 3, 4})
	b := a.Clone()

	assert.True(t, Equal(a, b))

	b.Set(1, 1, 0)
	assert.False(t, Equal(a, b))

	assert.False(t, Equal(a, Zero(2, 3)))
}
