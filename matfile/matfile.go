package matfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hupe1980/kmeans/matrix"
)

// Load reads the matrix stored at path, picking the format from the file
// extension. Unknown extensions are treated as text.
func Load(path string) (*matrix.Dense, error) {
	if ext(path) == ".bin" {
		return LoadBinary(path)
	}
	return LoadCSV(path)
}

// Save writes m to path, picking the format from the file extension.
// Unknown extensions are treated as text.
func Save(path string, m *matrix.Dense) error {
	if m == nil {
		return fmt.Errorf("matfile: nil matrix")
	}
	if ext(path) == ".bin" {
		return SaveBinary(path, m)
	}
	return SaveCSV(path, m)
}

// SaveLabels writes one cluster label per line. Labels are integers, so the
// text form never carries a fractional part regardless of extension.
func SaveLabels(path string, labels []int) error {
	col := make([]float64, len(labels))
	for i, l := range labels {
		col[i] = float64(l)
	}
	return Save(path, matrix.NewDense(len(labels), 1, col))
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
