package matfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/kmeans/matrix"
)

// ErrEmptyFile is returned when a text file holds no data rows.
var ErrEmptyFile = errors.New("matfile: no data rows")

// LoadCSV reads a text matrix. Fields may be separated by commas, tabs or
// runs of spaces. If every field of the first row fails to parse as a number
// the row is taken as a header and skipped.
func LoadCSV(path string) (*matrix.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		data []float64
		cols int
		rows int
		line int
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	for sc.Scan() {
		line++
		fields := splitFields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		vals, perr := parseFields(fields)
		if perr != nil {
			// A fully non-numeric first row is a header.
			if rows == 0 && !anyNumeric(fields) {
				continue
			}
			return nil, fmt.Errorf("matfile: %s line %d: %w", path, line, perr)
		}

		if cols == 0 {
			cols = len(vals)
		} else if len(vals) != cols {
			return nil, fmt.Errorf("matfile: %s line %d: got %d fields, want %d", path, line, len(vals), cols)
		}

		data = append(data, vals...)
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	return matrix.NewDense(rows, cols, data), nil
}

// SaveCSV writes m as comma-separated text, one row per line, using the
// shortest decimal representation that round-trips each value.
func SaveCSV(path string, m *matrix.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.Row(i)
		for j := 0; j < cols; j++ {
			if j > 0 {
				if err := w.WriteByte(','); err != nil {
					f.Close()
					return err
				}
			}
			if _, err := w.WriteString(strconv.FormatFloat(row[j], 'g', -1, 64)); err != nil {
				f.Close()
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return err
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func splitFields(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.ContainsRune(line, ',') {
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return strings.Fields(line)
}

func parseFields(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d %q is not a number", i+1, s)
		}
		vals[i] = v
	}
	return vals, nil
}

func anyNumeric(fields []string) bool {
	for _, s := range fields {
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return true
		}
	}
	return false
}
