package matfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"os"

	"github.com/hupe1980/kmeans/internal/mmap"
	"github.com/hupe1980/kmeans/matrix"
)

const (
	// binaryMagic identifies binary matrix files (ASCII "KMAT").
	binaryMagic = 0x4B4D4154
	// binaryVersion is the current format version.
	binaryVersion = 1

	// Header layout: magic u32, version u32, rows u64, cols u32, crc32 u32
	// of the payload, then rows*cols little-endian float64 values.
	binaryHeaderSize = 24
)

var (
	ErrInvalidMagic   = errors.New("matfile: invalid magic number")
	ErrInvalidVersion = errors.New("matfile: unsupported version")
	ErrInvalidShape   = errors.New("matfile: shape exceeds payload")
	ErrChecksum       = errors.New("matfile: checksum mismatch")
)

// LoadBinary reads a binary matrix file. The file is memory-mapped; header
// and payload are decoded directly from the mapping.
func LoadBinary(path string) (*matrix.Dense, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	buf := m.Bytes()
	if len(buf) < binaryHeaderSize {
		return nil, fmt.Errorf("%w: %s: file too small for header", ErrInvalidMagic, path)
	}

	if magic := binary.LittleEndian.Uint32(buf[0:]); magic != binaryMagic {
		return nil, fmt.Errorf("%w: %s: 0x%08X", ErrInvalidMagic, path, magic)
	}
	if version := binary.LittleEndian.Uint32(buf[4:]); version != binaryVersion {
		return nil, fmt.Errorf("%w: %s: version %d", ErrInvalidVersion, path, version)
	}

	rows := binary.LittleEndian.Uint64(buf[8:])
	cols := binary.LittleEndian.Uint32(buf[16:])
	sum := binary.LittleEndian.Uint32(buf[20:])

	// The shape fields come from the file. Bound rows before converting
	// anything to int: rows*cols*8 wraps for hostile headers and a wrapped
	// size would panic the slice and make calls below.
	payload := buf[binaryHeaderSize:]
	maxRows := uint64(len(payload)) / 8
	if cols > 1 {
		maxRows /= uint64(cols)
	}
	if rows > maxRows {
		return nil, fmt.Errorf("%w: %s: header claims %dx%d values, payload is %d bytes",
			ErrInvalidShape, path, rows, cols, len(payload))
	}
	payload = payload[:int(rows)*int(cols)*8]

	if crc32.ChecksumIEEE(payload) != sum {
		return nil, fmt.Errorf("%w: %s", ErrChecksum, path)
	}

	data := make([]float64, int(rows)*int(cols))
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}

	return matrix.NewDense(int(rows), int(cols), data), nil
}

// SaveBinary writes m in the binary matrix format.
func SaveBinary(path string, m *matrix.Dense) error {
	rows, cols := m.Dims()
	flat := m.Data()

	payload := make([]byte, len(flat)*8)
	for i, v := range flat {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(v))
	}

	var header [binaryHeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:], binaryMagic)
	binary.LittleEndian.PutUint32(header[4:], binaryVersion)
	binary.LittleEndian.PutUint64(header[8:], uint64(rows))
	binary.LittleEndian.PutUint32(header[16:], uint32(cols))
	binary.LittleEndian.PutUint32(header[20:], crc32.ChecksumIEEE(payload))

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if _, err := w.Write(header[:]); err != nil {
		f.Close()
		return err
	}
	if _, err := w.Write(payload); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
