package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"

	"github.com/hupe1980/kmeans/matrix"
)

const (
	// magic identifies snapshot files (ASCII "KMSN").
	magic   = 0x4B4D534E
	version = 1

	// Header layout: magic u32, version u32, compression u8, 3 pad bytes,
	// crc32 u32 of the uncompressed payload, then one compressed block.
	headerSize = 16
)

var (
	ErrInvalidMagic   = errors.New("snapshot: invalid magic number")
	ErrInvalidVersion = errors.New("snapshot: unsupported version")
	ErrChecksum       = errors.New("snapshot: checksum mismatch")
)

// Model is the persistent part of a finished clustering run: everything
// needed to warm-start another run or to label new points.
type Model struct {
	// Centroids holds one row per surviving cluster.
	Centroids *matrix.Dense

	// OriginalIndex maps each surviving cluster back to its requested
	// index. Empty means the identity mapping.
	OriginalIndex []int

	// Iterations the producing run completed.
	Iterations int

	// Distortion of the producing run's final assignment.
	Distortion float64

	// Seed the producing run used.
	Seed int64
}

type options struct {
	compression Compression
}

// Option configures snapshot writing.
type Option func(*options)

// WithCompression selects the payload compression. The default is
// CompressionZSTD.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// Write serializes the model to w.
func Write(w io.Writer, m *Model, optFns ...Option) error {
	if m == nil || m.Centroids == nil {
		return fmt.Errorf("snapshot: nil model")
	}

	opts := options{compression: CompressionZSTD}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	payload := encodePayload(m)

	block, err := compressBlock(payload, opts.compression)
	if err != nil {
		return err
	}

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], magic)
	binary.LittleEndian.PutUint32(header[4:], version)
	header[8] = byte(opts.compression)
	binary.LittleEndian.PutUint32(header[12:], crc32.ChecksumIEEE(payload))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(block)
	return err
}

// Read deserializes a model from r.
func Read(r io.Reader) (*Model, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: file too small for header", ErrInvalidMagic)
	}

	if m := binary.LittleEndian.Uint32(buf[0:]); m != magic {
		return nil, fmt.Errorf("%w: 0x%08X", ErrInvalidMagic, m)
	}
	if v := binary.LittleEndian.Uint32(buf[4:]); v != version {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidVersion, v)
	}
	compression := Compression(buf[8])
	sum := binary.LittleEndian.Uint32(buf[12:])

	payload, err := decompressBlock(buf[headerSize:], compression)
	if err != nil {
		return nil, err
	}
	if crc32.ChecksumIEEE(payload) != sum {
		return nil, ErrChecksum
	}

	return decodePayload(payload)
}

// Save writes the model to a file.
func Save(path string, m *Model, optFns ...Option) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, m, optFns...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a model from a file.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Payload layout, all little-endian: rows u32, cols u32, iterations u64,
// distortion f64 bits, seed u64, originalIndex length u32 + entries u32,
// then rows*cols centroid f64 values.
func encodePayload(m *Model) []byte {
	rows, cols := m.Centroids.Dims()
	flat := m.Centroids.Data()

	size := 4 + 4 + 8 + 8 + 8 + 4 + 4*len(m.OriginalIndex) + 8*len(flat)
	payload := make([]byte, size)

	off := 0
	binary.LittleEndian.PutUint32(payload[off:], uint32(rows))
	off += 4
	binary.LittleEndian.PutUint32(payload[off:], uint32(cols))
	off += 4
	binary.LittleEndian.PutUint64(payload[off:], uint64(m.Iterations))
	off += 8
	binary.LittleEndian.PutUint64(payload[off:], math.Float64bits(m.Distortion))
	off += 8
	binary.LittleEndian.PutUint64(payload[off:], uint64(m.Seed))
	off += 8
	binary.LittleEndian.PutUint32(payload[off:], uint32(len(m.OriginalIndex)))
	off += 4
	for _, idx := range m.OriginalIndex {
		binary.LittleEndian.PutUint32(payload[off:], uint32(idx))
		off += 4
	}
	for _, v := range flat {
		binary.LittleEndian.PutUint64(payload[off:], math.Float64bits(v))
		off += 8
	}

	return payload
}

func decodePayload(payload []byte) (*Model, error) {
	const fixed = 4 + 4 + 8 + 8 + 8 + 4
	if len(payload) < fixed {
		return nil, fmt.Errorf("snapshot: payload too small")
	}

	off := 0
	rows := int(binary.LittleEndian.Uint32(payload[off:]))
	off += 4
	cols := int(binary.LittleEndian.Uint32(payload[off:]))
	off += 4
	iterations := int(binary.LittleEndian.Uint64(payload[off:]))
	off += 8
	distortion := math.Float64frombits(binary.LittleEndian.Uint64(payload[off:]))
	off += 8
	seed := int64(binary.LittleEndian.Uint64(payload[off:]))
	off += 8
	origLen := int(binary.LittleEndian.Uint32(payload[off:]))
	off += 4

	// Shape fields come from the file: size the centroid block in uint64
	// so a hostile rows*cols cannot wrap the length check.
	vals := uint64(rows) * uint64(cols)
	if vals > uint64(len(payload))/8 {
		return nil, fmt.Errorf("snapshot: payload claims %dx%d centroid values in %d bytes", rows, cols, len(payload))
	}
	want := fixed + 4*origLen + 8*int(vals)
	if len(payload) != want {
		return nil, fmt.Errorf("snapshot: payload is %d bytes, want %d", len(payload), want)
	}

	var originalIndex []int
	if origLen > 0 {
		originalIndex = make([]int, origLen)
		for i := range originalIndex {
			originalIndex[i] = int(binary.LittleEndian.Uint32(payload[off:]))
			off += 4
		}
	}

	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[off:]))
		off += 8
	}

	return &Model{
		Centroids:     matrix.NewDense(rows, cols, data),
		OriginalIndex: originalIndex,
		Iterations:    iterations,
		Distortion:    distortion,
		Seed:          seed,
	}, nil
}
