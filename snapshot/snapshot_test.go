package snapshot

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmeans/matrix"
)

func testModel(t *testing.T, rows, cols int) *Model {
	t.Helper()

	rng := rand.New(rand.NewSource(7))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64()
	}

	return &Model{
		Centroids:     matrix.NewDense(rows, cols, data),
		OriginalIndex: []int{0, 2, 3},
		Iterations:    17,
		Distortion:    42.5,
		Seed:          -3,
	}
}

func TestRoundTripAllCompressions(t *testing.T) {
	m := testModel(t, 3, 8)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, m, WithCompression(c)))

			got, err := Read(&buf)
			require.NoError(t, err)

			assert.True(t, matrix.Equal(m.Centroids, got.Centroids))
			assert.Equal(t, m.OriginalIndex, got.OriginalIndex)
			assert.Equal(t, m.Iterations, got.Iterations)
			assert.Equal(t, m.Distortion, got.Distortion)
			assert.Equal(t, m.Seed, got.Seed)
		})
	}
}

func TestCompressibleModelShrinks(t *testing.T) {
	// Constant centroids compress well, so the compressed file must be
	// smaller than the uncompressed one.
	m := &Model{Centroids: matrix.Zero(64, 64)}

	var plain, packed bytes.Buffer
	require.NoError(t, Write(&plain, m, WithCompression(CompressionNone)))
	require.NoError(t, Write(&packed, m, WithCompression(CompressionZSTD)))

	assert.Less(t, packed.Len(), plain.Len())
}

func TestEmptyOriginalIndex(t *testing.T) {
	m := &Model{Centroids: matrix.NewDense(2, 2, []float64{1, 2, 3, 4})}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Nil(t, got.OriginalIndex)
	assert.True(t, matrix.Equal(m.Centroids, got.Centroids))
}

func TestSaveLoad(t *testing.T) {
	m := testModel(t, 5, 4)
	path := filepath.Join(t.TempDir(), "model.kms")

	require.NoError(t, Save(path, m, WithCompression(CompressionLZ4)))

	got, err := Load(path)
	require.NoError(t, err)
	assert.True(t, matrix.Equal(m.Centroids, got.Centroids))
}

func TestReadErrors(t *testing.T) {
	t.Run("nil model", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, Write(&buf, nil))
	})

	t.Run("too small", func(t *testing.T) {
		_, err := Read(bytes.NewReader([]byte{1, 2, 3}))
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("bad magic", func(t *testing.T) {
		_, err := Read(bytes.NewReader(make([]byte, 64)))
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("corrupted payload", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, testModel(t, 2, 2), WithCompression(CompressionNone)))

		raw := buf.Bytes()
		raw[len(raw)-1] ^= 0xFF

		_, err := Read(bytes.NewReader(raw))
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("truncated block", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, testModel(t, 2, 2)))

		raw := buf.Bytes()
		_, err := Read(bytes.NewReader(raw[:len(raw)-4]))
		assert.Error(t, err)
	})

	t.Run("oversized stored size", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, testModel(t, 2, 2), WithCompression(CompressionNone)))

		raw := buf.Bytes()
		binary.LittleEndian.PutUint32(raw[headerSize:], 0xFFFFFFFF)

		_, err := Read(bytes.NewReader(raw))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shorter than header claims")
	})

	t.Run("oversized compressed size", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, &Model{Centroids: matrix.Zero(16, 16)}, WithCompression(CompressionZSTD)))

		raw := buf.Bytes()
		binary.LittleEndian.PutUint32(raw[headerSize+4:], 0xFFFFFFFF)

		_, err := Read(bytes.NewReader(raw))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shorter than header claims")
	})
}
