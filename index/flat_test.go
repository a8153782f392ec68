package index

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Errors(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Build([][]float32{{1, 2}, {1, 2, 3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearch_OrderAndTies(t *testing.T) {
	idx, err := Build([][]float32{
		{0, 0}, // dist 2 to query (1,1)
		{1, 1}, // dist 0
		{2, 2}, // dist 2, same as position 0
		{5, 5}, // dist 32
	})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{1, 1}, 4)
	require.NoError(t, err)
	require.Len(t, hits, 4)

	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, float64(0), hits[0].Distance)
	// equal distances resolve by ascending position
	assert.Equal(t, 0, hits[1].Position)
	assert.Equal(t, 2, hits[2].Position)
	assert.Equal(t, 3, hits[3].Position)
}

func TestSearch_Deterministic(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}, {0, 1}, {1, 0}, {0.5, 0.5}})
	require.NoError(t, err)

	first, err := idx.Search([]float32{0.7, 0.3}, 4)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := idx.Search([]float32{0.7, 0.3}, 4)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearch_KLimitsResults(t *testing.T) {
	idx, err := Build([][]float32{{0}, {1}, {2}})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = idx.Search([]float32{0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx, err := Build([][]float32{{1, 2, 3}})
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 2}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFlat_RoundTrip(t *testing.T) {
	idx, err := Build([][]float32{
		{0.1, -2.5, 3.75},
		{4.0, 5.5, -6.25},
		{0, 0, 0},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, idx.WriteTo(&buf))

	loaded, err := ReadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, idx.Dimension(), loaded.Dimension())
	assert.Equal(t, idx.Len(), loaded.Len())

	queries := [][]float32{
		{0, 0, 0},
		{1, 1, 1},
		{-3, 0.5, 7},
	}
	for _, q := range queries {
		want, err := idx.Search(q, 3)
		require.NoError(t, err)
		got, err := loaded.Search(q, 3)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReadFrom_BadHeader(t *testing.T) {
	_, err := ReadFrom(bytes.NewReader([]byte("NOT_AN_INDEX_FILE")))
	assert.Error(t, err)
}

func TestReadFrom_Truncated(t *testing.T) {
	idx, err := Build([][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, idx.WriteTo(&buf))

	_, err = ReadFrom(bytes.NewReader(buf.Bytes()[:buf.Len()-4]))
	assert.Error(t, err)
}
