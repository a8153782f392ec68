package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPages_Windowing(t *testing.T) {
	chunks, pages, err := SplitPages([]string{"a b c d e f"}, 4, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"a b c d", "d e f"}, chunks)
	assert.Equal(t, []int{1, 1}, pages)
}

func TestSplitPages_ShortPageYieldsOneChunk(t *testing.T) {
	chunks, pages, err := SplitPages([]string{"only three words"}, 500, 50)
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "only three words", chunks[0])
	assert.Equal(t, []int{1}, pages)
}

func TestSplitPages_EmptyPagesSkipped(t *testing.T) {
	chunks, pages, err := SplitPages([]string{"", "words on page two", "   \n\t "}, 4, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"words on page two"}, chunks)
	assert.Equal(t, []int{2}, pages)
}

func TestSplitPages_Alignment(t *testing.T) {
	pagesText := []string{
		strings.Repeat("uno ", 10),
		"",
		strings.Repeat("dos ", 7),
		"tres",
	}

	chunks, chunkPages, err := SplitPages(pagesText, 4, 1)
	require.NoError(t, err)

	require.Equal(t, len(chunks), len(chunkPages))
	prev := 0
	for i, page := range chunkPages {
		assert.GreaterOrEqual(t, page, 1)
		assert.LessOrEqual(t, page, len(pagesText))
		assert.GreaterOrEqual(t, page, prev, "pages must be non-decreasing at chunk %d", i)
		assert.NotEmpty(t, chunks[i])
		prev = page
	}
}

func TestSplitPages_NoPages(t *testing.T) {
	chunks, pages, err := SplitPages(nil, 500, 50)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Empty(t, pages)
}

func TestSplitPages_InvalidParams(t *testing.T) {
	for _, tc := range []struct {
		name      string
		size, ovl int
	}{
		{"zero size", 0, 0},
		{"overlap equals size", 4, 4},
		{"overlap above size", 4, 5},
		{"zero overlap", 4, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := SplitPages([]string{"a b c"}, tc.size, tc.ovl)
			assert.Error(t, err)
		})
	}
}
