package index

import (
	"context"
	"errors"
	"testing"

	"chatpdf/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapEmbedder returns fixed vectors per exact text, for deterministic tests.
type mapEmbedder struct {
	vectors map[string][]float32
}

func (m *mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := m.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text: " + text)
	}
	return v, nil
}

func (m *mapEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type fixedPages struct {
	pages []string
	err   error
}

func (f *fixedPages) ExtractPages([]byte) ([]string, error) {
	return f.pages, f.err
}

func TestRetriever_EndToEnd(t *testing.T) {
	store := newTestStore(t)

	// page 1 yields chunks 0 and 1 (6 words, window 4, step 3),
	// page 2 yields chunk 2
	pages := &fixedPages{pages: []string{
		"w1 w2 w3 w4 w5 w6",
		"page two text",
	}}
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"w1 w2 w3 w4": {0, 0},
		"w4 w5 w6":    {0, 1},
		"page two text": {10, 10},
		"the question":  {9, 9},
	}}

	extractor := extract.New(pages, &fixedPages{err: errors.New("unused")})
	ingestor := NewIngestor(extractor, embedder, store, 4, 1)

	doc, records, err := ingestor.Ingest(context.Background(), "doc.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, 3, doc.Chunks)
	require.Len(t, records, 3)
	assert.Equal(t, []int{1, 1, 2}, []int{records[0].Page, records[1].Page, records[2].Page})

	retriever := NewRetriever(store, embedder)
	contextText, resultPages, err := retriever.Retrieve(context.Background(), "doc.pdf", "the question", 1)
	require.NoError(t, err)

	assert.Equal(t, "page two text", contextText)
	assert.Equal(t, []int{2}, resultPages)
}

func TestRetriever_RankOrderAndDuplicates(t *testing.T) {
	store := newTestStore(t)

	idx, err := Build([][]float32{{0}, {1}, {2}})
	require.NoError(t, err)
	require.NoError(t, store.Save("doc.pdf", idx, []string{"cero", "uno", "dos"}, []int{1, 1, 2}))

	embedder := &mapEmbedder{vectors: map[string][]float32{"q": {0.9}}}
	retriever := NewRetriever(store, embedder)

	contextText, pages, err := retriever.Retrieve(context.Background(), "doc.pdf", "q", 3)
	require.NoError(t, err)

	assert.Equal(t, "uno\ncero\ndos", contextText)
	assert.Equal(t, []int{1, 1, 2}, pages)
}

func TestRetriever_NotIndexed(t *testing.T) {
	store := newTestStore(t)
	retriever := NewRetriever(store, &mapEmbedder{})

	_, _, err := retriever.Retrieve(context.Background(), "ghost.pdf", "q", 3)
	assert.ErrorIs(t, err, ErrDocumentNotIndexed)
}

func TestRetriever_EmptyIndex(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("blank.pdf", nil, nil, nil))

	retriever := NewRetriever(store, &mapEmbedder{})
	contextText, pages, err := retriever.Retrieve(context.Background(), "blank.pdf", "q", 3)
	require.NoError(t, err)
	assert.Empty(t, contextText)
	assert.Empty(t, pages)
}

func TestRetriever_OutOfBoundsPositionsSkipped(t *testing.T) {
	store := newTestStore(t)

	// index claims three vectors but the chunk arrays only carry one entry
	idx, err := Build([][]float32{{0}, {1}, {2}})
	require.NoError(t, err)
	require.NoError(t, store.Save("stale.pdf", idx, []string{"solo"}, []int{1}))

	embedder := &mapEmbedder{vectors: map[string][]float32{"q": {2}}}
	retriever := NewRetriever(store, embedder)

	contextText, pages, err := retriever.Retrieve(context.Background(), "stale.pdf", "q", 3)
	require.NoError(t, err)
	assert.Equal(t, "solo", contextText)
	assert.Equal(t, []int{1}, pages)
}

func TestIngestor_ZeroChunks(t *testing.T) {
	store := newTestStore(t)
	extractor := extract.New(&fixedPages{pages: []string{"", "   "}}, &fixedPages{pages: []string{"", ""}})
	ingestor := NewIngestor(extractor, &mapEmbedder{}, store, 4, 1)

	doc, records, err := ingestor.Ingest(context.Background(), "blank.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Chunks)
	assert.Empty(t, records)

	idx, _, _, err := store.Load("blank.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}

func TestIngestor_EmbedFailureWritesNothing(t *testing.T) {
	store := newTestStore(t)
	extractor := extract.New(&fixedPages{pages: []string{"some words here"}}, &fixedPages{err: errors.New("unused")})
	ingestor := NewIngestor(extractor, &mapEmbedder{}, store, 4, 1)

	_, _, err := ingestor.Ingest(context.Background(), "doc.pdf", []byte("%PDF"))
	require.Error(t, err)

	_, _, _, err = store.Load("doc.pdf")
	assert.ErrorIs(t, err, ErrDocumentNotIndexed)
}
