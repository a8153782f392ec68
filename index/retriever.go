package index

import (
	"context"
	"strings"
)

// QueryEmbedder is the one embedding operation retrieval needs.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever answers "which chunks of this document are closest to this
// question": it embeds the question, searches the document's index and maps
// hit positions back to chunk texts and source pages in rank order.
type Retriever struct {
	store    *ArtifactStore
	embedder QueryEmbedder
}

func NewRetriever(store *ArtifactStore, embedder QueryEmbedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve returns the top-k chunk texts joined by newlines plus the matching
// page numbers, both in ascending-distance order. Pages may repeat; callers
// deduplicate for display. A document with zero chunks yields empty context
// and no error. No similarity cutoff is applied: the k nearest chunks are
// returned no matter how distant.
func (r *Retriever) Retrieve(ctx context.Context, docName, question string, k int) (string, []int, error) {
	idx, chunks, chunkPages, err := r.store.Load(docName)
	if err != nil {
		return "", nil, err
	}

	if idx.Len() == 0 {
		return "", nil, nil
	}

	query, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return "", nil, err
	}

	hits, err := idx.Search(query, k)
	if err != nil {
		return "", nil, err
	}

	var texts []string
	var pages []int
	for _, hit := range hits {
		// stale or partial artifacts could leave the arrays shorter than
		// the index; skip such positions instead of panicking
		if hit.Position >= len(chunks) || hit.Position >= len(chunkPages) {
			continue
		}
		texts = append(texts, chunks[hit.Position])
		pages = append(pages, chunkPages[hit.Position])
	}

	return strings.Join(texts, "\n"), pages, nil
}
