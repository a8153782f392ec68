package index

import (
	"context"
	"log/slog"
	"time"

	"chatpdf/extract"
	"chatpdf/types"
)

// Embedder is the embedding surface ingestion needs on top of QueryEmbedder.
type Embedder interface {
	QueryEmbedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Ingestor runs the build path: page extraction, chunking, embedding, index
// build and artifact persistence. Nothing is written until every stage has
// succeeded, so a failed ingestion leaves no partial artifacts behind.
type Ingestor struct {
	extractor *extract.Extractor
	embedder  Embedder
	store     *ArtifactStore
	chunkSize int
	overlap   int
	logger    *slog.Logger
}

func NewIngestor(extractor *extract.Extractor, embedder Embedder, store *ArtifactStore, chunkSize, overlap int) *Ingestor {
	return &Ingestor{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    slog.Default(),
	}
}

// Ingest indexes one document. A document whose pages yield no chunks is
// still ingested: empty artifacts are saved and later retrieval returns
// empty context.
func (ing *Ingestor) Ingest(ctx context.Context, docName string, data []byte) (*types.Document, []types.Chunk, error) {
	pages, err := ing.extractor.ExtractPages(data)
	if err != nil {
		return nil, nil, err
	}

	chunks, chunkPages, err := SplitPages(pages, ing.chunkSize, ing.overlap)
	if err != nil {
		return nil, nil, err
	}

	doc := &types.Document{
		Name:      docName,
		Pages:     len(pages),
		Chunks:    len(chunks),
		CreatedAt: time.Now().UTC(),
	}

	if len(chunks) == 0 {
		ing.logger.Warn("document produced no chunks", "doc", docName, "pages", len(pages))
		if err := ing.store.Save(docName, nil, nil, nil); err != nil {
			return nil, nil, err
		}
		return doc, nil, nil
	}

	vectors, err := ing.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, nil, err
	}

	idx, err := Build(vectors)
	if err != nil {
		return nil, nil, err
	}

	if err := ing.store.Save(docName, idx, chunks, chunkPages); err != nil {
		return nil, nil, err
	}

	ing.logger.Info("document indexed",
		"doc", docName, "pages", len(pages), "chunks", len(chunks), "dim", idx.Dimension())

	records := make([]types.Chunk, len(chunks))
	for i := range chunks {
		records[i] = types.Chunk{
			DocName:   docName,
			Position:  i,
			Page:      chunkPages[i],
			Content:   chunks[i],
			Embedding: vectors[i],
		}
	}
	return doc, records, nil
}
