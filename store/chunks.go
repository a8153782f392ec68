package store

import (
	"context"
	"errors"
	"fmt"

	"chatpdf/types"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// The chunks table mirrors the file artifacts for SQL-side inspection of
// what got indexed (embedding column included). Retrieval never reads it;
// the per-document artifact files stay the source of truth.

func (p *PostgresStore) SaveChunks(ctx context.Context, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := p.ensureChunksTable(ctx, len(chunks[0].Embedding)); err != nil {
		return err
	}

	query := `INSERT INTO chunks (doc_name, position, page, content, embedding)
		VALUES ($1, $2, $3, $4, $5)`
	for _, c := range chunks {
		_, err := p.pool.Exec(ctx, query,
			c.DocName, c.Position, c.Page, c.Content, pgvector.NewVector(c.Embedding))
		if err != nil {
			return fmt.Errorf("mirror chunk %d: %w", c.Position, err)
		}
	}
	return nil
}

func (p *PostgresStore) DeleteChunksByDoc(ctx context.Context, docName string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM chunks WHERE doc_name = $1`, docName)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		// table never created, nothing mirrored yet
		return nil
	}
	return err
}

func (p *PostgresStore) ensureChunksTable(ctx context.Context, dim int) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS chunks (
		doc_name TEXT NOT NULL,
		position INT NOT NULL,
		page INT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%d),
		PRIMARY KEY (doc_name, position)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_doc_name ON chunks(doc_name);
	`, dim)
	_, err := p.pool.Exec(ctx, query)
	return err
}
