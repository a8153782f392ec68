package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"chatpdf/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrConversationNotFound = errors.New("conversation not found")

type DBStorer interface {
	CreateConversation(ctx context.Context, owner, pdfName, title string) (*types.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*types.Conversation, error)
	ListConversations(ctx context.Context, owner string) ([]types.Conversation, error)
	DeleteConversation(ctx context.Context, id uuid.UUID) error
	AppendMessage(ctx context.Context, msg types.Message) error
	RecentMessages(ctx context.Context, conversationID uuid.UUID, n int) ([]types.Message, error)
	SaveChunks(ctx context.Context, chunks []types.Chunk) error
	DeleteChunksByDoc(ctx context.Context, docName string) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createTables(ctx)
}

func (p *PostgresStore) CreateConversation(ctx context.Context, owner, pdfName, title string) (*types.Conversation, error) {
	conv := &types.Conversation{
		ID:        uuid.New(),
		Owner:     owner,
		PDFName:   pdfName,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO conversations (id, owner, pdf_name, title, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := p.pool.Exec(ctx, query, conv.ID, conv.Owner, conv.PDFName, conv.Title, conv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (p *PostgresStore) GetConversation(ctx context.Context, id uuid.UUID) (*types.Conversation, error) {
	conv := &types.Conversation{}
	query := `SELECT id, owner, pdf_name, title, created_at FROM conversations WHERE id = $1`
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID, &conv.Owner, &conv.PDFName, &conv.Title, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	// messages in chronological order, the order they were committed
	rows, err := p.pool.Query(ctx,
		`SELECT id, conversation_id, question, answer, tokens_used, pages_referenced, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		conv.Messages = append(conv.Messages, msg)
	}
	return conv, rows.Err()
}

func (p *PostgresStore) ListConversations(ctx context.Context, owner string) ([]types.Conversation, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, owner, pdf_name, title, created_at FROM conversations
		WHERE owner = $1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []types.Conversation
	for rows.Next() {
		var conv types.Conversation
		if err := rows.Scan(&conv.ID, &conv.Owner, &conv.PDFName, &conv.Title, &conv.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

func (p *PostgresStore) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	if _, err := p.pool.Exec(ctx, "DELETE FROM messages WHERE conversation_id = $1", id); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, "DELETE FROM conversations WHERE id = $1", id)
	return err
}

func (p *PostgresStore) AppendMessage(ctx context.Context, msg types.Message) error {
	pages := make([]int32, len(msg.PagesReferenced))
	for i, page := range msg.PagesReferenced {
		pages[i] = int32(page)
	}

	query := `INSERT INTO messages (id, conversation_id, question, answer, tokens_used, pages_referenced, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := p.pool.Exec(ctx, query,
		msg.ID, msg.ConversationID, msg.Question, msg.Answer, msg.TokensUsed, pages, msg.CreatedAt)
	return err
}

// RecentMessages returns the n most recent messages, oldest first, ready to
// render as history.
func (p *PostgresStore) RecentMessages(ctx context.Context, conversationID uuid.UUID, n int) ([]types.Message, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, conversation_id, question, answer, tokens_used, pages_referenced, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		conversationID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []types.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// reverse into chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func scanMessage(rows pgx.Rows) (types.Message, error) {
	var msg types.Message
	var pages []int32
	err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Question, &msg.Answer,
		&msg.TokensUsed, &pages, &msg.CreatedAt)
	if err != nil {
		return msg, err
	}
	msg.PagesReferenced = make([]int, len(pages))
	for i, page := range pages {
		msg.PagesReferenced[i] = int(page)
	}
	return msg, nil
}

func (p *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		id UUID PRIMARY KEY,
		owner TEXT NOT NULL,
		pdf_name TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations(owner);

	CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		conversation_id UUID NOT NULL REFERENCES conversations(id),
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		tokens_used INT NOT NULL DEFAULT 0,
		pages_referenced INT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
	`
	_, err := p.pool.Exec(ctx, query)
	return err
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
