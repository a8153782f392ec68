package types

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Document is a single ingested PDF, identified by its original filename.
type Document struct {
	Name      string    `json:"name"`
	Pages     int       `json:"pages"`
	Chunks    int       `json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is one word-window slice of a page's extracted text. Position is the
// chunk's 0-based index within the document, Page the 1-based source page.
type Chunk struct {
	DocName   string
	Position  int
	Page      int
	Content   string
	Embedding []float32
}

// Conversation binds a chat history to an owner and, optionally, to a
// document. An empty PDFName means open chat mode.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	Owner     string    `json:"owner"`
	PDFName   string    `json:"pdf_name,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages,omitempty"`
}

// Message is one question/answer turn. Messages are append-only and never
// reordered; callers must serialize writes per conversation.
type Message struct {
	ID              uuid.UUID `json:"id"`
	ConversationID  uuid.UUID `json:"conversation_id"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	TokensUsed      int       `json:"tokens_used"`
	PagesReferenced []int     `json:"pages_referenced,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type Config struct {
	ServerAddr     string
	UploadDir      string
	IndexDir       string
	EmbeddingURL   string
	EmbeddingModel string
	LLMURL         string
	LLMModel       string
	ChunkSize      int
	ChunkOverlap   int
	TopK           int
	MaxTokens      int
	GenTimeout     time.Duration
	MirrorChunks   bool
}

func LoadConfig() Config {
	return Config{
		ServerAddr:     envStr("SERVER_ADDR", ":8000"),
		UploadDir:      envStr("UPLOAD_DIR", "pdfs"),
		IndexDir:       envStr("INDEX_DIR", "indices"),
		EmbeddingURL:   envStr("OLLAMA_EMBEDDING_URL", "http://localhost:11434/api/embeddings"),
		EmbeddingModel: envStr("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		LLMURL:         envStr("LLM_URL", "http://localhost:11434/api/generate"),
		LLMModel:       envStr("LLM_MODEL", "llama2"),
		ChunkSize:      envInt("CHUNK_SIZE", 500),
		ChunkOverlap:   envInt("CHUNK_OVERLAP", 50),
		TopK:           envInt("TOP_K", 3),
		MaxTokens:      envInt("MAX_TOKENS", 3900),
		GenTimeout:     time.Duration(envInt("GEN_TIMEOUT_SECONDS", 120)) * time.Second,
		MirrorChunks:   envStr("PG_MIRROR_CHUNKS", "") == "true",
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
