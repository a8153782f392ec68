package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"chatpdf/app/api"
	"chatpdf/extract"
	"chatpdf/index"
	"chatpdf/model"
	"chatpdf/store"
	"chatpdf/types"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
	BodyLimit:    100 * 1024 * 1024, // uploaded PDFs
}

// The tokenizer vocabulary only drives budgeting, so any fixed encoding
// works; it does not have to match the generation model.
const tokenizerModel = "gpt-3.5-turbo"

type Server struct {
	listenAddr string
	logger     *slog.Logger
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

// Run constructs every adapter once and wires the pipeline. All adapters are
// immutable after construction and shared by reference across requests.
func (s *Server) Run() {
	ctx := context.Background()
	cfg := types.LoadConfig()

	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database ", err)
		return
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables ", err)
		return
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatal("error to create upload dir ", err)
		return
	}

	artifacts, err := index.NewArtifactStore(cfg.IndexDir)
	if err != nil {
		log.Fatal("error to create index dir ", err)
		return
	}

	tokenizer, err := model.NewTokenizer(tokenizerModel)
	if err != nil {
		log.Fatal("error to load tokenizer ", err)
		return
	}

	var (
		embedder  = model.NewOllamaEmbedder(cfg.EmbeddingURL, cfg.EmbeddingModel)
		generator = model.NewOllamaGenerator(cfg.LLMURL)
		extractor = extract.NewDefault()
		ingestor  = index.NewIngestor(extractor, embedder, artifacts, cfg.ChunkSize, cfg.ChunkOverlap)
		retriever = index.NewRetriever(artifacts, embedder)

		app             = fiber.New(config)
		checkHandler    = api.NewCheckHandler()
		documentHandler = api.NewDocumentHandler(ingestor, artifacts, pool, cfg)
		chatHandler     = api.NewChatHandler(retriever, generator, tokenizer, pool, cfg)
		convHandler     = api.NewConversationHandler(pool)

		check = app.Group("/check")
		apiv1 = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)

	apiv1.Post("/documents", documentHandler.HandleUpload)
	apiv1.Get("/documents", documentHandler.HandleList)
	apiv1.Delete("/documents/:name", documentHandler.HandleDelete)

	apiv1.Post("/chat", chatHandler.HandleChat)

	apiv1.Post("/conversations", convHandler.HandleCreate)
	apiv1.Get("/conversations", convHandler.HandleList)
	apiv1.Get("/conversations/:id", convHandler.HandleGet)
	apiv1.Delete("/conversations/:id", convHandler.HandleDelete)
	apiv1.Post("/conversations/:id/chat", chatHandler.HandleConversationChat)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}
