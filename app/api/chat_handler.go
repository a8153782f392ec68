package api

import (
	"context"
	"log"
	"sort"
	"time"

	"chatpdf/model"
	"chatpdf/prompt"
	"chatpdf/store"
	"chatpdf/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Retriever is the retrieval surface the chat flow needs.
type Retriever interface {
	Retrieve(ctx context.Context, docName, question string, k int) (string, []int, error)
}

// TokenCounter abstracts the tokenizer for budgeting.
type TokenCounter interface {
	CountTokens(text string) int
}

type ChatHandler struct {
	retriever Retriever
	generator model.GeneratorInterface
	tokenizer TokenCounter
	db        store.DBStorer
	cfg       types.Config
}

func NewChatHandler(retriever Retriever, generator model.GeneratorInterface, tokenizer TokenCounter, db store.DBStorer, cfg types.Config) *ChatHandler {
	return &ChatHandler{
		retriever: retriever,
		generator: generator,
		tokenizer: tokenizer,
		db:        db,
		cfg:       cfg,
	}
}

// HandleChat answers one question against a document without any
// conversation state: retrieval, prompt assembly, generation.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}
	if params.PDFName == "" {
		return NewError(fiber.StatusBadRequest, "pdf_name is required")
	}

	resp, err := h.answer(c.Context(), params.PDFName, params, nil)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// HandleConversationChat answers within a conversation: the bound document
// picks the mode, stored history feeds the budgeter and the resulting
// message is appended to the conversation.
func (h *ChatHandler) HandleConversationChat(c *fiber.Ctx) error {
	convID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	conv, err := h.db.GetConversation(c.Context(), convID)
	if err != nil {
		return err
	}

	history, err := h.db.RecentMessages(c.Context(), convID, prompt.HistoryWindow)
	if err != nil {
		return err
	}

	resp, err := h.answer(c.Context(), conv.PDFName, params, history)
	if err != nil {
		return err
	}

	msg := types.Message{
		ID:              uuid.New(),
		ConversationID:  convID,
		Question:        params.Question,
		Answer:          resp.Answer,
		TokensUsed:      resp.TokensUsed,
		PagesReferenced: resp.Pages,
		CreatedAt:       time.Now().UTC(),
	}
	if err := h.db.AppendMessage(c.Context(), msg); err != nil {
		return err
	}

	return c.JSON(resp)
}

// answer runs the query path shared by both chat endpoints. An empty docName
// means open chat: no retrieval, no page references.
func (h *ChatHandler) answer(ctx context.Context, docName string, params types.ChatParams, history []types.Message) (*types.ChatResponse, error) {
	mode := prompt.OpenChat
	var contextText string
	var pages []int

	if docName != "" {
		mode = prompt.DocumentGrounded
		var err error
		contextText, pages, err = h.retriever.Retrieve(ctx, docName, params.Question, h.cfg.TopK)
		if err != nil {
			return nil, err
		}
	}

	assembled, tokens := prompt.Build(mode, params.Language, contextText, history,
		params.Question, h.cfg.MaxTokens, h.tokenizer.CountTokens)

	modelID := params.Model
	if modelID == "" {
		modelID = h.cfg.LLMModel
	}

	genCtx, cancel := context.WithTimeout(ctx, h.cfg.GenTimeout)
	defer cancel()

	answer, err := h.generator.Generate(genCtx, assembled, modelID)
	if err != nil {
		// generation failures degrade the answer, never the request
		log.Printf("[CHAT] generation failed, answering with sentinel: %v", err)
		answer = model.SentinelAnswer
	}

	return &types.ChatResponse{
		Answer:     answer,
		Pages:      dedupePages(pages),
		TokensUsed: tokens,
	}, nil
}

// dedupePages turns the rank-ordered page list into a sorted set for the
// response and for persistence on the message.
func dedupePages(pages []int) []int {
	seen := make(map[int]struct{}, len(pages))
	result := make([]int, 0, len(pages))
	for _, p := range pages {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	sort.Ints(result)
	return result
}
