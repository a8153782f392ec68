package api

import (
	"chatpdf/store"
	"chatpdf/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	db store.DBStorer
}

func NewConversationHandler(db store.DBStorer) *ConversationHandler {
	return &ConversationHandler{db: db}
}

func (h *ConversationHandler) HandleCreate(c *fiber.Ctx) error {
	var params types.ConversationParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	title := params.Title
	if title == "" {
		title = params.PDFName
	}

	conv, err := h.db.CreateConversation(c.Context(), params.Owner, params.PDFName, title)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

func (h *ConversationHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	conv, err := h.db.GetConversation(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(conv)
}

func (h *ConversationHandler) HandleList(c *fiber.Ctx) error {
	owner := c.Query("owner")
	if owner == "" {
		return NewError(fiber.StatusBadRequest, "owner query parameter is required")
	}

	convs, err := h.db.ListConversations(c.Context(), owner)
	if err != nil {
		return err
	}
	if convs == nil {
		convs = []types.Conversation{}
	}
	return c.JSON(convs)
}

func (h *ConversationHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	if err := h.db.DeleteConversation(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "conversation deleted"})
}
