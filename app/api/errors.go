package api

import (
	"errors"
	"fmt"
	"log"

	"chatpdf/extract"
	"chatpdf/index"
	"chatpdf/store"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiErr, ok := err.(Error); ok {
		return c.Status(apiErr.Code).JSON(apiErr)
	}
	if valErr, ok := err.(ValidationError); ok {
		return c.Status(valErr.Status).JSON(valErr)
	}

	apiErr := mapDomainError(err)
	log.Printf("request failed with code %d: %s", apiErr.Code, apiErr.Message)
	return c.Status(apiErr.Code).JSON(apiErr)
}

func mapDomainError(err error) Error {
	switch {
	case errors.Is(err, index.ErrDocumentNotIndexed):
		return NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConversationNotFound):
		return NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, extract.ErrExtractionFailed):
		return NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return NewError(fiberErr.Code, fiberErr.Message)
	}
	return NewError(fiber.StatusInternalServerError, err.Error())
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid request",
	}
}

func ErrInvalidID() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid id given",
	}
}

func ErrNotFound[T any](arg T, resource string) Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with %v not found", resource, arg),
	}
}
