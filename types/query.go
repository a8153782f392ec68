package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

// ChatParams is the body of both the stateless chat endpoint and the
// per-conversation chat endpoint. PDFName is only read by the stateless one.
type ChatParams struct {
	PDFName  string `json:"pdf_name,omitempty"`
	Question string `json:"question" validate:"required"`
	Language string `json:"language"`
	Model    string `json:"model"`
}

type ConversationParams struct {
	Owner   string `json:"owner" validate:"required"`
	PDFName string `json:"pdf_name,omitempty"`
	Title   string `json:"title,omitempty"`
}

type ChatResponse struct {
	Answer     string `json:"answer"`
	Pages      []int  `json:"pages"`
	TokensUsed int    `json:"tokens_used"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *ChatParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *ConversationParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(s any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
