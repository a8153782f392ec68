// Package prompt assembles the generation prompt from a mode-specific
// instruction, optional document context, trimmed conversation history and
// the current question, under a token ceiling.
package prompt

import (
	"fmt"
	"strings"

	"chatpdf/types"
)

type Mode int

const (
	OpenChat Mode = iota
	DocumentGrounded
)

// FallbackAnswer is the sentence the model is instructed to produce when the
// retrieved context cannot answer the question. It is a contract with the
// generation step and must appear verbatim in the grounded instruction.
const FallbackAnswer = "No hay información suficiente en el PDF para responder esa pregunta."

// HistoryWindow caps how many recent messages enter budgeting at all.
const HistoryWindow = 10

// TokenCounter must be a pure function of its input for a fixed model
// configuration; trimming decisions depend on nothing else.
type TokenCounter func(text string) int

// Build assembles the prompt and enforces maxTokens by dropping the oldest
// history message until the prompt fits or history is exhausted. The current
// question is never dropped: if it alone exceeds the budget, the oversized
// prompt is returned as-is. Returns the prompt and its token count.
func Build(mode Mode, language, contextText string, history []types.Message, question string, maxTokens int, count TokenCounter) (string, int) {
	if language == "" {
		language = "español"
	}

	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	prefix := instruction(mode, language, contextText)

	assembled := assemble(prefix, history, question)
	tokens := count(assembled)

	for tokens > maxTokens && len(history) > 0 {
		history = history[1:]
		assembled = assemble(prefix, history, question)
		tokens = count(assembled)
	}

	return assembled, tokens
}

func instruction(mode Mode, language, contextText string) string {
	if mode == OpenChat {
		return fmt.Sprintf("Eres un asistente conversacional. Responde de forma clara y útil, únicamente en %s.\n\n", language)
	}
	return fmt.Sprintf(
		"Responde la siguiente pregunta usando solo el contexto proporcionado. Si la respuesta no está en el contexto, responde: '%s' Responde únicamente en %s.\n\nContexto:\n%s\n\n",
		FallbackAnswer, language, contextText,
	)
}

func assemble(prefix string, history []types.Message, question string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, msg := range history {
		b.WriteString("user: ")
		b.WriteString(msg.Question)
		b.WriteString("\n")
		b.WriteString("assistant: ")
		b.WriteString(msg.Answer)
		b.WriteString("\n")
	}
	b.WriteString("user: ")
	b.WriteString(question)
	b.WriteString("\nassistant:")
	return b.String()
}
