package model

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts prompt tokens for budgeting. It is constructed once at
// process start and injected wherever counting is needed; the encoding it
// wraps is immutable, so counts are a pure function of the input text.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

func NewTokenizer(modelID string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer for %s: %w", modelID, err)
	}
	return &Tokenizer{encoding: enc}, nil
}

func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}
