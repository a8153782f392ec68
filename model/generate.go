package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// SentinelAnswer is recorded as the message answer when the generation
// service fails or times out. Generation failures never fail a chat request.
const SentinelAnswer = "Error al consultar el modelo Ollama"

type GeneratorInterface interface {
	Generate(ctx context.Context, prompt, modelID string) (string, error)
}

// OllamaGenerator sends assembled prompts to the Ollama generate endpoint.
type OllamaGenerator struct {
	apiURL string
	client *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func NewOllamaGenerator(apiURL string) *OllamaGenerator {
	return &OllamaGenerator{
		apiURL: apiURL,
		client: &http.Client{},
	}
}

// Generate runs one non-streamed completion. Cancellation and deadlines come
// from the caller's context.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt, modelID string) (string, error) {
	start := time.Now()
	defer func() {
		log.Printf("LLM answer took %v", time.Since(start))
	}()

	body, err := json.Marshal(generateRequest{Model: modelID, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach generation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation service error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err == nil && genResp.Response != "" {
		return genResp.Response, nil
	}

	// some deployments stream newline-delimited JSON even with stream=false
	var output string
	decoder := json.NewDecoder(bytes.NewReader(respBody))
	for decoder.More() {
		var chunk generateResponse
		if err := decoder.Decode(&chunk); err != nil {
			break
		}
		output += chunk.Response
	}
	if output == "" {
		return "", fmt.Errorf("generation service returned no answer")
	}
	return output, nil
}
