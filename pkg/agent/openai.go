package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultChatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// OpenAIModel is a Model adapter for OpenAI-compatible chat-completions
// endpoints. It performs a single request per Complete call; retries belong
// to the caller's policy, not here.
type OpenAIModel struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewOpenAIModel creates an adapter for the given model name. baseURL may be
// empty to use the OpenAI endpoint.
func NewOpenAIModel(apiKey, model, baseURL string, temperature float64, maxTokens int, timeout time.Duration) *OpenAIModel {
	if baseURL == "" {
		baseURL = defaultChatCompletionsURL
	}
	return &OpenAIModel{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the message list and returns the first choice's content.
func (m *OpenAIModel) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode chat response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return "", fmt.Errorf("chat completion failed (status %d): %s", resp.StatusCode, decoded.Error.Message)
		}
		return "", fmt.Errorf("chat completion failed with status %d", resp.StatusCode)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}
