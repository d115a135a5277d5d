package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4"

	// Completion requests get a hard deadline; callers treat a timeout the
	// same as an unavailable service and fall back.
	completionTimeout = 20 * time.Second
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// ChatClient talks to an OpenAI-compatible completion endpoint.
type ChatClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewChatClientFromEnv returns nil when OPENAI_API_KEY is unset; callers use
// a nil client as the signal to serve deterministic fallbacks.
func NewChatClientFromEnv() *ChatClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &ChatClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: completionTimeout,
		},
	}
}

func (c *ChatClient) Model() string {
	return c.model
}

// Complete sends a system prompt, prior turns and the current message, and
// returns the assistant reply text.
func (c *ChatClient) Complete(ctx context.Context, system string, history []ChatMessage, message string, temperature float64) (string, error) {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: system})

	for _, msg := range history {
		role := msg.Role
		if role == "" {
			role = "user"
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Content})
	}

	messages = append(messages, ChatMessage{Role: "user", Content: message})

	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   800,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", err
	}

	if completion.Error != nil {
		return "", fmt.Errorf("completion service: %s", completion.Error.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion service returned status %d", resp.StatusCode)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion service returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
