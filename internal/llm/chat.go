package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ChatBackend posts prompts to an agent-style chat service exposing
// POST /v1/chat with {"agent","input"} and replying {"agent","output"}.
type ChatBackend struct {
	cfg  LLMConfig
	http *http.Client
}

// NewChatBackend creates a Backend for a /v1/chat service at cfg.Endpoint.
func NewChatBackend(cfg LLMConfig) *ChatBackend {
	return &ChatBackend{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout()}}
}

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

type chatResponse struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

func (c *ChatBackend) Complete(ctx context.Context, prompt string) (string, error) {
	b, err := json.Marshal(chatRequest{Agent: "auto", Input: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/v1/chat", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat service returned non-200 status: %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	return out.Output, nil
}
