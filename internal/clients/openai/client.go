// Package openai provides a minimal HTTP client for the chat-completion and
// image-generation APIs the backend proxies to.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxErrorBody bounds how much of an upstream error body is kept for logs
const maxErrorBody = 512

var (
	// ErrEmptyResponse is returned when the API answers 2xx without a usable result
	ErrEmptyResponse = errors.New("empty response from upstream")
	// ErrMissingAPIKey is returned when no API key is configured
	ErrMissingAPIKey = errors.New("api key is not configured")
)

// Config holds the upstream endpoints and credentials
type Config struct {
	APIKey    string
	ChatURL   string
	ChatModel string
	ImageURL  string
	ImageSize string
	Timeout   time.Duration
}

// Client calls the chat-completion and image-generation APIs
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

// NewClient creates a new upstream client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type imageGenerationRequest struct {
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Complete sends message as a single user turn and returns the first reply
func (c *Client) Complete(ctx context.Context, message string) (string, error) {
	req := chatCompletionRequest{
		Model:    c.cfg.ChatModel,
		Messages: []chatMessage{{Role: "user", Content: message}},
	}

	var resp chatCompletionResponse
	if err := c.post(ctx, c.cfg.ChatURL, req, &resp); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completion: %w", ErrEmptyResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

// Generate requests one image for prompt and returns its URL
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := imageGenerationRequest{
		Prompt: prompt,
		N:      1,
		Size:   c.cfg.ImageSize,
	}

	var resp imageGenerationResponse
	if err := c.post(ctx, c.cfg.ImageURL, req, &resp); err != nil {
		return "", fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("image generation: %w", ErrEmptyResponse)
	}

	return resp.Data[0].URL, nil
}

// post sends body as JSON to url and decodes a 2xx JSON response into out
func (c *Client) post(ctx context.Context, url string, body, out any) error {
	if c.cfg.APIKey == "" {
		return ErrMissingAPIKey
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream request",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("upstream returned %s; body: %s", resp.Status, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
