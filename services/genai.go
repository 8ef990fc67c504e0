package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/luvfam/familing/config"
)

// Generator produces candidate question texts for a prompt. Implementations
// talk to an external text-generation service; callers treat every failure as
// transient and let the next scheduled run retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]string, error)
}

// openAIClient implements Generator against an OpenAI-compatible
// chat-completions endpoint.
type openAIClient struct {
	endpoint   string
	apiKey     string
	model      string
	candidates int
	timeout    time.Duration
	http       *http.Client
}

// NewGenerator builds a Generator from application configuration.
func NewGenerator(cfg config.AppConfig) Generator {
	return &openAIClient{
		endpoint:   strings.TrimRight(cfg.GenAIEndpoint, "/"),
		apiKey:     cfg.GenAIAPIKey,
		model:      cfg.GenAIModel,
		candidates: cfg.GenAICandidates,
		timeout:    time.Duration(cfg.GenAITimeoutSec) * time.Second,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	N           int           `json:"n,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Generate(ctx context.Context, prompt string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		N:           c.candidates,
		Temperature: 0.9,
		MaxTokens:   128,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.endpoint + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrGenTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrGenHTTP, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrGenHTTP, httpResp.StatusCode, truncateBody(respBody))
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	texts := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		if strings.TrimSpace(choice.Message.Content) == "" {
			return nil, ErrMalformedResponse
		}
		texts = append(texts, choice.Message.Content)
	}
	return texts, nil
}

func truncateBody(b []byte) string {
	const limit = 256
	if len(b) > limit {
		b = b[:limit]
	}
	return string(b)
}
