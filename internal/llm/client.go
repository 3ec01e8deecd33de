// Package llm is a minimal chat-completion client for OpenAI-compatible,
// Anthropic and Gemini endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/julianstephens/morrow/internal/constants"
	apperrors "github.com/julianstephens/morrow/internal/errors"
	"github.com/julianstephens/morrow/internal/logger"
)

type APIFormat string

const (
	FormatOpenAI    APIFormat = "openai"
	FormatAnthropic APIFormat = "anthropic"
	FormatGemini    APIFormat = "gemini"
)

// ParseAPIFormat is case-insensitive; an empty value means OpenAI.
func ParseAPIFormat(s string) (APIFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatOpenAI):
		return FormatOpenAI, nil
	case string(FormatAnthropic):
		return FormatAnthropic, nil
	case string(FormatGemini):
		return FormatGemini, nil
	default:
		return "", fmt.Errorf("unknown api format %q (want openai, anthropic or gemini)", s)
	}
}

// Config configures a Client
type Config struct {
	Format            APIFormat
	BaseURL           string
	Model             string
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Options tune a single completion request
type Options struct {
	Temperature float64
	MaxTokens   int
	JSON        bool // ask the provider for a JSON-only response where supported
}

// Client sends rate-limited completion requests
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a Client. It fails when no API key is configured.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.ErrMissingAPIKey
	}
	if cfg.Format == "" {
		cfg.Format = FormatOpenAI
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultLLMBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultLLMModel
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = constants.DefaultRequestsPerMinute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultLLMTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends one system + user prompt pair and returns the text reply.
func (c *Client) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}

	var (
		endpoint string
		headers  = map[string]string{}
		body     any
		extract  func([]byte) (string, error)
	)

	switch c.cfg.Format {
	case FormatAnthropic:
		endpoint = c.cfg.BaseURL + "/messages"
		headers["x-api-key"] = c.cfg.APIKey
		headers["anthropic-version"] = constants.AnthropicVersion
		body = anthropicRequest{
			Model:       c.cfg.Model,
			MaxTokens:   opts.MaxTokens,
			System:      system,
			Temperature: opts.Temperature,
			Messages:    []message{{Role: "user", Content: user}},
		}
		extract = extractAnthropic
	case FormatGemini:
		endpoint = fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
		headers["x-goog-api-key"] = c.cfg.APIKey
		req := geminiRequest{
			Contents: []geminiContent{{Parts: []geminiPart{{Text: system + "\n\n" + user}}}},
			GenerationConfig: geminiGenerationConfig{
				Temperature:     opts.Temperature,
				MaxOutputTokens: opts.MaxTokens,
			},
		}
		if opts.JSON {
			req.GenerationConfig.ResponseMimeType = "application/json"
		}
		body = req
		extract = extractGemini
	default:
		endpoint = c.cfg.BaseURL + "/chat/completions"
		headers["Authorization"] = "Bearer " + c.cfg.APIKey
		req := openAIRequest{
			Model: c.cfg.Model,
			Messages: []message{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			Temperature: opts.Temperature,
		}
		if opts.JSON {
			req.ResponseFormat = &responseFormat{Type: "json_object"}
		}
		body = req
		extract = extractOpenAI
	}

	raw, err := c.post(ctx, endpoint, headers, body)
	if err != nil {
		return "", err
	}
	return extract(raw)
}

func (c *Client) post(ctx context.Context, endpoint string, headers map[string]string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	logger.Debug("llm request finished", "format", c.cfg.Format, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func extractOpenAI(body []byte) (string, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func extractAnthropic(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	for _, c := range resp.Content {
		if c.Type == "text" {
			return c.Text, nil
		}
	}
	return "", fmt.Errorf("empty response")
}

func extractGemini(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// StripCodeFence removes a surrounding markdown code block, if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
