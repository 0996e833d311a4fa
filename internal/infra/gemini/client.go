// Package gemini はGoogle Gemini APIを使ったLLMクライアントを提供する。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/codeatlas/codeatlas/internal/core/analyzer"
)

const (
	// maxRetries はレート制限時の最大リトライ回数
	maxRetries = 3

	// initialBackoff は最初のリトライまでの待機時間
	initialBackoff = 2 * time.Second
)

// Client はGemini APIを使用するLLMクライアント
type Client struct {
	client       *genai.Client
	defaultModel string
	logger       *slog.Logger
}

// ClientOption はClientの設定オプション
type ClientOption func(*Client)

// WithDefaultModel はデフォルトのモデルIDを設定する
func WithDefaultModel(model string) ClientOption {
	return func(c *Client) { c.defaultModel = model }
}

// WithClientLogger は Client にロガーを設定する
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient は新しいGeminiクライアントを作成する
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	c := &Client{
		client:       client,
		defaultModel: analyzer.DefaultModelID,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// GenerateCompletion はプロンプトに基づいてGeminiから応答を生成する。
// レート制限 (429) の場合は指数バックオフでリトライする。
func (c *Client) GenerateCompletion(ctx context.Context, req analyzer.CompletionRequest) (analyzer.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	contents := []*genai.Content{
		{Parts: []*genai.Part{{Text: req.Prompt}}},
	}

	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying gemini request", "attempt", attempt, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return analyzer.CompletionResponse{}, ctx.Err()
			}
			backoff *= 2
		}

		result, err := c.client.Models.GenerateContent(ctx, model, contents, config)
		if err != nil {
			lastErr = err
			if isRateLimited(err) {
				continue
			}
			return analyzer.CompletionResponse{}, fmt.Errorf("failed to generate content: %w", err)
		}

		return analyzer.CompletionResponse{
			Content: result.Text(),
			Model:   model,
		}, nil
	}

	return analyzer.CompletionResponse{}, fmt.Errorf("failed to generate content after %d retries: %w", maxRetries, lastErr)
}

// isRateLimited はレート制限エラーかどうかを判定する
func isRateLimited(err error) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429
	}
	return false
}

var _ analyzer.Client = (*Client)(nil)
