// Package openai はOpenAI APIを使ったLLMクライアントを提供する。
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/codeatlas/codeatlas/internal/core/analyzer"
)

const (
	// DefaultModel はデフォルトで使用するOpenAIモデル
	DefaultModel = "gpt-5-mini"

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 120 * time.Second

	// MaxRetries はレート制限エラー時の最大リトライ回数
	MaxRetries = 3

	// BaseBackoff はExponential Backoffの基底時間
	BaseBackoff = 2 * time.Second

	// MaxBackoff はExponential Backoffの最大待機時間
	MaxBackoff = 32 * time.Second
)

var (
	// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
	ErrAPIKeyNotSet = errors.New("OpenAI API key not set")

	// ErrMaxRetriesExceeded は最大リトライ回数を超過した場合のエラー
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// Client は OpenAI API を使用した LLM クライアント実装
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewClient はAPIキーを指定して新しい Client を作成する
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &Client{
		client:  client,
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}, nil
}

// NewClientWithModel はAPIキーとモデルを指定して Client を作成する
func NewClientWithModel(apiKey, model string) (*Client, error) {
	client, err := NewClient(apiKey)
	if err != nil {
		return nil, err
	}
	client.model = model
	return client, nil
}

// SetTimeout はAPIコールのタイムアウトを設定する
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// ModelName はモデル名を返す
func (c *Client) ModelName() string {
	return c.model
}

// GenerateCompletion は OpenAI API を使用してテキストを生成する。
// レート制限 (429) の場合はExponential Backoffでリトライする。
func (c *Client) GenerateCompletion(ctx context.Context, req analyzer.CompletionRequest) (analyzer.CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoffDuration := time.Duration(math.Pow(2, float64(attempt-1))) * BaseBackoff
			if backoffDuration > MaxBackoff {
				backoffDuration = MaxBackoff
			}

			select {
			case <-ctx.Done():
				return analyzer.CompletionResponse{}, ctx.Err()
			case <-time.After(backoffDuration):
			}
		}

		messages := []openai.ChatCompletionMessageParamUnion{}
		if req.System != "" {
			messages = append(messages, openai.SystemMessage(req.System))
		}
		messages = append(messages, openai.UserMessage(req.Prompt))

		params := openai.ChatCompletionNewParams{
			Model:       shared.ChatModel(model),
			Messages:    messages,
			Temperature: openai.Float(req.Temperature),
		}

		if req.MaxTokens > 0 {
			params.MaxTokens = openai.Int(int64(req.MaxTokens))
		}

		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err

			if isRateLimitError(err) {
				continue
			}

			return analyzer.CompletionResponse{}, fmt.Errorf("OpenAI API call failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return analyzer.CompletionResponse{}, fmt.Errorf("no completion choices returned")
		}

		return analyzer.CompletionResponse{
			Content: completion.Choices[0].Message.Content,
			Model:   string(completion.Model),
		}, nil
	}

	return analyzer.CompletionResponse{}, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}

	return false
}

// インターフェース実装の確認
var _ analyzer.Client = (*Client)(nil)
