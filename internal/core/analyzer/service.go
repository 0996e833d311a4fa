package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 4096
)

// dotFencePattern はMarkdownコードフェンス内のDOTコードにマッチする
var dotFencePattern = regexp.MustCompile("(?s)```(?:dot|graphviz)?\\s*(.*?)\\s*```")

// Service はLLMを使ったコードベースの解析処理を提供する
type Service struct {
	client Client
	model  string
	logger *slog.Logger
}

// ServiceOption はServiceの設定オプション
type ServiceOption func(*Service)

// WithModel は使用するモデルIDを設定する
func WithModel(model string) ServiceOption {
	return func(s *Service) { s.model = model }
}

// WithServiceLogger は Service にロガーを設定する
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService は新しいServiceを作成する
func NewService(client Client, opts ...ServiceOption) *Service {
	s := &Service{
		client: client,
		model:  DefaultModelID,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// GenerateDiagram はコードコンテキストからアーキテクチャ図のDOTソースを生成する。
// 応答からコードフェンスを取り除き、DOTコードとして妥当かを検証する。
func (s *Service) GenerateDiagram(ctx context.Context, codeContext, focusArea string) (string, error) {
	s.logger.Info("generating diagram", "model", s.model)

	resp, err := s.client.GenerateCompletion(ctx, CompletionRequest{
		System:      architectPrompt,
		Prompt:      buildDiagramPrompt(codeContext, focusArea),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Model:       s.model,
	})
	if err != nil {
		return "", ClassifyError(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	dotSource := extractDOT(content)
	if !strings.Contains(dotSource, "digraph") && !strings.Contains(dotSource, "graph") {
		return "", fmt.Errorf("%w: %s", ErrInvalidDiagram, truncate(dotSource, 200))
	}

	return dotSource, nil
}

// GenerateSummary はコードベースの要約を生成する
func (s *Service) GenerateSummary(ctx context.Context, codeContext string) (string, error) {
	s.logger.Info("generating summary", "model", s.model)

	resp, err := s.client.GenerateCompletion(ctx, CompletionRequest{
		System:      summaryPrompt,
		Prompt:      buildSummaryPrompt(codeContext),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Model:       s.model,
	})
	if err != nil {
		return "", ClassifyError(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// Chat はコードコンテキストと会話履歴を踏まえて質問に回答する
func (s *Service) Chat(ctx context.Context, message, codeContext string, history []Message) (string, error) {
	resp, err := s.client.GenerateCompletion(ctx, CompletionRequest{
		System:      chatPrompt,
		Prompt:      buildChatPrompt(message, codeContext, history),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Model:       s.model,
	})
	if err != nil {
		return "", ClassifyError(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// Narrate はアーキテクチャ図から音声ナレーション向けの説明文を生成する
func (s *Service) Narrate(ctx context.Context, dotSource string) (string, error) {
	resp, err := s.client.GenerateCompletion(ctx, CompletionRequest{
		System:      chatPrompt,
		Prompt:      buildNarrationPrompt(dotSource),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Model:       s.model,
	})
	if err != nil {
		return "", ClassifyError(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// extractDOT は応答テキストからDOTコードを取り出す
func extractDOT(content string) string {
	if m := dotFencePattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
