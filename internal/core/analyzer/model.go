package analyzer

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrRateLimited はAPIのレート制限に達した場合のエラー
	ErrRateLimited = errors.New("rate limited: please wait and try again")

	// ErrInvalidAPIKey はAPIキーが無効な場合のエラー
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrEmptyResponse はモデルが空の応答を返した場合のエラー
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrInvalidDiagram は応答からDOTコードを取り出せなかった場合のエラー
	ErrInvalidDiagram = errors.New("response does not contain valid DOT code")
)

// Client はLLMサービスとのやり取りを抽象化する共通インターフェース
type Client interface {
	// GenerateCompletion はプロンプトに基づいてLLMから応答を生成する
	GenerateCompletion(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// CompletionRequest はLLMへのリクエストパラメータ
type CompletionRequest struct {
	// System はシステムプロンプト
	System string

	// Prompt はLLMに送信するユーザープロンプト
	Prompt string

	// Temperature は生成の多様性を制御する (0.0-2.0)
	Temperature float64

	// MaxTokens は生成する最大トークン数
	MaxTokens int

	// Model はLLMモデル名 (省略時はデフォルトモデルを使用)
	Model string
}

// CompletionResponse はLLMからのレスポンス
type CompletionResponse struct {
	// Content は生成されたテキスト
	Content string

	// Model は実際に使用されたモデル名
	Model string
}

// Message はチャット履歴の1件分
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// geminiModels は表示名からGeminiモデルIDへの対応表（新しい順）
var geminiModels = []struct{ Display, ID string }{
	{"Gemini 3.0 Pro", "gemini-3.0-pro"},
	{"Gemini 2.5 Pro", "gemini-2.5-pro"},
	{"Gemini 2.5 Flash", "gemini-2.5-flash"},
	{"Gemini 2.5 Flash Lite", "gemini-2.5-flash-lite"},
	{"Gemini 2.0 Flash", "gemini-2.0-flash"},
	{"Gemini 2.0 Flash Lite", "gemini-2.0-flash-lite"},
}

// openAIModels は表示名からOpenAIモデルIDへの対応表（新しい順）
var openAIModels = []struct{ Display, ID string }{
	{"GPT-5.1", "gpt-5.1"},
	{"GPT-5 Mini", "gpt-5-mini"},
	{"GPT-5 Nano", "gpt-5-nano"},
}

// DefaultModelID はモデル未指定時に使用するモデルID
const DefaultModelID = "gemini-2.5-pro"

// IsOpenAIModel はモデルIDがOpenAIのものかを判定する
func IsOpenAIModel(modelID string) bool {
	return strings.HasPrefix(modelID, "gpt-") ||
		strings.HasPrefix(modelID, "o1") ||
		strings.HasPrefix(modelID, "o3")
}

// ResolveModelID は表示名またはモデルIDを正規のモデルIDに解決する。
// 未知の名前はデフォルトモデルにフォールバックする。
func ResolveModelID(name string) string {
	if name == "" {
		return DefaultModelID
	}
	for _, m := range geminiModels {
		if name == m.Display || name == m.ID {
			return m.ID
		}
	}
	for _, m := range openAIModels {
		if name == m.Display || name == m.ID {
			return m.ID
		}
	}
	return DefaultModelID
}

// AvailableModels は選択可能なモデルの表示名一覧を返す
func AvailableModels() []string {
	names := make([]string, 0, len(geminiModels)+len(openAIModels))
	for _, m := range geminiModels {
		names = append(names, m.Display)
	}
	for _, m := range openAIModels {
		names = append(names, m.Display)
	}
	return names
}

// ClassifyError はLLMクライアントのエラーを既知のカテゴリに分類する。
// 分類できない場合は元のエラーをそのまま返す。
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(strings.ToLower(msg), "quota"):
		return ErrRateLimited
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return ErrInvalidAPIKey
	default:
		return err
	}
}
