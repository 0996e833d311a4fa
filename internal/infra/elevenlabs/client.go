// Package elevenlabs はElevenLabs APIを使った音声合成クライアントを提供する。
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeatlas/codeatlas/internal/core/voice"
)

const (
	// DefaultBaseURL はElevenLabs APIのベースURL
	DefaultBaseURL = "https://api.elevenlabs.io"

	// DefaultVoiceID はデフォルトの音声 (George)
	DefaultVoiceID = "JBFqnCBsd6RMkjVDRZzb"

	// DefaultModelID はデフォルトの音声合成モデル
	DefaultModelID = "eleven_multilingual_v2"

	// DefaultOutputFormat は出力フォーマット (128kbps MP3)
	DefaultOutputFormat = "mp3_44100_128"

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 120 * time.Second
)

// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
var ErrAPIKeyNotSet = errors.New("ElevenLabs API key not set")

// Client はElevenLabs text-to-speech APIのクライアント
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	modelID      string
	outputFormat string
	logger       *slog.Logger
}

// ClientOption はClientの設定オプション
type ClientOption func(*Client)

// WithHTTPClient はHTTPクライアントを差し替える
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithBaseURL はAPIのベースURLを設定する（テスト用）
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithModelID は音声合成モデルを設定する
func WithModelID(modelID string) ClientOption {
	return func(c *Client) { c.modelID = modelID }
}

// WithClientLogger は Client にロガーを設定する
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient は新しいClientを作成する
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	c := &Client{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		baseURL:      DefaultBaseURL,
		apiKey:       apiKey,
		modelID:      DefaultModelID,
		outputFormat: DefaultOutputFormat,
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

type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize はテキストをMP3音声データに変換する
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}

	body, err := json.Marshal(ttsRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		c.baseURL, url.PathEscape(voiceID), url.QueryEscape(c.outputFormat))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call ElevenLabs API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("ElevenLabs API returned status %d: %s", resp.StatusCode, string(msg))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	c.logger.Info("synthesized audio", "voice_id", voiceID, "bytes", len(audio), "duration", time.Since(start))
	return audio, nil
}

var _ voice.Synthesizer = (*Client)(nil)
