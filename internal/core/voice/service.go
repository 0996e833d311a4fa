package voice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// mp3BytesPerSecond は128kbps MP3の概算レート（再生時間の見積もりに使う）
const mp3BytesPerSecond = 16 * 1024

// Service はアーキテクチャ図の音声サマリー生成を提供する
type Service struct {
	narrator    Narrator
	synthesizer Synthesizer
	audiosDir   string
	now         func() time.Time
	logger      *slog.Logger
}

// ServiceOption はServiceの設定オプション
type ServiceOption func(*Service)

// WithAudiosDir は音声ファイルの保存先ディレクトリを設定する
func WithAudiosDir(dir string) ServiceOption {
	return func(s *Service) { s.audiosDir = dir }
}

// WithClock は現在時刻の取得関数を差し替える（テスト用）
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithServiceLogger は Service にロガーを設定する
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService は新しいServiceを作成する
func NewService(narrator Narrator, synthesizer Synthesizer, opts ...ServiceOption) *Service {
	s := &Service{
		narrator:    narrator,
		synthesizer: synthesizer,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// GenerateAudioSummary はダイアグラムから説明文を生成し、音声に変換して保存する。
// audiosDir が未設定の場合はファイル保存を省略し、音声データのみを返す。
func (s *Service) GenerateAudioSummary(ctx context.Context, dotSource, voiceID string) (*Result, error) {
	if strings.TrimSpace(dotSource) == "" {
		return nil, ErrNoDiagram
	}

	s.logger.Info("generating narration for audio")
	narration, err := s.narrator.Narrate(ctx, dotSource)
	if err != nil {
		return nil, fmt.Errorf("failed to generate narration: %w", err)
	}
	s.logger.Info("generated narration", "chars", len(narration))

	return s.Synthesize(ctx, narration, voiceID)
}

// Synthesize はテキストを音声に変換して保存する
func (s *Service) Synthesize(ctx context.Context, text, voiceID string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	audio, err := s.synthesizer.Synthesize(ctx, text, voiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize audio: %w", err)
	}

	result := &Result{
		Audio:           audio,
		Narration:       text,
		DurationSeconds: float64(len(audio)) / mp3BytesPerSecond,
	}

	if s.audiosDir != "" {
		path, err := s.save(audio)
		if err != nil {
			// 保存失敗でも音声データ自体は返す
			s.logger.Warn("failed to save audio", "error", err)
		} else {
			result.AudioPath = path
		}
	}

	return result, nil
}

func (s *Service) save(audio []byte) (string, error) {
	if err := os.MkdirAll(s.audiosDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audios dir: %w", err)
	}

	filename := fmt.Sprintf("summary_%s.mp3", s.now().Format("20060102_150405"))
	path := filepath.Join(s.audiosDir, filename)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to save audio: %w", err)
	}

	s.logger.Info("saved audio", "path", path)
	return path, nil
}
