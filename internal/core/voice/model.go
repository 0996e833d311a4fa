package voice

import (
	"context"
	"errors"
)

var (
	// ErrNoText は合成対象のテキストが空の場合のエラー
	ErrNoText = errors.New("no text provided")

	// ErrNoDiagram はナレーション対象のダイアグラムがない場合のエラー
	ErrNoDiagram = errors.New("no diagram loaded")
)

// Synthesizer はテキストから音声データを合成するインターフェース
type Synthesizer interface {
	// Synthesize はテキストをMP3音声データに変換する
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Narrator はダイアグラムからナレーション文を生成するインターフェース
type Narrator interface {
	// Narrate はDOTソースから音声向けの説明文を生成する
	Narrate(ctx context.Context, dotSource string) (string, error)
}

// Result は音声生成の結果
type Result struct {
	// AudioPath は保存された音声ファイルのパス
	AudioPath string

	// Audio はMP3音声データ
	Audio []byte

	// Narration は読み上げたテキスト
	Narration string

	// DurationSeconds は概算の再生時間（秒）
	DurationSeconds float64
}

// AvailableVoices は選択可能な音声の表示名とvoice IDの対応表
var AvailableVoices = map[string]string{
	"George (Male)":   "JBFqnCBsd6RMkjVDRZzb",
	"Rachel (Female)": "21m00Tcm4TlvDq8ikWAM",
	"Adam (Male)":     "pNInz6obpgDQGcFmaJgB",
	"Bella (Female)":  "EXAVITQu4vr4xnSDxMaL",
	"Antoni (Male)":   "ErXwobaYiN019PkySvjV",
}
