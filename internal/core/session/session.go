// Package session はAPIキーやモデル選択などのセッション状態を永続化する。
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// State はセッションファイルに保存される設定
type State struct {
	// GeminiAPIKey はGemini用のAPIキー
	GeminiAPIKey string `json:"api_key,omitempty"`

	// OpenAIAPIKey はOpenAI用のAPIキー
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`

	// ElevenLabsAPIKey はElevenLabs用のAPIキー
	ElevenLabsAPIKey string `json:"elevenlabs_api_key,omitempty"`

	// Model は選択中のモデル名
	Model string `json:"model,omitempty"`

	// LastDiagram は最後に生成したダイアグラムのDOTソース
	LastDiagram string `json:"last_diagram,omitempty"`

	// LastRepoName は最後に解析したリポジトリのラベル
	LastRepoName string `json:"last_repo,omitempty"`

	// LastStats は最後の解析の処理統計
	LastStats *Stats `json:"last_stats,omitempty"`

	// Pending は次回の起動で処理する予約済みリクエスト
	Pending *PendingRequest `json:"pending_request,omitempty"`
}

// Stats はセッションに保存する処理統計のサマリー
type Stats struct {
	FilesProcessed  int `json:"files_processed,omitempty"`
	FilesSkipped    int `json:"files_skipped,omitempty"`
	TotalCharacters int `json:"total_characters,omitempty"`
}

// PendingRequest は保留中のダイアグラム生成リクエスト
type PendingRequest struct {
	RepoURL   string `json:"repo_url,omitempty"`
	Model     string `json:"model,omitempty"`
	FocusArea string `json:"focus_area,omitempty"`
}

// Store はセッション状態をJSONファイルに読み書きする
type Store struct {
	path string
}

// NewStore は新しいStoreを作成する
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load はセッションファイルを読み込む。
// ファイルが存在しない場合はゼロ値のStateを返す。
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return state, nil
}

// Save は既存のセッションに updates の空でないフィールドをマージして保存する。
// 既存ファイルが壊れている場合は updates のみで上書きする。
func (s *Store) Save(updates State) error {
	state, err := s.Load()
	if err != nil {
		state = State{}
	}

	if updates.GeminiAPIKey != "" {
		state.GeminiAPIKey = updates.GeminiAPIKey
	}
	if updates.OpenAIAPIKey != "" {
		state.OpenAIAPIKey = updates.OpenAIAPIKey
	}
	if updates.ElevenLabsAPIKey != "" {
		state.ElevenLabsAPIKey = updates.ElevenLabsAPIKey
	}
	if updates.Model != "" {
		state.Model = updates.Model
	}
	if updates.LastDiagram != "" {
		state.LastDiagram = updates.LastDiagram
	}
	if updates.LastRepoName != "" {
		state.LastRepoName = updates.LastRepoName
	}
	if updates.LastStats != nil {
		state.LastStats = updates.LastStats
	}
	if updates.Pending != nil {
		state.Pending = updates.Pending
	}

	return s.write(state)
}

// ClearPending は保留中リクエストを消去する
func (s *Store) ClearPending() error {
	state, err := s.Load()
	if err != nil {
		return err
	}
	if state.Pending == nil {
		return nil
	}
	state.Pending = nil
	return s.write(state)
}

func (s *Store) write(state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create session dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
