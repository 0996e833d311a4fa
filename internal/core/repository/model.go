package repository

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNoCodeFiles はフィルタリング後に有効なコードファイルが1つも残らなかった場合のエラー
	ErrNoCodeFiles = errors.New("no valid code files found")

	// ErrInvalidArchive はZIPアーカイブとして解釈できない入力のエラー
	ErrInvalidArchive = errors.New("invalid ZIP archive")

	// ErrNotFound は候補refをすべて試してもリポジトリが見つからなかった場合のエラー
	ErrNotFound = errors.New("repository not found")

	// ErrTimeout はリモート取得がタイムアウトした場合のエラー
	ErrTimeout = errors.New("request timed out")

	// ErrInvalidURL はGitHubリポジトリとして解釈できないURLのエラー
	ErrInvalidURL = errors.New("invalid repository URL")
)

// File はソース内の1ファイルを表す
type File struct {
	// Path はアーカイブ/チェックアウトルートからの相対パス
	Path string

	// Size は非圧縮サイズ（バイト）
	Size int64

	// Open はファイル内容のリーダーを返す
	Open func() (io.ReadCloser, error)
}

// ProcessingStats はローダー実行の統計情報
type ProcessingStats struct {
	FilesProcessed  int            `json:"files_processed"`
	FilesSkipped    int            `json:"files_skipped"`
	TotalCharacters int            `json:"total_characters"`
	EstimatedTokens int            `json:"estimated_tokens"`
	Languages       map[string]int `json:"languages,omitempty"`
}

// Result はリポジトリ読み込みの結果
type Result struct {
	// Context は採用された全ファイルを連結したテキスト
	Context string

	// RepoName はリポジトリの表示名（owner/repo またはファイル名）
	RepoName string

	// Stats は処理統計
	Stats ProcessingStats
}

// ArchiveFetcher はリモートリポジトリのZIPアーカイブを取得する
type ArchiveFetcher interface {
	// FetchArchive は owner/repo のアーカイブ全体をメモリに取得する
	FetchArchive(ctx context.Context, owner, repo string) ([]byte, error)
}

// CheckoutProvider はGitリポジトリのワーキングツリーを用意する
type CheckoutProvider interface {
	// Checkout はURLをクローンし、ワーキングツリーのパスと後始末関数を返す
	Checkout(ctx context.Context, url string) (dir string, cleanup func(), err error)
}

// TokenCounter はテキストのトークン数を数える
type TokenCounter interface {
	CountTokens(text string) int
}
