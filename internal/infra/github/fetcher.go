package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/codeatlas/codeatlas/internal/core/repository"
)

const (
	// DefaultTimeout はアーカイブ取得のデフォルトタイムアウト
	DefaultTimeout = 60 * time.Second

	// MaxArchiveSize は取得するアーカイブの最大バイト数
	MaxArchiveSize = 500 * 1024 * 1024
)

// candidateRefs はアーカイブ取得を試す参照名。最初に成功したものを使う。
var candidateRefs = []string{"HEAD", "main", "master"}

// Fetcher はGitHubのアーカイブダウンロードAPIからZIPを取得する
type Fetcher struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// FetcherOption はFetcherの設定オプション
type FetcherOption func(*Fetcher)

// WithHTTPClient はHTTPクライアントを差し替える
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = client }
}

// WithBaseURL はGitHubのベースURLを差し替える（テスト用）
func WithBaseURL(baseURL string) FetcherOption {
	return func(f *Fetcher) { f.baseURL = baseURL }
}

// WithFetcherLogger は Fetcher にロガーを設定する
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher は新しいFetcherを作成する
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: DefaultTimeout},
		baseURL: "https://github.com",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// FetchArchive は owner/repo のZIPアーカイブを取得する。
// 候補refを順に試し、最初に成功したレスポンスを返す。
func (f *Fetcher) FetchArchive(ctx context.Context, owner, repo string) ([]byte, error) {
	for _, ref := range candidateRefs {
		archiveURL := fmt.Sprintf("%s/%s/%s/archive/%s.zip", f.baseURL, owner, repo, ref)
		f.logger.Info("trying archive download", "url", archiveURL)

		data, status, err := f.download(ctx, archiveURL)
		if err != nil {
			if isTimeout(err) {
				return nil, fmt.Errorf("%w: %v", repository.ErrTimeout, err)
			}
			return nil, fmt.Errorf("network error: %w", err)
		}
		if status == http.StatusOK {
			return data, nil
		}
		// 200以外は次の候補refへフォールスルー
	}

	return nil, fmt.Errorf("%w: %s/%s", repository.ErrNotFound, owner, repo)
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxArchiveSize))
	if err != nil {
		return nil, 0, err
	}

	return data, resp.StatusCode, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// インターフェース実装の確認
var _ repository.ArchiveFetcher = (*Fetcher)(nil)
