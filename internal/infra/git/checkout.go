package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"

	"github.com/codeatlas/codeatlas/internal/core/repository"
)

// Provider は go-git によるシャロークローンでワーキングツリーを用意する
type Provider struct {
	logger *slog.Logger
}

// ProviderOption はProviderの設定オプション
type ProviderOption func(*Provider)

// WithProviderLogger は Provider にロガーを設定する
func WithProviderLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) { p.logger = logger }
}

// NewProvider は新しいProviderを作成する
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Checkout はリポジトリを一時ディレクトリにクローンする。
// 返されたcleanupを呼ぶとディレクトリごと削除される。
func (p *Provider) Checkout(ctx context.Context, url string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "codeatlas-checkout-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	cleanup := func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			p.logger.Warn("failed to remove checkout dir", "dir", dir, "error", rmErr)
		}
	}

	p.logger.Info("cloning repository", "url", url, "dir", dir)

	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	return dir, cleanup, nil
}

// インターフェース実装の確認
var _ repository.CheckoutProvider = (*Provider)(nil)
