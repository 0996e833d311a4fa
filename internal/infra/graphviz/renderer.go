// Package graphviz は外部のGraphviz dotコマンドによるSVG描画を提供する。
package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/codeatlas/codeatlas/internal/core/diagram"
)

// DefaultTimeout はdotコマンドの実行タイムアウト
const DefaultTimeout = 30 * time.Second

// Renderer は dot コマンドを呼び出してDOTソースをSVGに変換する
type Renderer struct {
	binPath string
	timeout time.Duration
	logger  *slog.Logger
}

// RendererOption はRendererの設定オプション
type RendererOption func(*Renderer)

// WithBinPath はdotコマンドのパスを設定する
func WithBinPath(path string) RendererOption {
	return func(r *Renderer) { r.binPath = path }
}

// WithTimeout は実行タイムアウトを設定する
func WithTimeout(timeout time.Duration) RendererOption {
	return func(r *Renderer) { r.timeout = timeout }
}

// WithRendererLogger は Renderer にロガーを設定する
func WithRendererLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) { r.logger = logger }
}

// NewRenderer は新しいRendererを作成する
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		binPath: "dot",
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Render はDOTソースをSVG文字列に変換する
func (r *Renderer) Render(ctx context.Context, dotSource string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binPath, "-Tsvg")
	cmd.Stdin = strings.NewReader(dotSource)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("graphviz rendering timed out: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("failed to render diagram: %s", msg)
	}

	r.logger.Debug("rendered diagram", "duration", time.Since(start), "bytes", stdout.Len())
	return stdout.String(), nil
}

var _ diagram.Renderer = (*Renderer)(nil)
