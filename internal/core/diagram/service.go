package diagram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
)

const fallbackPreviewLimit = 2000

// widthHeightPattern はSVGルート要素の固定サイズ属性にマッチする
var widthHeightPattern = regexp.MustCompile(`(width|height)="[^"]*(pt|px)"`)

// RenderResult はレンダリングパイプラインの結果。
// HTML は常に表示可能な内容を持つ（失敗時はフォールバック表示）。
type RenderResult struct {
	HTML          string
	DotSource     string // サニタイズ・レイアウト適用後のソース
	SavedFilename string
	Rendered      bool
	RenderErr     error
}

// Generator は生成されたDOTソースを検証・修復し、SVGとして描画する。
type Generator struct {
	renderer Renderer
	store    *Store
	logger   *slog.Logger
}

// GeneratorOption はGeneratorの設定オプション
type GeneratorOption func(*Generator)

// WithStore は履歴保存用のStoreを設定する
func WithStore(store *Store) GeneratorOption {
	return func(g *Generator) { g.store = store }
}

// WithGeneratorLogger は Generator にロガーを設定する
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator は新しいGeneratorを作成する
func NewGenerator(renderer Renderer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		renderer: renderer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Render はDOTソースを前処理・サニタイズ・レイアウト適用してSVGに描画する。
// metadata が指定され Store が設定されていれば、前処理後のソースを履歴に保存する。
// 描画に失敗してもエラーは返さず、ソースのプレビューを含むフォールバックHTMLを返す。
func (g *Generator) Render(ctx context.Context, dotSource, repoName string, layout LayoutOptions, metadata *Metadata) (*RenderResult, error) {
	prepared := Prepare(dotSource)

	result := &RenderResult{}

	if g.store != nil && metadata != nil {
		filename, err := g.store.Save(prepared, repoName, metadata)
		if err != nil {
			// 履歴への保存失敗で描画を止めない
			g.logger.Warn("failed to save diagram to history", "error", err)
		} else {
			result.SavedFilename = filename
		}
	}

	sanitized, err := Sanitize(prepared)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to sanitize diagram: %w", err)
	}

	laidOut := ApplyLayout(sanitized, layout)
	result.DotSource = laidOut

	svg, err := g.renderer.Render(ctx, laidOut)
	if err != nil {
		g.logger.Warn("failed to render diagram", "error", err)
		result.HTML = fallbackHTML(laidOut, err)
		result.RenderErr = err
		return result, nil
	}

	result.HTML = wrapSVG(svg, layout.Zoom)
	result.Rendered = true
	return result, nil
}

// wrapSVG は描画済みSVGをレスポンシブ表示とズームに対応したHTMLで包む
func wrapSVG(svg string, zoom float64) string {
	// 固定サイズ指定を取り除き、コンテナ幅に追従させる
	if idx := strings.Index(svg, "<svg"); idx >= 0 {
		svg = svg[idx:]
	}
	svg = widthHeightPattern.ReplaceAllString(svg, "")
	svg = strings.Replace(svg, "<svg", `<svg width="100%" height="auto"`, 1)

	if zoom <= 0 {
		zoom = 1.0
	}

	return fmt.Sprintf(
		`<div style="overflow: auto; width: 100%%;"><div style="transform: scale(%g); transform-origin: top left;">%s</div></div>`,
		zoom, svg)
}

// fallbackHTML は描画失敗時にDOTソースのプレビューとエラーを表示するHTMLを組み立てる
func fallbackHTML(dotSource string, renderErr error) string {
	preview := dotSource
	if len(preview) > fallbackPreviewLimit {
		preview = preview[:fallbackPreviewLimit] + "\n..."
	}

	return fmt.Sprintf(
		`<div><p><b>Diagram rendering failed:</b> %s</p><pre style="overflow: auto; max-height: 400px;">%s</pre></div>`,
		html.EscapeString(renderErr.Error()), html.EscapeString(preview))
}
