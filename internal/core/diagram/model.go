package diagram

import (
	"context"
	"errors"
)

var (
	// ErrRateLimited はレート制限エラーがダイアグラムの代わりに返ってきた場合のエラー
	ErrRateLimited = errors.New("rate limited: received error instead of diagram")

	// ErrNotFound は履歴に指定されたダイアグラムが存在しない場合のエラー
	ErrNotFound = errors.New("diagram not found")
)

// Direction はグラフのフロー方向
type Direction string

const (
	DirectionTopDown   Direction = "TB"
	DirectionLeftRight Direction = "LR"
	DirectionBottomUp  Direction = "BT"
	DirectionRightLeft Direction = "RL"
)

// Splines はエッジの描画スタイル
type Splines string

const (
	SplinesPolyline Splines = "polyline"
	SplinesOrtho    Splines = "ortho"
	SplinesSpline   Splines = "spline"
	SplinesLine     Splines = "line"
)

// LayoutOptions はレンダリング時のレイアウト設定。
// セッション内でのみ有効で、保存されるダイアグラムには含まれない。
type LayoutOptions struct {
	Direction Direction
	Splines   Splines
	NodeSep   float64
	RankSep   float64
	Zoom      float64
}

// DefaultLayout はデフォルトのレイアウト設定を返す
func DefaultLayout() LayoutOptions {
	return LayoutOptions{
		Direction: DirectionTopDown,
		Splines:   SplinesPolyline,
		NodeSep:   0.5,
		RankSep:   0.75,
		Zoom:      1.0,
	}
}

// directionLabels はUI表示名からDirectionへの対応表
var directionLabels = map[string]Direction{
	"Top → Down":   DirectionTopDown,
	"Left → Right": DirectionLeftRight,
	"Bottom → Up":  DirectionBottomUp,
	"Right → Left": DirectionRightLeft,
}

// DirectionFromLabel はUI表示名をDirectionに変換する。不明な場合はTBを返す。
func DirectionFromLabel(label string) Direction {
	if d, ok := directionLabels[label]; ok {
		return d
	}
	return DirectionTopDown
}

// Metadata は保存されたダイアグラムに付随するメタデータ
type Metadata struct {
	ModelName       string `json:"model_name"`
	FilesProcessed  int    `json:"files_processed"`
	TotalCharacters int    `json:"total_characters"`
	NodeCount       int    `json:"node_count"`
	EdgeCount       int    `json:"edge_count"`
	RepoName        string `json:"repo_name"`
	Timestamp       string `json:"timestamp"`
}

// Info は履歴一覧の1エントリ
type Info struct {
	Filename           string
	RepoName           string
	Timestamp          string
	FormattedTimestamp string
	Metadata           Metadata
}

// Renderer は外部のグラフレンダラを抽象化する
type Renderer interface {
	// Render はDOTソースからSVGを生成する
	Render(ctx context.Context, dotSource string) (string, error)
}
