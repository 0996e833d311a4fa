package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/codeatlas/codeatlas/cmd/codeatlas/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}
	modelFlag := &cli.StringFlag{
		Name:  "model",
		Usage: "使用するAIモデル（表示名またはモデルID）",
	}

	app := &cli.Command{
		Name:  "codeatlas",
		Usage: "GitHubリポジトリからアーキテクチャ図を生成・解析するツール",
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "リポジトリを解析してアーキテクチャ図を生成",
				ArgsUsage: "<github-url | zip-file | directory>",
				Flags: []cli.Flag{
					envFlag,
					modelFlag,
					&cli.StringFlag{
						Name:  "focus",
						Usage: "注目するアーキテクチャ領域",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "DOTソースの出力先ファイル（省略時は標準出力）",
					},
					&cli.BoolFlag{
						Name:  "clone",
						Usage: "ZIPアーカイブの代わりにgit cloneで取得する",
					},
					&cli.BoolFlag{
						Name:  "no-save",
						Usage: "履歴に保存しない",
					},
				},
				Action: commands.AnalyzeAction,
			},
			{
				Name:      "summary",
				Usage:     "リポジトリの概要を生成",
				ArgsUsage: "<github-url | zip-file | directory>",
				Flags: []cli.Flag{
					envFlag,
					modelFlag,
					&cli.BoolFlag{
						Name:  "clone",
						Usage: "ZIPアーカイブの代わりにgit cloneで取得する",
					},
				},
				Action: commands.SummaryAction,
			},
			{
				Name:      "chat",
				Usage:     "コードベースについて対話形式で質問する",
				ArgsUsage: "<github-url | zip-file | directory>",
				Flags: []cli.Flag{
					envFlag,
					modelFlag,
					&cli.StringFlag{
						Name:  "diagram",
						Usage: "コンテキストとして使う履歴内のダイアグラムファイル名",
					},
					&cli.BoolFlag{
						Name:  "clone",
						Usage: "ZIPアーカイブの代わりにgit cloneで取得する",
					},
				},
				Action: commands.ChatAction,
			},
			{
				Name:  "history",
				Usage: "生成済みダイアグラムの履歴管理",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "履歴一覧を表示",
						Flags: []cli.Flag{
							envFlag,
							&cli.IntFlag{
								Name:  "limit",
								Usage: "表示する最大件数",
								Value: 20,
							},
						},
						Action: commands.HistoryListAction,
					},
					{
						Name:      "show",
						Usage:     "保存されたダイアグラムを表示",
						ArgsUsage: "<filename>",
						Flags:     []cli.Flag{envFlag},
						Action:    commands.HistoryShowAction,
					},
					{
						Name:      "render",
						Usage:     "保存されたダイアグラムをSVGに描画",
						ArgsUsage: "<filename>",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:  "direction",
								Usage: "レイアウト方向 (TB, LR, BT, RL)",
								Value: "TB",
							},
							&cli.StringFlag{
								Name:  "splines",
								Usage: "エッジの描画スタイル (polyline, ortho, spline, line)",
								Value: "polyline",
							},
							&cli.StringFlag{
								Name:    "output",
								Aliases: []string{"o"},
								Usage:   "SVGの出力先ファイル",
							},
						},
						Action: commands.HistoryRenderAction,
					},
				},
			},
			{
				Name:  "voice",
				Usage: "ダイアグラムの音声サマリーを生成",
				Flags: []cli.Flag{
					envFlag,
					modelFlag,
					&cli.StringFlag{
						Name:  "diagram",
						Usage: "対象のダイアグラムファイル名（省略時は最新）",
					},
					&cli.StringFlag{
						Name:  "voice-id",
						Usage: "ElevenLabsのvoice ID",
					},
				},
				Action: commands.VoiceAction,
			},
			{
				Name:  "server",
				Usage: "HTTP APIサーバーを起動",
				Flags: []cli.Flag{
					envFlag,
					&cli.StringFlag{
						Name:  "host",
						Usage: "バインドするホスト（省略時は設定値）",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "リッスンするポート（省略時は設定値）",
					},
				},
				Action: commands.ServerAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
