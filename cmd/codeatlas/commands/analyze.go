package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/codeatlas/codeatlas/internal/core/analyzer"
	"github.com/codeatlas/codeatlas/internal/core/diagram"
	"github.com/codeatlas/codeatlas/internal/core/session"
)

// AnalyzeAction はリポジトリを解析してアーキテクチャ図を生成するコマンドのアクション
func AnalyzeAction(ctx context.Context, cmd *cli.Command) error {
	target := cmd.Args().First()
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}

	result, err := appCtx.LoadSource(ctx, target, cmd.Bool("clone"))
	if err != nil {
		return fmt.Errorf("failed to load repository: %w", err)
	}

	appCtx.Logger.Info("repository loaded",
		"repo", result.RepoName,
		"files_processed", result.Stats.FilesProcessed,
		"files_skipped", result.Stats.FilesSkipped,
		"estimated_tokens", result.Stats.EstimatedTokens,
	)

	model := appCtx.ResolveModel(cmd.String("model"))
	client, err := appCtx.NewAnalyzerClient(ctx, model)
	if err != nil {
		return err
	}

	svc := analyzer.NewService(client,
		analyzer.WithModel(model),
		analyzer.WithServiceLogger(appCtx.Logger),
	)

	dotSource, err := svc.GenerateDiagram(ctx, result.Context, cmd.String("focus"))
	if err != nil {
		return fmt.Errorf("failed to generate diagram: %w", err)
	}

	prepared := diagram.Prepare(dotSource)

	if !cmd.Bool("no-save") {
		filename, err := appCtx.History.Save(prepared, result.RepoName, &diagram.Metadata{
			ModelName:       model,
			FilesProcessed:  result.Stats.FilesProcessed,
			TotalCharacters: result.Stats.TotalCharacters,
		})
		if err != nil {
			appCtx.Logger.Warn("failed to save diagram to history", "error", err)
		} else {
			fmt.Fprintf(os.Stderr, "Saved to history: %s\n", filename)
		}
	}

	// 最後の解析結果をセッションに残す（voiceコマンド等が参照する）
	if err := appCtx.Session.Save(session.State{
		LastDiagram:  prepared,
		LastRepoName: result.RepoName,
		LastStats: &session.Stats{
			FilesProcessed:  result.Stats.FilesProcessed,
			FilesSkipped:    result.Stats.FilesSkipped,
			TotalCharacters: result.Stats.TotalCharacters,
		},
	}); err != nil {
		appCtx.Logger.Warn("failed to save session", "error", err)
	}

	nodes, edges := diagram.CountNodesEdges(prepared)
	fmt.Fprintf(os.Stderr, "Diagram: %d nodes, %d edges\n", nodes, edges)

	if output := cmd.String("output"); output != "" {
		if err := os.WriteFile(output, []byte(prepared), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote DOT source to %s\n", output)
		return nil
	}

	fmt.Println(prepared)
	return nil
}
