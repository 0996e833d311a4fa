package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/codeatlas/codeatlas/internal/core/analyzer"
)

// SummaryAction はリポジトリの概要を生成するコマンドのアクション
func SummaryAction(ctx context.Context, cmd *cli.Command) error {
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

	model := appCtx.ResolveModel(cmd.String("model"))
	client, err := appCtx.NewAnalyzerClient(ctx, model)
	if err != nil {
		return err
	}

	svc := analyzer.NewService(client,
		analyzer.WithModel(model),
		analyzer.WithServiceLogger(appCtx.Logger),
	)

	summary, err := svc.GenerateSummary(ctx, result.Context)
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	fmt.Println(summary)
	return nil
}
