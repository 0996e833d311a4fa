package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/codeatlas/codeatlas/internal/core/diagram"
)

// HistoryListAction は履歴一覧を表示するコマンドのアクション
func HistoryListAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}

	infos, err := appCtx.History.List(cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No diagrams in history.")
		return nil
	}

	for _, info := range infos {
		line := fmt.Sprintf("%s  %s  %s", info.FormattedTimestamp, info.RepoName, info.Filename)
		if info.Metadata.NodeCount > 0 || info.Metadata.EdgeCount > 0 {
			line += fmt.Sprintf("  (%d nodes, %d edges)", info.Metadata.NodeCount, info.Metadata.EdgeCount)
		}
		if info.Metadata.ModelName != "" {
			line += fmt.Sprintf("  [%s]", info.Metadata.ModelName)
		}
		fmt.Println(line)
	}

	return nil
}

// HistoryShowAction は保存されたダイアグラムを表示するコマンドのアクション
func HistoryShowAction(ctx context.Context, cmd *cli.Command) error {
	filename := cmd.Args().First()
	if filename == "" {
		return fmt.Errorf("diagram filename is required")
	}

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}

	dotSource, metadata, err := appCtx.History.Load(filename)
	if err != nil {
		return fmt.Errorf("failed to load diagram: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Nodes: %d, Edges: %d\n", metadata.NodeCount, metadata.EdgeCount)
	fmt.Println(dotSource)
	return nil
}

// HistoryRenderAction は保存されたダイアグラムをSVGに描画するコマンドのアクション
func HistoryRenderAction(ctx context.Context, cmd *cli.Command) error {
	filename := cmd.Args().First()
	if filename == "" {
		return fmt.Errorf("diagram filename is required")
	}

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}

	dotSource, _, err := appCtx.History.Load(filename)
	if err != nil {
		return fmt.Errorf("failed to load diagram: %w", err)
	}

	layout := diagram.DefaultLayout()
	layout.Direction = diagram.Direction(strings.ToUpper(cmd.String("direction")))
	layout.Splines = diagram.Splines(cmd.String("splines"))

	result, err := appCtx.Generator.Render(ctx, dotSource, "", layout, nil)
	if err != nil {
		return fmt.Errorf("failed to render diagram: %w", err)
	}
	if result.RenderErr != nil {
		return fmt.Errorf("failed to render diagram: %w", result.RenderErr)
	}

	output := cmd.String("output")
	if output == "" {
		output = strings.TrimSuffix(filename, ".dot") + ".svg"
	}
	if err := os.WriteFile(output, []byte(result.HTML), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Rendered to %s\n", output)
	return nil
}
