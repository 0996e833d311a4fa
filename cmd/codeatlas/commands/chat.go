package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/codeatlas/codeatlas/internal/core/analyzer"
)

// ChatAction はコードベースについて対話形式で質問するコマンドのアクション
func ChatAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}

	// コンテキストはリポジトリ本体か、履歴内のダイアグラムのどちらか
	var codeContext string
	if diagramFile := cmd.String("diagram"); diagramFile != "" {
		dotSource, _, err := appCtx.History.Load(diagramFile)
		if err != nil {
			return fmt.Errorf("failed to load diagram: %w", err)
		}
		codeContext = dotSource
	} else {
		result, err := appCtx.LoadSource(ctx, cmd.Args().First(), cmd.Bool("clone"))
		if err != nil {
			return fmt.Errorf("failed to load repository: %w", err)
		}
		codeContext = result.Context
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

	fmt.Println("Ask questions about the codebase. Type 'exit' or press Ctrl-D to quit.")

	var history []analyzer.Message
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := svc.Chat(ctx, question, codeContext, history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Println(answer)
		fmt.Println()

		history = append(history,
			analyzer.Message{Role: "user", Content: question},
			analyzer.Message{Role: "assistant", Content: answer},
		)
	}

	return scanner.Err()
}
