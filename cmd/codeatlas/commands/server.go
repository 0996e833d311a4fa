package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/codeatlas/codeatlas/internal/app/server"
	"github.com/codeatlas/codeatlas/internal/core/analyzer"
	"github.com/codeatlas/codeatlas/internal/core/voice"
	"github.com/codeatlas/codeatlas/internal/infra/elevenlabs"
	"github.com/codeatlas/codeatlas/internal/infra/gemini"
	"github.com/codeatlas/codeatlas/internal/infra/openai"
)

// ServerAction はHTTP APIサーバーを起動するコマンドのアクション
func ServerAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}

	if err := appCtx.Config.EnsureDirs(); err != nil {
		return err
	}

	host := appCtx.Config.Server.Host
	if flagHost := cmd.String("host"); flagHost != "" {
		host = flagHost
	}
	port := appCtx.Config.Server.Port
	if flagPort := cmd.Int("port"); flagPort != 0 {
		port = flagPort
	}

	// APIキーはリクエストごとに渡されるため、クライアントは都度作成する
	newClient := func(ctx context.Context, apiKey, model string) (analyzer.Client, error) {
		if analyzer.IsOpenAIModel(model) {
			return openai.NewClientWithModel(apiKey, model)
		}
		return gemini.NewClient(ctx, apiKey,
			gemini.WithDefaultModel(model),
			gemini.WithClientLogger(appCtx.Logger),
		)
	}
	newSynth := func(apiKey string) (voice.Synthesizer, error) {
		return elevenlabs.NewClient(apiKey, elevenlabs.WithClientLogger(appCtx.Logger))
	}

	srv := server.New(appCtx.Loader, appCtx.History, newClient, newSynth,
		server.WithServerLogger(appCtx.Logger),
	)

	return srv.Run(ctx, fmt.Sprintf("%s:%d", host, port))
}
