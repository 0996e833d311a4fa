package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/codeatlas/codeatlas/internal/core/analyzer"
	"github.com/codeatlas/codeatlas/internal/core/voice"
	"github.com/codeatlas/codeatlas/internal/infra/elevenlabs"
)

// VoiceAction はダイアグラムの音声サマリーを生成するコマンドのアクション
func VoiceAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}

	// 対象のダイアグラムを決める（指定がなければ履歴の最新、なければセッション）
	var dotSource string
	if filename := cmd.String("diagram"); filename != "" {
		dotSource, _, err = appCtx.History.Load(filename)
		if err != nil {
			return fmt.Errorf("failed to load diagram: %w", err)
		}
	} else {
		infos, err := appCtx.History.List(1)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}
		if len(infos) > 0 {
			dotSource, _, err = appCtx.History.Load(infos[0].Filename)
			if err != nil {
				return fmt.Errorf("failed to load diagram: %w", err)
			}
		} else if state, err := appCtx.Session.Load(); err == nil && state.LastDiagram != "" {
			dotSource = state.LastDiagram
		} else {
			return fmt.Errorf("no diagrams available: run 'codeatlas analyze' first")
		}
	}

	elevenLabsKey := appCtx.Config.ElevenLabsAPIKey
	if elevenLabsKey == "" {
		if state, err := appCtx.Session.Load(); err == nil {
			elevenLabsKey = state.ElevenLabsAPIKey
		}
	}
	if elevenLabsKey == "" {
		return fmt.Errorf("ElevenLabs API key not set: please set ELEVENLABS_API_KEY")
	}

	model := appCtx.ResolveModel(cmd.String("model"))
	client, err := appCtx.NewAnalyzerClient(ctx, model)
	if err != nil {
		return err
	}

	narrator := analyzer.NewService(client,
		analyzer.WithModel(model),
		analyzer.WithServiceLogger(appCtx.Logger),
	)

	synthesizer, err := elevenlabs.NewClient(elevenLabsKey, elevenlabs.WithClientLogger(appCtx.Logger))
	if err != nil {
		return err
	}

	svc := voice.NewService(narrator, synthesizer,
		voice.WithAudiosDir(appCtx.Config.AudiosDir),
		voice.WithServiceLogger(appCtx.Logger),
	)

	result, err := svc.GenerateAudioSummary(ctx, dotSource, cmd.String("voice-id"))
	if err != nil {
		return fmt.Errorf("failed to generate audio summary: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Narration:\n%s\n\n", result.Narration)
	if result.AudioPath != "" {
		fmt.Printf("Audio saved to %s (%.1f seconds)\n", result.AudioPath, result.DurationSeconds)
	}

	return nil
}
