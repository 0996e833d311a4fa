package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeatlas/codeatlas/internal/core/analyzer"
	"github.com/codeatlas/codeatlas/internal/core/diagram"
	"github.com/codeatlas/codeatlas/internal/core/repository"
	"github.com/codeatlas/codeatlas/internal/core/session"
	"github.com/codeatlas/codeatlas/internal/infra/gemini"
	"github.com/codeatlas/codeatlas/internal/infra/git"
	"github.com/codeatlas/codeatlas/internal/infra/github"
	"github.com/codeatlas/codeatlas/internal/infra/graphviz"
	"github.com/codeatlas/codeatlas/internal/infra/openai"
	"github.com/codeatlas/codeatlas/internal/infra/tokenizer"
	"github.com/codeatlas/codeatlas/internal/platform/config"
	"github.com/codeatlas/codeatlas/internal/platform/logger"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config    *config.Config
	Logger    *slog.Logger
	Session   *session.Store
	Loader    *repository.Loader
	History   *diagram.Store
	Generator *diagram.Generator
}

// NewAppContext は設定ファイルを読み込み AppContext を作成する
func NewAppContext(ctx context.Context, envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.New(logger.DefaultConfig())

	sess := session.NewStore(cfg.SessionFile)

	loaderOpts := []repository.LoaderOption{
		repository.WithLimits(repository.Limits{
			MaxFileSize:        cfg.Processing.MaxFileSize,
			MaxContextSize:     cfg.Processing.MaxContextSize,
			LargeRepoThreshold: cfg.Processing.LargeRepoThreshold,
		}),
		repository.WithFetcher(github.NewFetcher(github.WithFetcherLogger(appLogger))),
		repository.WithCheckoutProvider(git.NewProvider(git.WithProviderLogger(appLogger))),
		repository.WithLoaderLogger(appLogger),
	}
	if counter, err := tokenizer.NewCounter(); err == nil {
		loaderOpts = append(loaderOpts, repository.WithTokenCounter(counter))
	} else {
		appLogger.Warn("tokenizer unavailable, falling back to character estimate", "error", err)
	}

	history := diagram.NewStore(cfg.DiagramsDir, diagram.WithStoreLogger(appLogger))
	generator := diagram.NewGenerator(
		graphviz.NewRenderer(graphviz.WithRendererLogger(appLogger)),
		diagram.WithStore(history),
		diagram.WithGeneratorLogger(appLogger),
	)

	return &AppContext{
		Config:    cfg,
		Logger:    appLogger,
		Session:   sess,
		Loader:    repository.NewLoader(loaderOpts...),
		History:   history,
		Generator: generator,
	}, nil
}

// ResolveModel はフラグ・セッション・設定の順でモデルIDを決定する。
// フラグで指定された場合はセッションに保存する。
func (ac *AppContext) ResolveModel(flagValue string) string {
	if flagValue != "" {
		model := analyzer.ResolveModelID(flagValue)
		if err := ac.Session.Save(session.State{Model: model}); err != nil {
			ac.Logger.Warn("failed to save session", "error", err)
		}
		return model
	}

	if state, err := ac.Session.Load(); err == nil && state.Model != "" {
		return analyzer.ResolveModelID(state.Model)
	}

	return analyzer.ResolveModelID(ac.Config.DefaultModel)
}

// NewAnalyzerClient はモデルに応じたLLMクライアントを作成する
func (ac *AppContext) NewAnalyzerClient(ctx context.Context, model string) (analyzer.Client, error) {
	state, err := ac.Session.Load()
	if err != nil {
		state = session.State{}
	}

	if analyzer.IsOpenAIModel(model) {
		apiKey := ac.Config.OpenAIAPIKey
		if apiKey == "" {
			apiKey = state.OpenAIAPIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not set: please set OPENAI_API_KEY")
		}
		return openai.NewClientWithModel(apiKey, model)
	}

	apiKey := ac.Config.GeminiAPIKey
	if apiKey == "" {
		apiKey = state.GeminiAPIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not set: please set GEMINI_API_KEY")
	}
	return gemini.NewClient(ctx, apiKey,
		gemini.WithDefaultModel(model),
		gemini.WithClientLogger(ac.Logger),
	)
}

// LoadSource はURL・ZIPファイル・ディレクトリのいずれかからリポジトリを読み込む
func (ac *AppContext) LoadSource(ctx context.Context, target string, clone bool) (*repository.Result, error) {
	if target == "" {
		return nil, fmt.Errorf("repository URL or path is required")
	}

	if isRemote(target) {
		if clone {
			return ac.Loader.LoadCheckout(ctx, target)
		}
		return ac.Loader.LoadRemote(ctx, target)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", target, err)
	}
	if info.IsDir() {
		abs, err := filepath.Abs(target)
		if err != nil {
			abs = target
		}
		return ac.Loader.LoadDir(target, filepath.Base(abs))
	}
	return ac.Loader.LoadArchiveFile(target)
}

// isRemote はターゲットがリモートリポジトリの指定かどうかを判定する
func isRemote(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "git@") ||
		strings.Contains(target, "github.com")
}
