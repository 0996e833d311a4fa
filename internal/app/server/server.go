// Package server はダイアグラム生成・音声合成・解析のHTTP APIを提供する。
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeatlas/codeatlas/internal/core/analyzer"
	"github.com/codeatlas/codeatlas/internal/core/diagram"
	"github.com/codeatlas/codeatlas/internal/core/repository"
	"github.com/codeatlas/codeatlas/internal/core/voice"
)

// ServiceName はヘルスチェックで返すサービス名
const ServiceName = "codeatlas-backend"

// ServiceVersion はヘルスチェックで返すバージョン
const ServiceVersion = "1.0.0"

// ClientFactory はAPIキーとモデルIDからLLMクライアントを作成する
type ClientFactory func(ctx context.Context, apiKey, model string) (analyzer.Client, error)

// SynthesizerFactory はAPIキーから音声合成クライアントを作成する
type SynthesizerFactory func(apiKey string) (voice.Synthesizer, error)

// Server はHTTP APIサーバー
type Server struct {
	loader    *repository.Loader
	store     *diagram.Store
	newClient ClientFactory
	newSynth  SynthesizerFactory
	logger    *slog.Logger
	ginMode   string
}

// Option はServerの設定オプション
type Option func(*Server)

// WithServerLogger は Server にロガーを設定する
func WithServerLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGinMode はginの動作モードを設定する
func WithGinMode(mode string) Option {
	return func(s *Server) { s.ginMode = mode }
}

// New は新しいServerを作成する
func New(loader *repository.Loader, store *diagram.Store, newClient ClientFactory, newSynth SynthesizerFactory, opts ...Option) *Server {
	s := &Server{
		loader:    loader,
		store:     store,
		newClient: newClient,
		newSynth:  newSynth,
		logger:    slog.Default(),
		ginMode:   gin.ReleaseMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Router はルーティングを設定したginエンジンを返す
func (s *Server) Router() *gin.Engine {
	gin.SetMode(s.ginMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(s.logger))

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/v1")
	{
		v1.POST("/diagram", s.handleDiagram)
		v1.POST("/voice", s.handleVoice)
		v1.POST("/analyze", s.handleAnalyze)
	}

	return router
}

// Run は指定されたアドレスでHTTPサーバーを起動する。
// ctx がキャンセルされるとgraceful shutdownを行う。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	}
}
