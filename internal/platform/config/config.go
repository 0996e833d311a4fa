package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// APIキー（環境変数またはセッションから取得）
	GeminiAPIKey     string
	OpenAIAPIKey     string
	ElevenLabsAPIKey string

	// モデル設定
	DefaultModel string

	// リポジトリ処理設定
	Processing ProcessingConfig

	// データ保存先
	DataDir     string
	DiagramsDir string
	AudiosDir   string
	SessionFile string

	// HTTPサーバ設定
	Server ServerConfig
}

// ProcessingConfig はリポジトリ読み込みのサイズ制限設定
type ProcessingConfig struct {
	// MaxFileSize は1ファイルあたりの最大バイト数
	MaxFileSize int64

	// MaxContextSize はコンテキスト全体の最大文字数
	MaxContextSize int

	// LargeRepoThreshold はアグレッシブフィルタリングを有効にする閾値（バイト）
	LargeRepoThreshold int64
}

// ServerConfig はHTTPサーバの設定
type ServerConfig struct {
	Host string
	Port int
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	dataDir := getEnv("CODEATLAS_DATA_DIR", "data")

	cfg := &Config{
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		ElevenLabsAPIKey: getEnv("ELEVENLABS_API_KEY", ""),
		DefaultModel:     getEnv("CODEATLAS_MODEL", "gemini-2.5-pro"),
		Processing: ProcessingConfig{
			MaxFileSize:        getEnvAsInt64("CODEATLAS_MAX_FILE_SIZE", 50*1024),
			MaxContextSize:     getEnvAsInt("CODEATLAS_MAX_CONTEXT_SIZE", 3_500_000),
			LargeRepoThreshold: getEnvAsInt64("CODEATLAS_LARGE_REPO_THRESHOLD", 10_000_000),
		},
		DataDir:     dataDir,
		DiagramsDir: getEnv("CODEATLAS_DIAGRAMS_DIR", filepath.Join(dataDir, "diagrams")),
		AudiosDir:   getEnv("CODEATLAS_AUDIOS_DIR", filepath.Join(dataDir, "audios")),
		SessionFile: getEnv("CODEATLAS_SESSION_FILE", ".session_state.json"),
		Server: ServerConfig{
			Host: getEnv("CODEATLAS_SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("CODEATLAS_SERVER_PORT", 8080),
		},
	}

	return cfg, nil
}

// EnsureDirs はデータディレクトリを作成します
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.DiagramsDir, c.AudiosDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 は環境変数をint64として取得します
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
