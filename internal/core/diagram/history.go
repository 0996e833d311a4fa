package diagram

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// historyPrefix は保存されるダイアグラムファイルの接頭辞
	historyPrefix = "raw"

	// historyExt は保存されるダイアグラムファイルの拡張子
	historyExt = ".dot"

	// timestampLayout はファイル名に埋め込むタイムスタンプの形式
	timestampLayout = "20060102_150405"

	// DefaultHistoryLimit は履歴一覧のデフォルト上限
	DefaultHistoryLimit = 50
)

// Store はサニタイズ済みダイアグラムとメタデータをフラットディレクトリに永続化する。
// ファイル名はタイムスタンプで一意化されるが、同一ラベルで同一秒内の
// 保存が衝突しうることは既知の制限として許容する。
type Store struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// StoreOption はStoreの設定オプション
type StoreOption func(*Store)

// WithClock は現在時刻の取得関数を差し替える（テスト用）
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithStoreLogger は Store にロガーを設定する
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore は新しいStoreを作成する
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:    dir,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Save はDOTソースを履歴に保存し、保存したファイル名を返す。
// metadata が指定された場合、ノード/エッジ数を計算して同名の.jsonに書き出す。
func (s *Store) Save(dotSource, repoName string, metadata *Metadata) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create history dir: %w", err)
	}

	timestamp := s.now().Format(timestampLayout)
	safeRepo := sanitizeLabel(repoName)

	var filename string
	if safeRepo != "" {
		filename = fmt.Sprintf("%s_%s_%s%s", historyPrefix, safeRepo, timestamp, historyExt)
	} else {
		filename = fmt.Sprintf("%s_%s%s", historyPrefix, timestamp, historyExt)
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, []byte(dotSource), 0o644); err != nil {
		return "", fmt.Errorf("failed to save diagram: %w", err)
	}
	s.logger.Info("saved diagram", "path", path)

	if metadata != nil {
		nodeCount, edgeCount := CountNodesEdges(dotSource)
		metadata.NodeCount = nodeCount
		metadata.EdgeCount = edgeCount
		metadata.RepoName = repoName
		metadata.Timestamp = timestamp

		if err := s.writeMetadata(path, metadata); err != nil {
			// メタデータの書き込み失敗は致命的でない
			s.logger.Warn("failed to save metadata", "path", path, "error", err)
		}
	}

	return filename, nil
}

func (s *Store) writeMetadata(dotPath string, metadata *Metadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}
	metaPath := strings.TrimSuffix(dotPath, historyExt) + ".json"
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return err
	}
	s.logger.Info("saved metadata", "path", metaPath)
	return nil
}

// List は保存済みダイアグラムを新しい順に最大limit件返す。
// 重複除去は行わない（すべての履歴をそのまま見せる）。
func (s *Store) List(limit int) ([]Info, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, historyPrefix+"_") || !strings.HasSuffix(name, historyExt) {
			continue
		}
		names = append(names, name)
	}

	// ファイル名末尾のタイムスタンプで新しい順に並べる
	sort.Slice(names, func(i, j int) bool {
		return timestampKey(names[i]) > timestampKey(names[j])
	})

	var infos []Info
	for _, name := range names {
		if len(infos) >= limit {
			break
		}
		info, ok := s.buildInfo(name)
		if !ok {
			continue
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// timestampKey はファイル名から整列用のタイムスタンプキーを取り出す。
// 解釈できない場合は "0" を返す。
func timestampKey(filename string) string {
	stem := strings.TrimSuffix(strings.TrimPrefix(filename, historyPrefix+"_"), historyExt)
	parts := strings.Split(stem, "_")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + parts[len(parts)-1]
	}
	return "0"
}

func (s *Store) buildInfo(filename string) (Info, bool) {
	stem := strings.TrimSuffix(strings.TrimPrefix(filename, historyPrefix+"_"), historyExt)
	parts := strings.Split(stem, "_")

	if len(parts) < 2 || len(parts[len(parts)-2]) != 8 || len(parts[len(parts)-1]) != 6 {
		return Info{}, false
	}

	datePart := parts[len(parts)-2]
	timePart := parts[len(parts)-1]

	repoName := "local"
	if repoParts := parts[:len(parts)-2]; len(repoParts) > 0 {
		repoName = repoParts[len(repoParts)-1]
	}

	formatted := fmt.Sprintf("%s-%s-%s %s:%s",
		datePart[:4], datePart[4:6], datePart[6:8], timePart[:2], timePart[2:4])

	info := Info{
		Filename:           filename,
		RepoName:           repoName,
		Timestamp:          datePart + "_" + timePart,
		FormattedTimestamp: formatted,
	}

	// メタデータがあれば付与する。欠けているフィールドはゼロ値のまま。
	if metadata := s.loadMetadata(filename); metadata != nil {
		info.Metadata = *metadata
		if metadata.RepoName != "" {
			info.RepoName = metadata.RepoName
		}
	}

	return info, true
}

// Load は履歴からダイアグラムとメタデータを読み込む。
// メタデータファイルがない場合はDOTソースからノード/エッジ数を再計算する。
func (s *Store) Load(filename string) (string, *Metadata, error) {
	path := filepath.Join(s.dir, filepath.Base(filename))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return "", nil, fmt.Errorf("failed to load diagram: %w", err)
	}

	dotSource := string(data)

	metadata := s.loadMetadata(filename)
	if metadata == nil {
		nodeCount, edgeCount := CountNodesEdges(dotSource)
		metadata = &Metadata{NodeCount: nodeCount, EdgeCount: edgeCount}
	}

	return dotSource, metadata, nil
}

func (s *Store) loadMetadata(filename string) *Metadata {
	metaPath := filepath.Join(s.dir, strings.TrimSuffix(filepath.Base(filename), historyExt)+".json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		s.logger.Warn("failed to parse metadata", "path", metaPath, "error", err)
		return nil
	}
	return &metadata
}

// sanitizeLabel はリポジトリ名をファイル名に使える形に変換する
func sanitizeLabel(repoName string) string {
	label := strings.ReplaceAll(repoName, "/", "_")
	label = strings.ReplaceAll(label, " ", "_")

	var sb strings.Builder
	for _, r := range label {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	if len(result) > 50 {
		result = result[:50]
	}
	return result
}
