package repository

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Limits はリポジトリ読み込みのサイズ制限
type Limits struct {
	// MaxFileSize は1ファイルあたりの最大バイト数
	MaxFileSize int64

	// MaxContextSize はコンテキスト全体の最大文字数
	MaxContextSize int

	// LargeRepoThreshold はアグレッシブフィルタリングを有効にする閾値（バイト）
	LargeRepoThreshold int64
}

// DefaultLimits はデフォルトのサイズ制限を返す
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:        50 * 1024,
		MaxContextSize:     3_500_000,
		LargeRepoThreshold: 10_000_000,
	}
}

// Loader はコードリポジトリを読み込み、解析用コンテキストを構築する
type Loader struct {
	policy   *AdmissionPolicy
	limits   Limits
	fetcher  ArchiveFetcher
	checkout CheckoutProvider
	tokens   TokenCounter
	logger   *slog.Logger
}

// LoaderOption はLoaderの設定オプション
type LoaderOption func(*Loader)

// WithPolicy は採用ポリシーを差し替える
func WithPolicy(policy *AdmissionPolicy) LoaderOption {
	return func(l *Loader) { l.policy = policy }
}

// WithLimits はサイズ制限を設定する
func WithLimits(limits Limits) LoaderOption {
	return func(l *Loader) { l.limits = limits }
}

// WithFetcher はリモートアーカイブの取得実装を設定する
func WithFetcher(fetcher ArchiveFetcher) LoaderOption {
	return func(l *Loader) { l.fetcher = fetcher }
}

// WithCheckoutProvider はGitチェックアウトの実装を設定する
func WithCheckoutProvider(provider CheckoutProvider) LoaderOption {
	return func(l *Loader) { l.checkout = provider }
}

// WithTokenCounter はトークンカウンタを設定する。未設定時は文字数/4で概算する。
func WithTokenCounter(tokens TokenCounter) LoaderOption {
	return func(l *Loader) { l.tokens = tokens }
}

// WithLoaderLogger は Loader にロガーを設定する
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader は新しいLoaderを作成する
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		policy: DefaultPolicy(),
		limits: DefaultLimits(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// LoadRemote はGitHubリポジトリをダウンロードしてコンテキストを構築する
func (l *Loader) LoadRemote(ctx context.Context, rawURL string) (*Result, error) {
	if l.fetcher == nil {
		return nil, fmt.Errorf("archive fetcher is not configured")
	}

	owner, repo, err := ParseGitHubURL(rawURL)
	if err != nil {
		return nil, err
	}

	data, err := l.fetcher.FetchArchive(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	return l.LoadZipReader(zr, owner+"/"+repo)
}

// LoadArchiveFile はローカルのZIPファイルを読み込んでコンテキストを構築する
func (l *Loader) LoadArchiveFile(archivePath string) (*Result, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer zr.Close()

	repoName := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	return l.LoadZipReader(&zr.Reader, repoName)
}

// LoadZipReader はZIPアーカイブの内容からコンテキストを構築する
func (l *Loader) LoadZipReader(zr *zip.Reader, repoName string) (*Result, error) {
	var files []File
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") {
			continue
		}
		zf := zf
		files = append(files, File{
			Path: zf.Name,
			Size: int64(zf.UncompressedSize64),
			Open: func() (io.ReadCloser, error) { return zf.Open() },
		})
	}
	return l.process(files, repoName, nil)
}

// LoadCheckout はGitリポジトリをクローンしてコンテキストを構築する
func (l *Loader) LoadCheckout(ctx context.Context, url string) (*Result, error) {
	if l.checkout == nil {
		return nil, fmt.Errorf("checkout provider is not configured")
	}

	dir, cleanup, err := l.checkout.Checkout(ctx, url)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	repoName := filepath.Base(dir)
	if owner, repo, perr := ParseGitHubURL(url); perr == nil {
		repoName = owner + "/" + repo
	}

	return l.LoadDir(dir, repoName)
}

// LoadDir はローカルディレクトリを読み込んでコンテキストを構築する。
// ルート直下の .gitignore / .codeatlasignore を追加の除外ルールとして適用する。
func (l *Loader) LoadDir(root, repoName string) (*Result, error) {
	ignore, err := NewIgnoreFilter(root)
	if err != nil {
		return nil, err
	}

	var files []File
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // 読めないエントリは無視する
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		files = append(files, File{
			Path: rel,
			Size: info.Size(),
			Open: func() (io.ReadCloser, error) { return os.Open(p) },
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return l.process(files, repoName, ignore)
}

// process は採用ポリシーとサイズ制限を適用してコンテキストを組み立てる
func (l *Loader) process(files []File, repoName string, ignore *IgnoreFilter) (*Result, error) {
	stats := ProcessingStats{Languages: make(map[string]int)}

	var totalSize int64
	for _, f := range files {
		totalSize += f.Size
	}
	aggressive := totalSize > l.limits.LargeRepoThreshold
	if aggressive {
		l.logger.Info("large repository detected, using aggressive filtering",
			"totalBytes", totalSize,
			"threshold", l.limits.LargeRepoThreshold,
		)
	}

	// 浅い階層・ソースディレクトリ優先で並べ替え
	sortFilesByPriority(files)

	var sb strings.Builder
	for _, f := range files {
		if ignore.ShouldIgnore(f.Path) {
			stats.FilesSkipped++
			continue
		}
		if !l.policy.Admit(f.Path, aggressive) {
			stats.FilesSkipped++
			continue
		}
		if f.Size > l.limits.MaxFileSize {
			stats.FilesSkipped++
			continue
		}

		raw, err := readFile(f)
		if err != nil {
			stats.FilesSkipped++
			l.logger.Debug("failed to read file", "path", f.Path, "error", err)
			continue
		}

		content := NormalizeContent(DecodeBytes(raw))
		if content == "" {
			stats.FilesSkipped++
			continue
		}

		entry := fmt.Sprintf("<file name=\"%s\">\n%s\n</file>\n\n", f.Path, content)

		// ファイルを途中で切らない。上限を超えるならそこで打ち切る。
		if stats.TotalCharacters+len(entry) > l.limits.MaxContextSize {
			break
		}

		sb.WriteString(entry)
		stats.TotalCharacters += len(entry)
		stats.FilesProcessed++

		if lang := enry.GetLanguage(path.Base(f.Path), raw); lang != "" {
			stats.Languages[lang]++
		}
	}

	if sb.Len() == 0 {
		return nil, ErrNoCodeFiles
	}

	context := sb.String()
	if l.tokens != nil {
		stats.EstimatedTokens = l.tokens.CountTokens(context)
	} else {
		stats.EstimatedTokens = stats.TotalCharacters / 4
	}

	l.logger.Info("repository processed",
		"repo", repoName,
		"filesProcessed", stats.FilesProcessed,
		"filesSkipped", stats.FilesSkipped,
		"totalCharacters", stats.TotalCharacters,
		"estimatedTokens", stats.EstimatedTokens,
	)

	return &Result{
		Context:  context,
		RepoName: repoName,
		Stats:    stats,
	}, nil
}

func readFile(f File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// sortFilesByPriority はFileスライスをパスの優先度順に並べ替える
func sortFilesByPriority(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		gi, di := priorityKey(files[i].Path)
		gj, dj := priorityKey(files[j].Path)
		if gi != gj {
			return gi < gj
		}
		if di != dj {
			return di < dj
		}
		return files[i].Path < files[j].Path
	})
}
