package repository

import (
	"path"
	"strings"
)

// AdmissionPolicy はリポジトリ内のファイルを採用するか判定するルール集合。
// ルールは順序付きで、最初に一致した却下ルールが優先される。
type AdmissionPolicy struct {
	// BlockedPatterns は却下するファイル名の完全一致集合（ロックファイル、ツール設定）
	BlockedPatterns map[string]struct{}

	// BlockedDirs は却下するディレクトリ名の集合（依存ツリー、ビルド成果物、テスト）
	BlockedDirs map[string]struct{}

	// TestFileMarkers はファイル名に含まれていたら却下する部分文字列
	TestFileMarkers []string

	// AggressiveSkipMarkers は大規模リポジトリ時に追加で却下するパス部分文字列
	AggressiveSkipMarkers []string

	// CoreExtensions は大規模リポジトリ時に許可を絞り込む拡張子集合
	CoreExtensions map[string]struct{}

	// AllowedFiles は拡張子によらず採用する特別ファイル名
	AllowedFiles map[string]struct{}

	// AllowedExtensions は採用する拡張子（サフィックス一致）
	AllowedExtensions []string
}

// DefaultPolicy はデフォルトの採用ポリシーを返す
func DefaultPolicy() *AdmissionPolicy {
	return &AdmissionPolicy{
		BlockedPatterns: toSet([]string{
			"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock",
			"Gemfile.lock", "Cargo.lock", "poetry.lock", ".DS_Store",
			".eslintrc", ".prettierrc", "tsconfig.json", "jest.config.js",
			"babel.config.js", ".babelrc", "webpack.config.js", "vite.config.js",
			"setup.cfg", "pyproject.toml", "tox.ini", ".coveragerc",
		}),
		BlockedDirs: toSet([]string{
			"node_modules", "__pycache__", ".git", "dist", "build", "venv",
			".venv", "env", ".env", ".idea", ".vscode", "coverage", ".next",
			"target", "bin", "obj", ".gradle", ".m2", "vendor", "Pods",
			"test", "tests", "__tests__", "spec", "specs", "testing",
			"test_data", "testdata", "fixtures", "mocks", "mock",
			"e2e", "integration", "unit", "cypress", "playwright",
		}),
		TestFileMarkers: []string{
			"test_", "_test.", ".test.", ".spec.", "_spec.",
			"conftest.py", "pytest.ini", "setup.py",
		},
		AggressiveSkipMarkers: []string{
			"example", "demo", "sample", "doc/", "docs/",
			"tutorial", "benchmark", "contrib/", "scripts/",
		},
		CoreExtensions: toSet([]string{
			".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".go", ".rs",
		}),
		AllowedFiles: toSet([]string{
			"Dockerfile", "Makefile", "README", "LICENSE", ".gitignore",
		}),
		AllowedExtensions: []string{
			".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".cpp", ".c", ".h",
			".cs", ".go", ".rs", ".php", ".rb", ".sql", ".yaml", ".yml",
			".json", ".md", ".txt", ".sh", ".bash", ".zsh",
		},
	}
}

// Admit はファイルパスが採用対象かどうかを判定する。
// aggressive は大規模リポジトリ向けの絞り込みを有効にする。
func (p *AdmissionPolicy) Admit(filePath string, aggressive bool) bool {
	filename := path.Base(filePath)
	filenameLower := strings.ToLower(filename)

	// 1. ブロック対象のファイル名
	if _, ok := p.BlockedPatterns[filename]; ok {
		return false
	}

	// 2. ブロック対象のディレクトリ
	parts := strings.Split(filePath, "/")
	for _, part := range parts[:len(parts)-1] {
		if _, ok := p.BlockedDirs[part]; ok {
			return false
		}
	}

	// 3. テストファイルのマーカー
	for _, marker := range p.TestFileMarkers {
		if strings.Contains(filenameLower, marker) {
			return false
		}
	}

	// 4. 大規模リポジトリ向けの追加絞り込み
	if aggressive {
		pathLower := strings.ToLower(filePath)
		for _, marker := range p.AggressiveSkipMarkers {
			if strings.Contains(pathLower, marker) {
				return false
			}
		}

		if ext := extensionOf(filename); ext != "" {
			if _, ok := p.CoreExtensions[ext]; !ok {
				return false
			}
		}
	}

	// 5. 許可リスト
	if _, ok := p.AllowedFiles[filename]; ok {
		return true
	}
	for _, ext := range p.AllowedExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}

	return false
}

// extensionOf はファイル名の最後のドット以降を拡張子として返す（ドットを含む）
func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx:]
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
