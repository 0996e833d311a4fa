package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmissionPolicy_AllowsCoreSourceFiles(t *testing.T) {
	policy := DefaultPolicy()

	allowed := []string{
		"src/main.py",
		"cmd/app/main.go",
		"lib/parser.ts",
		"README.md",
		"Dockerfile",
		"Makefile",
		"config.yaml",
		"schema.sql",
	}
	for _, p := range allowed {
		assert.True(t, policy.Admit(p, false), p)
	}
}

func TestAdmissionPolicy_BlocksLockAndToolFiles(t *testing.T) {
	policy := DefaultPolicy()

	blocked := []string{
		"package-lock.json",
		"yarn.lock",
		"frontend/tsconfig.json",
		".DS_Store",
		"Cargo.lock",
	}
	for _, p := range blocked {
		assert.False(t, policy.Admit(p, false), p)
	}
}

func TestAdmissionPolicy_BlocksDependencyAndBuildDirs(t *testing.T) {
	policy := DefaultPolicy()

	blocked := []string{
		"node_modules/react/index.js",
		"vendor/pkg/lib.go",
		"dist/bundle.js",
		"venv/lib/python3.12/site.py",
		".git/config.py",
	}
	for _, p := range blocked {
		assert.False(t, policy.Admit(p, false), p)
	}
}

func TestAdmissionPolicy_DirSegmentsExcludeFilename(t *testing.T) {
	policy := DefaultPolicy()

	// ディレクトリ判定はパスの最終要素（ファイル名）には適用されない
	assert.True(t, policy.Admit("src/build.py", false))
	assert.False(t, policy.Admit("build/main.py", false))
}

func TestAdmissionPolicy_BlocksTestFiles(t *testing.T) {
	policy := DefaultPolicy()

	blocked := []string{
		"src/test_utils.py",
		"pkg/loader_test.go",
		"web/app.test.js",
		"web/form.spec.ts",
		"conftest.py",
		"setup.py",
		"tests/helper.py",
	}
	for _, p := range blocked {
		assert.False(t, policy.Admit(p, false), p)
	}
}

func TestAdmissionPolicy_AggressiveMode(t *testing.T) {
	policy := DefaultPolicy()

	// 通常モードでは許可され、アグレッシブモードでは却下される
	cases := []string{
		"examples/quickstart.py",
		"docs/guide.md",
		"scripts/deploy.sh",
		"benchmarks/bench.go",
		"config.yaml", // コア拡張子でない
		"README.md",
	}
	for _, p := range cases {
		assert.True(t, policy.Admit(p, false), p)
		assert.False(t, policy.Admit(p, true), p)
	}

	// コア拡張子のソースファイルはアグレッシブモードでも許可される
	for _, p := range []string{"src/main.py", "cmd/app/main.go", "web/app.tsx"} {
		assert.True(t, policy.Admit(p, true), p)
	}
}

func TestAdmissionPolicy_AggressiveKeepsExtensionlessAllowedFiles(t *testing.T) {
	policy := DefaultPolicy()

	// 拡張子がないファイルはコア拡張子の絞り込みを受けない
	assert.True(t, policy.Admit("Dockerfile", true))
	assert.True(t, policy.Admit("Makefile", true))
}

func TestAdmissionPolicy_RejectsUnknownExtensions(t *testing.T) {
	policy := DefaultPolicy()

	for _, p := range []string{"image.png", "binary.exe", "archive.tar.gz", "font.woff2"} {
		assert.False(t, policy.Admit(p, false), p)
	}
}
