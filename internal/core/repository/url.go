package repository

import (
	"fmt"
	"strings"

	giturls "github.com/whilp/git-urls"
)

// ParseGitHubURL はGitHubリポジトリURLから owner/repo を取り出す。
// スキーム省略（github.com/owner/repo）と .git サフィックスを許容する。
func ParseGitHubURL(rawURL string) (owner, repo string, err error) {
	rawURL = strings.TrimRight(strings.TrimSpace(rawURL), "/")
	rawURL = strings.TrimSuffix(rawURL, ".git")

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	u, err := giturls.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	host := u.Hostname()
	if host == "" {
		host = u.Host
	}
	if !strings.Contains(host, "github.com") {
		return "", "", fmt.Errorf("%w: not a GitHub URL", ErrInvalidURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: missing owner/repo", ErrInvalidURL)
	}

	owner, repo = parts[0], parts[1]

	// "repo.git" 以外にも "repo.anything" 形式の揺らぎを吸収する（.js リポジトリ名は除く）
	if strings.Contains(repo, ".") && !strings.HasSuffix(repo, ".js") {
		repo = strings.SplitN(repo, ".", 2)[0]
	}

	return owner, repo, nil
}
