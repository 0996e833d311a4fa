package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/codeatlas/codeatlas/internal/core/repository"
)

// Counter は tiktoken によるトークンカウントを提供する
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter は新しいCounterを作成する
// cl100k_baseエンコーディングを使用する
func NewCounter() (*Counter, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}

	return &Counter{encoding: encoding}, nil
}

// CountTokens はテキストのトークン数をカウントする
func (c *Counter) CountTokens(text string) int {
	if c.encoding == nil {
		return 0
	}
	tokens := c.encoding.Encode(text, nil, nil)
	return len(tokens)
}

// EstimateTokens はテキストの推定トークン数を返す。
// 正確にカウントせず、文字数から概算する（約4文字で1トークン）。
func EstimateTokens(text string) int {
	return len(text) / 4
}

// インターフェース実装の確認
var _ repository.TokenCounter = (*Counter)(nil)
