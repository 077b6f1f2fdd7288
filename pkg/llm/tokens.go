package llm

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter provides token counting for prompt budget enforcement. All
// supported providers are approximated with the GPT-4 encoding, which is
// close enough for truncation decisions.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter creates a token counter.
func NewTokenCounter() (*TokenCounter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec: %w", err)
	}
	return &TokenCounter{codec: codec}, nil
}

// CountTokens returns the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(text string) int {
	if tc == nil || tc.codec == nil {
		// Character-based estimation fallback (4 chars per token).
		return len(text) / 4
	}
	count, err := tc.codec.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return count
}

// TruncateToTokens trims text to at most maxTokens, cutting on line
// boundaries so a serialized knowledge context stays well formed.
func (tc *TokenCounter) TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 || tc.CountTokens(text) <= maxTokens {
		return text
	}

	lines := strings.Split(text, "\n")
	var kept []string
	used := 0
	for _, line := range lines {
		cost := tc.CountTokens(line) + 1 // newline
		if used+cost > maxTokens {
			break
		}
		kept = append(kept, line)
		used += cost
	}
	return strings.Join(kept, "\n")
}
