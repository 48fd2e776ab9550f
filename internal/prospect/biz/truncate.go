package biz

import (
	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// Truncator limits content to a token budget.
type Truncator interface {
	Truncate(text string, maxTokens int) string
}

// TokenTruncator counts tokens with tiktoken. When the encoding cannot be
// loaded it falls back to an estimate of four runes per token.
type TokenTruncator struct {
	enc *tiktoken.Tiktoken
}

// NewTokenTruncator loads encoding, e.g. "cl100k_base".
func NewTokenTruncator(encoding string, logger *zap.Logger) *TokenTruncator {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, using rune estimate",
			zap.String("encoding", encoding), zap.Error(err))
		return &TokenTruncator{}
	}
	return &TokenTruncator{enc: enc}
}

const runesPerToken = 4

// Truncate returns text cut to at most maxTokens tokens. maxTokens <= 0
// disables truncation.
func (t *TokenTruncator) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	if t.enc == nil {
		runes := []rune(text)
		if limit := maxTokens * runesPerToken; len(runes) > limit {
			return string(runes[:limit])
		}
		return text
	}

	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.enc.Decode(tokens[:maxTokens])
}
