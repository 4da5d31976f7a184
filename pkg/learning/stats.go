package learning

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// TokenStats contains statistics about a token
type TokenStats struct {
	Token     string  `json:"token"`
	SpamCount uint64  `json:"spam_count"`
	HamCount  uint64  `json:"ham_count"`
	Score     float64 `json:"score"`
}

// ModelInfo contains model information
type ModelInfo struct {
	Language       string    `json:"language"`
	SpamTokens     uint64    `json:"spam_tokens"`
	HamTokens      uint64    `json:"ham_tokens"`
	SpamExamples   uint64    `json:"spam_examples"`
	HamExamples    uint64    `json:"ham_examples"`
	VocabularySize int       `json:"vocabulary_size"`
	LastTrained    time.Time `json:"last_trained"`
	Generation     uint64    `json:"generation"`
}

// Info returns information about the trained model
func (m *Model) Info() ModelInfo {
	return ModelInfo{
		Language:       m.Language(),
		SpamTokens:     m.table.SpamTotal(),
		HamTokens:      m.table.HamTotal(),
		SpamExamples:   m.spamExamples,
		HamExamples:    m.hamExamples,
		VocabularySize: m.table.Len(),
		LastTrained:    m.lastTrained,
	}
}

// TokenStats returns statistics for a raw word, normalized the same way
// training text is. ok is false when word contains no token.
func (m *Model) TokenStats(word string) (stats TokenStats, ok bool) {
	tokens := m.tokenizer.Tokenize(word)
	if len(tokens) == 0 {
		return TokenStats{}, false
	}

	token := tokens[0]
	counter := m.table.Lookup(token)
	return TokenStats{
		Token:     token,
		SpamCount: counter.Spam,
		HamCount:  counter.Ham,
		Score:     m.TokenScore(token),
	}, true
}

// TopTokens returns the most spammy (label Spam) or most hammy (label Ham)
// tokens. Ties are broken by occurrence count, then alphabetically.
func (m *Model) TopTokens(label Label, limit int) []TokenStats {
	spamTotal, hamTotal := m.table.SpamTotal(), m.table.HamTotal()

	var tokens []TokenStats
	m.table.Each(func(token string, counter Counter) {
		if label == Spam && counter.Spam == 0 {
			return
		}
		if label == Ham && counter.Ham == 0 {
			return
		}
		tokens = append(tokens, TokenStats{
			Token:     token,
			SpamCount: counter.Spam,
			HamCount:  counter.Ham,
			Score:     WordScore(counter, spamTotal, hamTotal),
		})
	})

	sort.Slice(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		if a.Score != b.Score {
			if label == Spam {
				return a.Score > b.Score
			}
			return a.Score < b.Score
		}
		if at, bt := a.SpamCount+a.HamCount, b.SpamCount+b.HamCount; at != bt {
			return at > bt
		}
		return a.Token < b.Token
	})

	if limit > 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}

	return tokens
}

// PrintStats prints model statistics
func PrintStats(w io.Writer, info ModelInfo, spamTokens, hamTokens []TokenStats) {
	fmt.Fprintf(w, "🧠 Token Frequency Model\n")
	fmt.Fprintf(w, "════════════════════════════════════════\n")
	fmt.Fprintf(w, "Training Data:\n")
	fmt.Fprintf(w, "  Language: %s\n", info.Language)
	fmt.Fprintf(w, "  Spam examples: %d\n", info.SpamExamples)
	fmt.Fprintf(w, "  Ham examples: %d\n", info.HamExamples)
	fmt.Fprintf(w, "  Spam tokens: %d\n", info.SpamTokens)
	fmt.Fprintf(w, "  Ham tokens: %d\n", info.HamTokens)
	fmt.Fprintf(w, "  Vocabulary size: %d\n", info.VocabularySize)
	fmt.Fprintf(w, "  Generation: %d\n", info.Generation)

	if !info.LastTrained.IsZero() {
		fmt.Fprintf(w, "  Last trained: %s\n", info.LastTrained.Format("2006-01-02 15:04:05"))
	}

	fmt.Fprintf(w, "\n📈 Top Spam Tokens:\n")
	for i, token := range spamTokens {
		fmt.Fprintf(w, "  %2d. %-15s (%.3f score, %d/%d)\n",
			i+1, token.Token, token.Score, token.SpamCount, token.HamCount)
	}

	fmt.Fprintf(w, "\n📉 Top Ham Tokens:\n")
	for i, token := range hamTokens {
		fmt.Fprintf(w, "  %2d. %-15s (%.3f score, %d/%d)\n",
			i+1, token.Token, token.Score, token.SpamCount, token.HamCount)
	}

	fmt.Fprintf(w, "\n")
}
