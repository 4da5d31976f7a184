package learning

import (
	"time"
)

// Classification is the outcome of classifying one message
type Classification struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// IsSpam reports whether the message was labeled spam
func (c Classification) IsSpam() bool {
	return c.Label == Spam
}

// Model is a token-frequency spam classifier.
// It is not safe for concurrent use; wrap it in a Guard when shared.
type Model struct {
	tokenizer *Tokenizer
	table     *FrequencyTable

	// Metadata
	spamExamples uint64
	hamExamples  uint64
	lastTrained  time.Time
}

// NewModel creates an empty model stemming in the given language
func NewModel(language string) (*Model, error) {
	tokenizer, err := NewTokenizer(language)
	if err != nil {
		return nil, err
	}

	return &Model{
		tokenizer: tokenizer,
		table:     NewFrequencyTable(),
	}, nil
}

// Language returns the stemming language the model was built with
func (m *Model) Language() string {
	return m.tokenizer.Language()
}

// Tokenize exposes the model's tokenizer
func (m *Model) Tokenize(text string) []string {
	return m.tokenizer.Tokenize(text)
}

// Train folds one labeled example into the frequency table and returns
// the number of tokens added
func (m *Model) Train(label Label, text string) int {
	tokens := m.tokenizer.Tokenize(text)

	for _, token := range tokens {
		m.table.Increment(token, label)
	}

	if label == Spam {
		m.spamExamples++
	} else {
		m.hamExamples++
	}
	m.lastTrained = time.Now()

	return len(tokens)
}

// TokenScore returns the word score of an already normalized token
func (m *Model) TokenScore(token string) float64 {
	return WordScore(m.table.Lookup(token), m.table.SpamTotal(), m.table.HamTotal())
}

// RateWords scores every token of text, keeping token order and duplicates
func (m *Model) RateWords(text string) []float64 {
	tokens := m.tokenizer.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	spamTotal, hamTotal := m.table.SpamTotal(), m.table.HamTotal()
	ratings := make([]float64, len(tokens))
	for i, token := range tokens {
		ratings[i] = WordScore(m.table.Lookup(token), spamTotal, hamTotal)
	}

	return ratings
}

// ScoreMessage returns the probability in [0, 1] that text is spam.
// Text without any words scores 0.
func (m *Model) ScoreMessage(text string) float64 {
	return CombineRatings(m.RateWords(text))
}

// Classify labels text as spam when its score exceeds SpamThreshold.
// The returned score is the raw message score for either label.
func (m *Model) Classify(text string) Classification {
	score := m.ScoreMessage(text)
	if score > SpamThreshold {
		return Classification{Label: Spam, Score: score}
	}
	return Classification{Label: Ham, Score: score}
}
