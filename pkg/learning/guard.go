package learning

import (
	"sync"
	"sync/atomic"
)

// Example is a labeled training example
type Example struct {
	Label Label
	Text  string
}

// Guard serializes access to a Model shared between request handlers.
// Every operation holds one exclusive lock for its whole duration, so a
// classification never observes a partially applied training batch.
type Guard struct {
	mu    sync.Mutex
	model *Model

	// Bumped under mu by every training call that added tokens.
	// Readable without the lock.
	generation atomic.Uint64
}

// NewGuard wraps model
func NewGuard(model *Model) *Guard {
	return &Guard{model: model}
}

// Language returns the model's stemming language
func (g *Guard) Language() string {
	return g.model.Language()
}

// Generation identifies the current training state of the model
func (g *Guard) Generation() uint64 {
	return g.generation.Load()
}

// Classify classifies text and returns the generation it was computed at
func (g *Guard) Classify(text string) (Classification, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.model.Classify(text), g.generation.Load()
}

// Train trains on one example and returns the number of tokens added
func (g *Guard) Train(label Label, text string) int {
	return g.TrainBulk([]Example{{Label: label, Text: text}})
}

// TrainBulk applies all examples under a single lock acquisition and
// returns the total number of tokens added
func (g *Guard) TrainBulk(examples []Example) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	var tokens int
	for _, ex := range examples {
		tokens += g.model.Train(ex.Label, ex.Text)
	}

	if tokens > 0 {
		g.generation.Add(1)
	}

	return tokens
}

// Info returns model information
func (g *Guard) Info() ModelInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	info := g.model.Info()
	info.Generation = g.generation.Load()
	return info
}

// TokenStats returns statistics for word
func (g *Guard) TokenStats(word string) (TokenStats, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.model.TokenStats(word)
}

// TopTokens returns the most significant tokens for label
func (g *Guard) TopTokens(label Label, limit int) []TokenStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.model.TopTokens(label, limit)
}
