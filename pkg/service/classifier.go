package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/zpam/hamspam/pkg/cache"
	"github.com/zpam/hamspam/pkg/learning"
	"github.com/zpam/hamspam/pkg/profiler"
)

// Operation names recorded by the profiler
const (
	OpClassify  = "classify"
	OpTrainBulk = "train_bulk"
)

// Example is a labeled training record as received from a client.
// Labels other than "spam" and "ham" are skipped.
type Example struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// TrainReport summarizes one bulk training call
type TrainReport struct {
	Status  string `json:"status"`
	Trained int    `json:"trained"`
	Skipped int    `json:"skipped"`
	Tokens  int    `json:"tokens"`
}

// CacheStats describes result cache usage
type CacheStats struct {
	Backend string `json:"backend"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Errors  uint64 `json:"errors"`
}

// Stats is a point-in-time view of the classifier
type Stats struct {
	Model      learning.ModelInfo `json:"model"`
	Cache      CacheStats         `json:"cache"`
	Operations []profiler.Stats   `json:"operations"`
}

// Classifier is the entry point shared by the HTTP and milter transports
type Classifier struct {
	guard    *learning.Guard
	cache    cache.ResultCache
	profiler *profiler.Profiler
	log      zerolog.Logger

	hits, misses, cacheErrors atomic.Uint64
}

// NewClassifier wires a guarded model with a result cache. A nil cache
// disables caching and a nil profiler gets a fresh one.
func NewClassifier(guard *learning.Guard, rc cache.ResultCache, prof *profiler.Profiler, log zerolog.Logger) *Classifier {
	if rc == nil {
		rc = cache.NopCache{}
	}
	if prof == nil {
		prof = profiler.NewProfiler(0)
	}

	return &Classifier{
		guard:    guard,
		cache:    rc,
		profiler: prof,
		log:      log.With().Str("component", "classifier").Logger(),
	}
}

// Language returns the model's stemming language
func (s *Classifier) Language() string {
	return s.guard.Language()
}

// Classify scores text, consulting the result cache first. Cache failures
// are logged and otherwise ignored.
func (s *Classifier) Classify(ctx context.Context, text string) learning.Classification {
	timer := s.profiler.Start(OpClassify)
	defer timer.Stop()

	generation := s.guard.Generation()
	cached, ok, err := s.cache.Get(ctx, generation, text)
	if err != nil {
		s.cacheErrors.Add(1)
		s.log.Warn().Err(err).Msg("result cache lookup failed")
	}
	if ok {
		s.hits.Add(1)
		return cached
	}
	s.misses.Add(1)

	result, generation := s.guard.Classify(text)

	if err := s.cache.Set(ctx, generation, text, result); err != nil {
		s.cacheErrors.Add(1)
		s.log.Warn().Err(err).Msg("result cache store failed")
	}

	return result
}

// TrainBulk folds all recognized examples into the model as one atomic
// batch. Examples with unknown labels are counted as skipped.
func (s *Classifier) TrainBulk(ctx context.Context, examples []Example) (TrainReport, error) {
	timer := s.profiler.Start(OpTrainBulk)
	defer timer.Stop()

	batch := make([]learning.Example, 0, len(examples))
	skipped := 0
	for i, ex := range examples {
		label, err := learning.ParseLabel(ex.Label)
		if err != nil {
			skipped++
			s.log.Debug().Int("index", i).Str("label", ex.Label).Msg("skipping example with unknown label")
			continue
		}
		batch = append(batch, learning.Example{Label: label, Text: ex.Text})
	}

	if err := ctx.Err(); err != nil {
		return TrainReport{}, fmt.Errorf("training aborted: %w", err)
	}

	tokens := s.guard.TrainBulk(batch)

	s.log.Info().
		Int("trained", len(batch)).
		Int("skipped", skipped).
		Int("tokens", tokens).
		Uint64("generation", s.guard.Generation()).
		Msg("bulk training applied")

	return TrainReport{
		Status:  "ok",
		Trained: len(batch),
		Skipped: skipped,
		Tokens:  tokens,
	}, nil
}

// TokenInfo returns statistics for the normalized form of word
func (s *Classifier) TokenInfo(word string) (learning.TokenStats, bool) {
	return s.guard.TokenStats(word)
}

// TopTokens returns the most significant tokens for kind ("spam" or "ham")
func (s *Classifier) TopTokens(kind string, limit int) ([]learning.TokenStats, error) {
	label, err := learning.ParseLabel(kind)
	if err != nil {
		return nil, err
	}
	return s.guard.TopTokens(label, limit), nil
}

// Stats returns model, cache and latency statistics
func (s *Classifier) Stats() Stats {
	return Stats{
		Model: s.guard.Info(),
		Cache: CacheStats{
			Backend: s.cache.Name(),
			Hits:    s.hits.Load(),
			Misses:  s.misses.Load(),
			Errors:  s.cacheErrors.Load(),
		},
		Operations: s.profiler.GetAllStats(),
	}
}
