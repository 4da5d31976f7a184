package learning

import (
	"math"
	"sort"
)

const (
	spamOnlyScore = 0.99
	hamOnlyScore  = 0.01
	neutralScore  = 0.5
	minWordScore  = 0.01

	// Messages with more ratings than maxRatings are reduced to the
	// keepExtremes lowest and keepExtremes highest ones.
	maxRatings   = 20
	keepExtremes = 10

	// SpamThreshold is the message score above which a message is spam
	SpamThreshold = 0.8
)

// WordScore estimates the probability that a message containing a token
// with the given counter is spam. Counts are normalized by their class
// totals so class-size imbalance does not swamp rare tokens.
func WordScore(c Counter, spamTotal, hamTotal uint64) float64 {
	switch {
	case c.Spam > 0 && c.Ham == 0:
		return spamOnlyScore
	case c.Spam == 0 && c.Ham > 0:
		return hamOnlyScore
	case spamTotal > 0 && hamTotal > 0:
		hamRate := float64(c.Ham) / float64(hamTotal)
		spamRate := float64(c.Spam) / float64(spamTotal)
		if hamRate+spamRate == 0 {
			return neutralScore
		}
		return math.Max(minWordScore, spamRate/(hamRate+spamRate))
	default:
		return neutralScore
	}
}

// CombineRatings merges per-token ratings into a message score using
// the independence assumption. An empty set scores 0.
func CombineRatings(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}

	product, complement := 1.0, 1.0
	for _, p := range trimRatings(ratings) {
		product *= p
		complement *= 1 - p
	}

	return product / (product + complement)
}

// trimRatings keeps the most decisive ratings of long messages.
// The input slice is not modified.
func trimRatings(ratings []float64) []float64 {
	if len(ratings) <= maxRatings {
		return ratings
	}

	sorted := make([]float64, len(ratings))
	copy(sorted, ratings)
	sort.Float64s(sorted)

	trimmed := make([]float64, 0, 2*keepExtremes)
	trimmed = append(trimmed, sorted[:keepExtremes]...)
	trimmed = append(trimmed, sorted[len(sorted)-keepExtremes:]...)
	return trimmed
}
