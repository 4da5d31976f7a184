package learning

// Counter holds how often a token was seen in spam and ham examples
type Counter struct {
	Spam uint64 `json:"spam"`
	Ham  uint64 `json:"ham"`
}

// Total returns the number of training occurrences of the token
func (c Counter) Total() uint64 {
	return c.Spam + c.Ham
}

// FrequencyTable maps tokens to their counters.
// It is not safe for concurrent use; see Guard.
type FrequencyTable struct {
	counters map[string]Counter

	// Running sums over counters
	spamTotal uint64
	hamTotal  uint64
}

// NewFrequencyTable creates an empty table
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{
		counters: make(map[string]Counter),
	}
}

// Increment adds one occurrence of token under label
func (ft *FrequencyTable) Increment(token string, label Label) {
	counter := ft.counters[token]

	switch label {
	case Spam:
		counter.Spam++
		ft.spamTotal++
	case Ham:
		counter.Ham++
		ft.hamTotal++
	}

	ft.counters[token] = counter
}

// Lookup returns the counter for token, or the zero counter if unseen
func (ft *FrequencyTable) Lookup(token string) Counter {
	return ft.counters[token]
}

// SpamTotal returns the sum of spam counts over all tokens
func (ft *FrequencyTable) SpamTotal() uint64 {
	return ft.spamTotal
}

// HamTotal returns the sum of ham counts over all tokens
func (ft *FrequencyTable) HamTotal() uint64 {
	return ft.hamTotal
}

// Len returns the number of distinct tokens
func (ft *FrequencyTable) Len() int {
	return len(ft.counters)
}

// Each calls fn for every token in unspecified order
func (ft *FrequencyTable) Each(fn func(token string, counter Counter)) {
	for token, counter := range ft.counters {
		fn(token, counter)
	}
}
