package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// DefaultWindow is the number of most recent samples kept per operation
const DefaultWindow = 4096

// Profiler tracks execution times for named operations. Only the most
// recent samples are kept per operation; Count covers all of them.
type Profiler struct {
	mu     sync.RWMutex
	window int
	ops    map[string]*samples
}

type samples struct {
	count   uint64
	recent  []time.Duration
	next    int
	lastRun time.Time
}

// NewProfiler creates a profiler keeping window samples per operation
func NewProfiler(window int) *Profiler {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Profiler{
		window: window,
		ops:    make(map[string]*samples),
	}
}

// Timer represents a timing operation
type Timer struct {
	profiler *Profiler
	name     string
	start    time.Time
}

// Start begins timing an operation
func (p *Profiler) Start(name string) *Timer {
	return &Timer{
		profiler: p,
		name:     name,
		start:    time.Now(),
	}
}

// Stop completes the timing and records the duration
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)
	t.profiler.Record(t.name, duration)
	return duration
}

// Record manually records a timing
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.ops[name]
	if !ok {
		s = &samples{recent: make([]time.Duration, 0, p.window)}
		p.ops[name] = s
	}

	s.count++
	s.lastRun = time.Now()
	if len(s.recent) < p.window {
		s.recent = append(s.recent, duration)
		return
	}
	s.recent[s.next] = duration
	s.next = (s.next + 1) % p.window
}

// Stats contains timing statistics
type Stats struct {
	Name    string        `json:"name"`
	Count   uint64        `json:"count"`
	Average time.Duration `json:"avg_ns"`
	Min     time.Duration `json:"min_ns"`
	Max     time.Duration `json:"max_ns"`
	Median  time.Duration `json:"p50_ns"`
	P95     time.Duration `json:"p95_ns"`
	P99     time.Duration `json:"p99_ns"`
	LastRun time.Time     `json:"last_run"`
}

// GetStats returns timing statistics for an operation
func (p *Profiler) GetStats(name string) Stats {
	p.mu.RLock()
	s, exists := p.ops[name]
	if !exists || len(s.recent) == 0 {
		p.mu.RUnlock()
		return Stats{Name: name}
	}
	sorted := make([]time.Duration, len(s.recent))
	copy(sorted, s.recent)
	count, lastRun := s.count, s.lastRun
	p.mu.RUnlock()

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	return Stats{
		Name:    name,
		Count:   count,
		Average: total / time.Duration(len(sorted)),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Median:  percentile(sorted, 0.50),
		P95:     percentile(sorted, 0.95),
		P99:     percentile(sorted, 0.99),
		LastRun: lastRun,
	}
}

// percentile uses the nearest-rank method on sorted samples
func percentile(sorted []time.Duration, q float64) time.Duration {
	idx := int(float64(len(sorted))*q+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// GetAllStats returns statistics for all tracked operations, sorted by name
func (p *Profiler) GetAllStats() []Stats {
	p.mu.RLock()
	names := make([]string, 0, len(p.ops))
	for name := range p.ops {
		names = append(names, name)
	}
	p.mu.RUnlock()

	sort.Strings(names)

	stats := make([]Stats, 0, len(names))
	for _, name := range names {
		stats = append(stats, p.GetStats(name))
	}

	return stats
}

// Reset clears all timing data
func (p *Profiler) Reset() {
	p.mu.Lock()
	p.ops = make(map[string]*samples)
	p.mu.Unlock()
}

// PrintReport prints a formatted timing report
func PrintReport(w io.Writer, stats []Stats) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No timing data available")
		return
	}

	fmt.Fprintf(w, "⏱️  Performance Profile Report\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "%-20s %8s %8s %8s %8s %8s %8s\n",
		"Operation", "Count", "Avg", "Min", "Max", "P95", "P99")
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────────────\n")

	for _, stat := range stats {
		if stat.Count == 0 {
			continue
		}

		fmt.Fprintf(w, "%-20s %8d %8s %8s %8s %8s %8s\n",
			truncate(stat.Name, 20),
			stat.Count,
			FormatDuration(stat.Average),
			FormatDuration(stat.Min),
			FormatDuration(stat.Max),
			FormatDuration(stat.P95),
			FormatDuration(stat.P99),
		)
	}

	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════════\n")
}

// FormatDuration formats a duration for display
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
