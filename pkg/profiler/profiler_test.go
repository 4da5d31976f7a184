package profiler

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGetStats(t *testing.T) {
	p := NewProfiler(0)
	for i := 1; i <= 100; i++ {
		p.Record("classify", time.Duration(i)*time.Millisecond)
	}

	s := p.GetStats("classify")
	if s.Count != 100 {
		t.Errorf("Expected count 100, got %d", s.Count)
	}
	if s.Min != time.Millisecond || s.Max != 100*time.Millisecond {
		t.Errorf("Unexpected min/max: %v/%v", s.Min, s.Max)
	}
	if s.Median != 50*time.Millisecond {
		t.Errorf("Expected median 50ms, got %v", s.Median)
	}
	if s.P95 != 95*time.Millisecond || s.P99 != 99*time.Millisecond {
		t.Errorf("Unexpected percentiles: p95=%v p99=%v", s.P95, s.P99)
	}
	if s.Average != 50500*time.Microsecond {
		t.Errorf("Expected average 50.5ms, got %v", s.Average)
	}
}

func TestUnknownOperation(t *testing.T) {
	p := NewProfiler(0)
	if diff := cmp.Diff(Stats{Name: "missing"}, p.GetStats("missing")); diff != "" {
		t.Errorf("Unexpected stats (-want +got):\n%s", diff)
	}
}

func TestWindowKeepsRecentSamples(t *testing.T) {
	p := NewProfiler(3)
	for _, ms := range []int{100, 1, 2, 3} {
		p.Record("op", time.Duration(ms)*time.Millisecond)
	}

	s := p.GetStats("op")
	if s.Count != 4 {
		t.Errorf("Count should include evicted samples, got %d", s.Count)
	}
	if s.Max != 3*time.Millisecond {
		t.Errorf("Oldest sample should be evicted, max = %v", s.Max)
	}
}

func TestTimerAndAllStats(t *testing.T) {
	p := NewProfiler(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Start("train_bulk").Stop()
			p.Start("classify").Stop()
		}()
	}
	wg.Wait()

	all := p.GetAllStats()
	var names []string
	for _, s := range all {
		names = append(names, s.Name)
		if s.Count != 8 {
			t.Errorf("%s: expected 8 samples, got %d", s.Name, s.Count)
		}
	}
	if diff := cmp.Diff([]string{"classify", "train_bulk"}, names); diff != "" {
		t.Errorf("Unexpected names (-want +got):\n%s", diff)
	}

	p.Reset()
	if len(p.GetAllStats()) != 0 {
		t.Error("Reset should clear all operations")
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, nil)
	if !strings.Contains(buf.String(), "No timing data") {
		t.Errorf("Unexpected empty report: %q", buf.String())
	}

	p := NewProfiler(0)
	p.Record("classify", 1500*time.Microsecond)
	buf.Reset()
	PrintReport(&buf, p.GetAllStats())
	if !strings.Contains(buf.String(), "classify") || !strings.Contains(buf.String(), "1.50ms") {
		t.Errorf("Unexpected report: %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		500 * time.Nanosecond:   "500ns",
		1500 * time.Nanosecond:  "1.5μs",
		2 * time.Millisecond:    "2.00ms",
		1500 * time.Millisecond: "1.500s",
	}
	for d, want := range tests {
		if got := FormatDuration(d); got != want {
			t.Errorf("FormatDuration(%v) = %s, expected %s", d, got, want)
		}
	}
}
