package logger

import (
	"encoding/json"
	"sync"
	"time"
)

// Metrics tracks counters and timings. All operations are thread-safe.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

// IncrCounter increments a counter by 1.
func (m *Metrics) IncrCounter(name string) {
	m.AddCounter(name, 1)
}

// AddCounter increments a counter by n.
func (m *Metrics) AddCounter(name string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += n
}

// Counter returns the current value of a counter.
func (m *Metrics) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// RecordTiming records one duration measurement.
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], duration)
}

// Time records the time elapsed since start under name.
func (m *Metrics) Time(name string, start time.Time) {
	m.RecordTiming(name, time.Since(start))
}

// Timing summarizes the measurements recorded under one name.
type Timing struct {
	Count int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Average is Total spread over Count.
func (t Timing) Average() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.Total / time.Duration(t.Count)
}

// MarshalJSON renders durations in their String form, e.g. "1.5s".
func (t Timing) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count   int    `json:"count"`
		Total   string `json:"total"`
		Average string `json:"average"`
		Min     string `json:"min"`
		Max     string `json:"max"`
	}{t.Count, t.Total.String(), t.Average().String(), t.Min.String(), t.Max.String()})
}

// Snapshot is a point-in-time copy of a Metrics.
type Snapshot struct {
	Counters map[string]int64  `json:"counters"`
	Timings  map[string]Timing `json:"timings"`
}

// Fields flattens the snapshot for a log entry.
func (s Snapshot) Fields() Fields {
	return Fields{"counters": s.Counters, "timings": s.Timings}
}

// Snapshot copies the current counters and summarizes the timings.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Timings:  make(map[string]Timing, len(m.timings)),
	}
	for k, v := range m.counters {
		s.Counters[k] = v
	}
	for name, durations := range m.timings {
		if len(durations) == 0 {
			continue
		}
		t := Timing{Count: len(durations), Min: durations[0], Max: durations[0]}
		for _, d := range durations {
			t.Total += d
			t.Min = min(t.Min, d)
			t.Max = max(t.Max, d)
		}
		s.Timings[name] = t
	}
	return s
}

// DefaultMetrics returns the package-level tracker.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
