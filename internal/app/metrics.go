package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/lexfold/internal/highlight/driver"
)

// Metrics counts lexing passes, reloads and settings changes.
type Metrics struct {
	mu sync.RWMutex

	// Lexing passes
	passCount   atomic.Uint64
	passTotalNs atomic.Int64
	passMinNs   atomic.Int64
	passMaxNs   atomic.Int64
	lastPassNs  atomic.Int64
	linesStyled atomic.Uint64
	wholePasses atomic.Uint64

	// Source reloads and the line edits they produced
	reloadCount atomic.Uint64
	editCount   atomic.Uint64

	configReloads atomic.Uint64
	failures      atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so the first pass will be smaller
	m.passMinNs.Store(1<<63 - 1)
	return m
}

// RecordPass records one lexing pass and the lines it styled.
func (m *Metrics) RecordPass(duration time.Duration, res driver.Result) {
	ns := duration.Nanoseconds()

	m.passCount.Add(1)
	m.passTotalNs.Add(ns)
	m.lastPassNs.Store(ns)
	if n := res.LastStyled - res.First + 1; n > 0 {
		m.linesStyled.Add(uint64(n))
	}
	if res.WholeDocument {
		m.wholePasses.Add(1)
	}

	for {
		old := m.passMinNs.Load()
		if ns >= old {
			break
		}
		if m.passMinNs.CompareAndSwap(old, ns) {
			break
		}
	}

	for {
		old := m.passMaxNs.Load()
		if ns <= old {
			break
		}
		if m.passMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordReload records a source reload that produced edits line edits.
func (m *Metrics) RecordReload(edits int) {
	m.reloadCount.Add(1)
	m.editCount.Add(uint64(edits))
}

// RecordConfigReload records a settings change applied to the sessions.
func (m *Metrics) RecordConfigReload() {
	m.configReloads.Add(1)
}

// RecordFailure records a reload or pass that failed.
func (m *Metrics) RecordFailure() {
	m.failures.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	passCount := m.passCount.Load()
	var avgPassNs int64
	if passCount > 0 {
		avgPassNs = m.passTotalNs.Load() / int64(passCount)
	}

	minPassNs := m.passMinNs.Load()
	if minPassNs == 1<<63-1 {
		minPassNs = 0
	}

	m.mu.RLock()
	start := m.startTime
	m.mu.RUnlock()

	return MetricsSnapshot{
		Uptime:        time.Since(start),
		PassCount:     passCount,
		AvgPassNs:     avgPassNs,
		MinPassNs:     minPassNs,
		MaxPassNs:     m.passMaxNs.Load(),
		LastPassNs:    m.lastPassNs.Load(),
		LinesStyled:   m.linesStyled.Load(),
		WholePasses:   m.wholePasses.Load(),
		ReloadCount:   m.reloadCount.Load(),
		EditCount:     m.editCount.Load(),
		ConfigReloads: m.configReloads.Load(),
		Failures:      m.failures.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.passCount.Store(0)
	m.passTotalNs.Store(0)
	m.passMinNs.Store(1<<63 - 1)
	m.passMaxNs.Store(0)
	m.lastPassNs.Store(0)
	m.linesStyled.Store(0)
	m.wholePasses.Store(0)
	m.reloadCount.Store(0)
	m.editCount.Store(0)
	m.configReloads.Store(0)
	m.failures.Store(0)

	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime        time.Duration
	PassCount     uint64
	AvgPassNs     int64
	MinPassNs     int64
	MaxPassNs     int64
	LastPassNs    int64
	LinesStyled   uint64
	WholePasses   uint64
	ReloadCount   uint64
	EditCount     uint64
	ConfigReloads uint64
	Failures      uint64
}

// AvgLinesPerPass returns the mean number of lines a pass styled.
func (s MetricsSnapshot) AvgLinesPerPass() float64 {
	if s.PassCount == 0 {
		return 0
	}
	return float64(s.LinesStyled) / float64(s.PassCount)
}

// IncrementalRate returns the percentage of passes that did not cover
// the whole document.
func (s MetricsSnapshot) IncrementalRate() float64 {
	if s.PassCount == 0 {
		return 0
	}
	return float64(s.PassCount-s.WholePasses) / float64(s.PassCount) * 100
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ElapsedMs returns the elapsed time in milliseconds.
func (t *Timer) ElapsedMs() float64 {
	return float64(t.Elapsed().Nanoseconds()) / 1e6
}

// Stop returns the elapsed time and resets the timer.
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	t.start = time.Now()
	return elapsed
}
