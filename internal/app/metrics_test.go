package app

import (
	"testing"
	"time"

	"github.com/dshills/lexfold/internal/highlight/driver"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m == nil {
		t.Fatal("NewMetrics() returned nil")
	}

	snapshot := m.Snapshot()
	if snapshot.PassCount != 0 {
		t.Errorf("expected 0 passes, got %d", snapshot.PassCount)
	}
	if snapshot.MinPassNs != 0 {
		t.Errorf("expected 0 min pass time (sentinel handled), got %d", snapshot.MinPassNs)
	}
}

func TestMetrics_RecordPass(t *testing.T) {
	m := NewMetrics()

	m.RecordPass(10*time.Millisecond, driver.Result{First: 0, LastStyled: 99, WholeDocument: true})
	m.RecordPass(20*time.Millisecond, driver.Result{First: 5, LastStyled: 14})
	m.RecordPass(5*time.Millisecond, driver.Result{First: 7, LastStyled: 7})

	snapshot := m.Snapshot()
	if snapshot.PassCount != 3 {
		t.Errorf("expected 3 passes, got %d", snapshot.PassCount)
	}
	if snapshot.MinPassNs != int64(5*time.Millisecond) {
		t.Errorf("expected min 5ms, got %d ns", snapshot.MinPassNs)
	}
	if snapshot.MaxPassNs != int64(20*time.Millisecond) {
		t.Errorf("expected max 20ms, got %d ns", snapshot.MaxPassNs)
	}
	if snapshot.LastPassNs != int64(5*time.Millisecond) {
		t.Errorf("expected last 5ms, got %d ns", snapshot.LastPassNs)
	}
	if snapshot.AvgPassNs != int64(35*time.Millisecond)/3 {
		t.Errorf("expected avg 35ms/3, got %d ns", snapshot.AvgPassNs)
	}
	if snapshot.LinesStyled != 111 {
		t.Errorf("expected 111 lines styled, got %d", snapshot.LinesStyled)
	}
	if snapshot.WholePasses != 1 {
		t.Errorf("expected 1 whole document pass, got %d", snapshot.WholePasses)
	}
}

func TestMetrics_RecordReload(t *testing.T) {
	m := NewMetrics()

	m.RecordReload(3)
	m.RecordReload(0)
	m.RecordConfigReload()
	m.RecordFailure()

	snapshot := m.Snapshot()
	if snapshot.ReloadCount != 2 || snapshot.EditCount != 3 {
		t.Errorf("reloads = %d, edits = %d, want 2 and 3", snapshot.ReloadCount, snapshot.EditCount)
	}
	if snapshot.ConfigReloads != 1 || snapshot.Failures != 1 {
		t.Errorf("config reloads = %d, failures = %d", snapshot.ConfigReloads, snapshot.Failures)
	}
}

func TestMetrics_Snapshot_Uptime(t *testing.T) {
	m := NewMetrics()
	time.Sleep(5 * time.Millisecond)

	if up := m.Snapshot().Uptime; up < 5*time.Millisecond {
		t.Errorf("Uptime = %v, expected >= 5ms", up)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	m.RecordPass(time.Millisecond, driver.Result{LastStyled: 9})
	m.RecordReload(1)

	m.Reset()

	snapshot := m.Snapshot()
	if snapshot.PassCount != 0 || snapshot.LinesStyled != 0 || snapshot.ReloadCount != 0 {
		t.Errorf("expected empty metrics after Reset(), got %+v", snapshot)
	}
	if snapshot.MinPassNs != 0 {
		t.Errorf("expected min reset, got %d", snapshot.MinPassNs)
	}
}

func TestMetricsSnapshot_Rates(t *testing.T) {
	tests := []struct {
		name        string
		snapshot    MetricsSnapshot
		avgLines    float64
		incremental float64
	}{
		{"empty", MetricsSnapshot{}, 0, 0},
		{"all whole", MetricsSnapshot{PassCount: 2, WholePasses: 2, LinesStyled: 40}, 20, 0},
		{"mixed", MetricsSnapshot{PassCount: 4, WholePasses: 1, LinesStyled: 10}, 2.5, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.AvgLinesPerPass(); got != tt.avgLines {
				t.Errorf("AvgLinesPerPass() = %f, expected %f", got, tt.avgLines)
			}
			if got := tt.snapshot.IncrementalRate(); got != tt.incremental {
				t.Errorf("IncrementalRate() = %f, expected %f", got, tt.incremental)
			}
		})
	}
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	if timer == nil {
		t.Fatal("StartTimer() returned nil")
	}

	time.Sleep(10 * time.Millisecond)

	elapsed := timer.Elapsed()
	if elapsed < 10*time.Millisecond {
		t.Errorf("Elapsed() = %v, expected >= 10ms", elapsed)
	}
	if ms := timer.ElapsedMs(); ms < 10.0 {
		t.Errorf("ElapsedMs() = %f, expected >= 10.0", ms)
	}
}

func TestTimer_Stop(t *testing.T) {
	timer := StartTimer()

	time.Sleep(10 * time.Millisecond)

	elapsed := timer.Stop()
	if elapsed < 10*time.Millisecond {
		t.Errorf("Stop() returned %v, expected >= 10ms", elapsed)
	}

	// After stop, timer should be reset
	if elapsed2 := timer.Elapsed(); elapsed2 > elapsed {
		t.Errorf("expected timer to be reset after Stop(), got %v", elapsed2)
	}
}

func BenchmarkMetrics_RecordPass(b *testing.B) {
	m := NewMetrics()
	res := driver.Result{First: 10, LastStyled: 40}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordPass(time.Millisecond, res)
	}
}
