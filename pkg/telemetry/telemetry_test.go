package telemetry

import (
	"sync"
	"testing"
)

func TestMetricsCounts(t *testing.T) {
	m := New()
	m.RecordClassification(true)
	m.RecordClassification(false)
	m.RecordClassification(true)
	m.RecordBatch(5)
	m.RecordBatch(0)
	m.RecordAlert()

	s := m.Snapshot()
	if s.Classified != 3 || s.Flagged != 2 {
		t.Errorf("classified=%d flagged=%d, want 3/2", s.Classified, s.Flagged)
	}
	if s.BatchItems != 5 {
		t.Errorf("batchItems = %d, want 5", s.BatchItems)
	}
	if s.AlertsStored != 1 {
		t.Errorf("alertsStored = %d, want 1", s.AlertsStored)
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.RecordClassification(true)
	m.RecordBatch(3)
	m.RecordAlert()
	if s := m.Snapshot(); s != (Snapshot{}) {
		t.Errorf("nil snapshot = %+v", s)
	}
}

func TestMetricsConcurrent(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordClassification(j%2 == 0)
			}
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	if s.Classified != 800 || s.Flagged != 400 {
		t.Errorf("classified=%d flagged=%d, want 800/400", s.Classified, s.Flagged)
	}
}
