// Package telemetry aggregates in-process activity counters for the
// health endpoint. Nothing leaves the process.
package telemetry

import "sync/atomic"

// Metrics counts classification activity. All methods are safe for
// concurrent use, and a nil *Metrics is a no-op so callers never guard.
type Metrics struct {
	classified   atomic.Int64
	flagged      atomic.Int64
	batchItems   atomic.Int64
	alertsStored atomic.Int64
}

// New returns a zeroed metrics set.
func New() *Metrics { return &Metrics{} }

// RecordClassification counts one classified item, flagged or not.
func (m *Metrics) RecordClassification(flagged bool) {
	if m == nil {
		return
	}
	m.classified.Add(1)
	if flagged {
		m.flagged.Add(1)
	}
}

// RecordBatch counts items that arrived through the batch endpoint.
func (m *Metrics) RecordBatch(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.batchItems.Add(int64(n))
}

// RecordAlert counts one alert persisted to the store.
func (m *Metrics) RecordAlert() {
	if m == nil {
		return
	}
	m.alertsStored.Add(1)
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Classified   int64 `json:"classified"`
	Flagged      int64 `json:"flagged"`
	BatchItems   int64 `json:"batchItems"`
	AlertsStored int64 `json:"alertsStored"`
}

// Snapshot reads the counters. A nil receiver returns zeroes.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Classified:   m.classified.Load(),
		Flagged:      m.flagged.Load(),
		BatchItems:   m.batchItems.Load(),
		AlertsStored: m.alertsStored.Load(),
	}
}
