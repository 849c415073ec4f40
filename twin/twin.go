// Package twin implements the digital twin: a mirrored device state
// that drifts between syncs and is corrected, with drift recorded,
// each time a sync arrives.
package twin

import "github.com/nodetwin/twinsim/model"

// Twin holds the twin's view of the device: the last synced state,
// the prediction extrapolated forward from it, and the accumulated
// accuracy bookkeeping.
type Twin struct {
	deviceState    *model.DeviceState
	predictedState *model.DeviceState

	currentDrift    float64
	driftSum        float64
	driftSamples    int
	maxDrift        float64
	maxDriftTick    int
	totalSyncs      int
	successfulSyncs int
	lastSyncTick    int64
}

// New returns an empty twin with no device state yet mirrored.
func New() *Twin {
	return &Twin{}
}

// ReceiveSync applies a successful sync payload. Drift is computed
// against the twin's current prediction before that prediction is
// replaced — comparing the newly-arrived truth to what the twin
// guessed it would be, not to what it last confirmed.
func (t *Twin) ReceiveSync(tick int64, actual model.DeviceState) {
	t.totalSyncs++
	t.successfulSyncs++

	if t.predictedState != nil {
		drift := t.calculateDrift(*t.predictedState, actual)
		t.currentDrift = drift
		t.driftSum += drift
		t.driftSamples++
		if drift > t.maxDrift {
			t.maxDrift = drift
			t.maxDriftTick = int(tick)
		}
	} else {
		t.currentDrift = 0
	}

	actualCopy := actual.Clone()
	t.deviceState = &actualCopy
	predictedCopy := actual.Clone()
	t.predictedState = &predictedCopy
	t.lastSyncTick = tick
}

// RecordSyncFailure counts a failed sync attempt without updating any
// mirrored state.
func (t *Twin) RecordSyncFailure() {
	t.totalSyncs++
}

// Tick extrapolates the twin's prediction forward for ticks that
// received no sync: drift grows with elapsed time, and battery is
// extrapolated linearly from the last known drain rate.
func (t *Twin) Tick(currentTick int64) {
	if t.predictedState == nil {
		return
	}
	ticksSinceSync := currentTick - t.lastSyncTick
	if ticksSinceSync < 0 {
		ticksSinceSync = 0
	}

	growth := float64(ticksSinceSync) * 0.0005
	if growth > 1 {
		growth = 1
	}
	t.currentDrift = growth
	if growth > t.maxDrift {
		t.maxDrift = growth
		t.maxDriftTick = int(currentTick)
	}

	drainRate := t.deviceState.Battery.TotalConsumedMAh / float64(maxInt64(t.lastSyncTick, 1))
	remaining := t.deviceState.Battery.RemainingMAh - drainRate*float64(ticksSinceSync)
	if remaining < 0 {
		remaining = 0
	}
	t.predictedState.Battery.RemainingMAh = remaining
	if t.predictedState.Battery.CapacityMAh > 0 {
		t.predictedState.Battery.Percentage = remaining / t.predictedState.Battery.CapacityMAh
	}

	t.driftSum += growth
	t.driftSamples++
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// calculateDrift averages up to three normalized diffs (battery,
// memory, CPU) between predicted and actual; components that can't be
// compared (e.g. zero capacity) are skipped, and drift is 0 if none
// are comparable.
func (t *Twin) calculateDrift(predicted, actual model.DeviceState) float64 {
	var diffs []float64

	if predicted.Battery.CapacityMAh > 0 {
		diffs = append(diffs, normDiff(predicted.Battery.Percentage, actual.Battery.Percentage))
	}
	if predicted.Memory.TotalKB > 0 {
		diffs = append(diffs, normDiff(predicted.Memory.Utilization, actual.Memory.Utilization))
	}
	diffs = append(diffs, normDiff(predicted.CPU.Utilization, actual.CPU.Utilization))

	if len(diffs) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range diffs {
		sum += d
	}
	return sum / float64(len(diffs))
}

func normDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d
}

// GetMaxDrift returns the largest drift observed, whether measured at
// a sync or extrapolated by Tick between syncs, and the tick at which
// it occurred.
func (t *Twin) GetMaxDrift() (float64, int) {
	return t.maxDrift, t.maxDriftTick
}

// GetSyncSuccessRate returns the fraction of sync attempts that
// succeeded.
func (t *Twin) GetSyncSuccessRate() float64 {
	if t.totalSyncs == 0 {
		return 0
	}
	return float64(t.successfulSyncs) / float64(t.totalSyncs)
}

// State returns the twin's current snapshot.
func (t *Twin) State() model.TwinState {
	avgAccuracy := 0.0
	if t.driftSamples > 0 {
		avgAccuracy = 1 - (t.driftSum / float64(t.driftSamples))
	}
	var device *model.DeviceState
	if t.deviceState != nil {
		clone := t.deviceState.Clone()
		device = &clone
	}
	return model.TwinState{
		DeviceState:     device,
		CurrentDrift:    t.currentDrift,
		AvgAccuracy:     avgAccuracy,
		MaxDrift:        t.maxDrift,
		MaxDriftTick:    t.maxDriftTick,
		TotalSyncs:      t.totalSyncs,
		SyncSuccessRate: t.GetSyncSuccessRate(),
		LastSyncTick:    t.lastSyncTick,
	}
}
