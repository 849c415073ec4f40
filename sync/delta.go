package sync

import "github.com/nodetwin/twinsim/model"

// Delta syncs on the same fixed periodicity as FullState but sends
// only the fields that changed by more than Threshold (relative)
// since the last sync, flattening the state to dotted keys first.
type Delta struct {
	Threshold float64
	IntervalS int

	lastSynced   map[string]interface{}
	lastSyncTick int64
	hasBaseline  bool
}

// NewDelta builds a Delta strategy with the given relative-change
// threshold and full-state-equivalent sync interval.
func NewDelta(threshold float64, intervalS int) *Delta {
	return &Delta{Threshold: threshold, IntervalS: intervalS}
}

func (s *Delta) Name() string { return model.SyncDelta }

// ShouldSync fires on the same periodicity as FullState; the delta
// narrowing happens in PreparePayload, not in the sync decision. There
// is no baseline bypass here: lastSyncTick starts at 0, so the first
// sync fires once tick reaches IntervalS, same as FullState.
func (s *Delta) ShouldSync(tick int64, state model.DeviceState, batteryPct float64) bool {
	if s.IntervalS <= 0 {
		return true
	}
	return tick-s.lastSyncTick >= int64(s.IntervalS)
}

// PreparePayload emits the full state on the first call (no baseline
// to diff against yet) and only the significantly-changed fields on
// every call after that.
func (s *Delta) PreparePayload(state model.DeviceState) model.SyncPayload {
	flat := map[string]interface{}{}
	flatten("", toMap(state), flat)

	first := !s.hasBaseline

	var payload model.SyncPayload
	if first {
		payload = model.SyncPayload{
			Type:        model.SyncFullState,
			Data:        state,
			FieldsTotal: len(flat),
		}
	} else {
		changed := map[string]interface{}{}
		for key, newVal := range flat {
			oldVal, ok := s.lastSynced[key]
			if !ok || changedSignificantly(oldVal, newVal, s.Threshold) {
				changed[key] = newVal
			}
		}
		payload = model.SyncPayload{
			Type:          model.SyncDelta,
			Data:          changed,
			FieldsChanged: len(changed),
			FieldsTotal:   len(flat),
		}
	}
	payload.SizeBytes = payloadSize(payload.Data)

	s.lastSynced = flat
	s.lastSyncTick = state.Tick
	s.hasBaseline = true
	return payload
}

func changedSignificantly(oldVal, newVal interface{}, threshold float64) bool {
	oldNum, oldIsNum := asFloat(oldVal)
	newNum, newIsNum := asFloat(newVal)
	if !oldIsNum || !newIsNum {
		return oldVal != newVal
	}
	if oldNum == 0 {
		return newNum != 0
	}
	diff := newNum - oldNum
	if diff < 0 {
		diff = -diff
	}
	return diff/absFloat(oldNum) > threshold
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
