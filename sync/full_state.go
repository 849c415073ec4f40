package sync

import "github.com/nodetwin/twinsim/model"

// FullState syncs the complete device state every IntervalS ticks.
type FullState struct {
	IntervalS int

	lastSyncTick int64
}

// NewFullState builds a FullState strategy with the given interval.
func NewFullState(intervalS int) *FullState {
	return &FullState{IntervalS: intervalS}
}

func (s *FullState) Name() string { return model.SyncFullState }

func (s *FullState) ShouldSync(tick int64, state model.DeviceState, batteryPct float64) bool {
	if s.IntervalS <= 0 {
		return true
	}
	return tick-s.lastSyncTick >= int64(s.IntervalS)
}

func (s *FullState) PreparePayload(state model.DeviceState) model.SyncPayload {
	payload := model.SyncPayload{
		Type: model.SyncFullState,
		Data: state,
	}
	payload.SizeBytes = payloadSize(payload.Data)
	s.lastSyncTick = state.Tick
	return payload
}
