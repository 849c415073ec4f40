package sync

import "github.com/nodetwin/twinsim/model"

// EventDriven syncs only when one of four key fields (CPU, memory,
// battery, or network utilization) moves by more than Threshold since
// the last sync, or a heartbeat interval elapses with no such
// movement.
type EventDriven struct {
	Threshold        float64
	HeartbeatIntervalS int

	hasBaseline  bool
	lastCPU      float64
	lastMemory   float64
	lastBattery  float64
	lastNetwork  float64
	lastSyncTick int64
}

// NewEventDriven builds an EventDriven strategy. heartbeatBaseS is the
// full-state sync interval; the heartbeat fires at 6x that interval
// when nothing else has triggered a sync.
func NewEventDriven(threshold float64, heartbeatBaseS int) *EventDriven {
	return &EventDriven{Threshold: threshold, HeartbeatIntervalS: heartbeatBaseS * 6}
}

func (s *EventDriven) Name() string { return model.SyncEventDriven }

func (s *EventDriven) ShouldSync(tick int64, state model.DeviceState, batteryPct float64) bool {
	if !s.hasBaseline {
		return true
	}
	if s.changed(state, batteryPct) {
		return true
	}
	if s.HeartbeatIntervalS > 0 && tick-s.lastSyncTick >= int64(s.HeartbeatIntervalS) {
		return true
	}
	return false
}

func (s *EventDriven) changed(state model.DeviceState, batteryPct float64) bool {
	fields := []struct{ old, cur float64 }{
		{s.lastCPU, state.CPU.Utilization},
		{s.lastMemory, state.Memory.Utilization},
		{s.lastBattery, batteryPct},
		{s.lastNetwork, state.Network.BandwidthUtilization},
	}
	for _, f := range fields {
		diff := f.cur - f.old
		if diff < 0 {
			diff = -diff
		}
		if diff > s.Threshold {
			return true
		}
	}
	return false
}

func (s *EventDriven) PreparePayload(state model.DeviceState) model.SyncPayload {
	// The payload itself is always full state; only the should-sync
	// comparison baseline is narrowed to the four watched fields.
	payload := model.SyncPayload{
		Type: model.SyncFullState,
		Data: state,
	}
	payload.SizeBytes = payloadSize(payload.Data)

	s.hasBaseline = true
	s.lastCPU = state.CPU.Utilization
	s.lastMemory = state.Memory.Utilization
	s.lastBattery = state.Battery.Percentage
	s.lastNetwork = state.Network.BandwidthUtilization
	s.lastSyncTick = state.Tick

	return payload
}
