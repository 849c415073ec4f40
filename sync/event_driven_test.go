package sync

import (
	"testing"

	"github.com/nodetwin/twinsim/model"
)

func TestEventDrivenFirstCallAlwaysSyncs(t *testing.T) {
	s := NewEventDriven(0.05, 10)
	if !s.ShouldSync(0, model.DeviceState{}, 1) {
		t.Error("first call should always sync (no baseline)")
	}
}

func TestEventDrivenSyncsOnSignificantChange(t *testing.T) {
	s := NewEventDriven(0.05, 10)
	state := model.DeviceState{}
	state.CPU.Utilization = 0.5
	s.PreparePayload(state)

	changed := state
	changed.CPU.Utilization = 0.6
	if !s.ShouldSync(1, changed, changed.Battery.Percentage) {
		t.Error("a CPU utilization move of 0.1 should exceed a 0.05 threshold")
	}
}

func TestEventDrivenNoSyncWithoutChangeOrHeartbeat(t *testing.T) {
	s := NewEventDriven(0.05, 10) // heartbeat = 10*6 = 60
	state := model.DeviceState{}
	state.CPU.Utilization = 0.5
	s.PreparePayload(state)

	if s.ShouldSync(5, state, 0) {
		t.Error("unchanged state well before the heartbeat should not sync")
	}
}

func TestEventDrivenHeartbeatFires(t *testing.T) {
	s := NewEventDriven(0.05, 10) // heartbeat = 60
	state := model.DeviceState{}
	s.PreparePayload(state)

	if !s.ShouldSync(60, state, 0) {
		t.Error("heartbeat interval elapsed with no other change should still sync")
	}
}

func TestEventDrivenPayloadIsAlwaysFullState(t *testing.T) {
	s := NewEventDriven(0.05, 10)
	payload := s.PreparePayload(model.DeviceState{})
	if payload.Type != model.SyncFullState {
		t.Errorf("Type = %q, want full_state", payload.Type)
	}
}
