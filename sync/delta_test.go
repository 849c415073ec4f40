package sync

import (
	"testing"

	"github.com/nodetwin/twinsim/model"
)

func TestDeltaFirstCallEmitsFullState(t *testing.T) {
	s := NewDelta(0.1, 10)
	state := model.DeviceState{Tick: 0}
	state.CPU.Utilization = 0.5
	payload := s.PreparePayload(state)
	if payload.Type != model.SyncFullState {
		t.Errorf("first PreparePayload() Type = %q, want full_state", payload.Type)
	}
}

func TestDeltaSubsequentCallOnlyIncludesChangedFields(t *testing.T) {
	s := NewDelta(0.1, 10)
	state := model.DeviceState{Tick: 0}
	state.CPU.Utilization = 0.5
	state.Memory.Utilization = 0.3
	s.PreparePayload(state)

	state2 := state
	state2.Tick = 10
	state2.CPU.Utilization = 0.9 // > 10% relative change
	payload := s.PreparePayload(state2)

	if payload.Type != model.SyncDelta {
		t.Errorf("Type = %q, want delta", payload.Type)
	}
	changed, ok := payload.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Data type = %T, want map[string]interface{}", payload.Data)
	}
	if _, ok := changed["cpu.utilization"]; !ok {
		t.Error("cpu.utilization changed by more than the threshold and should be included")
	}
	if _, ok := changed["memory.utilization"]; ok {
		t.Error("memory.utilization did not change and should be excluded")
	}
}

func TestDeltaFlattenExcludesNonNumericLeaves(t *testing.T) {
	s := NewDelta(0.01, 10)
	state := model.DeviceState{Tick: 0}
	state.Network.Type = "lora"
	state.IsActive = true
	s.PreparePayload(state)

	for key := range s.lastSynced {
		if key == "network.type" || key == "is_active" {
			t.Errorf("flattened view should only retain numeric leaves, found %q", key)
		}
	}
}

func TestDeltaShouldSyncHasNoFirstTickBypass(t *testing.T) {
	s := NewDelta(0.1, 10)
	if s.ShouldSync(0, model.DeviceState{}, 1) {
		t.Error("ShouldSync(0) should be false: lastSyncTick starts at 0 and 0-0 < interval")
	}
	if !s.ShouldSync(10, model.DeviceState{}, 1) {
		t.Error("ShouldSync(10) should be true once tick reaches the interval")
	}
}

func TestChangedSignificantlyZeroBaseline(t *testing.T) {
	if changedSignificantly(0.0, 0.0, 0.1) {
		t.Error("0 -> 0 should not be considered changed")
	}
	if !changedSignificantly(0.0, 1.0, 0.1) {
		t.Error("0 -> nonzero should always be considered changed")
	}
}

func TestChangedSignificantlyRelativeThreshold(t *testing.T) {
	if changedSignificantly(10, 10.5, 0.1) {
		t.Error("5% relative change should not exceed a 10% threshold")
	}
	if !changedSignificantly(10, 12, 0.1) {
		t.Error("20% relative change should exceed a 10% threshold")
	}
}
