package sync

import (
	"testing"

	"github.com/nodetwin/twinsim/model"
)

func TestFullStateSyncsOnInterval(t *testing.T) {
	s := NewFullState(10)
	tests := []struct {
		tick int64
		want bool
	}{
		{0, false},
		{5, false},
		{10, true},
		{15, false},
		{20, true},
	}
	for _, tt := range tests {
		got := s.ShouldSync(tt.tick, model.DeviceState{}, 1)
		if got != tt.want {
			t.Errorf("ShouldSync(%d) = %v, want %v", tt.tick, got, tt.want)
		}
		if got {
			// A real sync advances lastSyncTick, exactly as the
			// orchestrator does by calling PreparePayload right after
			// a true ShouldSync.
			s.PreparePayload(model.DeviceState{Tick: tt.tick})
		}
	}
}

func TestFullStatePayloadIsEntireState(t *testing.T) {
	s := NewFullState(10)
	state := model.DeviceState{Tick: 42}
	payload := s.PreparePayload(state)
	if payload.Type != model.SyncFullState {
		t.Errorf("Type = %q, want full_state", payload.Type)
	}
	if payload.SizeBytes <= 0 {
		t.Error("SizeBytes should be positive for a non-empty payload")
	}
}

func TestFullStateZeroIntervalAlwaysSyncs(t *testing.T) {
	s := NewFullState(0)
	if !s.ShouldSync(1234, model.DeviceState{}, 1) {
		t.Error("interval <= 0 should always sync")
	}
}
