package sync

import "github.com/nodetwin/twinsim/model"

// Adaptive widens its full-state sync interval as the battery drains,
// trading freshness for energy once charge runs low.
type Adaptive struct {
	HighIntervalS   int
	MediumIntervalS int
	LowIntervalS    int
	HighThreshold   float64
	LowThreshold    float64

	lastSyncTick int64
}

// NewAdaptive builds an Adaptive strategy from the adaptive config
// block.
func NewAdaptive(highIntervalS, mediumIntervalS, lowIntervalS int, highThreshold, lowThreshold float64) *Adaptive {
	return &Adaptive{
		HighIntervalS:   highIntervalS,
		MediumIntervalS: mediumIntervalS,
		LowIntervalS:    lowIntervalS,
		HighThreshold:   highThreshold,
		LowThreshold:    lowThreshold,
	}
}

func (s *Adaptive) Name() string { return model.SyncAdaptive }

// intervalFor selects the sync interval for batteryPct. The high-
// battery interval requires strictly more charge than HighThreshold;
// a battery sitting exactly at the threshold gets the medium interval.
func (s *Adaptive) intervalFor(batteryPct float64) int {
	switch {
	case batteryPct > s.HighThreshold:
		return s.HighIntervalS
	case batteryPct <= s.LowThreshold:
		return s.LowIntervalS
	default:
		return s.MediumIntervalS
	}
}

// ShouldSync has no first-tick bypass: lastSyncTick starts at 0, so
// the first sync fires once tick reaches the interval chosen for the
// starting battery level, same as FullState and Delta.
func (s *Adaptive) ShouldSync(tick int64, state model.DeviceState, batteryPct float64) bool {
	interval := s.intervalFor(batteryPct)
	if interval <= 0 {
		return true
	}
	return tick-s.lastSyncTick >= int64(interval)
}

func (s *Adaptive) PreparePayload(state model.DeviceState) model.SyncPayload {
	payload := model.SyncPayload{
		Type:         model.SyncAdaptive,
		Data:         state,
		IntervalUsed: s.intervalFor(state.Battery.Percentage),
	}
	payload.SizeBytes = payloadSize(payload.Data)

	s.lastSyncTick = state.Tick
	return payload
}
