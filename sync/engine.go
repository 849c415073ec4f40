package sync

import (
	"fmt"

	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
)

// Engine wraps a chosen Strategy, adding the append-only sync event
// log and running-stats bookkeeping shared by all four strategies.
type Engine struct {
	strategy          Strategy
	events            []model.SyncEvent
	expectedIntervalS int
}

// NewEngine constructs the Strategy named by strategyName from the
// sync config block. Unknown names are a configuration error, caught
// by config.Validate before the engine is ever built.
func NewEngine(strategyName string, cfg config.Sync) (*Engine, error) {
	var strategy Strategy
	switch strategyName {
	case model.SyncFullState:
		strategy = NewFullState(cfg.FullStateIntervalS)
	case model.SyncDelta:
		strategy = NewDelta(cfg.DeltaThreshold, cfg.FullStateIntervalS)
	case model.SyncEventDriven:
		strategy = NewEventDriven(cfg.EventChangeThreshold, cfg.FullStateIntervalS)
	case model.SyncAdaptive:
		strategy = NewAdaptive(
			cfg.Adaptive.HighBatteryIntervalS,
			cfg.Adaptive.MediumBatteryIntervalS,
			cfg.Adaptive.LowBatteryIntervalS,
			cfg.Adaptive.HighBatteryThreshold,
			cfg.Adaptive.LowBatteryThreshold,
		)
	default:
		return nil, fmt.Errorf("unknown sync strategy %q", strategyName)
	}
	return &Engine{strategy: strategy, expectedIntervalS: cfg.FullStateIntervalS}, nil
}

// ExpectedIntervalS is the nominal sync period used by the fault
// detector's communication-timeout rule, independent of which
// strategy is active.
func (e *Engine) ExpectedIntervalS() int {
	return e.expectedIntervalS
}

// ShouldSync asks the wrapped strategy whether this tick should sync.
func (e *Engine) ShouldSync(tick int64, state model.DeviceState, batteryPct float64) bool {
	return e.strategy.ShouldSync(tick, state, batteryPct)
}

// PreparePayload builds the payload for this tick via the wrapped
// strategy.
func (e *Engine) PreparePayload(state model.DeviceState) model.SyncPayload {
	return e.strategy.PreparePayload(state)
}

// RecordSync appends a sync attempt (successful or not) to the event
// log.
func (e *Engine) RecordSync(tick int64, sizeBytes int, success bool) {
	e.events = append(e.events, model.SyncEvent{
		Tick:      tick,
		SizeBytes: sizeBytes,
		Success:   success,
		Strategy:  e.strategy.Name(),
	})
}

// Stats summarizes the sync event log.
type Stats struct {
	TotalSyncs      int     `json:"total_syncs"`
	SuccessfulSyncs int     `json:"successful_syncs"`
	SuccessRate     float64 `json:"success_rate"`
	AvgPayloadBytes float64 `json:"avg_payload_bytes"`
	TotalBytes      int     `json:"total_bytes"`
}

// GetStats computes running statistics over the recorded sync
// events.
func (e *Engine) GetStats() Stats {
	if len(e.events) == 0 {
		return Stats{}
	}
	successful := 0
	totalBytes := 0
	for _, ev := range e.events {
		if ev.Success {
			successful++
			totalBytes += ev.SizeBytes
		}
	}
	stats := Stats{
		TotalSyncs:      len(e.events),
		SuccessfulSyncs: successful,
		SuccessRate:     float64(successful) / float64(len(e.events)),
		TotalBytes:      totalBytes,
	}
	if successful > 0 {
		stats.AvgPayloadBytes = float64(totalBytes) / float64(successful)
	}
	return stats
}

// Name returns the wrapped strategy's name.
func (e *Engine) Name() string {
	return e.strategy.Name()
}
