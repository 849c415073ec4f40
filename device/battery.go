package device

import (
	"sort"

	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
)

// BatteryModel tracks remaining charge against a per-operation current
// draw table, latching depleted once remaining capacity hits zero.
type BatteryModel struct {
	capacityMAh       float64
	currentDrawMA     map[string]float64
	warningThresholds []float64

	remainingMAh     float64
	totalConsumedMAh float64
	depleted         bool
	energyBreakdown  map[string]float64

	warningsTriggered map[float64]bool
	drainHistory      []float64
}

// NewBatteryModel builds a battery model from the battery config
// block, sorting warning thresholds descending as the original
// implementation does.
func NewBatteryModel(cfg config.Battery) *BatteryModel {
	thresholds := append([]float64(nil), cfg.WarningThresholds...)
	sort.Sort(sort.Reverse(sort.Float64Slice(thresholds)))
	return &BatteryModel{
		capacityMAh:       cfg.CapacityMAh,
		currentDrawMA:     cfg.CurrentDrawMA,
		warningThresholds: thresholds,
		remainingMAh:      cfg.CapacityMAh,
		energyBreakdown:   make(map[string]float64),
		warningsTriggered: make(map[float64]bool),
	}
}

// Consume draws current for op over duration seconds, latching
// depleted once remaining capacity reaches zero.
func (b *BatteryModel) Consume(op string, durationS float64) {
	if b.depleted {
		return
	}
	consumed := b.currentDrawMA[op] * durationS / 3600
	b.remainingMAh -= consumed
	b.totalConsumedMAh += consumed
	b.energyBreakdown[op] += consumed
	if b.remainingMAh <= 0 {
		b.remainingMAh = 0
		b.depleted = true
	}
}

// Tick advances active operations' draw by the time step and appends
// to the drain history used by EstimateRemainingHours.
func (b *BatteryModel) Tick(activeOperations []string, timeStepS float64) {
	if !b.depleted {
		for _, op := range activeOperations {
			b.Consume(op, timeStepS)
		}
	}
	b.drainHistory = append(b.drainHistory, b.remainingMAh)
	if over := len(b.drainHistory) - 60; over > 0 {
		b.drainHistory = b.drainHistory[over:]
	}
}

// CheckWarnings returns the set of newly-crossed warning thresholds
// (fraction of capacity remaining) since the last call.
func (b *BatteryModel) CheckWarnings() []float64 {
	pct := 0.0
	if b.capacityMAh > 0 {
		pct = b.remainingMAh / b.capacityMAh
	}
	var newlyTriggered []float64
	for _, threshold := range b.warningThresholds {
		if pct <= threshold && !b.warningsTriggered[threshold] {
			b.warningsTriggered[threshold] = true
			newlyTriggered = append(newlyTriggered, threshold)
		}
	}
	return newlyTriggered
}

// EstimateRemainingHours projects remaining runtime from the trailing
// drain history (first-minus-last over the last 60 samples), falling
// back to a lifetime average when fewer than 60 samples exist.
func (b *BatteryModel) EstimateRemainingHours(elapsedTicks int64, timeStepS float64) float64 {
	if b.remainingMAh <= 0 {
		return 0
	}
	if len(b.drainHistory) >= 60 {
		drainPerTick := (b.drainHistory[0] - b.drainHistory[len(b.drainHistory)-1]) / float64(len(b.drainHistory)-1)
		if drainPerTick <= 0 {
			return 9999
		}
		ticksRemaining := b.remainingMAh / drainPerTick
		return ticksRemaining * timeStepS / 3600
	}
	if elapsedTicks <= 0 || b.totalConsumedMAh <= 0 {
		return 9999
	}
	drainPerTick := b.totalConsumedMAh / float64(elapsedTicks)
	ticksRemaining := b.remainingMAh / drainPerTick
	return ticksRemaining * timeStepS / 3600
}

// EnergyBreakdownPct returns each operation's share of total energy
// consumed so far.
func (b *BatteryModel) EnergyBreakdownPct() map[string]float64 {
	out := make(map[string]float64, len(b.energyBreakdown))
	if b.totalConsumedMAh <= 0 {
		for op := range b.energyBreakdown {
			out[op] = 0
		}
		return out
	}
	for op, v := range b.energyBreakdown {
		out[op] = v / b.totalConsumedMAh * 100
	}
	return out
}

// Depleted reports whether the battery has latched to zero.
func (b *BatteryModel) Depleted() bool {
	return b.depleted
}

// State returns the current battery snapshot.
func (b *BatteryModel) State() model.BatteryState {
	pct := 0.0
	if b.capacityMAh > 0 {
		pct = b.remainingMAh / b.capacityMAh
	}
	breakdown := make(map[string]float64, len(b.energyBreakdown))
	for k, v := range b.energyBreakdown {
		breakdown[k] = v
	}
	return model.BatteryState{
		RemainingMAh:       b.remainingMAh,
		CapacityMAh:        b.capacityMAh,
		Percentage:         pct,
		TotalConsumedMAh:   b.totalConsumedMAh,
		Depleted:           b.depleted,
		EnergyBreakdownMAh: breakdown,
		EnergyBreakdownPct: b.EnergyBreakdownPct(),
	}
}
