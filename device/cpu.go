package device

import (
	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
	"github.com/nodetwin/twinsim/rng"
)

// CPUModel tracks a single-core cycle budget consumed by queued tasks
// each tick, with Gaussian jitter applied to the resulting utilization.
type CPUModel struct {
	clockMHz  float64
	taskCosts map[string]float64

	queuedCycles             float64
	cyclesUsedThisTick       float64
	currentUtilization       float64
	peakUtilization          float64
	overloadEvents           int
	consecutiveOverloadTicks int
}

// NewCPUModel builds a CPU model from the processor config block.
func NewCPUModel(cfg config.Processor) *CPUModel {
	return &CPUModel{
		clockMHz:  cfg.ClockMHz,
		taskCosts: cfg.TaskCosts,
	}
}

// ScheduleTask queues the cycle cost for the named task type
// ("sensing", "processing", "transmission") to be spent on the next
// Tick.
func (c *CPUModel) ScheduleTask(taskType string) {
	c.queuedCycles += c.taskCosts[taskType+"_cycles"]
}

// Tick spends the queued cycle budget against the cycles available in
// timeStepS seconds, updates utilization with jitter, and clears the
// queue.
func (c *CPUModel) Tick(r *rng.Source, timeStepS float64) {
	maxCyclesPerTick := c.clockMHz * 1_000_000
	available := maxCyclesPerTick * timeStepS

	utilization := 0.0
	if available > 0 {
		utilization = c.queuedCycles / available
	}
	if utilization > 1.0 {
		utilization = 1.0
	}

	utilization += r.Gaussian(0, 0.02)
	if utilization < 0 {
		utilization = 0
	}
	if utilization > 1.0 {
		utilization = 1.0
	}

	c.currentUtilization = utilization
	if utilization > c.peakUtilization {
		c.peakUtilization = utilization
	}

	if utilization > 0.90 {
		c.consecutiveOverloadTicks++
	} else {
		c.consecutiveOverloadTicks = 0
	}
	if utilization > 0.95 {
		c.overloadEvents++
	}

	c.cyclesUsedThisTick = c.queuedCycles
	c.queuedCycles = 0
}

// State returns the current CPU snapshot.
func (c *CPUModel) State() model.CPUState {
	return model.CPUState{
		Utilization:              c.currentUtilization,
		CyclesUsed:               c.cyclesUsedThisTick,
		PeakUtilization:          c.peakUtilization,
		OverloadEvents:           c.overloadEvents,
		ConsecutiveOverloadTicks: c.consecutiveOverloadTicks,
	}
}
