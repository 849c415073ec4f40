package device

import (
	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
	"github.com/nodetwin/twinsim/rng"
)

// Node is the simulated sensor device: a CPU, memory, battery, and
// network model coupled through a per-tick sampling schedule, plus the
// sensor generator that feeds it readings.
type Node struct {
	cfg config.Device

	cpu     *CPUModel
	memory  *MemoryModel
	battery *BatteryModel
	network *NetworkModel
	sensors *SensorGenerator

	samplingRateS int
	tickCount     int64
	active        bool
	lastReading   *model.SensorReading
}

// NewNode builds a sensor node from the device and sensors config
// blocks.
func NewNode(deviceCfg config.Device, sensorCfg config.Sensors, samplingRateS int) *Node {
	return &Node{
		cfg:           deviceCfg,
		cpu:           NewCPUModel(deviceCfg.Processor),
		memory:        NewMemoryModel(deviceCfg.Memory),
		battery:       NewBatteryModel(deviceCfg.Battery),
		network:       NewNetworkModel(deviceCfg.Network),
		sensors:       NewSensorGenerator(sensorCfg),
		samplingRateS: samplingRateS,
		active:        true,
	}
}

// TickResult is what Tick reports back to the orchestrator: the
// refreshed device state and, if this tick produced a new sample, the
// reading itself.
type TickResult struct {
	State           model.DeviceState
	NewReading      *model.SensorReading
	IsSensingTick   bool
	BatteryWarnings []float64
}

// Tick advances the node by one time step. Once inactive or depleted,
// it latches inactive and returns unchanged state.
func (n *Node) Tick(r *rng.Source, timeStepS float64) TickResult {
	if !n.active || n.battery.Depleted() {
		n.active = false
		return TickResult{State: n.state(nil)}
	}

	n.tickCount++
	isSensingTick := n.samplingRateS > 0 && n.tickCount%int64(n.samplingRateS) == 0

	var activeOps []string
	var newReading *model.SensorReading
	if isSensingTick {
		n.cpu.ScheduleTask("sensing")
		n.cpu.ScheduleTask("processing")
		reading := n.sensors.Generate(r, float64(n.tickCount)*timeStepS)
		n.lastReading = &reading
		newReading = &reading
		n.memory.AllocateSensorBuffer()
		activeOps = []string{"sensing", "processing"}
	} else {
		activeOps = []string{"idle"}
	}

	n.cpu.Tick(r, timeStepS)
	n.memory.Tick(timeStepS)
	n.battery.Tick(activeOps, timeStepS)
	n.network.Tick(timeStepS)
	warnings := n.battery.CheckWarnings()

	if n.battery.Depleted() {
		n.active = false
	}

	return TickResult{
		State:           n.state(newReading),
		NewReading:      newReading,
		IsSensingTick:   isSensingTick,
		BatteryWarnings: warnings,
	}
}

// TransmitData sends payloadBytes over the network model, charging
// the battery for the transmission regardless of whether the network
// ultimately delivers the payload — energy is spent attempting the
// send, not on success.
func (n *Node) TransmitData(r *rng.Source, payloadBytes int) (sentBytes int, success bool) {
	n.cpu.ScheduleTask("transmission")

	bandwidthBytesPerSec := n.cfg.Network.MaxBandwidthKbps * 1000 / 8
	txDurationS := 0.0
	if bandwidthBytesPerSec > 0 {
		txDurationS = float64(payloadBytes) / bandwidthBytesPerSec
	}
	n.battery.Consume("transmission", txDurationS)

	sent, ok := n.network.Transmit(r, payloadBytes)
	if ok {
		n.memory.FreeAllSensorBuffers()
	}
	return sent, ok
}

// Active reports whether the node is still sensing and has charge
// remaining.
func (n *Node) Active() bool {
	return n.active && !n.battery.Depleted()
}

// Battery, Memory, CPU, Network, and Sensors expose the leaf models
// for callers that need direct access beyond the aggregated State
// snapshot (the simulator reads Memory().IsLeakDetected).
func (n *Node) Battery() *BatteryModel     { return n.battery }
func (n *Node) Memory() *MemoryModel       { return n.memory }
func (n *Node) CPU() *CPUModel             { return n.cpu }
func (n *Node) Network() *NetworkModel     { return n.network }
func (n *Node) Sensors() *SensorGenerator  { return n.sensors }

func (n *Node) state(newReading *model.SensorReading) model.DeviceState {
	last := n.lastReading
	if newReading != nil {
		last = newReading
	}
	return model.DeviceState{
		CPU:      n.cpu.State(),
		Memory:   n.memory.State(),
		Battery:  n.battery.State(),
		Network:  n.network.State(),
		Sensors:  n.sensors.State(last),
		IsActive: n.Active(),
		Tick:     n.tickCount,
	}
}
