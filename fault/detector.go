// Package fault implements threshold- and duration-based rule
// checking over device and twin state, producing alerts for the
// orchestrator to deduplicate and the report layer to render.
package fault

import (
	"fmt"

	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
)

const (
	iconCritical = "\U0001F534" // red circle
	iconWarning  = "\U0001F7E1" // yellow circle
	iconFault    = "⚠"     // warning sign
)

// Detector evaluates the fault rule table each tick. It holds the
// hysteresis counters CPU rules need and the first-occurrence log for
// one-shot faults; it does not deduplicate alerts across ticks — that
// is the orchestrator's job.
type Detector struct {
	cfg config.FaultDetection

	cpuCriticalTicks int
	cpuWarningTicks  int
	faultsDetected   map[string]bool
	faultOrder       []string
	faultFirstTick   map[string]int64
}

// NewDetector builds a detector from the fault_detection config
// block.
func NewDetector(cfg config.FaultDetection) *Detector {
	return &Detector{
		cfg:            cfg,
		faultsDetected: make(map[string]bool),
		faultFirstTick: make(map[string]int64),
	}
}

// markFault records the first occurrence of a one-shot fault type,
// returning false if it has already fired this run.
func (d *Detector) markFault(tick int64, key string) bool {
	if d.faultsDetected[key] {
		return false
	}
	d.faultsDetected[key] = true
	d.faultOrder = append(d.faultOrder, key)
	d.faultFirstTick[key] = tick
	return true
}

// Check runs every rule against the current device and twin state and
// returns any alerts raised this tick. expectedIntervalS is the sync
// strategy's nominal interval, used by the comm-timeout rule to scale
// CommunicationTimeoutMultiplier.
func (d *Detector) Check(tick int64, timeStepS float64, device model.DeviceState, twinState model.TwinState, expectedIntervalS int) []model.Alert {
	var alerts []model.Alert

	alerts = append(alerts, d.checkCPU(tick, timeStepS, device.CPU)...)
	alerts = append(alerts, d.checkMemory(tick, device.Memory)...)
	alerts = append(alerts, d.checkBattery(tick, device.Battery)...)
	alerts = append(alerts, d.checkNetwork(tick, device.Network)...)
	alerts = append(alerts, d.checkDrift(tick, twinState)...)
	alerts = append(alerts, d.checkComms(tick, twinState.LastSyncTick, expectedIntervalS)...)
	alerts = append(alerts, d.checkSensors(tick, device.Sensors)...)

	return alerts
}

func (d *Detector) checkCPU(tick int64, timeStepS float64, cpu model.CPUState) []model.Alert {
	var alerts []model.Alert

	if cpu.Utilization >= d.cfg.CPUCriticalThreshold {
		d.cpuCriticalTicks++
	} else {
		d.cpuCriticalTicks = 0
	}
	if cpu.Utilization >= d.cfg.CPUWarningThreshold {
		d.cpuWarningTicks++
	} else {
		d.cpuWarningTicks = 0
	}

	if float64(d.cpuCriticalTicks)*timeStepS >= float64(d.cfg.CPUCriticalDurationS) {
		alerts = append(alerts, d.alert(tick, model.SeverityCritical, "cpu",
			fmt.Sprintf("CPU utilization %.0f%% sustained for %ds", cpu.Utilization*100, d.cfg.CPUCriticalDurationS), iconCritical))
	} else if float64(d.cpuWarningTicks)*timeStepS >= float64(d.cfg.CPUWarningDurationS) {
		alerts = append(alerts, d.alert(tick, model.SeverityWarning, "cpu",
			fmt.Sprintf("CPU utilization %.0f%% sustained for %ds", cpu.Utilization*100, d.cfg.CPUWarningDurationS), iconWarning))
	}
	return alerts
}

func (d *Detector) checkMemory(tick int64, mem model.MemoryState) []model.Alert {
	var alerts []model.Alert

	if mem.OOMEvents > 0 && d.markFault(tick, "memory_oom") {
		alerts = append(alerts, d.alert(tick, model.SeverityFault, "memory", "out-of-memory condition reached", iconFault))
	}
	if mem.Utilization >= d.cfg.MemoryCriticalThreshold {
		alerts = append(alerts, d.alert(tick, model.SeverityCritical, "memory",
			fmt.Sprintf("memory utilization %.0f%%", mem.Utilization*100), iconCritical))
	} else if mem.Utilization >= d.cfg.MemoryWarningThreshold {
		alerts = append(alerts, d.alert(tick, model.SeverityWarning, "memory",
			fmt.Sprintf("memory utilization %.0f%%", mem.Utilization*100), iconWarning))
	}
	return alerts
}

// memoryLeakThresholdKB is the fault-table trigger: any accumulated
// leak past this amount is a fault on its own, regardless of how the
// trailing-window trend looks.
const memoryLeakThresholdKB = 1.0

// CheckLeak flags a one-shot memory-leak fault. It fires on either of
// two independent rules: the leaked-bytes threshold (leakedKB > 1.0),
// or the memory model's trailing-window IsLeakDetected trend,
// evaluated by the orchestrator since the detector has no access to
// the leak window here.
func (d *Detector) CheckLeak(tick int64, leakedKB float64, trendDetected bool) []model.Alert {
	if (leakedKB <= memoryLeakThresholdKB && !trendDetected) || !d.markFault(tick, "memory_leak") {
		return nil
	}
	return []model.Alert{d.alert(tick, model.SeverityFault, "memory", "sustained upward memory trend detected", iconFault)}
}

func (d *Detector) checkBattery(tick int64, batt model.BatteryState) []model.Alert {
	var alerts []model.Alert
	if batt.Percentage <= d.cfg.BatteryCriticalThreshold {
		alerts = append(alerts, d.alert(tick, model.SeverityCritical, "battery",
			fmt.Sprintf("battery at %.0f%%", batt.Percentage*100), iconCritical))
	} else if batt.Percentage <= d.cfg.BatteryWarningThreshold {
		alerts = append(alerts, d.alert(tick, model.SeverityWarning, "battery",
			fmt.Sprintf("battery at %.0f%%", batt.Percentage*100), iconWarning))
	}
	if batt.Depleted {
		alerts = append(alerts, d.alert(tick, model.SeverityCritical, "battery", "battery depleted", iconCritical))
	}
	return alerts
}

func (d *Detector) checkNetwork(tick int64, net model.NetworkState) []model.Alert {
	var alerts []model.Alert
	if net.BandwidthUtilization >= d.cfg.BandwidthWarningThreshold {
		alerts = append(alerts, d.alert(tick, model.SeverityWarning, "network",
			fmt.Sprintf("bandwidth utilization %.0f%%", net.BandwidthUtilization*100), iconWarning))
	}
	if net.PacketLossRate >= d.cfg.PacketLossCriticalThreshold {
		alerts = append(alerts, d.alert(tick, model.SeverityCritical, "network",
			fmt.Sprintf("packet loss rate %.1f%%", net.PacketLossRate*100), iconCritical))
	}
	return alerts
}

func (d *Detector) checkDrift(tick int64, twinState model.TwinState) []model.Alert {
	if twinState.CurrentDrift >= d.cfg.StateDriftWarningThreshold {
		return []model.Alert{d.alert(tick, model.SeverityWarning, "twin",
			fmt.Sprintf("state drift %.2f since last sync", twinState.CurrentDrift), iconWarning)}
	}
	return nil
}

// checkComms flags a one-shot fault once the time since the last
// successful sync exceeds CommunicationTimeoutMultiplier times the
// sync strategy's expected interval. It never fires before the first
// successful sync (lastSyncTick == 0).
func (d *Detector) checkComms(tick int64, lastSyncTick int64, expectedIntervalS int) []model.Alert {
	if d.faultsDetected["comm_timeout"] || lastSyncTick <= 0 {
		return nil
	}
	elapsed := tick - lastSyncTick
	if float64(elapsed) <= float64(expectedIntervalS)*d.cfg.CommunicationTimeoutMultiplier {
		return nil
	}
	d.markFault(tick, "comm_timeout")
	return []model.Alert{d.alert(tick, model.SeverityFault, "communication", "communication timeout: no successful sync", iconFault)}
}

func (d *Detector) checkSensors(tick int64, sensors model.SensorSummary) []model.Alert {
	if sensors.LastReading == nil {
		return nil
	}
	var alerts []model.Alert
	for _, name := range sensors.LastReading.Anomalies {
		if !d.markFault(tick, "sensor_"+name) {
			continue
		}
		alerts = append(alerts, d.alert(tick, model.SeverityFault, "sensor_"+name,
			fmt.Sprintf("%s reading anomaly detected", name), iconFault))
	}
	return alerts
}

func (d *Detector) alert(tick int64, severity, component, message, icon string) model.Alert {
	return model.Alert{
		Tick:      tick,
		Time:      tickToTime(tick),
		Severity:  severity,
		Component: component,
		Message:   message,
		Icon:      icon,
	}
}

// tickToTime renders a tick count (assumed one-second ticks) as
// HH:MM:SS.
func tickToTime(tick int64) string {
	if tick < 0 {
		tick = 0
	}
	h := tick / 3600
	m := (tick % 3600) / 60
	s := tick % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FaultsDetected returns the fault keys raised so far, in the order
// they first occurred.
func (d *Detector) FaultsDetected() []string {
	out := make([]string, len(d.faultOrder))
	copy(out, d.faultOrder)
	return out
}

// FaultFirstTick returns the tick at which key was first observed, and
// whether it has occurred at all.
func (d *Detector) FaultFirstTick(key string) (int64, bool) {
	tick, ok := d.faultFirstTick[key]
	return tick, ok
}
