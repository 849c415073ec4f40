// Package sim owns every component — device, edge pipeline, sync
// engine, twin, fault detector, predictor — and drives them through
// the fixed-timestep tick loop.
package sim

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/device"
	"github.com/nodetwin/twinsim/edge"
	"github.com/nodetwin/twinsim/fault"
	"github.com/nodetwin/twinsim/model"
	"github.com/nodetwin/twinsim/predict"
	"github.com/nodetwin/twinsim/rng"
	"github.com/nodetwin/twinsim/sync"
	"github.com/nodetwin/twinsim/twin"
)

const (
	predictionWindow   = 300
	predictorEveryTick = 10
	alertDedupTicks    = 60
)

// Frame is one tick's worth of reportable state, handed to the report
// layer.
type Frame struct {
	Tick      int64
	Time      string
	Device    model.DeviceState
	Twin      model.TwinState
	SyncStats sync.Stats
	EdgeStats edge.Stats
	Alerts    []model.Alert
	SyncEvent bool
	Battery   predict.Estimate
	Memory    predict.Estimate
	Recommend predict.Recommendation
	Active    bool
}

// Simulator owns one instance of every component and runs the tick
// loop in the exact order the components must observe each other's
// output.
type Simulator struct {
	RunID string

	cfg           config.Config
	rng           *rng.Source
	node          *device.Node
	edgeProc      *edge.Processor
	syncEngine    *sync.Engine
	twin          *twin.Twin
	detector      *fault.Detector
	predictor     *predict.Predictor

	tick                    int64
	consecutiveDroppedTicks int64
	alertLastSeen           map[string]int64
	criticalAlerts          int
	warningAlerts           int
}

// New builds a simulator from cfg and the sync strategy name selected
// for this run.
func New(cfg config.Config, strategyName string) (*Simulator, error) {
	syncEngine, err := sync.NewEngine(strategyName, cfg.Sync)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		RunID:         uuid.NewString(),
		cfg:           cfg,
		rng:           rng.New(cfg.Simulation.RandomSeed),
		node:          device.NewNode(cfg.Device, cfg.Sensors, cfg.Simulation.SamplingRateSeconds),
		edgeProc:      edge.NewProcessor(cfg.Edge),
		syncEngine:    syncEngine,
		twin:          twin.New(),
		detector:      fault.NewDetector(cfg.FaultDetection),
		predictor:     predict.New(predictionWindow),
		alertLastSeen: make(map[string]int64),
	}, nil
}

// Run drives the tick loop until the configured duration elapses, the
// device goes inactive, or ctx is cancelled. emit is called once per
// tick with the frame built for that tick; a nil emit is valid when
// only the final stats matter.
func (s *Simulator) Run(ctx context.Context, emit func(Frame)) error {
	totalTicks := int64(s.cfg.Simulation.DurationHours * 3600 / s.cfg.Simulation.TimeStepSeconds)
	timeStepS := s.cfg.Simulation.TimeStepSeconds

	for s.tick = 0; s.tick < totalTicks; s.tick++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame := s.step(timeStepS)
		if emit != nil {
			emit(frame)
		}
		if !frame.Active {
			break
		}
	}
	return nil
}

// Step exposes one tick at a time, so the live view can drive the loop
// itself. The boolean is false once the device goes inactive or the
// tick just run was the last of the configured duration; a call after
// that returns an empty Frame and false.
func (s *Simulator) Step() (Frame, bool) {
	totalTicks := int64(s.cfg.Simulation.DurationHours * 3600 / s.cfg.Simulation.TimeStepSeconds)
	if s.tick >= totalTicks {
		return Frame{}, false
	}
	frame := s.step(s.cfg.Simulation.TimeStepSeconds)
	s.tick++
	return frame, frame.Active && s.tick < totalTicks
}

func (s *Simulator) step(timeStepS float64) Frame {
	result := s.node.Tick(s.rng, timeStepS)
	deviceState := result.State

	if result.NewReading != nil && s.cfg.Edge.Enabled {
		s.edgeProc.Process(*result.NewReading, deviceState)
	}

	batteryPct := deviceState.Battery.Percentage
	syncEvent := false
	syncSucceeded := false
	if s.syncEngine.ShouldSync(s.tick, deviceState, batteryPct) {
		syncEvent = true
		payload := s.syncEngine.PreparePayload(deviceState)
		sent, ok := s.node.TransmitData(s.rng, payload.SizeBytes)
		syncSucceeded = ok && sent > 0
		s.syncEngine.RecordSync(s.tick, payload.SizeBytes, syncSucceeded)
		if syncSucceeded {
			s.twin.ReceiveSync(s.tick, deviceState)
			s.consecutiveDroppedTicks = 0
		} else {
			s.twin.RecordSyncFailure()
			s.consecutiveDroppedTicks++
		}
	} else {
		s.twin.Tick(s.tick)
	}

	twinState := s.twin.State()

	var alerts []model.Alert
	alerts = append(alerts, s.detector.Check(s.tick, timeStepS, deviceState, twinState, s.syncEngine.ExpectedIntervalS())...)
	alerts = append(alerts, s.detector.CheckLeak(s.tick, deviceState.Memory.LeakedKB,
		s.node.Memory().IsLeakDetected(s.cfg.FaultDetection.MemoryLeakDetectionWindowS))...)
	alerts = append(alerts, s.batteryWarningAlerts(result.BatteryWarnings)...)
	alerts = s.dedupAlerts(alerts)
	s.tallyAlerts(alerts)

	var battEst, memEst predict.Estimate
	var recommend predict.Recommendation
	if s.tick%predictorEveryTick == 0 {
		s.predictor.Observe(s.tick, batteryPct, deviceState.Memory.Utilization)
		battEst = s.predictor.BatteryETA(timeStepS)
		memEst = s.predictor.MemoryETA(timeStepS)
		recommend = s.predictor.Recommend(battEst, memEst)
	}

	return Frame{
		Tick:      s.tick,
		Time:      formatTickTime(s.tick),
		Device:    deviceState,
		Twin:      twinState,
		SyncStats: s.syncEngine.GetStats(),
		EdgeStats: s.edgeProc.Stats(),
		Alerts:    alerts,
		SyncEvent: syncEvent,
		Battery:   battEst,
		Memory:    memEst,
		Recommend: recommend,
		Active:    result.State.IsActive,
	}
}

// batteryWarningAlerts turns newly-crossed battery warning thresholds
// (the device's own warning_thresholds list, distinct from the fault
// detector's battery_warning_threshold rule) into WARNING alerts.
func (s *Simulator) batteryWarningAlerts(thresholds []float64) []model.Alert {
	alerts := make([]model.Alert, 0, len(thresholds))
	for _, th := range thresholds {
		alerts = append(alerts, model.Alert{
			Tick:      s.tick,
			Time:      formatTickTime(s.tick),
			Severity:  model.SeverityWarning,
			Component: "battery",
			Message:   fmt.Sprintf("battery crossed %.0f%% threshold", th*100),
			Icon:      "\U0001F7E1",
		})
	}
	return alerts
}

func (s *Simulator) tallyAlerts(alerts []model.Alert) {
	for _, a := range alerts {
		switch a.Severity {
		case model.SeverityCritical:
			s.criticalAlerts++
		case model.SeverityWarning:
			s.warningAlerts++
		}
	}
}

func formatTickTime(tick int64) string {
	if tick < 0 {
		tick = 0
	}
	h := tick / 3600
	m := (tick % 3600) / 60
	sec := tick % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// dedupAlerts suppresses repeats of the same (component, severity)
// pair within alertDedupTicks ticks — deliberately kept out of the
// fault detector, which only evaluates rules, so the detector stays a
// pure function of its inputs.
func (s *Simulator) dedupAlerts(alerts []model.Alert) []model.Alert {
	var out []model.Alert
	for _, a := range alerts {
		key := a.Component + "_" + a.Severity
		if last, seen := s.alertLastSeen[key]; seen && a.Tick-last < alertDedupTicks {
			continue
		}
		s.alertLastSeen[key] = a.Tick
		out = append(out, a)
	}
	return out
}

// Node exposes the underlying device for components (report) that
// need direct read access beyond a Frame's snapshot.
func (s *Simulator) Node() *device.Node { return s.node }

// FaultsDetected returns the first-occurrence fault types observed so
// far, in detection order.
func (s *Simulator) FaultsDetected() []string { return s.detector.FaultsDetected() }

// CriticalAlerts returns the running count of CRITICAL-severity alerts
// minted after deduplication.
func (s *Simulator) CriticalAlerts() int { return s.criticalAlerts }

// WarningAlerts returns the running count of WARNING-severity alerts
// minted after deduplication.
func (s *Simulator) WarningAlerts() int { return s.warningAlerts }
