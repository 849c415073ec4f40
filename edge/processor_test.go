package edge

import (
	"testing"

	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
)

func testEdgeConfig() config.Edge {
	return config.Edge{
		Enabled:            true,
		CompressionEnabled: true,
		CompressionRatio:   0.6,
		FilterWindowSize:   5,
	}
}

func TestProcessorDisabledPassesThrough(t *testing.T) {
	cfg := testEdgeConfig()
	cfg.Enabled = false
	p := NewProcessor(cfg)

	reading := model.SensorReading{Temperature: 22.5}
	out := p.Process(reading, model.DeviceState{})
	if out.Reading.Temperature != reading.Temperature {
		t.Errorf("disabled processor should pass the reading through unchanged")
	}
	if out.Critical {
		t.Error("disabled processor should never mark critical")
	}
}

func TestProcessorFlagsAnomalyAsCritical(t *testing.T) {
	p := NewProcessor(testEdgeConfig())
	reading := model.SensorReading{Temperature: 40, Anomalies: []string{"temperature"}}
	out := p.Process(reading, model.DeviceState{})
	if !out.Critical {
		t.Error("a reading with anomalies should be fast-tracked as critical")
	}
}

func TestProcessorFlagsResourcePressureAsCritical(t *testing.T) {
	p := NewProcessor(testEdgeConfig())
	reading := model.SensorReading{Temperature: 22}

	stressed := model.DeviceState{}
	stressed.CPU.Utilization = 0.99
	out := p.Process(reading, stressed)
	if !out.Critical {
		t.Error("CPU utilization above 0.95 should be fast-tracked as critical")
	}

	stressed = model.DeviceState{}
	stressed.Battery.Percentage = 0.01
	out = p.Process(reading, stressed)
	if !out.Critical {
		t.Error("battery percentage below 0.05 should be fast-tracked as critical")
	}
}

func TestProcessorStatsAccumulate(t *testing.T) {
	p := NewProcessor(testEdgeConfig())
	for i := 0; i < 3; i++ {
		p.Process(model.SensorReading{Temperature: 22}, model.DeviceState{})
	}
	stats := p.Stats()
	if stats.ReadingsProcessed != 3 {
		t.Errorf("ReadingsProcessed = %d, want 3", stats.ReadingsProcessed)
	}
	if stats.DataReductionRatio <= 0 {
		t.Errorf("DataReductionRatio = %v, want > 0 with compression enabled", stats.DataReductionRatio)
	}
}
