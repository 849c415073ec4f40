package device

import (
	"testing"

	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/rng"
)

func testSensorsConfig() config.Sensors {
	return config.Sensors{
		Temperature: config.SensorChannel{
			BaseValue: 22, NoiseStdDev: 0.5,
			AnomalyProbability: 0, AnomalySpikeRange: [2]float64{5, 15},
		},
		Humidity: config.SensorChannel{
			BaseValue: 45, NoiseStdDev: 2,
			AnomalyProbability: 0, AnomalySpikeRange: [2]float64{20, 40},
		},
		Light: config.SensorChannel{
			NoiseStdDev: 0, DayValue: 1000, NightValue: 0, CyclePeriodHours: 24,
		},
	}
}

func TestSensorGenerateNoAnomaliesWhenProbabilityZero(t *testing.T) {
	g := NewSensorGenerator(testSensorsConfig())
	r := rng.New(1)
	for i := 0; i < 20; i++ {
		reading := g.Generate(r, float64(i)*3600)
		if len(reading.Anomalies) != 0 {
			t.Fatalf("anomaly_probability=0 should never flag an anomaly, got %v", reading.Anomalies)
		}
	}
}

func TestSensorHumidityClampedToRange(t *testing.T) {
	cfg := testSensorsConfig()
	cfg.Humidity.BaseValue = -50
	cfg.Humidity.NoiseStdDev = 0
	g := NewSensorGenerator(cfg)
	r := rng.New(1)
	reading := g.Generate(r, 0)
	if reading.Humidity < 0 {
		t.Errorf("humidity = %v, want clamped to >= 0", reading.Humidity)
	}

	cfg.Humidity.BaseValue = 500
	g = NewSensorGenerator(cfg)
	reading = g.Generate(r, 0)
	if reading.Humidity > 100 {
		t.Errorf("humidity = %v, want clamped to <= 100", reading.Humidity)
	}
}

func TestSensorLightNeverAnomalous(t *testing.T) {
	cfg := testSensorsConfig()
	cfg.Temperature.AnomalyProbability = 1
	cfg.Humidity.AnomalyProbability = 1
	g := NewSensorGenerator(cfg)
	r := rng.New(1)
	reading := g.Generate(r, 0)
	for _, a := range reading.Anomalies {
		if a == "light" {
			t.Error("light sensor should never be flagged as anomalous")
		}
	}
}

func TestSensorLightNeverNegative(t *testing.T) {
	cfg := testSensorsConfig()
	cfg.Light.NoiseStdDev = 1000
	g := NewSensorGenerator(cfg)
	r := rng.New(1)
	for i := 0; i < 50; i++ {
		reading := g.Generate(r, float64(i)*3600)
		if reading.Light < 0 {
			t.Fatalf("light = %v, want clamped to >= 0", reading.Light)
		}
	}
}

func TestSensorAnomalyLogCapsAtTen(t *testing.T) {
	cfg := testSensorsConfig()
	cfg.Temperature.AnomalyProbability = 1
	g := NewSensorGenerator(cfg)
	r := rng.New(1)
	for i := 0; i < 20; i++ {
		g.Generate(r, float64(i)*3600)
	}
	if len(g.AnomalyLog()) != 10 {
		t.Errorf("AnomalyLog() len = %d, want capped at 10", len(g.AnomalyLog()))
	}
}
