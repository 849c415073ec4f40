package device

import (
	"math"

	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
	"github.com/nodetwin/twinsim/rng"
)

// SensorGenerator produces synthetic temperature, humidity, and light
// readings with a diurnal drift component and rare anomaly spikes.
type SensorGenerator struct {
	cfg config.Sensors

	totalReadings int
	anomalyCount  int
	anomalyLog    []string
}

// NewSensorGenerator builds a generator from the sensors config block.
func NewSensorGenerator(cfg config.Sensors) *SensorGenerator {
	return &SensorGenerator{cfg: cfg}
}

// Generate produces one reading for the given tick, in seconds since
// simulation start.
func (g *SensorGenerator) Generate(r *rng.Source, tickSeconds float64) model.SensorReading {
	var anomalies []string

	temp, tempAnomaly := g.temperature(r, tickSeconds)
	if tempAnomaly {
		anomalies = append(anomalies, "temperature")
	}
	hum, humAnomaly := g.humidity(r)
	if humAnomaly {
		anomalies = append(anomalies, "humidity")
	}
	light := g.light(r, tickSeconds)

	g.totalReadings++
	if len(anomalies) > 0 {
		g.anomalyCount++
		for _, a := range anomalies {
			g.pushAnomaly(a)
		}
	}

	return model.SensorReading{
		Temperature: temp,
		Humidity:    hum,
		Light:       light,
		Anomalies:   anomalies,
	}
}

func (g *SensorGenerator) pushAnomaly(kind string) {
	g.anomalyLog = append(g.anomalyLog, kind)
	if over := len(g.anomalyLog) - 10; over > 0 {
		g.anomalyLog = g.anomalyLog[over:]
	}
}

// temperature follows base + diurnal drift + noise, with a rare spike.
func (g *SensorGenerator) temperature(r *rng.Source, tickSeconds float64) (float64, bool) {
	cfg := g.cfg.Temperature
	drift := 2.0 * math.Sin(2*math.Pi*(tickSeconds/3600)/24)
	value := cfg.BaseValue + drift
	if r.Bernoulli(cfg.AnomalyProbability) {
		spike := r.Uniform(cfg.AnomalySpikeRange[0], cfg.AnomalySpikeRange[1]) * r.Sign()
		return value + spike, true
	}
	return value + r.Gaussian(0, cfg.NoiseStdDev), false
}

// humidity is base + noise with a rare spike, clamped to [0, 100].
func (g *SensorGenerator) humidity(r *rng.Source) (float64, bool) {
	cfg := g.cfg.Humidity
	value := cfg.BaseValue
	anomaly := false
	if r.Bernoulli(cfg.AnomalyProbability) {
		spike := r.Uniform(cfg.AnomalySpikeRange[0], cfg.AnomalySpikeRange[1]) * r.Sign()
		value += spike
		anomaly = true
	} else {
		value += r.Gaussian(0, cfg.NoiseStdDev)
	}
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return value, anomaly
}

// light follows a sinusoidal day/night cycle; it is never flagged as
// anomalous.
func (g *SensorGenerator) light(r *rng.Source, tickSeconds float64) float64 {
	cfg := g.cfg.Light
	hours := tickSeconds / 3600
	cycle := cfg.CyclePeriodHours
	if cycle <= 0 {
		cycle = 24
	}
	phase := math.Mod(hours, cycle) / cycle * 2 * math.Pi
	sineVal := math.Sin(phase - math.Pi/2)
	normalized := (sineVal + 1) / 2
	base := cfg.NightValue + (cfg.DayValue-cfg.NightValue)*normalized
	value := base + r.Gaussian(0, cfg.NoiseStdDev)
	if value < 0 {
		value = 0
	}
	return value
}

// State returns the last reading and the reading/anomaly counters for
// inclusion in a device snapshot. The rolling anomaly log is not part
// of it; AnomalyLog returns that.
func (g *SensorGenerator) State(last *model.SensorReading) model.SensorSummary {
	return model.SensorSummary{
		LastReading:   last,
		TotalReadings: g.totalReadings,
		AnomalyCount:  g.anomalyCount,
	}
}

// AnomalyLog returns the last up-to-10 anomaly kinds recorded, oldest
// first.
func (g *SensorGenerator) AnomalyLog() []string {
	out := make([]string, len(g.anomalyLog))
	copy(out, g.anomalyLog)
	return out
}
