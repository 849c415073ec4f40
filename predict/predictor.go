// Package predict fits a linear trend to recent battery and memory
// history to estimate time-to-exhaustion and a maintenance
// recommendation.
package predict

import (
	"gonum.org/v1/gonum/stat"

	"github.com/nodetwin/twinsim/internal/ring"
)

const sentinelHours = 9999.0

// minSamples is the smallest trailing history ETA predictions require;
// below it both predictors report an infinite (sentinel) ETA.
const minSamples = 60

type sample struct {
	tick  float64
	value float64
}

// Predictor holds the trailing regression windows for battery
// percentage and memory utilization.
type Predictor struct {
	window int

	batteryHistory *ring.Buffer[sample]
	memoryHistory  *ring.Buffer[sample]
}

// New builds a predictor whose ring buffers are capped at twice the
// prediction window, so a fit always has access to the full window
// even immediately after the oldest sample rolls off.
func New(predictionWindow int) *Predictor {
	return &Predictor{
		window:         predictionWindow,
		batteryHistory: ring.NewBuffer[sample](predictionWindow * 2),
		memoryHistory:  ring.NewBuffer[sample](predictionWindow * 2),
	}
}

// Observe records one sample of battery percentage and memory
// utilization at the given tick.
func (p *Predictor) Observe(tick int64, batteryPct, memoryUtil float64) {
	p.batteryHistory.Push(sample{tick: float64(tick), value: batteryPct})
	p.memoryHistory.Push(sample{tick: float64(tick), value: memoryUtil})
}

// Estimate is a single resource's time-to-exhaustion projection.
type Estimate struct {
	HoursRemaining float64
	Confidence     string
	Slope          float64
	R2             float64
	HasEstimate    bool
}

// BatteryETA fits a line to the trailing window of battery-percentage
// samples and projects the hours until it reaches zero. A
// non-negative slope (not draining) yields no estimate.
func (p *Predictor) BatteryETA(timeStepS float64) Estimate {
	ticks, values := tail(p.batteryHistory, p.window)
	if len(ticks) < minSamples {
		return Estimate{HoursRemaining: sentinelHours}
	}
	intercept, slope := stat.LinearRegression(ticks, values, nil, false)
	if slope >= 0 {
		return Estimate{HoursRemaining: sentinelHours}
	}
	r2 := rSquared(ticks, values, intercept, slope)

	lastTick := ticks[len(ticks)-1]
	lastValue := intercept + slope*lastTick
	ticksToZero := -lastValue / slope
	hours := ticksToZero * timeStepS / 3600
	// A crossing already in the past (hours < 0) is not "nothing to
	// worry about" — it means exhaustion is now, so clamp to 0 rather
	// than the infinite sentinel.
	if hours < 0 {
		hours = 0
	}
	if hours > sentinelHours {
		return Estimate{HoursRemaining: sentinelHours}
	}

	confidence := "low"
	switch {
	case r2 >= 0.95:
		confidence = "high"
	case r2 >= 0.80:
		confidence = "medium"
	}

	return Estimate{HoursRemaining: hours, Confidence: confidence, Slope: slope, R2: r2, HasEstimate: true}
}

// MemoryETA fits a line to the trailing window of memory-utilization
// samples and projects the hours until it reaches 1.0 (full). A
// non-positive slope (not growing) yields no estimate.
func (p *Predictor) MemoryETA(timeStepS float64) Estimate {
	ticks, values := tail(p.memoryHistory, p.window)
	if len(ticks) < minSamples {
		return Estimate{HoursRemaining: sentinelHours}
	}
	intercept, slope := stat.LinearRegression(ticks, values, nil, false)
	if slope <= 0 {
		return Estimate{HoursRemaining: sentinelHours}
	}
	r2 := rSquared(ticks, values, intercept, slope)

	lastTick := ticks[len(ticks)-1]
	lastValue := intercept + slope*lastTick
	ticksToFull := (1.0 - lastValue) / slope
	hours := ticksToFull * timeStepS / 3600
	// A crossing already in the past (hours < 0) is not "nothing to
	// worry about" — it means exhaustion is now, so clamp to 0 rather
	// than the infinite sentinel.
	if hours < 0 {
		hours = 0
	}
	if hours > sentinelHours {
		return Estimate{HoursRemaining: sentinelHours}
	}

	confidence := "low"
	switch {
	case r2 >= 0.90:
		confidence = "high"
	case r2 >= 0.70:
		confidence = "medium"
	}

	return Estimate{HoursRemaining: hours, Confidence: confidence, Slope: slope, R2: r2, HasEstimate: true}
}

// rSquared wraps stat.RSquared, treating a zero total sum of squares
// (every sample equal) as R2 = 0 rather than gonum's NaN.
func rSquared(ticks, values []float64, intercept, slope float64) float64 {
	mean := stat.Mean(values, nil)
	ssTot := 0.0
	for _, v := range values {
		d := v - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return stat.RSquared(ticks, values, nil, intercept, slope)
}

// Recommendation summarizes the earliest maintenance action implied
// by the current estimates.
type Recommendation struct {
	EarliestHours   float64
	RecommendAction bool
	ActionAtHours   float64
}

// Recommend applies a 0.7x safety margin to the earliest finite ETA
// across battery and memory.
func (p *Predictor) Recommend(battery, memory Estimate) Recommendation {
	earliest := sentinelHours
	found := false
	for _, e := range []Estimate{battery, memory} {
		if e.HasEstimate && e.HoursRemaining < earliest {
			earliest = e.HoursRemaining
			found = true
		}
	}
	if !found {
		return Recommendation{EarliestHours: sentinelHours}
	}
	return Recommendation{
		EarliestHours:   earliest,
		RecommendAction: true,
		ActionAtHours:   earliest * 0.7,
	}
}

func tail(buf *ring.Buffer[sample], window int) ([]float64, []float64) {
	samples := buf.Tail(window)
	ticks := make([]float64, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		ticks[i] = s.tick
		values[i] = s.value
	}
	return ticks, values
}
