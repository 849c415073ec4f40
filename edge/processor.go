package edge

import (
	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
)

// Processor wires the filter, priority queue, and compressor into the
// filter -> prioritize -> compress pipeline run against every new
// sensor reading.
type Processor struct {
	enabled    bool
	filter     *Filter
	compressor *Compressor
	queue      *PriorityQueue

	readingsProcessed   int
	criticalFastTracked int
	originalBytesTotal  int
	reducedBytesTotal   int
}

// NewProcessor builds a processor from the edge config block.
func NewProcessor(cfg config.Edge) *Processor {
	return &Processor{
		enabled:    cfg.Enabled,
		filter:     NewFilter(cfg.FilterWindowSize),
		compressor: NewCompressor(cfg.CompressionEnabled, cfg.CompressionRatio),
		queue:      NewPriorityQueue(),
	}
}

// Processed is a filtered reading ready for the sync layer, along with
// whether it was fast-tracked as critical.
type Processed struct {
	Reading  model.SensorReading
	Critical bool
}

// Process smooths the reading, classifies it by priority, queues it,
// and adds its compression estimate to the byte totals. A reading is
// critical when it carries anomalies or when deviceState shows CPU or
// memory utilization above 0.95 or battery below 0.05. IsOutlier is not
// applied here.
func (p *Processor) Process(reading model.SensorReading, deviceState model.DeviceState) Processed {
	if !p.enabled {
		return Processed{Reading: reading}
	}

	smoothed := reading
	smoothed.Temperature = p.filter.Smooth("temperature", reading.Temperature)
	smoothed.Humidity = p.filter.Smooth("humidity", reading.Humidity)
	smoothed.Light = p.filter.Smooth("light", reading.Light)

	critical := len(reading.Anomalies) > 0 ||
		deviceState.CPU.Utilization > 0.95 ||
		deviceState.Memory.Utilization > 0.95 ||
		deviceState.Battery.Percentage < 0.05

	p.queue.Enqueue(smoothed, critical)
	p.readingsProcessed++
	if critical {
		p.criticalFastTracked++
	}

	original, reduced := p.compressor.Estimate(smoothed)
	p.originalBytesTotal += original
	p.reducedBytesTotal += reduced

	return Processed{Reading: smoothed, Critical: critical}
}

// Stats reports data-reduction and prioritization summary statistics.
type Stats struct {
	ReadingsProcessed   int     `json:"readings_processed"`
	CriticalFastTracked int     `json:"critical_fast_tracked"`
	DataReductionRatio  float64 `json:"data_reduction_ratio"`
	BytesSaved          int     `json:"bytes_saved"`
}

// Stats returns the processor's running summary.
func (p *Processor) Stats() Stats {
	ratio := 0.0
	if p.originalBytesTotal > 0 {
		ratio = 1 - float64(p.reducedBytesTotal)/float64(p.originalBytesTotal)
	}
	return Stats{
		ReadingsProcessed:   p.readingsProcessed,
		CriticalFastTracked: p.criticalFastTracked,
		DataReductionRatio:  ratio,
		BytesSaved:          p.originalBytesTotal - p.reducedBytesTotal,
	}
}
