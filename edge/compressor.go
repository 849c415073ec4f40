package edge

import "encoding/json"

// Compressor estimates the transmitted size of a payload under a
// fixed compression ratio. It does not actually compress bytes — the
// simulator only needs the size effect on downstream bandwidth
// accounting.
type Compressor struct {
	enabled bool
	ratio   float64
}

// NewCompressor builds a compressor from the edge config block's
// compression settings.
func NewCompressor(enabled bool, ratio float64) *Compressor {
	return &Compressor{enabled: enabled, ratio: ratio}
}

// Estimate returns the estimated byte size of payload after
// compression, or its canonical JSON size unchanged if compression is
// disabled.
func (c *Compressor) Estimate(payload interface{}) (originalBytes, estimatedBytes int) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, 0
	}
	original := len(data)
	if !c.enabled {
		return original, original
	}
	return original, int(float64(original) * c.ratio)
}
