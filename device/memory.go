package device

import (
	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
)

// MemoryModel tracks RAM usage from a base footprint, per-reading
// sensor buffers, and an optional slow leak.
type MemoryModel struct {
	totalRAMKB          float64
	baseUsageKB         float64
	perReadingBufferKB  float64
	maxBufferReadings   int
	leakEnabled         bool
	leakRateKBPerMinute float64

	bufferCount int
	leakedKB    float64
	usedKB      float64
	peakUsageKB float64
	oomEvents   int

	// history holds the used-KB value recorded at each Tick (the last
	// 300), read by IsLeakDetected.
	history []float64
}

// NewMemoryModel builds a memory model from the memory config block.
func NewMemoryModel(cfg config.Memory) *MemoryModel {
	m := &MemoryModel{
		totalRAMKB:          cfg.TotalRAMKB,
		baseUsageKB:         cfg.BaseUsageKB,
		perReadingBufferKB:  cfg.PerReadingBufferKB,
		maxBufferReadings:   cfg.MaxBufferReadings,
		leakEnabled:         cfg.LeakEnabled,
		leakRateKBPerMinute: cfg.LeakRateKBPerMinute,
	}
	m.updateUsage()
	return m
}

// AllocateSensorBuffer reserves space for one buffered reading, if the
// buffer pool is not already full.
func (m *MemoryModel) AllocateSensorBuffer() bool {
	if m.bufferCount >= m.maxBufferReadings {
		return false
	}
	m.bufferCount++
	m.updateUsage()
	return true
}

// FreeSensorBuffers releases count buffered readings, or all of them
// when count is nil (represented here by a negative count).
func (m *MemoryModel) FreeSensorBuffers(count int) {
	if count < 0 || count >= m.bufferCount {
		m.bufferCount = 0
	} else {
		m.bufferCount -= count
	}
	m.updateUsage()
}

// FreeAllSensorBuffers releases every buffered reading.
func (m *MemoryModel) FreeAllSensorBuffers() {
	m.bufferCount = 0
	m.updateUsage()
}

// Tick advances the leak accumulator, if enabled, and recomputes
// usage.
func (m *MemoryModel) Tick(timeStepS float64) {
	if m.leakEnabled {
		m.leakedKB += m.leakRateKBPerMinute * (timeStepS / 60)
	}
	m.updateUsage()
	m.history = append(m.history, m.usedKB)
	if over := len(m.history) - 300; over > 0 {
		m.history = m.history[over:]
	}
}

func (m *MemoryModel) updateUsage() {
	used := m.baseUsageKB + float64(m.bufferCount)*m.perReadingBufferKB + m.leakedKB
	if used >= m.totalRAMKB {
		used = m.totalRAMKB
		m.oomEvents++
	}
	m.usedKB = used
	if used > m.peakUsageKB {
		m.peakUsageKB = used
	}
}

// IsLeakDetected reports whether the fraction of strictly-increasing
// transitions over the trailing windowSize samples exceeds 0.85.
func (m *MemoryModel) IsLeakDetected(windowSize int) bool {
	if windowSize <= 0 {
		windowSize = 300
	}
	window := m.history
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}
	if len(window) < 2 {
		return false
	}
	increasing := 0
	for i := 1; i < len(window); i++ {
		if window[i] > window[i-1] {
			increasing++
		}
	}
	transitions := len(window) - 1
	return float64(increasing)/float64(transitions) > 0.85
}

// State returns the current memory snapshot.
func (m *MemoryModel) State() model.MemoryState {
	utilization := 0.0
	if m.totalRAMKB > 0 {
		utilization = m.usedKB / m.totalRAMKB
	}
	return model.MemoryState{
		UsedKB:      m.usedKB,
		TotalKB:     m.totalRAMKB,
		Utilization: utilization,
		BufferCount: m.bufferCount,
		LeakedKB:    m.leakedKB,
		PeakUsageKB: m.peakUsageKB,
		OOMEvents:   m.oomEvents,
	}
}
