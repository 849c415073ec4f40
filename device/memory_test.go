package device

import (
	"testing"

	"github.com/nodetwin/twinsim/config"
)

func testMemoryConfig() config.Memory {
	return config.Memory{
		TotalRAMKB:         256,
		BaseUsageKB:        64,
		PerReadingBufferKB: 0.5,
		MaxBufferReadings:  100,
	}
}

func TestMemoryAllocateAndFreeBuffers(t *testing.T) {
	m := NewMemoryModel(testMemoryConfig())
	for i := 0; i < 10; i++ {
		if !m.AllocateSensorBuffer() {
			t.Fatalf("AllocateSensorBuffer() failed on iteration %d", i)
		}
	}
	if m.bufferCount != 10 {
		t.Fatalf("bufferCount = %d, want 10", m.bufferCount)
	}
	m.FreeSensorBuffers(4)
	if m.bufferCount != 6 {
		t.Errorf("bufferCount after freeing 4 = %d, want 6", m.bufferCount)
	}
	m.FreeAllSensorBuffers()
	if m.bufferCount != 0 {
		t.Errorf("bufferCount after FreeAllSensorBuffers = %d, want 0", m.bufferCount)
	}
}

func TestMemoryAllocateRefusesAtCapacity(t *testing.T) {
	cfg := testMemoryConfig()
	cfg.MaxBufferReadings = 2
	m := NewMemoryModel(cfg)
	if !m.AllocateSensorBuffer() || !m.AllocateSensorBuffer() {
		t.Fatal("first two allocations should succeed")
	}
	if m.AllocateSensorBuffer() {
		t.Error("allocation at capacity should be refused")
	}
}

func TestMemoryOOMEventsIncrementAtCapacity(t *testing.T) {
	cfg := testMemoryConfig()
	cfg.TotalRAMKB = 65
	m := NewMemoryModel(cfg)
	for i := 0; i < 5; i++ {
		m.AllocateSensorBuffer()
	}
	state := m.State()
	if state.UsedKB != cfg.TotalRAMKB {
		t.Errorf("UsedKB = %v, want clamped to TotalRAMKB %v", state.UsedKB, cfg.TotalRAMKB)
	}
	if state.OOMEvents == 0 {
		t.Error("OOMEvents should increment once usage reaches capacity")
	}
}

func TestMemoryLeakAccumulates(t *testing.T) {
	cfg := testMemoryConfig()
	cfg.LeakEnabled = true
	cfg.LeakRateKBPerMinute = 6
	m := NewMemoryModel(cfg)
	m.Tick(60) // 1 minute
	if m.leakedKB != 6 {
		t.Errorf("leakedKB after 1 minute at 6KB/min = %v, want 6", m.leakedKB)
	}
}

func TestMemoryIsLeakDetected(t *testing.T) {
	cfg := testMemoryConfig()
	cfg.TotalRAMKB = 100_000
	cfg.LeakEnabled = true
	cfg.LeakRateKBPerMinute = 60
	m := NewMemoryModel(cfg)
	for i := 0; i < 10; i++ {
		m.Tick(60)
	}
	if !m.IsLeakDetected(10) {
		t.Error("a monotonically increasing history should trip leak detection")
	}
}

func TestMemoryIsLeakDetectedFalseWithoutEnoughSamples(t *testing.T) {
	m := NewMemoryModel(testMemoryConfig())
	m.Tick(1)
	if m.IsLeakDetected(300) {
		t.Error("a single sample should never trip leak detection")
	}
}
