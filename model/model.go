// Package model holds the value types shared across the simulator:
// device/twin snapshots, sensor readings, alerts, and sync payloads.
// Nothing in this package mutates state passed into it — every
// snapshot is a value copy, never a live reference into a component's
// internal fields.
package model

// SensorReading is one tick's worth of synthetic sensor output.
type SensorReading struct {
	Temperature float64  `json:"temperature"`
	Humidity    float64  `json:"humidity"`
	Light       float64  `json:"light"`
	Anomalies   []string `json:"anomalies"`
}

// CPUState is the CPU model's per-tick snapshot.
type CPUState struct {
	Utilization             float64 `json:"utilization"`
	CyclesUsed              float64 `json:"cycles_used"`
	PeakUtilization         float64 `json:"peak_utilization"`
	OverloadEvents          int     `json:"overload_events"`
	ConsecutiveOverloadTicks int    `json:"consecutive_overload_ticks"`
}

// MemoryState is the memory model's per-tick snapshot.
type MemoryState struct {
	UsedKB       float64 `json:"used_kb"`
	TotalKB      float64 `json:"total_kb"`
	Utilization  float64 `json:"utilization"`
	BufferCount  int     `json:"buffer_count"`
	LeakedKB     float64 `json:"leaked_kb"`
	PeakUsageKB  float64 `json:"peak_usage_kb"`
	OOMEvents    int     `json:"oom_events"`
}

// BatteryState is the battery model's per-tick snapshot.
type BatteryState struct {
	RemainingMAh       float64            `json:"remaining_mah"`
	CapacityMAh        float64            `json:"capacity_mah"`
	Percentage         float64            `json:"percentage"`
	TotalConsumedMAh   float64            `json:"total_consumed_mah"`
	Depleted           bool               `json:"depleted"`
	EnergyBreakdownMAh map[string]float64 `json:"energy_breakdown_mah"`
	EnergyBreakdownPct map[string]float64 `json:"energy_breakdown_pct"`
}

// NetworkState is the network model's per-tick snapshot.
type NetworkState struct {
	Type                     string  `json:"type"`
	BandwidthUtilization     float64 `json:"bandwidth_utilization"`
	PeakBandwidthUtilization float64 `json:"peak_bandwidth_utilization"`
	TotalBytesSent           uint64  `json:"total_bytes_sent"`
	TotalPacketsSent         uint64  `json:"total_packets_sent"`
	TotalPacketsLost         uint64  `json:"total_packets_lost"`
	PacketLossRate           float64 `json:"packet_loss_rate"`
	CongestionEvents         int     `json:"congestion_events"`
}

// SensorSummary is the sensor generator's contribution to a device
// snapshot.
type SensorSummary struct {
	LastReading  *SensorReading `json:"last_reading"`
	TotalReadings int           `json:"total_readings"`
	AnomalyCount  int           `json:"anomaly_count"`
}

// DeviceState is the full device snapshot rebuilt each tick.
type DeviceState struct {
	CPU      CPUState      `json:"cpu"`
	Memory   MemoryState   `json:"memory"`
	Battery  BatteryState  `json:"battery"`
	Network  NetworkState  `json:"network"`
	Sensors  SensorSummary `json:"sensors"`
	IsActive bool          `json:"is_active"`
	Tick     int64         `json:"tick"`
}

// Clone returns a deep value copy of the device state, safe to hand to
// downstream consumers (sync payloads, twin snapshots) without aliasing
// the live device.
func (d DeviceState) Clone() DeviceState {
	out := d
	if d.Sensors.LastReading != nil {
		r := *d.Sensors.LastReading
		r.Anomalies = append([]string(nil), d.Sensors.LastReading.Anomalies...)
		out.Sensors.LastReading = &r
	}
	out.Battery.EnergyBreakdownMAh = cloneMap(d.Battery.EnergyBreakdownMAh)
	out.Battery.EnergyBreakdownPct = cloneMap(d.Battery.EnergyBreakdownPct)
	return out
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Severity levels for Alert.
const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
	SeverityFault    = "FAULT"
)

// Alert is a per-tick notification produced by the fault detector.
type Alert struct {
	Tick      int64  `json:"tick"`
	Time      string `json:"time"`
	Severity  string `json:"severity"`
	Component string `json:"component"`
	Message   string `json:"message"`
	Icon      string `json:"icon"`
}

// Sync payload type tags.
const (
	SyncFullState    = "full_state"
	SyncDelta        = "delta"
	SyncAdaptive     = "adaptive"
	SyncEventDriven  = "event_driven"
)

// SyncPayload is what a sync strategy hands to the engine for
// transmission.
type SyncPayload struct {
	Type          string      `json:"type"`
	Data          interface{} `json:"data"`
	FieldsChanged int         `json:"fields_changed,omitempty"`
	FieldsTotal   int         `json:"fields_total,omitempty"`
	IntervalUsed  int         `json:"interval_used,omitempty"`
	SizeBytes     int         `json:"size_bytes"`
}

// SyncEvent is one append-only entry in the sync engine's event log.
type SyncEvent struct {
	Tick      int64  `json:"tick"`
	SizeBytes int    `json:"size_bytes"`
	Success   bool   `json:"success"`
	Strategy  string `json:"strategy"`
}

// TwinState is the digital twin's per-tick snapshot.
type TwinState struct {
	DeviceState     *DeviceState `json:"device_state"`
	CurrentDrift    float64      `json:"current_drift"`
	AvgAccuracy     float64      `json:"avg_accuracy"`
	MaxDrift        float64      `json:"max_drift"`
	MaxDriftTick    int          `json:"max_drift_tick"`
	TotalSyncs      int          `json:"total_syncs"`
	SyncSuccessRate float64      `json:"sync_success_rate"`
	LastSyncTick    int64        `json:"last_sync_tick"`
}
