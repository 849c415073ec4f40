// Package config loads and validates the simulator's configuration
// tree. The CLI applies its flag overrides to the loaded Config before
// building a simulator; components copy the values they need at
// construction time and the Config is not changed after that.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// Config is the full configuration tree, matching the groups in the
// specification: simulation, device.*, sensors.*, sync, fault_detection,
// edge.
type Config struct {
	Simulation     Simulation     `json:"simulation"`
	Device         Device         `json:"device"`
	Sensors        Sensors        `json:"sensors"`
	Sync           Sync           `json:"sync"`
	FaultDetection FaultDetection `json:"fault_detection"`
	Edge           Edge           `json:"edge"`
}

type Simulation struct {
	DurationHours       float64 `json:"duration_hours"`
	TimeStepSeconds     float64 `json:"time_step_seconds"`
	SamplingRateSeconds int     `json:"sampling_rate_seconds"`
	RandomSeed          int64   `json:"random_seed"`
	LogFormat           string  `json:"log_format"`
	LogOutputDir        string  `json:"log_output_dir"`
}

type Device struct {
	Processor Processor `json:"processor"`
	Memory    Memory    `json:"memory"`
	Battery   Battery   `json:"battery"`
	Network   Network   `json:"network"`
}

type Processor struct {
	ClockMHz  float64            `json:"clock_mhz"`
	TaskCosts map[string]float64 `json:"task_costs"`
}

type Memory struct {
	TotalRAMKB          float64 `json:"total_ram_kb"`
	BaseUsageKB         float64 `json:"base_usage_kb"`
	PerReadingBufferKB  float64 `json:"per_reading_buffer_kb"`
	MaxBufferReadings   int     `json:"max_buffer_readings"`
	LeakEnabled         bool    `json:"leak_enabled"`
	LeakRateKBPerMinute float64 `json:"leak_rate_kb_per_minute"`
}

type Battery struct {
	CapacityMAh       float64            `json:"capacity_mah"`
	Voltage           float64            `json:"voltage"`
	CurrentDrawMA     map[string]float64 `json:"current_draw_ma"`
	WarningThresholds []float64          `json:"warning_thresholds"`
}

type Network struct {
	Type                    string  `json:"type"`
	MaxBandwidthKbps        float64 `json:"max_bandwidth_kbps"`
	MaxPayloadBytes         int     `json:"max_payload_bytes"`
	BasePacketLossRate      float64 `json:"base_packet_loss_rate"`
	CongestedPacketLossRate float64 `json:"congested_packet_loss_rate"`
	CongestionThreshold     float64 `json:"congestion_threshold"`
}

type Sensors struct {
	Temperature SensorChannel `json:"temperature"`
	Humidity    SensorChannel `json:"humidity"`
	Light       SensorChannel `json:"light"`
}

type SensorChannel struct {
	BaseValue          float64    `json:"base_value"`
	NoiseStdDev        float64    `json:"noise_std_dev"`
	AnomalyProbability float64    `json:"anomaly_probability"`
	AnomalySpikeRange  [2]float64 `json:"anomaly_spike_range"`
	DayValue           float64    `json:"day_value"`
	NightValue         float64    `json:"night_value"`
	CyclePeriodHours   float64    `json:"cycle_period_hours"`
}

type Sync struct {
	DefaultStrategy      string   `json:"default_strategy"`
	FullStateIntervalS   int      `json:"full_state_interval_s"`
	DeltaThreshold       float64  `json:"delta_threshold"`
	EventChangeThreshold float64  `json:"event_change_threshold"`
	Adaptive             Adaptive `json:"adaptive"`
}

type Adaptive struct {
	HighBatteryIntervalS   int     `json:"high_battery_interval_s"`
	MediumBatteryIntervalS int     `json:"medium_battery_interval_s"`
	LowBatteryIntervalS    int     `json:"low_battery_interval_s"`
	HighBatteryThreshold   float64 `json:"high_battery_threshold"`
	LowBatteryThreshold    float64 `json:"low_battery_threshold"`
}

type FaultDetection struct {
	CPUCriticalThreshold           float64 `json:"cpu_critical_threshold"`
	CPUCriticalDurationS           int     `json:"cpu_critical_duration_s"`
	CPUWarningThreshold            float64 `json:"cpu_warning_threshold"`
	CPUWarningDurationS            int     `json:"cpu_warning_duration_s"`
	MemoryCriticalThreshold        float64 `json:"memory_critical_threshold"`
	MemoryWarningThreshold         float64 `json:"memory_warning_threshold"`
	BatteryCriticalThreshold       float64 `json:"battery_critical_threshold"`
	BatteryWarningThreshold        float64 `json:"battery_warning_threshold"`
	BandwidthWarningThreshold      float64 `json:"bandwidth_warning_threshold"`
	PacketLossCriticalThreshold    float64 `json:"packet_loss_critical_threshold"`
	StateDriftWarningThreshold     float64 `json:"state_drift_warning_threshold"`
	CommunicationTimeoutMultiplier float64 `json:"communication_timeout_multiplier"`
	MemoryLeakDetectionWindowS     int     `json:"memory_leak_detection_window_s"`
	SensorAnomalySigma             float64 `json:"sensor_anomaly_sigma"`
}

type Edge struct {
	Enabled              bool    `json:"enabled"`
	CompressionEnabled   bool    `json:"compression_enabled"`
	CompressionRatio     float64 `json:"compression_ratio"`
	FilterWindowSize     int     `json:"filter_window_size"`
	AnomalyImmediateSync bool    `json:"anomaly_immediate_sync"`
}

// Default returns the built-in configuration used when no file is
// given or a file is missing a value.
func Default() Config {
	return Config{
		Simulation: Simulation{
			DurationHours:       6,
			TimeStepSeconds:     1,
			SamplingRateSeconds: 10,
			RandomSeed:          42,
			LogFormat:           "json",
			LogOutputDir:        "logs",
		},
		Device: Device{
			Processor: Processor{
				ClockMHz: 48,
				TaskCosts: map[string]float64{
					"sensing_cycles":      200_000,
					"processing_cycles":   500_000,
					"transmission_cycles": 300_000,
				},
			},
			Memory: Memory{
				TotalRAMKB:          256,
				BaseUsageKB:         64,
				PerReadingBufferKB:  0.5,
				MaxBufferReadings:   100,
				LeakEnabled:         false,
				LeakRateKBPerMinute: 0,
			},
			Battery: Battery{
				CapacityMAh: 2000,
				Voltage:     3.7,
				CurrentDrawMA: map[string]float64{
					"sensing":      15,
					"processing":   25,
					"transmission": 80,
					"idle":         2,
				},
				WarningThresholds: []float64{0.5, 0.2, 0.1, 0.05},
			},
			Network: Network{
				Type:                    "lora",
				MaxBandwidthKbps:        50,
				MaxPayloadBytes:         256,
				BasePacketLossRate:      0.01,
				CongestedPacketLossRate: 0.15,
				CongestionThreshold:     0.8,
			},
		},
		Sensors: Sensors{
			Temperature: SensorChannel{
				BaseValue: 22, NoiseStdDev: 0.5,
				AnomalyProbability: 0.01, AnomalySpikeRange: [2]float64{5, 15},
			},
			Humidity: SensorChannel{
				BaseValue: 45, NoiseStdDev: 2,
				AnomalyProbability: 0.01, AnomalySpikeRange: [2]float64{20, 40},
			},
			Light: SensorChannel{
				NoiseStdDev: 10, DayValue: 1000, NightValue: 0,
				CyclePeriodHours: 24,
			},
		},
		Sync: Sync{
			DefaultStrategy:      "adaptive",
			FullStateIntervalS:   10,
			DeltaThreshold:       0.02,
			EventChangeThreshold: 0.05,
			Adaptive: Adaptive{
				HighBatteryIntervalS:   5,
				MediumBatteryIntervalS: 15,
				LowBatteryIntervalS:    60,
				HighBatteryThreshold:   0.50,
				LowBatteryThreshold:    0.15,
			},
		},
		FaultDetection: FaultDetection{
			CPUCriticalThreshold:           0.95,
			CPUCriticalDurationS:           5,
			CPUWarningThreshold:            0.80,
			CPUWarningDurationS:            10,
			MemoryCriticalThreshold:        0.95,
			MemoryWarningThreshold:         0.80,
			BatteryCriticalThreshold:       0.10,
			BatteryWarningThreshold:        0.20,
			BandwidthWarningThreshold:      0.80,
			PacketLossCriticalThreshold:    0.10,
			StateDriftWarningThreshold:     0.15,
			CommunicationTimeoutMultiplier: 3,
			MemoryLeakDetectionWindowS:     300,
			SensorAnomalySigma:             3,
		},
		Edge: Edge{
			Enabled:              true,
			CompressionEnabled:   true,
			CompressionRatio:     0.6,
			FilterWindowSize:     5,
			AnomalyImmediateSync: true,
		},
	}
}

// Load reads a JSON config file and overlays it onto Default(). A
// missing path is not an error — Default() is returned as-is. A
// malformed file logs a warning and falls back to defaults, matching
// the teacher's fail-soft behavior.
func Load(path string) Config {
	cfg := Default()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("twinsim: warning: config parse error: %v", err)
		return Default()
	}
	return cfg
}

// Save writes cfg as indented JSON to path.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}

// Validate checks the numeric ranges and names that, if wrong, should
// abort the simulation before it starts.
func (c Config) Validate() error {
	switch c.Sync.DefaultStrategy {
	case "full_state", "delta", "event_driven", "adaptive":
	default:
		return fmt.Errorf("unknown sync strategy %q", c.Sync.DefaultStrategy)
	}
	if c.Simulation.DurationHours <= 0 {
		return fmt.Errorf("simulation.duration_hours must be positive, got %v", c.Simulation.DurationHours)
	}
	if c.Simulation.TimeStepSeconds <= 0 {
		return fmt.Errorf("simulation.time_step_seconds must be positive, got %v", c.Simulation.TimeStepSeconds)
	}
	if c.Simulation.SamplingRateSeconds <= 0 {
		return fmt.Errorf("simulation.sampling_rate_seconds must be positive, got %v", c.Simulation.SamplingRateSeconds)
	}
	if c.Device.Battery.CapacityMAh <= 0 {
		return fmt.Errorf("device.battery.capacity_mah must be positive, got %v", c.Device.Battery.CapacityMAh)
	}
	if c.Device.Memory.TotalRAMKB <= 0 {
		return fmt.Errorf("device.memory.total_ram_kb must be positive, got %v", c.Device.Memory.TotalRAMKB)
	}
	if c.Device.Network.MaxBandwidthKbps <= 0 {
		return fmt.Errorf("device.network.max_bandwidth_kbps must be positive, got %v", c.Device.Network.MaxBandwidthKbps)
	}
	switch c.Simulation.LogFormat {
	case "json", "csv":
	default:
		return fmt.Errorf("unknown log_format %q", c.Simulation.LogFormat)
	}
	return nil
}
