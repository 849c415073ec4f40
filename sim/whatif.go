package sim

import "context"

// Result is the terminal summary of one simulation run, covering the
// fixed comparison surface the what-if report renders.
type Result struct {
	StrategyName          string
	Final                 Frame
	TotalSyncs             int
	SuccessfulSyncs         int
	TotalBytes              int
	TicksRun                int64
	TotalEnergyConsumedMAh  float64
	BatteryRemainingPct     float64
	EstimatedBatteryLifeHrs float64
	TotalBandwidthBytes     int
	TwinAvgAccuracyPct      float64
	FaultsDetected          []string
	CriticalAlerts          int
	WarningAlerts           int
	AvgSyncPayloadBytes     float64
	DataPacketsSent         uint64
	EdgeBytesSaved          int
}

// RunToCompletion drives a simulator to the end via Run and returns
// its terminal Result. emit, if non-nil, is additionally invoked once
// per tick (e.g. to feed a tick logger) without requiring the caller
// to drive the loop itself.
func RunToCompletion(ctx context.Context, s *Simulator, emit func(Frame)) (Result, error) {
	var last Frame
	err := s.Run(ctx, func(f Frame) {
		last = f
		if emit != nil {
			emit(f)
		}
	})
	return ResultFrom(s, last), err
}

// ResultFrom builds a terminal Result from a simulator's accumulated
// stats and the last frame observed, for callers (e.g. the live view)
// that drive the tick loop themselves via Step rather than
// through Run/RunToCompletion.
func ResultFrom(s *Simulator, last Frame) Result {
	stats := s.syncEngine.GetStats()

	avgPayload := 0.0
	if stats.TotalSyncs > 0 {
		avgPayload = float64(stats.TotalBytes) / float64(stats.TotalSyncs)
	}

	return Result{
		StrategyName:            s.syncEngine.Name(),
		Final:                   last,
		TotalSyncs:              stats.TotalSyncs,
		SuccessfulSyncs:         stats.SuccessfulSyncs,
		TotalBytes:              stats.TotalBytes,
		TicksRun:                s.tick,
		TotalEnergyConsumedMAh:  last.Device.Battery.TotalConsumedMAh,
		BatteryRemainingPct:     last.Device.Battery.Percentage,
		EstimatedBatteryLifeHrs: last.Battery.HoursRemaining,
		TotalBandwidthBytes:     stats.TotalBytes,
		TwinAvgAccuracyPct:      last.Twin.AvgAccuracy,
		FaultsDetected:          s.FaultsDetected(),
		CriticalAlerts:          s.CriticalAlerts(),
		WarningAlerts:           s.WarningAlerts(),
		AvgSyncPayloadBytes:     avgPayload,
		DataPacketsSent:         last.Device.Network.TotalPacketsSent,
		EdgeBytesSaved:          last.EdgeStats.BytesSaved,
	}
}

// Comparison is a base-vs-what-if delta for one metric. Non-numeric
// metrics (sync_strategy, faults_detected) carry their string forms in
// BaseLabel/WhatIfLabel instead of Base/WhatIf.
type Comparison struct {
	Metric     string
	Label      string
	Base       float64
	WhatIf     float64
	ChangePct  float64
	IsNumeric  bool
	BaseLabel  string
	WhatIfLabel string
}

// Compare builds the fixed 13-metric comparison table between a base
// and a what-if result.
func Compare(base, whatIf Result) []Comparison {
	numeric := []struct {
		metric string
		label  string
		get    func(Result) float64
	}{
		{"total_syncs", "Total syncs", func(r Result) float64 { return float64(r.TotalSyncs) }},
		{"total_energy_consumed_mah", "Total energy consumed (mAh)", func(r Result) float64 { return r.TotalEnergyConsumedMAh }},
		{"battery_remaining_pct", "Battery remaining (%)", func(r Result) float64 { return r.BatteryRemainingPct * 100 }},
		{"estimated_battery_life_hours", "Estimated battery life (hours)", func(r Result) float64 { return r.EstimatedBatteryLifeHrs }},
		{"total_bandwidth_bytes", "Total bandwidth (bytes)", func(r Result) float64 { return float64(r.TotalBandwidthBytes) }},
		{"twin_avg_accuracy_pct", "Twin average accuracy (%)", func(r Result) float64 { return r.TwinAvgAccuracyPct * 100 }},
		{"critical_alerts", "Critical alerts", func(r Result) float64 { return float64(r.CriticalAlerts) }},
		{"warning_alerts", "Warning alerts", func(r Result) float64 { return float64(r.WarningAlerts) }},
		{"avg_sync_payload_bytes", "Average sync payload (bytes)", func(r Result) float64 { return r.AvgSyncPayloadBytes }},
		{"data_packets_sent", "Data packets sent", func(r Result) float64 { return float64(r.DataPacketsSent) }},
		{"edge_bytes_saved", "Edge bytes saved", func(r Result) float64 { return float64(r.EdgeBytesSaved) }},
	}

	out := make([]Comparison, 0, len(numeric)+2)
	for _, spec := range numeric {
		b := spec.get(base)
		w := spec.get(whatIf)
		changePct := 0.0
		if b != 0 {
			changePct = (w - b) / absFloat(b) * 100
		}
		out = append(out, Comparison{
			Metric:    spec.metric,
			Label:     spec.label,
			Base:      b,
			WhatIf:    w,
			ChangePct: changePct,
			IsNumeric: true,
		})
	}

	out = append(out, Comparison{
		Metric:      "sync_strategy",
		Label:       "Sync strategy",
		IsNumeric:   false,
		BaseLabel:   base.StrategyName,
		WhatIfLabel: whatIf.StrategyName,
	})
	out = append(out, Comparison{
		Metric:      "faults_detected",
		Label:       "Faults detected",
		IsNumeric:   false,
		BaseLabel:   joinOrNone(base.FaultsDetected),
		WhatIfLabel: joinOrNone(whatIf.FaultsDetected),
	})

	return out
}

func joinOrNone(faults []string) string {
	if len(faults) == 0 {
		return "none"
	}
	out := faults[0]
	for _, f := range faults[1:] {
		out += ", " + f
	}
	return out
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Insights derives a handful of human-readable observations from the
// comparison table.
func Insights(cmp []Comparison) []string {
	var insights []string
	byMetric := make(map[string]Comparison, len(cmp))
	for _, c := range cmp {
		byMetric[c.Metric] = c
	}

	if c, ok := byMetric["total_energy_consumed_mah"]; ok && c.ChangePct <= -10 {
		insights = append(insights, "Energy savings of more than 10% achieved")
	}
	if c, ok := byMetric["total_bandwidth_bytes"]; ok && c.ChangePct <= -10 {
		insights = append(insights, "Bandwidth usage reduced by more than 10%")
	}
	if c, ok := byMetric["twin_avg_accuracy_pct"]; ok && c.ChangePct <= -2 {
		insights = append(insights, "Twin accuracy decreased by more than 2%")
	}
	if c, ok := byMetric["estimated_battery_life_hours"]; ok && c.ChangePct >= 10 {
		insights = append(insights, "Battery life increased by more than 10%")
	}
	if c, ok := byMetric["avg_sync_payload_bytes"]; ok && c.ChangePct <= -10 {
		insights = append(insights, "Average sync payload size reduced by more than 10%")
	}
	if c, ok := byMetric["critical_alerts"]; ok && c.ChangePct > 0 {
		insights = append(insights, "What-if run raised more critical alerts than the base run")
	}
	return insights
}
