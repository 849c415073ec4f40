package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nodetwin/twinsim/sim"
)

// Summary renders a human-facing run summary: final device state,
// sync strategy stats, twin accuracy, and any maintenance
// recommendation.
func Summary(result sim.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Simulation summary — strategy: %s", result.StrategyName)))
	b.WriteString("\n\n")

	device := result.Final.Device
	battPct := device.Battery.Percentage * 100
	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-28s", label)) + valueStyle.Render(value) + "\n"
	}

	b.WriteString(row("Ticks run", fmt.Sprintf("%d", result.TicksRun)))
	b.WriteString(row("Battery remaining", fmt.Sprintf("%.1f%% (%.0f mAh)", battPct, device.Battery.RemainingMAh)))
	b.WriteString(row("Total energy consumed", fmt.Sprintf("%.1f mAh", device.Battery.TotalConsumedMAh)))
	b.WriteString(row("Peak CPU utilization", fmt.Sprintf("%.0f%%", device.CPU.PeakUtilization*100)))
	b.WriteString(row("Peak memory usage", fmt.Sprintf("%.0f KB", device.Memory.PeakUsageKB)))
	b.WriteString(row("Bytes transmitted", humanize.Bytes(uint64(result.TotalBytes))))
	b.WriteString(row("Sync success rate", fmt.Sprintf("%.1f%%", result.Final.Twin.SyncSuccessRate*100)))
	b.WriteString(row("Average twin accuracy", fmt.Sprintf("%.1f%%", result.Final.Twin.AvgAccuracy*100)))
	b.WriteString(row("Max state drift", fmt.Sprintf("%.3f (tick %d)", result.Final.Twin.MaxDrift, result.Final.Twin.MaxDriftTick)))

	if result.Final.Recommend.RecommendAction {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf(
			"Maintenance recommended within %.1f hours (earliest projected failure: %.1fh)",
			result.Final.Recommend.ActionAtHours, result.Final.Recommend.EarliestHours,
		)))
		b.WriteString("\n")
	}

	return b.String()
}

// ComparisonTable renders the base-vs-what-if metric table followed
// by any derived insights.
func ComparisonTable(cmp []sim.Comparison, insights []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("What-if comparison"))
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-32s %14s %14s %10s", "Metric", "Base", "What-If", "Change")
	b.WriteString(labelStyle.Render(header))
	b.WriteString("\n")

	for _, c := range cmp {
		if !c.IsNumeric {
			line := fmt.Sprintf("%-32s %14s %14s", c.Label, c.BaseLabel, c.WhatIfLabel)
			b.WriteString(valueStyle.Render(line))
			b.WriteString("\n")
			continue
		}
		style := valueStyle
		arrow := "→"
		if c.ChangePct > 0 {
			arrow = "↑"
			style = warnStyle
		} else if c.ChangePct < 0 {
			arrow = "↓"
			style = okStyle
		}
		line := fmt.Sprintf("%-32s %14.2f %14.2f %9.1f%%%s", c.Label, c.Base, c.WhatIf, c.ChangePct, arrow)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if len(insights) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Insights"))
		b.WriteString("\n")
		for _, insight := range insights {
			b.WriteString("  • " + insight + "\n")
		}
	}

	return panelStyle.Render(b.String())
}
