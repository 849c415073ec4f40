package device

import (
	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/model"
	"github.com/nodetwin/twinsim/rng"
)

// NetworkModel tracks bandwidth utilization and a congestion-dependent
// packet loss model.
type NetworkModel struct {
	linkType                string
	maxBandwidthKbps        float64
	maxPayloadBytes         int
	basePacketLossRate      float64
	congestedPacketLossRate float64
	congestionThreshold     float64

	bytesThisTick            uint64
	maxBytesThisTick         float64
	bandwidthUtilization     float64
	peakBandwidthUtilization float64
	congestionEvents         int

	totalBytesSent   uint64
	totalPacketsSent uint64
	totalPacketsLost uint64
}

// NewNetworkModel builds a network model from the network config
// block.
func NewNetworkModel(cfg config.Network) *NetworkModel {
	return &NetworkModel{
		linkType:                cfg.Type,
		maxBandwidthKbps:        cfg.MaxBandwidthKbps,
		maxPayloadBytes:         cfg.MaxPayloadBytes,
		basePacketLossRate:      cfg.BasePacketLossRate,
		congestedPacketLossRate: cfg.CongestedPacketLossRate,
		congestionThreshold:     cfg.CongestionThreshold,
	}
}

// Transmit attempts to send payloadBytes, applying the congestion and
// packet-loss model. It returns the number of bytes actually
// delivered (0 on loss) and whether the transmission succeeded.
func (n *NetworkModel) Transmit(r *rng.Source, payloadBytes int) (int, bool) {
	n.totalPacketsSent++

	lossRate := n.basePacketLossRate
	if n.bandwidthUtilization >= n.congestionThreshold {
		lossRate = n.congestedPacketLossRate
	}
	if r.Bernoulli(lossRate) {
		n.totalPacketsLost++
		return 0, false
	}

	sent := payloadBytes
	if sent > n.maxPayloadBytes {
		sent = n.maxPayloadBytes
	}
	n.bytesThisTick += uint64(sent)
	n.totalBytesSent += uint64(sent)
	return sent, true
}

// Tick resets the per-tick byte counter after computing utilization
// for the elapsed window, and tracks congestion events.
func (n *NetworkModel) Tick(timeStepS float64) {
	maxBytes := (n.maxBandwidthKbps * 1000 / 8) * timeStepS
	n.maxBytesThisTick = maxBytes

	utilization := 0.0
	if maxBytes > 0 {
		utilization = float64(n.bytesThisTick) / maxBytes
	}
	if utilization > 1.0 {
		utilization = 1.0
	}
	n.bandwidthUtilization = utilization
	if utilization > n.peakBandwidthUtilization {
		n.peakBandwidthUtilization = utilization
	}
	if utilization >= n.congestionThreshold {
		n.congestionEvents++
	}

	n.bytesThisTick = 0
}

// State returns the current network snapshot.
func (n *NetworkModel) State() model.NetworkState {
	lossRate := 0.0
	if n.totalPacketsSent > 0 {
		lossRate = float64(n.totalPacketsLost) / float64(n.totalPacketsSent)
	}
	return model.NetworkState{
		Type:                     n.linkType,
		BandwidthUtilization:     n.bandwidthUtilization,
		PeakBandwidthUtilization: n.peakBandwidthUtilization,
		TotalBytesSent:           n.totalBytesSent,
		TotalPacketsSent:         n.totalPacketsSent,
		TotalPacketsLost:         n.totalPacketsLost,
		PacketLossRate:           lossRate,
		CongestionEvents:         n.congestionEvents,
	}
}
