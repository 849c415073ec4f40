// Package sync implements the four synchronization strategies that
// decide when, and how much of, the device state is pushed to the
// digital twin.
package sync

import (
	"encoding/json"

	"github.com/nodetwin/twinsim/model"
)

// Strategy decides when to sync and what to send, as a pure function
// of the device's current state — it holds whatever bookkeeping it
// needs between ticks but never mutates the state it's given.
type Strategy interface {
	ShouldSync(tick int64, state model.DeviceState, batteryPct float64) bool
	PreparePayload(state model.DeviceState) model.SyncPayload
	Name() string
}

// flatten walks v and records only int/float leaves into out under
// dotted-path keys, skipping strings, bools, and arrays — the delta
// strategy compares numeric drift only.
func flatten(prefix string, v interface{}, out map[string]interface{}) {
	switch m := v.(type) {
	case map[string]interface{}:
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, val, out)
		}
	case float64, int, int64:
		out[prefix] = m
	}
}

// toMap converts a struct snapshot to a plain map via JSON round-trip,
// the same canonical encoding used to size payloads.
func toMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// payloadSize returns the canonical JSON-encoded size of v in bytes,
// matching the Python original's json.dumps(..., default=str) sizing.
func payloadSize(v interface{}) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(data)
}
