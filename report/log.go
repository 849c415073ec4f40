package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nodetwin/twinsim/sim"
)

// Logger accumulates tick frames in memory and writes them out once
// at run end, in either JSON-array or flattened-CSV form, matching
// the original's simulation_<timestamp>.<ext> naming and flatten
// logic.
type Logger struct {
	format        string
	samplingEvery int
	frames        []sim.Frame
}

// NewLogger builds a logger that records every samplingEvery-th
// frame, in the given format ("json" or "csv").
func NewLogger(format string, samplingEvery int) *Logger {
	if samplingEvery <= 0 {
		samplingEvery = 1
	}
	return &Logger{format: format, samplingEvery: samplingEvery}
}

// Record appends frame to the log if its tick falls on a sampling
// boundary.
func (l *Logger) Record(frame sim.Frame) {
	if frame.Tick%int64(l.samplingEvery) == 0 {
		l.frames = append(l.frames, frame)
	}
}

// Write serializes the accumulated frames to path in the logger's
// format.
func (l *Logger) Write(path string) error {
	switch l.format {
	case "csv":
		return l.writeCSV(path)
	default:
		return l.writeJSON(path)
	}
}

func (l *Logger) writeJSON(path string) error {
	data, err := json.MarshalIndent(l.frames, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tick log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tick log %q: %w", path, err)
	}
	return nil
}

func (l *Logger) writeCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tick log %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	rows := make([]map[string]string, 0, len(l.frames))
	keySet := map[string]bool{}
	for _, frame := range l.frames {
		data, err := json.Marshal(frame)
		if err != nil {
			return fmt.Errorf("marshal frame for csv: %w", err)
		}
		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("unmarshal frame for csv: %w", err)
		}
		flat := map[string]string{}
		flattenRow("", raw, flat)
		for k := range flat {
			keySet[k] = true
		}
		rows = append(rows, flat)
	}

	headers := make([]string, 0, len(keySet))
	for k := range keySet {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// flattenRow mirrors the original logger's dotted-key flattening:
// nested objects recurse, lists are joined with "; ".
func flattenRow(prefix string, v interface{}, out map[string]string) {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, nested := range val {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenRow(key, nested, out)
		}
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprintf("%v", item)
		}
		out[prefix] = strings.Join(parts, "; ")
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprintf("%v", val)
	}
}
