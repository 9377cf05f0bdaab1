package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powermanager/core/decisionlog"
)

// Formats lists the supported output formats.
var Formats = []string{"json", "csv", "yaml"}

// Write writes records to w in the given format.
func Write(w io.Writer, format string, records []decisionlog.LogRecord) error {
	switch format {
	case "json", "":
		return WriteJSON(w, records)
	case "csv":
		return WriteCSV(w, records)
	case "yaml":
		return WriteYAML(w, records)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

// WriteJSON writes one JSON document per record.
func WriteJSON(w io.Writer, records []decisionlog.LogRecord) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes the records in CSV format, one row per decision.
func WriteCSV(w io.Writer, records []decisionlog.LogRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "group", "source_id", "priority", "proposed_power", "target_power", "lower", "upper"}); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.Timestamp.Format(time.RFC3339Nano),
			r.Proposal.Group.Key(),
			r.Proposal.SourceID,
			strconv.Itoa(r.Proposal.Priority),
			formatFloat(r.Proposal.Power),
			formatFloat(r.TargetPower),
			formatFloat(r.Bounds.Inclusion.Lower),
			formatFloat(r.Bounds.Inclusion.Upper),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type yamlRecord struct {
	Timestamp string   `yaml:"timestamp"`
	Group     []uint64 `yaml:"group"`
	SourceID  string   `yaml:"source_id,omitempty"`
	Priority  int      `yaml:"priority"`
	Proposed  float64  `yaml:"proposed_power"`
	Target    float64  `yaml:"target_power"`
	Lower     float64  `yaml:"lower"`
	Upper     float64  `yaml:"upper"`
}

// WriteYAML writes the records as a YAML sequence.
func WriteYAML(w io.Writer, records []decisionlog.LogRecord) error {
	out := make([]yamlRecord, len(records))
	for i, r := range records {
		out[i] = yamlRecord{
			Timestamp: r.Timestamp.Format(time.RFC3339Nano),
			Group:     r.Proposal.Group.IDs(),
			SourceID:  r.Proposal.SourceID,
			Priority:  r.Proposal.Priority,
			Proposed:  r.Proposal.Power,
			Target:    r.TargetPower,
			Lower:     r.Bounds.Inclusion.Lower,
			Upper:     r.Bounds.Inclusion.Upper,
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
