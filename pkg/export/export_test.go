package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powermanager/core/decisionlog"
	"github.com/kilianp07/powermanager/core/model"
)

func sampleRecords() []decisionlog.LogRecord {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []decisionlog.LogRecord{{
		Timestamp:   ts,
		Proposal:    model.Proposal{SourceID: "ems", Group: model.MustBatteryGroup(2, 1), Priority: 4, Power: 1200.5},
		Bounds:      model.PowerMetrics{Inclusion: model.Bounds{Lower: -1000, Upper: 1000}},
		TargetPower: 1000,
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "csv", sampleRecords()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,group,source_id,priority,proposed_power,target_power,lower,upper", lines[0])
	assert.Equal(t, `2024-05-01T12:00:00Z,"1,2",ems,4,1200.5,1000,-1000,1000`, lines[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "", sampleRecords()))
	var rec decisionlog.LogRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ems", rec.Proposal.SourceID)
	assert.Equal(t, 1000.0, rec.TargetPower)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "yaml", sampleRecords()))
	var out []yamlRecord
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, []uint64{1, 2}, out[0].Group)
	assert.Equal(t, 1200.5, out[0].Proposed)
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", nil))
}
