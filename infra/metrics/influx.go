package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/powermanager/core/metrics"
	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/logger"
)

const writeTimeout = 5 * time.Second

// InfluxSink writes power manager events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: writeTimeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.DecisionSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDecision writes the arbitrated proposal.
func (s *InfluxSink) RecordDecision(d coremetrics.Decision) error {
	p := write.NewPointWithMeasurement("power_decision").
		AddTag("group", d.Proposal.Group.Key()).
		AddTag("source", d.Proposal.SourceKey()).
		AddTag("priority", strconv.Itoa(d.Proposal.Priority)).
		AddField("proposed_w", round3(d.Proposal.Power)).
		AddField("target_w", round3(d.TargetPower)).
		AddField("lower_w", round3(d.Bounds.Inclusion.Lower)).
		AddField("upper_w", round3(d.Bounds.Inclusion.Upper)).
		SetTime(d.Time)
	return s.write(p)
}

// RecordReport writes a delivered report.
func (s *InfluxSink) RecordReport(r model.Report) error {
	p := write.NewPointWithMeasurement("power_report").
		AddTag("group", r.Group.Key()).
		AddTag("priority", strconv.Itoa(r.Priority)).
		AddField("lower_w", round3(r.Inclusion.Lower)).
		AddField("upper_w", round3(r.Inclusion.Upper))
	if r.TargetPower != nil {
		p = p.AddField("target_w", round3(*r.TargetPower))
	}
	return s.write(p.SetTime(r.Timestamp))
}

// RecordBounds writes a bounds update.
func (s *InfluxSink) RecordBounds(u coremetrics.BoundsUpdate) error {
	m := u.Metrics
	p := write.NewPointWithMeasurement("power_bounds").
		AddTag("group", u.Group.Key()).
		AddField("lower_w", round3(m.Inclusion.Lower)).
		AddField("upper_w", round3(m.Inclusion.Upper)).
		AddField("excl_lower_w", round3(m.Exclusion.Lower)).
		AddField("excl_upper_w", round3(m.Exclusion.Upper)).
		SetTime(m.Timestamp)
	return s.write(p)
}

// RecordTracker writes a tracker lifecycle change.
func (s *InfluxSink) RecordTracker(c coremetrics.TrackerChange) error {
	p := write.NewPointWithMeasurement("bounds_tracker").
		AddTag("action", c.Action).
		AddTag("group", c.Group.Key()).
		AddField("error", c.Error).
		SetTime(c.Time)
	return s.write(p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
