package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/powermanager/core/factory"
	"github.com/kilianp07/powermanager/core/model"
)

type recordSink struct {
	decisions int
	reports   int
	err       error
}

func (r *recordSink) RecordDecision(Decision) error {
	r.decisions++
	return r.err
}

func (r *recordSink) RecordReport(model.Report) error {
	r.reports++
	return nil
}

type decisionOnly struct{ count int }

func (d *decisionOnly) RecordDecision(Decision) error {
	d.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &decisionOnly{}
	m := NewMultiSink(s1, s2)
	assert.NoError(t, m.RecordDecision(Decision{}))
	assert.NoError(t, m.RecordReport(model.Report{}))
	assert.NoError(t, m.RecordBounds(BoundsUpdate{}))
	assert.Equal(t, 1, s1.decisions)
	assert.Equal(t, 1, s1.reports)
	assert.Equal(t, 1, s2.count)
}

func TestMultiSinkContinuesAfterError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &decisionOnly{}
	err := NewMultiSink(s1, s2).RecordDecision(Decision{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s2.count)
}

func TestNewMetricsSink(t *testing.T) {
	_ = RegisterMetricsSink("test-record", func(map[string]any) (DecisionSink, error) {
		return &recordSink{}, nil
	})

	s, err := NewMetricsSink(nil)
	assert.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}})
	assert.NoError(t, err)
	assert.IsType(t, &recordSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}, {Type: "test-record"}})
	assert.NoError(t, err)
	multi, ok := s.(*MultiSink)
	assert.True(t, ok)
	assert.Len(t, multi.Sinks, 2)

	_, err = NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}})
	assert.ErrorIs(t, err, factory.ErrUnknownType)
}

type closingSink struct {
	decisionOnly
	closed bool
}

func (c *closingSink) Close() { c.closed = true }

func TestMultiSinkClose(t *testing.T) {
	c := &closingSink{}
	m := NewMultiSink(&decisionOnly{}, c)
	m.Close()
	assert.True(t, c.closed)
}
