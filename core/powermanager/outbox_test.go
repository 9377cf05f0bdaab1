package powermanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermanager/core/model"
)

func TestOutbox_DropsOldest(t *testing.T) {
	o := newOutbox(2)
	g := model.MustBatteryGroup(1)
	for i, p := range []float64{1, 2} {
		_, evicted := o.push(model.Request{Group: g, Power: p})
		assert.False(t, evicted, "push %d", i)
	}
	dropped, evicted := o.push(model.Request{Group: g, Power: 3})
	require.True(t, evicted)
	assert.Equal(t, 1.0, dropped.Power)

	assert.Equal(t, 2.0, (<-o.queue).Power)
	assert.Equal(t, 3.0, (<-o.queue).Power)
}

func TestOutbox_Drain(t *testing.T) {
	o := newOutbox(0)
	assert.Equal(t, defaultOutboxSize, cap(o.queue))
	g := model.MustBatteryGroup(1)
	o.push(model.Request{Group: g, Power: 5})

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan model.Request, 1)
	done := make(chan struct{})
	go func() {
		o.drain(ctx, func(_ context.Context, r model.Request) { got <- r })
		close(done)
	}()
	select {
	case r := <-got:
		assert.Equal(t, 5.0, r.Power)
	case <-time.After(time.Second):
		t.Fatal("request not drained")
	}
	cancel()
	<-done
}

func TestSubscriptionTable(t *testing.T) {
	tbl := newSubscriptionTable()
	assert.False(t, tbl.set("1", subscription{priority: 1, channel: "a"}))
	assert.False(t, tbl.set("1", subscription{priority: 3, channel: "b"}))
	assert.True(t, tbl.set("1", subscription{priority: 1, channel: "c"}))
	assert.Equal(t, 2, tbl.len())

	snap := tbl.snapshot("1")
	require.Len(t, snap, 2)
	assert.Equal(t, 3, snap[0].priority)
	assert.Equal(t, "c", snap[1].channel)
	assert.Empty(t, tbl.snapshot("2"))
}

func TestConfigFirstBoundsTimeout(t *testing.T) {
	assert.Equal(t, defaultFirstBoundsTimeout, Config{}.FirstBoundsTimeout())
	assert.Equal(t, time.Duration(0), Config{FirstBoundsTimeoutMS: -1}.FirstBoundsTimeout())
	assert.Equal(t, 20*time.Millisecond, Config{FirstBoundsTimeoutMS: 20}.FirstBoundsTimeout())
	assert.Equal(t, defaultInitialReportTimeout, Config{}.InitialReportTimeout())
	assert.Equal(t, time.Duration(0), Config{InitialReportTimeoutMS: -1}.InitialReportTimeout())

	var c Config
	c.SetDefaults()
	assert.Equal(t, AlgorithmMatryoshka, c.Algorithm)
	assert.Equal(t, defaultOutboxSize, c.OutboxSize)
}
