package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/logger"
)

func TestBatteryApplyPower(t *testing.T) {
	b := &Battery{CapacityWh: 1000, Soc: 0.5, ChargeRateW: 500, DischargeRateW: 400}
	assert.Equal(t, 400.0, b.ApplyPower(1000, time.Hour))
	assert.InDelta(t, 0.1, b.SoC(), 1e-9)

	// only 100 Wh left
	assert.InDelta(t, 100.0, b.ApplyPower(400, time.Hour), 1e-9)
	assert.Equal(t, 0.0, b.SoC())

	assert.Equal(t, -500.0, b.ApplyPower(-800, time.Hour))
	assert.InDelta(t, 0.5, b.SoC(), 1e-9)
	assert.Equal(t, 0.0, b.ApplyPower(100, 0))
}

func TestBatteryBounds(t *testing.T) {
	b := &Battery{CapacityWh: 1000, Soc: 1, ChargeRateW: 500, DischargeRateW: 400, ExclusionW: 20}
	incl, excl := b.Bounds()
	assert.Equal(t, model.Bounds{Lower: 0, Upper: 400}, incl)
	assert.Equal(t, model.Bounds{Lower: -20, Upper: 20}, excl)

	b.Soc = 0
	incl, _ = b.Bounds()
	assert.Equal(t, model.Bounds{Lower: -500, Upper: 0}, incl)
}

func testPool(t *testing.T) *Pool {
	t.Helper()
	p, err := NewPool(Config{Batteries: []BatteryConfig{
		{ID: 1, CapacityWh: 10000, Soc: 0.5, ChargeRateW: 3000, DischargeRateW: 5000, ExclusionW: 100,
			Inverters: []InverterConfig{{ID: 11, RatedW: 4000, ExclusionW: 30}}},
		{ID: 2, CapacityWh: 10000, Soc: 0.5, ChargeRateW: 3000, DischargeRateW: 2000, ExclusionW: 100,
			Inverters: []InverterConfig{{ID: 21, RatedW: 1500, ExclusionW: 80}, {ID: 22, RatedW: 1500, ExclusionW: 80}}},
	}})
	require.NoError(t, err)
	return p
}

func TestPoolBounds(t *testing.T) {
	p := testPool(t)
	b, err := p.Bounds(model.MustBatteryGroup(1, 2))
	require.NoError(t, err)
	// battery 1: max(-3000, -4000), min(5000, 4000); battery 2: max(-3000, -3000), min(2000, 3000)
	assert.Equal(t, model.Bounds{Lower: -6000, Upper: 6000}, b.Inclusion)
	// batteries: [-200, 200], inverters: [-190, 190]
	assert.Equal(t, model.Bounds{Lower: -200, Upper: 200}, b.Exclusion)

	_, err = p.Bounds(model.MustBatteryGroup(3))
	assert.True(t, errors.Is(err, ErrUnknownBattery))
}

func TestPoolDefaults(t *testing.T) {
	p, err := NewPool(Config{})
	require.NoError(t, err)
	b, err := p.Bounds(model.MustBatteryGroup(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 12000.0, b.Inclusion.Upper)
	assert.Error(t, Config{Batteries: []BatteryConfig{{ID: 1, CapacityWh: 1}, {ID: 1, CapacityWh: 1}}}.Validate())
}

func TestSource(t *testing.T) {
	src := NewSource(testPool(t), 10*time.Millisecond, logger.NopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := src.Subscribe(ctx, model.MustBatteryGroup(1))
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, 4000.0, first.Inclusion.Upper)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no periodic update")
	}
	cancel()
	for range ch {
	}

	_, err = src.Subscribe(context.Background(), model.MustBatteryGroup(9))
	assert.Error(t, err)
}

func TestActuator(t *testing.T) {
	p := testPool(t)
	act := NewActuator(p, time.Hour, logger.NopLogger{})
	g := model.MustBatteryGroup(1, 2)

	require.NoError(t, act.Distribute(context.Background(), model.Request{Power: 2000, Group: g, AdjustPower: true}))
	b1, _ := p.Battery(1)
	b2, _ := p.Battery(2)
	assert.InDelta(t, 0.4, b1.SoC(), 1e-9)
	assert.InDelta(t, 0.4, b2.SoC(), 1e-9)

	err := act.Distribute(context.Background(), model.Request{Power: 99999, Group: g})
	assert.Error(t, err)
	require.NoError(t, act.Distribute(context.Background(), model.Request{Power: 99999, Group: g, AdjustPower: true}))
}
