package mqtt

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/logger"
	"github.com/kilianp07/powermanager/test/util"
)

func TestBoundsRoundTripWithMosquitto(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	broker, cleanup, err := util.StartMosquitto(ctx)
	require.NoError(t, err)
	defer cleanup()

	pub, err := NewPahoClient(Config{Broker: broker, ClientID: "publisher"})
	require.NoError(t, err)
	defer pub.Disconnect()
	sub, err := NewPahoClient(Config{Broker: broker, ClientID: "subscriber"})
	require.NoError(t, err)
	defer sub.Disconnect()

	g := model.MustBatteryGroup(1, 2)
	payload, _ := json.Marshal(model.PowerMetrics{Inclusion: model.Bounds{Lower: -500, Upper: 500}})
	// retained so the first value is delivered on subscribe
	require.NoError(t, pub.Publish(ctx, BoundsTopic(pub.Prefix(), g), 1, true, payload))

	ch, err := NewBoundsSource(sub, logger.NopLogger{}).Subscribe(ctx, g)
	require.NoError(t, err)
	select {
	case m := <-ch:
		assert.Equal(t, 500.0, m.Inclusion.Upper)
	case <-ctx.Done():
		t.Fatal("retained bounds not received")
	}

	in := NewIngress(sub, logger.NopLogger{})
	require.NoError(t, in.Start(ctx))
	require.NoError(t, pub.Propose(ctx, model.Proposal{Group: g, Priority: 1, Power: 10}))
	select {
	case p := <-in.Proposals():
		assert.Equal(t, 10.0, p.Power)
	case <-ctx.Done():
		t.Fatal("proposal not received")
	}
}
