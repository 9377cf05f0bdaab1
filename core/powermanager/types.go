package powermanager

import (
	"context"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/internal/eventbus"
)

// BoundsSource provides the live power bounds of battery groups.
type BoundsSource interface {
	// Subscribe streams the bounds of the group until ctx is done. The first
	// value is expected promptly. The channel being closed while ctx is still
	// active means the feed was lost.
	Subscribe(ctx context.Context, group model.BatteryGroup) (<-chan model.PowerMetrics, error)
}

// Actuator executes the arbitrated power requests.
type Actuator interface {
	Distribute(ctx context.Context, req model.Request) error
}

// ReportRegistry resolves report destinations by channel name.
type ReportRegistry interface {
	Sender(name string) eventbus.Sender[model.Report]
}
