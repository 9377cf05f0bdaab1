package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/core/monitoring"
	"github.com/kilianp07/powermanager/infra/logger"
)

// RequestMessage is the payload published for an actuation request.
type RequestMessage struct {
	CommandID        string   `json:"command_id"`
	BatteryIDs       []uint64 `json:"battery_ids"`
	Power            float64  `json:"power"`
	RequestTimeoutMS int64    `json:"request_timeout_ms"`
	AdjustPower      bool     `json:"adjust_power"`
	IncludeBroken    bool     `json:"include_broken_batteries"`
	Timestamp        int64    `json:"timestamp"`
}

// Actuator publishes actuation requests on the request topic of each group.
type Actuator struct {
	cli *PahoClient
	log logger.Logger
}

// NewActuator creates an actuator publishing through cli.
func NewActuator(cli *PahoClient, log logger.Logger) *Actuator {
	return &Actuator{cli: cli, log: log}
}

// Distribute publishes req. Failures after all retries are captured by the
// monitor.
func (a *Actuator) Distribute(ctx context.Context, req model.Request) error {
	msg := RequestMessage{
		CommandID:        uuid.NewString(),
		BatteryIDs:       req.Group.IDs(),
		Power:            req.Power,
		RequestTimeoutMS: req.RequestTimeout.Milliseconds(),
		AdjustPower:      req.AdjustPower,
		IncludeBroken:    req.IncludeBroken,
		Timestamp:        time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic := RequestTopic(a.cli.Prefix(), req.Group)
	if err := a.cli.Publish(ctx, topic, a.cli.cfg.qos("request"), false, payload); err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "mqtt", "group": req.Group.Key(), "command_id": msg.CommandID})
		return err
	}
	a.log.Infof("sent request %s of %.1f W to %s", msg.CommandID, req.Power, topic)
	return nil
}
