package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/logger"
)

// ProposalMessage is the wire format of a proposal.
type ProposalMessage struct {
	SourceID         string        `json:"source_id"`
	BatteryIDs       []uint64      `json:"battery_ids"`
	Priority         int           `json:"priority"`
	Power            float64       `json:"power"`
	Bounds           *model.Bounds `json:"bounds,omitempty"`
	RequestTimeoutMS int64         `json:"request_timeout_ms"`
	IncludeBroken    bool          `json:"include_broken_batteries"`
}

// Proposal converts the message.
func (m ProposalMessage) Proposal() (model.Proposal, error) {
	g, err := model.NewBatteryGroup(m.BatteryIDs...)
	if err != nil {
		return model.Proposal{}, err
	}
	return model.Proposal{
		SourceID:       m.SourceID,
		Group:          g,
		Priority:       m.Priority,
		Power:          m.Power,
		Bounds:         m.Bounds,
		RequestTimeout: time.Duration(m.RequestTimeoutMS) * time.Millisecond,
		IncludeBroken:  m.IncludeBroken,
	}, nil
}

// NewProposalMessage builds the wire format of p.
func NewProposalMessage(p model.Proposal) ProposalMessage {
	return ProposalMessage{
		SourceID:         p.SourceID,
		BatteryIDs:       p.Group.IDs(),
		Priority:         p.Priority,
		Power:            p.Power,
		Bounds:           p.Bounds,
		RequestTimeoutMS: p.RequestTimeout.Milliseconds(),
		IncludeBroken:    p.IncludeBroken,
	}
}

// Ingress turns the proposal and subscription topics into the input streams
// of the power manager. Messages arriving while a stream is full are dropped
// so the paho router never blocks.
type Ingress struct {
	cli       *PahoClient
	log       logger.Logger
	proposals chan model.Proposal
	requests  chan model.ReportRequest
}

// NewIngress creates an ingress reading from cli.
func NewIngress(cli *PahoClient, log logger.Logger) *Ingress {
	return &Ingress{
		cli:       cli,
		log:       log,
		proposals: make(chan model.Proposal, cli.cfg.InboxSize),
		requests:  make(chan model.ReportRequest, cli.cfg.InboxSize),
	}
}

// Proposals returns the proposal stream.
func (i *Ingress) Proposals() <-chan model.Proposal { return i.proposals }

// Requests returns the report request stream.
func (i *Ingress) Requests() <-chan model.ReportRequest { return i.requests }

// Start subscribes to the ingress topics until ctx is done.
func (i *Ingress) Start(ctx context.Context) error {
	prefix := i.cli.Prefix()
	if err := i.cli.Subscribe(ProposalsTopic(prefix), i.cli.cfg.qos("proposal"), i.onProposal); err != nil {
		return err
	}
	if err := i.cli.Subscribe(SubscriptionsTopic(prefix), i.cli.cfg.qos("subscription"), i.onRequest); err != nil {
		_ = i.cli.Unsubscribe(ProposalsTopic(prefix))
		return err
	}
	go func() {
		<-ctx.Done()
		_ = i.cli.Unsubscribe(ProposalsTopic(prefix))
		_ = i.cli.Unsubscribe(SubscriptionsTopic(prefix))
	}()
	return nil
}

func (i *Ingress) onProposal(_ paho.Client, msg paho.Message) {
	var m ProposalMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		i.log.Errorf("failed to decode proposal: %v", err)
		return
	}
	p, err := m.Proposal()
	if err != nil {
		i.log.Errorf("invalid proposal from %s: %v", m.SourceID, err)
		return
	}
	select {
	case i.proposals <- p:
	default:
		i.log.Warnf("proposal queue full, dropping proposal from %s", p.SourceKey())
	}
}

func (i *Ingress) onRequest(_ paho.Client, msg paho.Message) {
	var r model.ReportRequest
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		i.log.Errorf("failed to decode report request: %v", err)
		return
	}
	if r.Group.IsZero() {
		i.log.Errorf("invalid report request from %s: %v", r.SourceID, model.ErrEmptyGroup)
		return
	}
	select {
	case i.requests <- r:
	default:
		i.log.Warnf("subscription queue full, dropping request for %s", r.ChannelName())
	}
}

// Propose publishes p on the proposals topic.
func (p *PahoClient) Propose(ctx context.Context, prop model.Proposal) error {
	if err := prop.Validate(); err != nil {
		return fmt.Errorf("invalid proposal: %w", err)
	}
	payload, err := json.Marshal(NewProposalMessage(prop))
	if err != nil {
		return err
	}
	return p.Publish(ctx, ProposalsTopic(p.Prefix()), p.cfg.qos("proposal"), false, payload)
}

// RequestReports publishes r on the subscriptions topic.
func (p *PahoClient) RequestReports(ctx context.Context, r model.ReportRequest) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.Publish(ctx, SubscriptionsTopic(p.Prefix()), p.cfg.qos("subscription"), false, payload)
}
