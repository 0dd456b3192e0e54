package service

import (
	"context"
	"encoding/json"

	"loan-intake-be/internal/dto"
	"loan-intake-be/internal/pkg/logger"
	"loan-intake-be/pkg/events"
	pktNats "loan-intake-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const EventTypeApplicationDecided = "APPLICATION_DECIDED"

// IDecisionPublisher emits terminal-decision events onto the in-process bus.
type IDecisionPublisher interface {
	PublishDecision(ctx context.Context, msg *dto.ApplicationDecidedMessage) error
}

type decisionPublisher struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewDecisionPublisher(topicName string, pubSub *gochannel.GoChannel) IDecisionPublisher {
	return &decisionPublisher{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *decisionPublisher) PublishDecision(_ context.Context, msg *dto.ApplicationDecidedMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.pubSub.Publish(p.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

// IAuditService consumes decision events, writes them to the audit log and
// relays them to NATS when a connection is available.
type IAuditService interface {
	Consume(ctx context.Context) error
}

type auditService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	natsPub   *pktNats.Publisher
	sysLogger logger.ILogger
}

func NewAuditService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPub *pktNats.Publisher,
	sysLogger logger.ILogger,
) IAuditService {
	return &auditService{
		pubSub:    pubSub,
		topicName: topicName,
		natsPub:   natsPub,
		sysLogger: sysLogger,
	}
}

func (as *auditService) Consume(ctx context.Context) error {
	messages, err := as.pubSub.Subscribe(ctx, as.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			as.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (as *auditService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ApplicationDecidedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		as.sysLogger.Error("audit", "Failed to unmarshal decision event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads never become valid, do not retry
		return
	}

	as.sysLogger.Info("audit", "Loan application decided", map[string]interface{}{
		"session_id":      payload.SessionId,
		"approved":        payload.Approved,
		"reason":          payload.Reason,
		"approved_amount": payload.ApprovedAmount,
		"risk_band":       payload.RiskBand,
		"foir":            payload.FOIR,
	})

	if as.natsPub != nil {
		event := events.BaseEvent{
			Type: EventTypeApplicationDecided,
			Data: map[string]interface{}{
				"session_id":      payload.SessionId,
				"approved":        payload.Approved,
				"reason":          payload.Reason,
				"approved_amount": payload.ApprovedAmount,
				"risk_band":       payload.RiskBand,
				"foir":            payload.FOIR,
			},
			OccurredAt: payload.DecidedAt,
		}
		if err := as.natsPub.Publish(ctx, event); err != nil {
			as.sysLogger.Warn("audit", "Failed to relay decision event to NATS", map[string]interface{}{
				"session_id": payload.SessionId,
				"error":      err.Error(),
			})
		}
	}

	msg.Ack()
}
