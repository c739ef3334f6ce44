package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	TargetMailchimp = "MAILCHIMP"
	TargetKommo     = "KOMMO"
)

// SyncPayload carries a scored lead to an external system.
type SyncPayload struct {
	JobID  string `json:"job_id"`
	Target string `json:"target"`

	Email         string   `json:"email"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	JobTitle      string   `json:"job_title"`
	CompanyDomain string   `json:"company_domain"`
	CRMOwner      string   `json:"crm_owner"`
	Score         int      `json:"score"`
	Stage         string   `json:"stage"`
	Tags          []string `json:"tags"`
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type QueueProducerInterface interface {
	PublishSync(ctx context.Context, payload SyncPayload) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishSync(ctx context.Context, payload SyncPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sync payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    payload.JobID,
			Type:         payload.Target,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish sync job %s: %w", payload.JobID, err)
	}
	return nil
}
