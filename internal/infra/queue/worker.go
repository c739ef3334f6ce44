package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MailingListClient adds a lead to the mailing list audience.
type MailingListClient interface {
	UpsertMember(ctx context.Context, payload SyncPayload) error
}

// CRMClient pushes a lead into the CRM pipeline.
type CRMClient interface {
	PushLead(ctx context.Context, payload SyncPayload) error
}

// Consumer is the subset of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// SyncRecorder counts processed jobs per target and outcome.
type SyncRecorder interface {
	RecordSyncJob(target, result string)
}

type Worker struct {
	Channel     Consumer
	MailingList MailingListClient
	CRM         CRMClient
	Metrics     SyncRecorder
}

func NewWorker(ch Consumer, mailingList MailingListClient, crm CRMClient) *Worker {
	return &Worker{
		Channel:     ch,
		MailingList: mailingList,
		CRM:         crm,
	}
}

// Start consumes the queue until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer on %s: %w", queueName, err)
	}

	log.Printf(" [*] Sync worker waiting on queue '%s'", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queueName)
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var payload SyncPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		log.Printf("❌ [WORKER] invalid JSON: %s", err)
		w.record("unknown", "invalid")
		d.Nack(false, false)
		return
	}

	log.Printf("⚙️ [WORKER] syncing %s to %s (job %s)", payload.Email, payload.Target, payload.JobID)

	if err := w.process(ctx, payload); err != nil {
		log.Printf("❌ [WORKER] %s sync failed for %s: %s", payload.Target, payload.Email, err)
		w.record(payload.Target, "failed")
		d.Nack(false, false)
		return
	}

	log.Printf("✅ [WORKER] %s synced to %s", payload.Email, payload.Target)
	w.record(payload.Target, "success")
	d.Ack(false)
}

func (w *Worker) process(ctx context.Context, payload SyncPayload) error {
	switch payload.Target {
	case TargetMailchimp:
		if w.MailingList == nil {
			return fmt.Errorf("mailing list client not configured")
		}
		return w.MailingList.UpsertMember(ctx, payload)

	case TargetKommo:
		if w.CRM == nil {
			return fmt.Errorf("crm client not configured")
		}
		return w.CRM.PushLead(ctx, payload)

	default:
		// unknown targets are acked and dropped
		log.Printf("⚠️ [WORKER] unknown sync target %q, skipping", payload.Target)
		return nil
	}
}

func (w *Worker) record(target, result string) {
	if w.Metrics != nil {
		w.Metrics.RecordSyncJob(target, result)
	}
}
