package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func (a *fakeAck) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

type MockMailingList struct{ mock.Mock }

func (m *MockMailingList) UpsertMember(ctx context.Context, p SyncPayload) error {
	return m.Called(ctx, p).Error(0)
}

type MockCRM struct{ mock.Mock }

func (m *MockCRM) PushLead(ctx context.Context, p SyncPayload) error {
	return m.Called(ctx, p).Error(0)
}

type fakeRecorder struct{ jobs []string }

func (f *fakeRecorder) RecordSyncJob(target, result string) {
	f.jobs = append(f.jobs, target+":"+result)
}

func delivery(t *testing.T, ack *fakeAck, payload any) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func TestPublishSync(t *testing.T) {
	pub := &fakePublisher{}
	payload := SyncPayload{JobID: "job-1", Target: TargetKommo, Email: "jane@acme.com", Score: 92, Stage: "enterprise"}

	err := NewProducer(pub).PublishSync(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, "job-1", pub.msg.MessageId)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)

	var decoded SyncPayload
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestPublishSyncWrapsError(t *testing.T) {
	pub := &fakePublisher{err: amqp.ErrClosed}

	err := NewProducer(pub).PublishSync(context.Background(), SyncPayload{JobID: "job-2"})

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestWorkerRoutesByTarget(t *testing.T) {
	ctx := context.Background()
	mailing := new(MockMailingList)
	crm := new(MockCRM)
	rec := &fakeRecorder{}
	w := NewWorker(nil, mailing, crm)
	w.Metrics = rec

	toMailchimp := SyncPayload{JobID: "1", Target: TargetMailchimp, Email: "a@acme.com"}
	toKommo := SyncPayload{JobID: "2", Target: TargetKommo, Email: "b@acme.com"}
	mailing.On("UpsertMember", ctx, toMailchimp).Return(nil)
	crm.On("PushLead", ctx, toKommo).Return(nil)

	first, second := &fakeAck{}, &fakeAck{}
	w.handle(ctx, delivery(t, first, toMailchimp))
	w.handle(ctx, delivery(t, second, toKommo))

	assert.True(t, first.acked)
	assert.True(t, second.acked)
	assert.Equal(t, []string{"MAILCHIMP:success", "KOMMO:success"}, rec.jobs)
	mailing.AssertExpectations(t)
	crm.AssertExpectations(t)
}

func TestWorkerDeadLettersFailedJob(t *testing.T) {
	ctx := context.Background()
	crm := new(MockCRM)
	payload := SyncPayload{JobID: "3", Target: TargetKommo, Email: "c@acme.com"}
	crm.On("PushLead", ctx, payload).Return(errors.New("401 unauthorized"))

	ack := &fakeAck{}
	NewWorker(nil, nil, crm).handle(ctx, delivery(t, ack, payload))

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
	assert.False(t, ack.acked)
}

func TestWorkerRejectsMalformedBody(t *testing.T) {
	ack := &fakeAck{}
	d := amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")}

	NewWorker(nil, nil, nil).handle(context.Background(), d)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}

func TestWorkerAcksUnknownTarget(t *testing.T) {
	ack := &fakeAck{}

	NewWorker(nil, nil, nil).handle(context.Background(), delivery(t, ack, SyncPayload{Target: "HUBSPOT"}))

	assert.True(t, ack.acked)
}

func TestWorkerFailsWhenClientMissing(t *testing.T) {
	ack := &fakeAck{}

	NewWorker(nil, nil, nil).handle(context.Background(), delivery(t, ack, SyncPayload{Target: TargetMailchimp}))

	assert.True(t, ack.nacked)
}

type fakeConsumer struct {
	deliveries chan amqp.Delivery
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func TestWorkerStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := &fakeConsumer{deliveries: make(chan amqp.Delivery, 1)}
	ack := &fakeAck{}
	ch.deliveries <- delivery(t, ack, SyncPayload{Target: "NONE"})

	done := make(chan error, 1)
	go func() { done <- NewWorker(ch, nil, nil).Start(ctx, QueueName) }()

	require.Eventually(t, func() bool { return len(ch.deliveries) == 0 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
