// internal/queue/queue.go
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
)

// LaunchQueueName is the durable queue carrying campaign launch jobs.
const LaunchQueueName = "campaign_launches"

const maxDeliveries = 3

// LaunchJob asks a worker to launch one campaign.
type LaunchJob struct {
	CampaignID int `json:"campaign_id"`
}

// retryable reports whether a failed launch job is worth redelivering.
// Precondition failures are permanent: the campaign is gone or no longer
// launchable, and redelivery would loop forever.
func retryable(err error) bool {
	var notFound *appErrors.NotFoundError
	var invalidState *appErrors.InvalidCampaignStateError
	return !errors.As(err, &notFound) && !errors.As(err, &invalidState)
}

// Queue publishes campaign launch jobs for asynchronous execution.
type Queue interface {
	PublishLaunch(campaignID int) error
}

// ===================== AMQP =====================

// AMQPQueue is the RabbitMQ-backed implementation used by the server and
// the worker binary.
type AMQPQueue struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger
}

func NewAMQPQueue(url string, logger *slog.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		LaunchQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		// Quorum queues track x-delivery-count on redelivery, which the
		// consumer's retry cap depends on; classic queues never set it.
		amqp.Table{"x-queue-type": "quorum"},
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &AMQPQueue{conn: conn, ch: ch, logger: logger}, nil
}

func (q *AMQPQueue) PublishLaunch(campaignID int) error {
	body, err := json.Marshal(LaunchJob{CampaignID: campaignID})
	if err != nil {
		return err
	}
	return q.ch.Publish(
		"",
		LaunchQueueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume blocks, delivering launch jobs to handler. Failed jobs are
// requeued up to maxDeliveries times, then dropped.
func (q *AMQPQueue) Consume(handler func(campaignID int) error) error {
	msgs, err := q.ch.Consume(
		LaunchQueueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for d := range msgs {
		var job LaunchJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			q.logger.Warn("dropping malformed launch job", "error", err)
			d.Ack(false)
			continue
		}

		if err := handler(job.CampaignID); err != nil {
			if !retryable(err) {
				q.logger.Warn("dropping non-retryable launch job",
					"campaign_id", job.CampaignID, "error", err)
				d.Ack(false)
				continue
			}
			q.logger.Error("launch job failed", "campaign_id", job.CampaignID, "error", err)
			var deliveries int64
			if v, ok := d.Headers["x-delivery-count"].(int64); ok {
				deliveries = v
			}
			if deliveries < maxDeliveries {
				d.Nack(false, true) // requeue
				continue
			}
			q.logger.Error("launch job permanently failed", "campaign_id", job.CampaignID)
		}
		d.Ack(false)
	}
	return nil
}

func (q *AMQPQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)

// ===================== In-memory =====================

// InMemoryQueue runs launch jobs on local goroutines with retry and
// backoff. Used when no AMQP broker is configured, and in tests.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers []func(campaignID int) error
	logger   *slog.Logger
}

func NewInMemoryQueue(logger *slog.Logger) *InMemoryQueue {
	return &InMemoryQueue{logger: logger}
}

// Subscribe registers a handler invoked for every published launch job.
func (q *InMemoryQueue) Subscribe(handler func(campaignID int) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

func (q *InMemoryQueue) PublishLaunch(campaignID int) error {
	q.mu.Lock()
	handlers := append([]func(int) error(nil), q.handlers...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for launch jobs")
	}
	for _, handler := range handlers {
		go q.process(handler, campaignID)
	}
	return nil
}

func (q *InMemoryQueue) process(handler func(int) error, campaignID int) {
	for attempt := 1; attempt <= maxDeliveries; attempt++ {
		err := handler(campaignID)
		if err == nil {
			return
		}
		if !retryable(err) {
			q.logger.Warn("dropping non-retryable launch job",
				"campaign_id", campaignID, "error", err)
			return
		}
		q.logger.Warn("launch job failed",
			"campaign_id", campaignID, "attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	q.logger.Error("launch job permanently failed", "campaign_id", campaignID)
}

var _ Queue = (*InMemoryQueue)(nil)
