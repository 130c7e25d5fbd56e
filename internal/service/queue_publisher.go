package service

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	q "github.com/iliyamo/movies/internal/queue"
)

// EventPublisher hands entry lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev q.EntryEvent) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.EntryEvent) error { return nil }

// DefaultDialTimeout bounds the TCP connect and AMQP handshake.
const DefaultDialTimeout = 5 * time.Second

// AMQPPublisher publishes events to the movies.entry queue.  Each publish
// dials its own connection; entry mutations are rare enough that pooling
// is not worth the reconnect handling.  Request handlers should reach it
// through an AsyncPublisher.
type AMQPPublisher struct {
	URL         string
	DialTimeout time.Duration
}

// Publish sends ev as a persistent JSON message.  Connecting gives up at
// DialTimeout or at ctx's deadline, whichever comes first.
func (p *AMQPPublisher) Publish(ctx context.Context, ev q.EntryEvent) error {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      boundedDial(ctx, timeout),
	})
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(q.EntriesQueueName, true, false, false, false, nil); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.EntriesQueueName, false, false, pub); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

// boundedDial connects with a deadline of now+timeout, pulled in to ctx's
// deadline when that is earlier.  The deadline stays on the socket for the
// AMQP handshake; amqp091 clears it once the connection is open.
func boundedDial(ctx context.Context, timeout time.Duration) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline := time.Now().Add(timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		dialer := net.Dialer{Deadline: deadline}
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

// ErrEventQueueFull is returned by AsyncPublisher when its buffer is full.
var ErrEventQueueFull = errors.New("event queue full")

// AsyncPublisher buffers events and publishes them from a single background
// goroutine, so a slow broker never holds up a request.
type AsyncPublisher struct {
	next    EventPublisher
	timeout time.Duration
	queue   chan q.EntryEvent
}

// NewAsyncPublisher wraps next with a buffer of size events.  Each publish
// attempt is given timeout.
func NewAsyncPublisher(next EventPublisher, size int, timeout time.Duration) *AsyncPublisher {
	if size <= 0 {
		size = 256
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AsyncPublisher{next: next, timeout: timeout, queue: make(chan q.EntryEvent, size)}
}

// Publish enqueues ev without blocking.
func (p *AsyncPublisher) Publish(_ context.Context, ev q.EntryEvent) error {
	select {
	case p.queue <- ev:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Run publishes queued events until ctx is cancelled.  Events still queued
// at that point are dropped.
func (p *AsyncPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.queue:
			pctx, cancel := context.WithTimeout(ctx, p.timeout)
			if err := p.next.Publish(pctx, ev); err != nil {
				log.Warn().Err(err).Str("kind", ev.Kind).Str("entry_id", ev.EntryID).Msg("entry event not delivered")
			}
			cancel()
		}
	}
}
