// Package service holds outbound integrations used by the use cases.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/queue"
)

const (
	dialTimeout = 2 * time.Second
	minBackoff  = time.Second
	maxBackoff  = 30 * time.Second
)

// ErrUnavailable is returned while the broker is down and the publisher
// is waiting out its reconnect backoff or another caller is dialing.
var ErrUnavailable = errors.New("rabbitmq: publisher unavailable")

// Publisher sends session events to the durable auth.session queue.  It
// holds one connection and channel and redials lazily after a failure.
// Only one caller dials at a time and never while holding the lock;
// everyone else fails fast with ErrUnavailable until the next attempt is
// due.  Messages are marked persistent.
type Publisher struct {
	url string
	log zerolog.Logger
	now func() time.Time

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	dialing bool
	retryAt time.Time
	backoff time.Duration
}

// NewPublisher returns a publisher that connects on first use.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{
		url:     url,
		log:     log.With().Str("component", "event_publisher").Logger(),
		now:     time.Now,
		backoff: minBackoff,
	}
}

// Connect dials the broker now instead of waiting for the first event.
func (p *Publisher) Connect() error {
	_, err := p.channel()
	return err
}

func (p *Publisher) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.SessionQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: queue declare: %w", err)
	}
	return conn, ch, nil
}

// channel returns the open channel, dialing if this caller may.
func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	if p.ch != nil && !p.ch.IsClosed() {
		ch := p.ch
		p.mu.Unlock()
		return ch, nil
	}
	if p.dialing || p.now().Before(p.retryAt) {
		p.mu.Unlock()
		return nil, ErrUnavailable
	}
	p.dialing = true
	p.resetLocked()
	p.mu.Unlock()

	conn, ch, err := p.dial()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialing = false
	if err != nil {
		p.retryAt = p.now().Add(p.backoff)
		p.backoff *= 2
		if p.backoff > maxBackoff {
			p.backoff = maxBackoff
		}
		return nil, err
	}
	p.conn, p.ch = conn, ch
	p.retryAt, p.backoff = time.Time{}, minBackoff
	return ch, nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// dropChannel discards ch after a failed publish unless it was already
// replaced.
func (p *Publisher) dropChannel(ch *amqp.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == ch {
		p.resetLocked()
	}
}

// Publish sends ev.  Failures are logged and returned; callers treat
// them as non-fatal.
func (p *Publisher) Publish(ctx context.Context, ev queue.SessionEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	ch, err := p.channel()
	if err != nil {
		p.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("publish skipped")
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",                 // default exchange
		queue.SessionQueue, // routing key = queue name
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         string(ev.Type),
			Body:         body,
		})
	if err != nil {
		p.dropChannel(ch)
		p.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("publish failed")
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	p.ch, p.conn = nil, nil
	return errors.Join(errs...)
}

// NopPublisher drops every event.  It is used when RABBITMQ_URL is unset.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.SessionEvent) error { return nil }
