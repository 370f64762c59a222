// Package service provides adapters that push domain events to external
// systems. Errors are logged and returned to allow callers to ignore
// failures without interrupting the main request flow.
package service

import (
    "context"
    "encoding/json"
    "errors"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/pistac/admin-backend/internal/logging"
    q "github.com/pistac/admin-backend/internal/queue"
)

const (
    defaultBuffer      = 1024
    defaultDialTimeout = 3 * time.Second
    maxBackoff         = 30 * time.Second
)

var (
    // ErrBufferFull is returned when the outgoing buffer has no room; the
    // event is dropped.
    ErrBufferFull = errors.New("audit buffer full")
    // ErrPublisherClosed is returned by Publish after Close.
    ErrPublisherClosed = errors.New("audit publisher closed")
    errBrokerDown      = errors.New("broker unavailable, waiting before redial")
)

// AuditPublisher publishes queue.AuditEvent messages to a durable RabbitMQ
// queue. Publish only enqueues; a single goroutine owns the connection,
// dials lazily and backs off after a failed dial so a dead broker costs
// callers nothing.
type AuditPublisher struct {
    url         string
    queue       string
    dialTimeout time.Duration

    events    chan q.AuditEvent
    quit      chan struct{}
    done      chan struct{}
    closeOnce sync.Once

    // owned by run
    conn    *amqp.Connection
    ch      *amqp.Channel
    backoff time.Duration
    retryAt time.Time
}

// NewAuditPublisher returns a publisher for url and starts its sender. An
// empty queue name uses queue.DefaultAuditQueue.
func NewAuditPublisher(url, queueName string) *AuditPublisher {
    return newAuditPublisher(url, queueName, defaultBuffer, defaultDialTimeout)
}

func newAuditPublisher(url, queueName string, buffer int, dialTimeout time.Duration) *AuditPublisher {
    if queueName == "" {
        queueName = q.DefaultAuditQueue
    }
    p := &AuditPublisher{
        url:         url,
        queue:       queueName,
        dialTimeout: dialTimeout,
        events:      make(chan q.AuditEvent, buffer),
        quit:        make(chan struct{}),
        done:        make(chan struct{}),
    }
    go p.run()
    return p
}

// Publish hands ev to the sender without waiting for the broker. A full
// buffer drops the event with a warning.
func (p *AuditPublisher) Publish(_ context.Context, ev q.AuditEvent) error {
    select {
    case <-p.quit:
        return ErrPublisherClosed
    default:
    }
    select {
    case p.events <- ev:
        return nil
    default:
        logging.Warn().Str("action", ev.Action).Str("event_id", ev.ID).Msg("rabbitmq: audit buffer full, event dropped")
        return ErrBufferFull
    }
}

// Close stops accepting events, flushes what is buffered and releases the
// broker connection.
func (p *AuditPublisher) Close() error {
    p.closeOnce.Do(func() { close(p.quit) })
    <-p.done
    return nil
}

func (p *AuditPublisher) run() {
    defer close(p.done)
    for {
        select {
        case ev := <-p.events:
            p.send(ev)
        case <-p.quit:
            for {
                select {
                case ev := <-p.events:
                    p.send(ev)
                default:
                    p.closeConn()
                    return
                }
            }
        }
    }
}

func (p *AuditPublisher) send(ev q.AuditEvent) {
    body, err := json.Marshal(ev)
    if err != nil {
        logging.Error().Err(err).Str("action", ev.Action).Msg("rabbitmq: marshal event failed")
        return
    }
    ch, err := p.channel()
    if err != nil {
        logging.Warn().Err(err).Str("action", ev.Action).Str("event_id", ev.ID).Msg("rabbitmq: audit event dropped")
        return
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    ev.ID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    ctx, cancel := context.WithTimeout(context.Background(), p.dialTimeout)
    defer cancel()
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        logging.Warn().Err(err).Str("action", ev.Action).Msg("rabbitmq: publish failed")
        p.closeConn()
    }
}

// channel returns an open channel. A failed dial blocks further dials
// until retryAt, doubling the wait up to maxBackoff.
func (p *AuditPublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    p.closeConn()
    if time.Now().Before(p.retryAt) {
        return nil, errBrokerDown
    }
    ch, err := p.dial()
    if err != nil {
        if p.backoff == 0 {
            p.backoff = time.Second
        } else if p.backoff < maxBackoff {
            p.backoff *= 2
        }
        p.retryAt = time.Now().Add(p.backoff)
        return nil, err
    }
    p.backoff, p.retryAt = 0, time.Time{}
    return ch, nil
}

func (p *AuditPublisher) dial() (*amqp.Channel, error) {
    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Dial:      amqp.DefaultDial(p.dialTimeout), // bounds connect and handshake
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
    })
    if err != nil {
        return nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, err
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *AuditPublisher) closeConn() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
